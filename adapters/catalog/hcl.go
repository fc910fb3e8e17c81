package catalog

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"instance-allocator/core/determinism"
	"instance-allocator/core/types"
	"instance-allocator/internal/errors"
)

// HCL catalogs hold one block per region:
//
//	region "us-east" {
//	  prices = {
//	    large     = 0.12
//	    "2xlarge" = 0.45
//	  }
//	}
//
// Size names starting with a digit are not identifiers, so prices is an
// object expression where such keys are quoted.
var (
	catalogSchema = &hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "region", LabelNames: []string{"name"}},
		},
	}

	regionSchema = &hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{
			{Name: "prices", Required: true},
		},
	}
)

func decodeHCL(filename string, src []byte) (types.Catalog, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diagError(filename, diags)
	}

	content, diags := file.Body.Content(catalogSchema)
	if diags.HasErrors() {
		return nil, diagError(filename, diags)
	}

	c := make(types.Catalog, len(content.Blocks))
	for _, block := range content.Blocks {
		region := block.Labels[0]
		if _, dup := c[region]; dup {
			return nil, errors.Newf(errors.TypeCatalog, "%s:%d: region %q declared twice",
				filename, block.DefRange.Start.Line, region)
		}

		prices, err := decodeRegion(filename, block)
		if err != nil {
			return nil, err
		}
		c[region] = prices
	}

	return c, nil
}

func decodeRegion(filename string, block *hcl.Block) (types.RegionPrices, error) {
	body, diags := block.Body.Content(regionSchema)
	if diags.HasErrors() {
		return nil, diagError(filename, diags)
	}

	attr := body.Attributes["prices"]
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return nil, diagError(filename, diags)
	}

	line := attr.Range.Start.Line
	if val.IsNull() || !val.IsKnown() {
		return nil, errors.Newf(errors.TypeCatalog, "%s:%d: prices must be a known object", filename, line)
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, errors.Newf(errors.TypeCatalog, "%s:%d: prices must be an object, got %s",
			filename, line, val.Type().FriendlyName())
	}

	prices := make(types.RegionPrices)
	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		name := k.AsString()
		if v.IsNull() || !v.IsKnown() || v.Type() != cty.Number {
			return nil, errors.Newf(errors.TypeCatalog, "%s:%d: price for %q must be a number",
				filename, line, name)
		}
		f, _ := v.AsBigFloat().Float64()
		prices[name] = f
	}
	return prices, nil
}

func encodeHCL(c types.Catalog) []byte {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	for i, region := range determinism.SortedKeys(c) {
		if i > 0 {
			root.AppendNewline()
		}
		block := root.AppendNewBlock("region", []string{region})

		attrs := make(map[string]cty.Value, len(c[region]))
		for name, price := range c[region] {
			attrs[name] = cty.NumberFloatVal(price)
		}
		prices := cty.EmptyObjectVal
		if len(attrs) > 0 {
			prices = cty.ObjectVal(attrs)
		}
		block.Body().SetAttributeValue("prices", prices)
	}

	return f.Bytes()
}

func diagError(filename string, diags hcl.Diagnostics) error {
	for _, diag := range diags {
		if diag.Severity != hcl.DiagError {
			continue
		}
		line := 0
		if diag.Subject != nil {
			line = diag.Subject.Start.Line
		}
		return errors.Catalog(fmt.Sprintf("%s:%d: %s", filename, line, diag.Summary), diags).
			WithContext("detail", diag.Detail)
	}
	return errors.Catalog(filename, diags)
}
