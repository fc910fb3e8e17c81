package pricing

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	"github.com/aws/smithy-go"
	"github.com/onsi/gomega"

	"instance-allocator/core/types"
	"instance-allocator/internal/errors"
)

func priceDoc(sku, usd string) string {
	return fmt.Sprintf(`{
  "product": {"sku": %q, "attributes": {"instanceType": "m4.large"}},
  "terms": {
    "OnDemand": {
      "%s.JRTCKXETXF": {
        "priceDimensions": {
          "%s.JRTCKXETXF.6YS6EN2CT7": {"unit": "Hrs", "pricePerUnit": {"USD": %q}}
        }
      }
    }
  }
}`, sku, sku, sku, usd)
}

// fakeProducts answers GetProducts from a table keyed by region and instance type
type fakeProducts struct {
	mu       sync.Mutex
	prices   map[string]map[string]string
	failures map[string][]error
	calls    map[string]int
}

func filterValue(input *pricing.GetProductsInput, field string) string {
	for _, f := range input.Filters {
		if aws.ToString(f.Field) == field {
			return aws.ToString(f.Value)
		}
	}
	return ""
}

func (f *fakeProducts) GetProducts(ctx context.Context, input *pricing.GetProductsInput, _ ...func(*pricing.Options)) (*pricing.GetProductsOutput, error) {
	region := filterValue(input, "regionCode")
	instanceType := filterValue(input, "instanceType")
	key := region + "/" + instanceType

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[key]++

	if errs := f.failures[key]; len(errs) > 0 {
		f.failures[key] = errs[1:]
		return nil, errs[0]
	}

	out := &pricing.GetProductsOutput{}
	if usd, ok := f.prices[region][instanceType]; ok {
		out.PriceList = []string{priceDoc("SKU"+instanceType, usd)}
	}
	return out, nil
}

type fakeRegions struct {
	names []string
}

func (f *fakeRegions) DescribeRegions(ctx context.Context, _ *ec2.DescribeRegionsInput, _ ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error) {
	out := &ec2.DescribeRegionsOutput{}
	for _, n := range f.names {
		out.Regions = append(out.Regions, ec2types.Region{RegionName: aws.String(n)})
	}
	return out, nil
}

func testConfig() Config {
	return Config{Family: "m4", RetryAttempts: 3, RetryDelay: time.Millisecond, Concurrency: 2}
}

func TestLoadPricesConfiguredRegions(t *testing.T) {
	g := gomega.NewGomegaWithT(t)
	products := &fakeProducts{prices: map[string]map[string]string{
		"us-east-1": {"m4.large": "0.1000000000", "m4.xlarge": "0.2000000000", "m4.10xlarge": "2.0000000000"},
		"eu-west-1": {"m4.large": "0.1110000000"},
	}}

	cfg := testConfig()
	cfg.Regions = []string{"us-east-1", "eu-west-1"}
	c, err := New(products, &fakeRegions{}, cfg).Load(context.Background())

	g.Expect(err).Should(gomega.BeNil())
	g.Expect(c).To(gomega.Equal(types.Catalog{
		"us-east-1": {"large": 0.1, "xlarge": 0.2, "10xlarge": 2.0},
		"eu-west-1": {"large": 0.111},
	}))
}

func TestLoadListsRegionsWhenNoneConfigured(t *testing.T) {
	g := gomega.NewGomegaWithT(t)
	products := &fakeProducts{prices: map[string]map[string]string{
		"ap-south-1": {"m4.4xlarge": "0.8"},
	}}

	c, err := New(products, &fakeRegions{names: []string{"sa-east-1", "ap-south-1"}}, testConfig()).Load(context.Background())

	g.Expect(err).Should(gomega.BeNil())
	g.Expect(c).To(gomega.HaveLen(2))
	g.Expect(c["ap-south-1"]).To(gomega.Equal(types.RegionPrices{"4xlarge": 0.8}))
	g.Expect(c["sa-east-1"]).To(gomega.BeEmpty())
}

func TestLoadRetriesThrottling(t *testing.T) {
	g := gomega.NewGomegaWithT(t)
	throttled := &smithy.GenericAPIError{Code: "ThrottlingException", Message: "Rate exceeded"}
	products := &fakeProducts{
		prices:   map[string]map[string]string{"us-east-1": {"m4.large": "0.1"}},
		failures: map[string][]error{"us-east-1/m4.large": {throttled, throttled}},
	}

	cfg := testConfig()
	cfg.Regions = []string{"us-east-1"}
	c, err := New(products, &fakeRegions{}, cfg).Load(context.Background())

	g.Expect(err).Should(gomega.BeNil())
	g.Expect(c["us-east-1"]).To(gomega.HaveKeyWithValue("large", 0.1))
	g.Expect(products.calls["us-east-1/m4.large"]).To(gomega.Equal(3))
}

func TestLoadStopsOnPermanentError(t *testing.T) {
	g := gomega.NewGomegaWithT(t)
	denied := &smithy.GenericAPIError{Code: "AccessDeniedException", Message: "no", Fault: smithy.FaultClient}
	products := &fakeProducts{
		failures: map[string][]error{"us-east-1/m4.large": {denied}},
	}

	cfg := testConfig()
	cfg.Regions = []string{"us-east-1"}
	_, err := New(products, &fakeRegions{}, cfg).Load(context.Background())

	g.Expect(errors.IsType(err, errors.TypeCatalog)).To(gomega.BeTrue())
	g.Expect(products.calls["us-east-1/m4.large"]).To(gomega.Equal(1))
}

func TestIsRetryable(t *testing.T) {
	g := gomega.NewGomegaWithT(t)

	g.Expect(IsRetryable(&smithy.GenericAPIError{Code: "RequestLimitExceeded"})).To(gomega.BeTrue())
	g.Expect(IsRetryable(&smithy.GenericAPIError{Code: "Boom", Fault: smithy.FaultServer})).To(gomega.BeTrue())
	g.Expect(IsRetryable(&smithy.GenericAPIError{Code: "ValidationException", Fault: smithy.FaultClient})).To(gomega.BeFalse())
	g.Expect(IsRetryable(fmt.Errorf("dial tcp: connection reset"))).To(gomega.BeTrue())
	g.Expect(IsRetryable(fmt.Errorf("fetch: %w", context.Canceled))).To(gomega.BeFalse())
}

func TestParseOnDemandUSD(t *testing.T) {
	g := gomega.NewGomegaWithT(t)

	price, ok, err := ParseOnDemandUSD(priceDoc("ABC", "0.0960000000"))
	g.Expect(err).Should(gomega.BeNil())
	g.Expect(ok).To(gomega.BeTrue())
	g.Expect(price).To(gomega.Equal(0.096))

	_, ok, err = ParseOnDemandUSD(priceDoc("ABC", "0.0000000000"))
	g.Expect(err).Should(gomega.BeNil())
	g.Expect(ok).To(gomega.BeFalse())

	_, ok, err = ParseOnDemandUSD(`{"product":{},"terms":{}}`)
	g.Expect(err).Should(gomega.BeNil())
	g.Expect(ok).To(gomega.BeFalse())

	_, _, err = ParseOnDemandUSD(priceDoc("ABC", "abc"))
	g.Expect(errors.IsType(err, errors.TypeCatalog)).To(gomega.BeTrue())

	_, _, err = ParseOnDemandUSD("not json")
	g.Expect(err).ShouldNot(gomega.BeNil())
}
