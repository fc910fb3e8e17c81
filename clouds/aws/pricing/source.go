// Package pricing provides an AWS Pricing API catalog source.
// Each vocabulary size is priced as <family>.<size> on-demand Linux with
// shared tenancy in every requested region.
package pricing

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sort"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	pricingtypes "github.com/aws/aws-sdk-go-v2/service/pricing/types"
	"github.com/aws/smithy-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"instance-allocator/core/catalog"
	"instance-allocator/core/determinism"
	"instance-allocator/core/types"
	"instance-allocator/internal/errors"
	"instance-allocator/internal/logging"
)

const serviceCode = "AmazonEC2"

// ProductsAPI is the subset of the Pricing client used here
type ProductsAPI interface {
	GetProducts(ctx context.Context, params *pricing.GetProductsInput, optFns ...func(*pricing.Options)) (*pricing.GetProductsOutput, error)
}

// RegionsAPI is the subset of the EC2 client used here
type RegionsAPI interface {
	DescribeRegions(ctx context.Context, params *ec2.DescribeRegionsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error)
}

// Config configures the AWS source
type Config struct {
	// Regions to price; empty means all regions enabled for the account
	Regions []string

	// Family is the instance family, e.g. "m4"
	Family string

	// RetryAttempts bounds attempts per API call
	RetryAttempts uint

	// RetryDelay is the base backoff delay
	RetryDelay time.Duration

	// Concurrency bounds parallel region fetches
	Concurrency int
}

// Source loads a catalog from the AWS Pricing API
type Source struct {
	products ProductsAPI
	regions  RegionsAPI
	config   Config
	logger   *zap.Logger
}

// New creates a source from API clients
func New(products ProductsAPI, regions RegionsAPI, config Config) *Source {
	if config.RetryAttempts == 0 {
		config.RetryAttempts = 1
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = 500 * time.Millisecond
	}
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	return &Source{
		products: products,
		regions:  regions,
		config:   config,
		logger:   logging.Named("catalog.aws"),
	}
}

// NewFromConfig builds SDK clients from the default credential chain.
// The Pricing API is only served from a few regions, us-east-1 among them.
func NewFromConfig(ctx context.Context, pricingRegion, profile string, config Config) (*Source, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(pricingRegion)}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Config("failed to load AWS config", err)
	}

	return New(pricing.NewFromConfig(cfg), ec2.NewFromConfig(cfg), config), nil
}

// Name returns "aws"
func (s *Source) Name() string {
	return "aws"
}

// Load prices every configured region concurrently
func (s *Source) Load(ctx context.Context) (types.Catalog, error) {
	regions := s.config.Regions
	if len(regions) == 0 {
		listed, err := s.listRegions(ctx)
		if err != nil {
			return nil, err
		}
		regions = listed
	}

	prices := make([]types.RegionPrices, len(regions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)

	for i, region := range regions {
		i, region := i, region
		g.Go(func() error {
			start := time.Now()
			p, err := s.fetchRegion(gctx, region)
			if err != nil {
				return err
			}
			prices[i] = p
			s.logger.Info("priced region",
				logging.Region(region),
				zap.Int("types", len(p)),
				zap.Duration("elapsed", time.Since(start)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c := make(types.Catalog, len(regions))
	for i, region := range regions {
		c[region] = prices[i]
	}
	return c, nil
}

func (s *Source) listRegions(ctx context.Context) ([]string, error) {
	out, err := retry.DoWithData(
		func() (*ec2.DescribeRegionsOutput, error) {
			return s.regions.DescribeRegions(ctx, &ec2.DescribeRegionsInput{AllRegions: aws.Bool(false)})
		},
		s.retryOptions(ctx, "DescribeRegions")...,
	)
	if err != nil {
		return nil, errors.Catalog("failed to list EC2 regions", err)
	}

	names := make([]string, 0, len(out.Regions))
	for _, r := range out.Regions {
		if r.RegionName != nil {
			names = append(names, *r.RegionName)
		}
	}
	sort.Strings(names)
	return names, nil
}

// fetchRegion prices each vocabulary size; sizes the family lacks are skipped
func (s *Source) fetchRegion(ctx context.Context, region string) (types.RegionPrices, error) {
	prices := make(types.RegionPrices)

	for _, entry := range catalog.Vocabulary() {
		instanceType := s.config.Family + "." + string(entry.Type)
		price, found, err := s.fetchPrice(ctx, region, instanceType)
		if err != nil {
			return nil, errors.Catalog("failed to fetch price", err).
				WithContext("region", region).
				WithContext("instance_type", instanceType)
		}
		if !found {
			s.logger.Debug("no on-demand offer", logging.Region(region), zap.String("instance_type", instanceType))
			continue
		}
		prices[string(entry.Type)] = price
	}

	return prices, nil
}

func (s *Source) fetchPrice(ctx context.Context, region, instanceType string) (float64, bool, error) {
	input := &pricing.GetProductsInput{
		ServiceCode: aws.String(serviceCode),
		Filters: []pricingtypes.Filter{
			termMatch("instanceType", instanceType),
			termMatch("regionCode", region),
			termMatch("operatingSystem", "Linux"),
			termMatch("tenancy", "Shared"),
			termMatch("capacitystatus", "Used"),
			termMatch("preInstalledSw", "NA"),
		},
		MaxResults: aws.Int32(10),
	}

	out, err := retry.DoWithData(
		func() (*pricing.GetProductsOutput, error) {
			return s.products.GetProducts(ctx, input)
		},
		s.retryOptions(ctx, "GetProducts")...,
	)
	if err != nil {
		return 0, false, err
	}

	for _, item := range out.PriceList {
		price, ok, err := ParseOnDemandUSD(item)
		if err != nil {
			return 0, false, err
		}
		if ok {
			return price, true, nil
		}
	}
	return 0, false, nil
}

func (s *Source) retryOptions(ctx context.Context, operation string) []retry.Option {
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(s.config.RetryAttempts),
		retry.Delay(s.config.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(IsRetryable),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Warn("retrying AWS call",
				zap.String("operation", operation),
				zap.Uint("attempt", n+1),
				zap.Error(err))
		}),
	}
}

func termMatch(field, value string) pricingtypes.Filter {
	return pricingtypes.Filter{
		Type:  pricingtypes.FilterTypeTermMatch,
		Field: aws.String(field),
		Value: aws.String(value),
	}
}

// retryableCodes are API error codes worth another attempt
var retryableCodes = map[string]bool{
	"Throttling":                  true,
	"ThrottlingException":         true,
	"TooManyRequestsException":    true,
	"RequestLimitExceeded":        true,
	"ServiceUnavailable":          true,
	"ServiceUnavailableException": true,
	"InternalErrorException":      true,
}

// IsRetryable reports whether an AWS error is transient. Throttling codes and
// server faults are retried; other API errors are not. Errors without an API
// shape (transport failures) are retried unless the context ended.
func IsRetryable(err error) bool {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		return retryableCodes[apiErr.ErrorCode()] || apiErr.ErrorFault() == smithy.FaultServer
	}
	return true
}

// priceListItem is the subset of a Pricing API price list document we read
type priceListItem struct {
	Product struct {
		SKU        string            `json:"sku"`
		Attributes map[string]string `json:"attributes"`
	} `json:"product"`
	Terms struct {
		OnDemand map[string]struct {
			PriceDimensions map[string]struct {
				Unit         string            `json:"unit"`
				PricePerUnit map[string]string `json:"pricePerUnit"`
			} `json:"priceDimensions"`
		} `json:"OnDemand"`
	} `json:"terms"`
}

// ParseOnDemandUSD extracts the hourly on-demand USD price from one price
// list document. Terms and dimensions are scanned in key order and the first
// positive hourly price wins; ok is false when there is none.
func ParseOnDemandUSD(doc string) (price float64, ok bool, err error) {
	var item priceListItem
	if err := json.Unmarshal([]byte(doc), &item); err != nil {
		return 0, false, errors.Catalog("failed to parse price list document", err)
	}

	for _, termKey := range determinism.SortedKeys(item.Terms.OnDemand) {
		dims := item.Terms.OnDemand[termKey].PriceDimensions
		for _, dimKey := range determinism.SortedKeys(dims) {
			dim := dims[dimKey]
			if dim.Unit != "Hrs" {
				continue
			}
			raw, present := dim.PricePerUnit["USD"]
			if !present {
				continue
			}
			d, err := decimal.NewFromString(raw)
			if err != nil {
				return 0, false, errors.Catalog("invalid USD price "+raw, err).WithContext("sku", item.Product.SKU)
			}
			if d.IsPositive() {
				return d.InexactFloat64(), true, nil
			}
		}
	}
	return 0, false, nil
}
