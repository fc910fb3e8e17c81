// Package cmd - catalog commands
package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	catalogsource "instance-allocator/adapters/catalog"
	awspricing "instance-allocator/clouds/aws/pricing"
	"instance-allocator/core/catalog"
	"instance-allocator/core/determinism"
	"instance-allocator/internal/config"
	"instance-allocator/internal/logging"
)

var (
	fetchRegions []string
	fetchFamily  string
	fetchOutput  string
	fetchTimeout time.Duration
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and build price catalogs",
}

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Validate a catalog and print its tiers in CPU order",
	Args:  cobra.NoArgs,
	RunE:  runCatalogShow,
}

var catalogFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Build a catalog file from the AWS Pricing API",
	Long: `Price every size of one instance family in each region through the AWS
Pricing API and write the result as a catalog file. The file format follows
the output extension (.json, .yaml, .hcl).

Examples:
  instance-allocator catalog fetch -o prices.yaml
  instance-allocator catalog fetch --regions us-east-1,eu-west-1 --family m5 -o prices.hcl`,
	Args: cobra.NoArgs,
	RunE: runCatalogFetch,
}

func init() {
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogFetchCmd)

	catalogShowCmd.Flags().StringVarP(&catalogPath, "catalog", "c", "", "catalog file (.json, .yaml, .hcl), implies --source file")
	catalogShowCmd.Flags().StringVarP(&sourceName, "source", "s", "", "catalog source (file, aws)")

	catalogFetchCmd.Flags().StringSliceVar(&fetchRegions, "regions", nil, "regions to price (default: configured regions, else all)")
	catalogFetchCmd.Flags().StringVar(&fetchFamily, "family", "", "instance family (default from config)")
	catalogFetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "catalog.yaml", "catalog file to write")
	catalogFetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", 10*time.Minute, "timeout for the whole fetch")
}

func runCatalogShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := sourceConfig(config.Get())

	source, err := catalogsource.Open(ctx, cfg)
	if err != nil {
		return err
	}
	c, err := source.Load(ctx)
	if err != nil {
		return err
	}

	if errs := catalog.Validate(c, catalog.DefaultValidationRules()); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(cmd.ErrOrStderr(), "  %v\n", e)
		}
		return fmt.Errorf("catalog has %d problems", len(errs))
	}

	tiers, err := catalog.NormalizeAll(c)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REGION\tTYPE\tCPUS\tHOURLY")
	for _, region := range determinism.SortedKeys(tiers) {
		for _, t := range tiers[region] {
			fmt.Fprintf(w, "%s\t%s\t%d\t%v\n", region, t.Type, t.CPUs, t.HourlyPrice)
		}
	}
	return w.Flush()
}

func runCatalogFetch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	cfg := config.Get()
	awsCfg := catalogsource.AWSConfig(cfg)
	if len(fetchRegions) > 0 {
		awsCfg.Regions = fetchRegions
	}
	if fetchFamily != "" {
		awsCfg.Family = fetchFamily
	}

	source, err := awspricing.NewFromConfig(ctx, cfg.AWS.PricingRegion, cfg.AWS.Profile, awsCfg)
	if err != nil {
		return err
	}

	logging.Info("fetching prices")
	c, err := source.Load(ctx)
	if err != nil {
		return err
	}

	if err := catalogsource.WriteFile(fetchOutput, c); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d regions to %s (%s)\n",
		len(c), fetchOutput, strings.Join(c.Regions(), ", "))
	return nil
}
