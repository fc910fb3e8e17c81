// Package cmd - allocate command
package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	catalogsource "instance-allocator/adapters/catalog"
	"instance-allocator/core/determinism"
	"instance-allocator/core/engine"
	"instance-allocator/core/output"
	"instance-allocator/core/types"
	"instance-allocator/internal/config"
	"instance-allocator/internal/logging"
)

var (
	catalogPath  string
	sourceName   string
	hours        float64
	cpus         int
	price        float64
	outputFormat string
	roundCents   bool
)

// allocateCmd represents the allocate command
var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Allocate instances in every region of a catalog",
	Long: `Compute the cheapest instance mix per region and rank regions by total cost.

--cpus alone finds the cheapest mix reaching the CPU count.
--price alone spends as much of the budget as possible.
Both together keep the CPU mixes that cost less than the budget.

Examples:
  instance-allocator allocate --hours 24 --cpus 115
  instance-allocator allocate --hours 8 --price 29 --catalog prices.yaml
  instance-allocator allocate --hours 7 --cpus 214 --price 95 --format markdown`,
	Args: cobra.NoArgs,
	RunE: runAllocate,
}

func init() {
	allocateCmd.Flags().StringVarP(&catalogPath, "catalog", "c", "", "catalog file (.json, .yaml, .hcl), implies --source file")
	allocateCmd.Flags().StringVarP(&sourceName, "source", "s", "", "catalog source (file, aws)")
	allocateCmd.Flags().Float64Var(&hours, "hours", 1, "rental duration in hours")
	allocateCmd.Flags().IntVar(&cpus, "cpus", 0, "minimum total CPUs")
	allocateCmd.Flags().Float64Var(&price, "price", 0, "maximum total spend in dollars")
	allocateCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format ("+strings.Join(output.NewRegistry().Formats(), ", ")+")")
	allocateCmd.Flags().BoolVar(&roundCents, "round-cents", false, "render costs to two decimals")
}

func runAllocate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	cfg := sourceConfig(config.Get())

	req := types.Request{Hours: hours}
	if cmd.Flags().Changed("cpus") {
		req.CPUs = &cpus
	}
	if cmd.Flags().Changed("price") {
		req.Price = &price
	}

	format := cfg.Output.DefaultFormat
	if outputFormat != "" {
		format = outputFormat
	}
	formats := output.NewRegistry()
	formatter, ok := formats.Get(output.Format(format))
	if !ok {
		return fmt.Errorf("unknown output format %q (known: %s)", format, strings.Join(formats.Formats(), ", "))
	}

	source, err := catalogsource.Open(ctx, cfg)
	if err != nil {
		return err
	}
	c, err := source.Load(ctx)
	if err != nil {
		return err
	}

	eng := engine.New(engine.Config{
		Workers:    cfg.Engine.Workers,
		RoundCents: cfg.Output.RoundCents || roundCents,
	})
	result, err := eng.Allocate(ctx, c, req)
	if err != nil {
		return err
	}

	hash, err := determinism.ContentHash(struct {
		Catalog types.Catalog `json:"catalog"`
		Request types.Request `json:"request"`
	}{c, req})
	if err != nil {
		logging.Warn("could not hash input")
	}

	return formatter.Render(cmd.OutOrStdout(), &output.Report{
		Result: result,
		Metadata: output.Metadata{
			InputHash:  hash,
			DurationMS: time.Since(start).Milliseconds(),
			Source:     source.Name(),
			Version:    Version,
		},
	})
}

// sourceConfig applies the --catalog and --source flags over a copy of cfg
func sourceConfig(cfg *config.Config) *config.Config {
	out := *cfg
	if sourceName != "" {
		out.Catalog.Source = sourceName
	}
	if catalogPath != "" {
		out.Catalog.Source = catalogsource.SourceFile
		out.Catalog.Path = catalogPath
	}
	return &out
}
