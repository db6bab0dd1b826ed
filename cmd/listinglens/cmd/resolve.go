package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/listinglens/backend/config"
	"github.com/listinglens/backend/internal/domain"
	"github.com/listinglens/backend/internal/infrastructure/ingest"
	"github.com/listinglens/backend/internal/infrastructure/output"
	"github.com/listinglens/backend/internal/logging"
	"github.com/listinglens/backend/internal/usecase"
)

type resolveOptions struct {
	products  string
	listings  string
	out       string
	report    string
	dropEmpty bool
}

func newResolveCmd() *cobra.Command {
	var opts resolveOptions
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a listings file against a products file",
		Long: "Reads products and listings (one JSON object per line), writes one result line per product\n" +
			"and optionally an XLSX report. Use --out - to write results to stdout.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.products, "products", "", "products file (overrides data.products)")
	cmd.Flags().StringVar(&opts.listings, "listings", "", "listings file (overrides data.listings)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "results file (overrides output.path)")
	cmd.Flags().StringVar(&opts.report, "report", "", "XLSX report file (overrides output.report)")
	cmd.Flags().BoolVar(&opts.dropEmpty, "drop-empty", false, "omit products without listings")
	return cmd
}

func (o resolveOptions) apply(cfg *config.Config) {
	if o.products != "" {
		cfg.Data.Products = o.products
	}
	if o.listings != "" {
		cfg.Data.Listings = o.listings
	}
	if o.out != "" {
		cfg.Output.Path = o.out
	}
	if o.report != "" {
		cfg.Output.Report = o.report
	}
	if o.dropEmpty {
		cfg.Output.DropEmpty = true
	}
}

func runResolve(cmd *cobra.Command, opts resolveOptions) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts.apply(cfg)

	logger := config.SetupLogger(cfg.Log)
	pipeline, err := buildPipeline(cfg, logger)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	sink := logging.NewSink(logger, runID)

	products, err := ingest.ReadFile(cfg.Data.Products, func(r io.Reader) ([]domain.Product, error) {
		return ingest.ReadProducts(r, sink)
	})
	if err != nil {
		return err
	}
	listings, err := ingest.ReadFile(cfg.Data.Listings, func(r io.Reader) ([]domain.Listing, error) {
		return ingest.ReadListings(r, sink)
	})
	if err != nil {
		return err
	}
	logger.Info().Str("run_id", runID).Int("products", len(products)).Int("listings", len(listings)).Msg("inputs loaded")

	res, err := pipeline.Resolve(cmd.Context(), usecase.Batch{
		RunID:    runID,
		Products: products,
		Listings: listings,
		Sink:     sink,
	})
	if err != nil {
		return err
	}

	if err := writeResults(cmd, cfg.Output.Path, res.Matches); err != nil {
		return err
	}
	if cfg.Output.Report != "" {
		if err := output.SaveReport(cfg.Output.Report, res); err != nil {
			return err
		}
	}

	logger.Info().
		Str("run_id", runID).
		Int("matches", len(res.Matches)).
		Int("unmatched_manufacturer", res.CountUnmatched(domain.UnmatchedManufacturer)).
		Int("unmatched_product", res.CountUnmatched(domain.UnmatchedProduct)).
		Interface("pruned", res.Pruned).
		Str("out", cfg.Output.Path).
		Msg("resolution complete")
	return nil
}

func writeResults(cmd *cobra.Command, path string, matches []*domain.ProductMatch) error {
	if path == "-" {
		return output.WriteJSONLines(cmd.OutOrStdout(), matches)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}
	if err := output.WriteJSONLines(f, matches); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
