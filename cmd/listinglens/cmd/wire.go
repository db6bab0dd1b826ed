package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/listinglens/backend/config"
	"github.com/listinglens/backend/internal/infrastructure/ingest"
	"github.com/listinglens/backend/internal/logging"
	"github.com/listinglens/backend/internal/usecase"
)

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

// buildPipeline reads the exchange rates and training corpora and assembles
// the classifier chain: Naive Bayes, heuristic, price outlier.
func buildPipeline(cfg *config.Config, logger zerolog.Logger) (*usecase.ResolutionPipeline, error) {
	rates, err := ingest.ReadFile(cfg.Data.ExchangeRates, ingest.ReadExchangeRates)
	if err != nil {
		return nil, err
	}
	cameraDocs, err := ingest.ReadFile(cfg.Data.CameraTraining, ingest.ReadCorpus)
	if err != nil {
		return nil, err
	}
	accessoryDocs, err := ingest.ReadFile(cfg.Data.AccessoryTraining, ingest.ReadCorpus)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Int("rates", len(rates)).
		Int("camera_docs", len(cameraDocs)).
		Int("accessory_docs", len(accessoryDocs)).
		Msg("reference data loaded")

	converter := usecase.NewPriceConverter(cfg.Data.ReferenceCurrency, rates)

	classifiers := []usecase.ListingClassifier{
		usecase.NewNaiveBayesClassifier(cameraDocs, accessoryDocs, usecase.NaiveBayesConfig{
			MinNonCameraWords: cfg.NaiveBayes.MinNonCameraWords,
			CameraWordRatio:   cfg.NaiveBayes.CameraWordRatio,
		}),
		usecase.NewHeuristicClassifier(usecase.HeuristicConfig{
			LowPriceCutoff:  cfg.Heuristic.LowPriceCutoff,
			HighPriceCutoff: cfg.Heuristic.HighPriceCutoff,
			Threshold:       cfg.Heuristic.Threshold,
			AccessoryWords:  cfg.Heuristic.AccessoryWords,
			CameraWords:     cfg.Heuristic.CameraWords,
			ForWords:        cfg.Heuristic.ForWords,
		}, converter),
		usecase.NewPriceOutlierClassifier(usecase.PriceOutlierConfig{
			LowerRangeMultiplier: cfg.PriceOutlier.LowerRangeMultiplier,
			UpperRangeMultiplier: cfg.PriceOutlier.UpperRangeMultiplier,
		}, converter),
	}

	return usecase.NewResolutionPipeline(usecase.PipelineConfig{
		Alias: usecase.AliasConfig{
			ManufacturerNameCutoff:  cfg.Matching.ManufacturerNameCutoff,
			PossibleAliasPercentile: cfg.Matching.PossibleAliasPercentile,
			CommonWordPercentile:    cfg.Matching.CommonWordPercentile,
		},
		DropEmpty: cfg.Output.DropEmpty,
		Converter: converter,
	}, classifiers, logging.NewSink(logger, "")), nil
}
