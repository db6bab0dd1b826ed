package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/listinglens/backend/internal/domain"
)

// Config holds all configuration for the application
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Cache        CacheConfig        `mapstructure:"cache"`
	RateLimit    RateLimitConfig    `mapstructure:"ratelimit"`
	Log          LogConfig          `mapstructure:"log"`
	Data         DataConfig         `mapstructure:"data"`
	Output       OutputConfig       `mapstructure:"output"`
	Matching     MatchingConfig     `mapstructure:"matching"`
	NaiveBayes   NaiveBayesConfig   `mapstructure:"naive_bayes"`
	Heuristic    HeuristicConfig    `mapstructure:"heuristic"`
	PriceOutlier PriceOutlierConfig `mapstructure:"price_outlier"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"` // empty disables the file sink
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// DataConfig holds input file locations
type DataConfig struct {
	Products          string `mapstructure:"products"`
	Listings          string `mapstructure:"listings"`
	ExchangeRates     string `mapstructure:"exchange_rates"`
	CameraTraining    string `mapstructure:"camera_training"`
	AccessoryTraining string `mapstructure:"accessory_training"`
	ReferenceCurrency string `mapstructure:"reference_currency"`
}

// OutputConfig holds result locations
type OutputConfig struct {
	Path      string `mapstructure:"path"`
	Report    string `mapstructure:"report"` // XLSX report, optional
	DropEmpty bool   `mapstructure:"drop_empty"`
}

// MatchingConfig holds alias generation thresholds
type MatchingConfig struct {
	ManufacturerNameCutoff  int     `mapstructure:"manufacturer_name_cutoff"`
	PossibleAliasPercentile float64 `mapstructure:"possible_alias_percentile"`
	CommonWordPercentile    float64 `mapstructure:"common_word_percentile"`
}

// NaiveBayesConfig holds the Naive-Bayes classifier thresholds
type NaiveBayesConfig struct {
	MinNonCameraWords int     `mapstructure:"min_non_camera_words"`
	CameraWordRatio   float64 `mapstructure:"camera_word_ratio"`
}

// HeuristicConfig holds the heuristic classifier thresholds and word lists
type HeuristicConfig struct {
	LowPriceCutoff  float64  `mapstructure:"low_price_cutoff"`
	HighPriceCutoff float64  `mapstructure:"high_price_cutoff"`
	Threshold       float64  `mapstructure:"threshold"`
	AccessoryWords  []string `mapstructure:"accessory_words"`
	CameraWords     []string `mapstructure:"camera_words"`
	ForWords        []string `mapstructure:"for_words"`
}

// PriceOutlierConfig holds the price band multipliers
type PriceOutlierConfig struct {
	LowerRangeMultiplier float64 `mapstructure:"lower_range_multiplier"`
	UpperRangeMultiplier float64 `mapstructure:"upper_range_multiplier"`
}

// Load loads configuration from environment variables and config files.
// A non-empty path names the config file explicitly and must exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("listinglens")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/listinglens/")
	}

	// LISTINGLENS_HEURISTIC_THRESHOLD -> heuristic.threshold
	v.SetEnvPrefix("LISTINGLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("ratelimit.per_ip", 60)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "logs/listinglens.log")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)

	// Data defaults
	v.SetDefault("data.products", "data/products.txt")
	v.SetDefault("data.listings", "data/listings.txt")
	v.SetDefault("data.exchange_rates", "data/exchange_rates.txt")
	v.SetDefault("data.camera_training", "data/camera_training.txt")
	v.SetDefault("data.accessory_training", "data/accessory_training.txt")
	v.SetDefault("data.reference_currency", "cad")

	v.SetDefault("output.path", "results.txt")
	v.SetDefault("output.report", "")
	v.SetDefault("output.drop_empty", false)

	// Matching and classifier defaults
	v.SetDefault("matching.manufacturer_name_cutoff", 33)
	v.SetDefault("matching.possible_alias_percentile", 0.50)
	v.SetDefault("matching.common_word_percentile", 0.90)

	v.SetDefault("naive_bayes.min_non_camera_words", 3)
	v.SetDefault("naive_bayes.camera_word_ratio", 0.90)

	v.SetDefault("heuristic.low_price_cutoff", 60.0)
	v.SetDefault("heuristic.high_price_cutoff", 700.0)
	v.SetDefault("heuristic.threshold", 50.0)
	v.SetDefault("heuristic.accessory_words", []string{"bag", "body", "battery", "only", "capacity"})
	v.SetDefault("heuristic.camera_words", []string{
		"mp", "megapixel", "mega", "pixel", "mpix", "compact", "zoom", "optical",
		"stabilized", "digitalkamera", "digital", "camera",
	})
	v.SetDefault("heuristic.for_words", []string{"for", "für", "pour"})

	v.SetDefault("price_outlier.lower_range_multiplier", 0.5)
	v.SetDefault("price_outlier.upper_range_multiplier", 5.0)
}

// validate validates the configuration
func validate(config *Config) error {
	m := config.Matching
	if m.ManufacturerNameCutoff < 0 || m.ManufacturerNameCutoff > 100 {
		return fmt.Errorf("matching.manufacturer_name_cutoff must be in [0,100], got: %d", m.ManufacturerNameCutoff)
	}
	if !unitInterval(m.PossibleAliasPercentile) {
		return fmt.Errorf("matching.possible_alias_percentile must be in [0,1], got: %v", m.PossibleAliasPercentile)
	}
	if !unitInterval(m.CommonWordPercentile) {
		return fmt.Errorf("matching.common_word_percentile must be in [0,1], got: %v", m.CommonWordPercentile)
	}

	nb := config.NaiveBayes
	if nb.MinNonCameraWords < 0 {
		return fmt.Errorf("naive_bayes.min_non_camera_words must be >= 0, got: %d", nb.MinNonCameraWords)
	}
	if !unitInterval(nb.CameraWordRatio) {
		return fmt.Errorf("naive_bayes.camera_word_ratio must be in [0,1], got: %v", nb.CameraWordRatio)
	}

	h := config.Heuristic
	if h.LowPriceCutoff < 0 || h.HighPriceCutoff < 0 {
		return fmt.Errorf("heuristic price cutoffs must be >= 0, got: %v and %v", h.LowPriceCutoff, h.HighPriceCutoff)
	}
	if h.LowPriceCutoff > h.HighPriceCutoff {
		return fmt.Errorf("heuristic.low_price_cutoff %v is above heuristic.high_price_cutoff %v", h.LowPriceCutoff, h.HighPriceCutoff)
	}
	if h.Threshold < 0 || h.Threshold > 100 {
		return fmt.Errorf("heuristic.threshold must be in [0,100], got: %v", h.Threshold)
	}

	po := config.PriceOutlier
	if po.LowerRangeMultiplier < 0 || po.UpperRangeMultiplier < 0 {
		return fmt.Errorf("price_outlier multipliers must be >= 0, got: %v and %v", po.LowerRangeMultiplier, po.UpperRangeMultiplier)
	}

	if strings.TrimSpace(config.Data.ReferenceCurrency) == "" {
		return fmt.Errorf("data.reference_currency is required (set LISTINGLENS_DATA_REFERENCE_CURRENCY)")
	}
	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("ratelimit.per_ip must be >= 0, got: %d", config.RateLimit.PerIP)
	}

	return nil
}

func unitInterval(f float64) bool {
	return f >= 0 && f <= 1
}
