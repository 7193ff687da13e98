package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Catalog   CatalogConfig   `yaml:"catalog" mapstructure:"catalog"`
	PriceList PriceListConfig `yaml:"price_list" mapstructure:"price_list"`
	Rules     RulesConfig     `yaml:"rules" mapstructure:"rules"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// CatalogConfig locates and parses the catalog export.
type CatalogConfig struct {
	Path             string `yaml:"path" mapstructure:"path"`
	HeaderRow        int    `yaml:"header_row" mapstructure:"header_row"`
	SkipDataRows     int    `yaml:"skip_data_rows" mapstructure:"skip_data_rows"`
	EncodingFallback string `yaml:"encoding_fallback" mapstructure:"encoding_fallback"`
}

// PriceListConfig locates the supplier workbook. Path wins over discovery in Dir.
type PriceListConfig struct {
	Path    string `yaml:"path" mapstructure:"path"`
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Pattern string `yaml:"pattern" mapstructure:"pattern"`
}

// RulesConfig points at an optional classification rules override file.
type RulesConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// OutputConfig configures where results are written.
type OutputConfig struct {
	Dir           string `yaml:"dir" mapstructure:"dir"`
	UpdatedPrefix string `yaml:"updated_prefix" mapstructure:"updated_prefix"`
	CreatePrefix  string `yaml:"create_prefix" mapstructure:"create_prefix"`
	Report        string `yaml:"report" mapstructure:"report"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PRICESYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("catalog.path", "")
	v.SetDefault("catalog.header_row", 8)
	v.SetDefault("catalog.skip_data_rows", 2)
	v.SetDefault("catalog.encoding_fallback", "ISO-8859-1")
	v.SetDefault("price_list.path", "")
	v.SetDefault("price_list.dir", ".")
	v.SetDefault("price_list.pattern", "price list")
	v.SetDefault("rules.path", "")
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.updated_prefix", "Updated Prices to be uploaded")
	v.SetDefault("output.create_prefix", "Create these Products")
	v.SetDefault("output.report", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command needs. Mode is the command name.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "reconcile":
		if c.Catalog.Path == "" {
			errs = append(errs, "catalog.path is required")
		}
		if c.PriceList.Path == "" && c.PriceList.Dir == "" {
			errs = append(errs, "price_list.path or price_list.dir is required")
		}
		if c.Output.UpdatedPrefix == "" || c.Output.CreatePrefix == "" {
			errs = append(errs, "output.updated_prefix and output.create_prefix are required")
		}
		if c.Output.UpdatedPrefix != "" && c.Output.UpdatedPrefix == c.Output.CreatePrefix {
			errs = append(errs, "output prefixes must differ")
		}
	case "sheets":
		if c.PriceList.Path == "" && c.PriceList.Dir == "" {
			errs = append(errs, "price_list.path or price_list.dir is required")
		}
	default:
		return eris.Errorf("config: unknown validation mode %q", mode)
	}

	if c.Catalog.HeaderRow < 0 {
		errs = append(errs, fmt.Sprintf("catalog.header_row must be >= 0, got %d", c.Catalog.HeaderRow))
	}
	if c.Catalog.SkipDataRows < 0 {
		errs = append(errs, fmt.Sprintf("catalog.skip_data_rows must be >= 0, got %d", c.Catalog.SkipDataRows))
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
