package config

import (
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/trustcheck/internal/cost"
	"github.com/sells-group/trustcheck/internal/model"
	"github.com/sells-group/trustcheck/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Google    GoogleConfig    `yaml:"google" mapstructure:"google"`
	Screen    ScreenConfig    `yaml:"screen" mapstructure:"screen"`
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	Patterns  PatternsConfig  `yaml:"patterns" mapstructure:"patterns"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Pricing   cost.Rates      `yaml:"pricing" mapstructure:"pricing"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// GoogleConfig holds Custom Search credentials and transport settings.
type GoogleConfig struct {
	Key         string      `yaml:"key" mapstructure:"key"`
	CX          string      `yaml:"cx" mapstructure:"cx"`
	BaseURL     string      `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int         `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Retry       RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// RetryConfig bounds retries of transient provider failures.
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// ScreenConfig holds screening defaults.
type ScreenConfig struct {
	DefaultLanguage   string `yaml:"default_language" mapstructure:"default_language"`
	DefaultMaxResults int    `yaml:"default_max_results" mapstructure:"default_max_results"`
	PerQueryCap       int    `yaml:"per_query_cap" mapstructure:"per_query_cap"`
	ResultsPolicy     string `yaml:"results_policy" mapstructure:"results_policy"`
}

// RateLimitConfig sets the process-wide provider call budget.
type RateLimitConfig struct {
	RPM int `yaml:"rpm" mapstructure:"rpm"`
}

// PatternsConfig points at an on-disk pattern directory. Empty uses the
// embedded tables.
type PatternsConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// CacheConfig configures the provider page cache.
type CacheConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	TTLSecs     int    `yaml:"ttl_secs" mapstructure:"ttl_secs"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
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
	v.SetEnvPrefix("TRUSTCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("google.key", "")
	v.SetDefault("google.cx", "")
	v.SetDefault("google.base_url", "https://www.googleapis.com/customsearch/v1")
	v.SetDefault("google.timeout_secs", 20)
	v.SetDefault("google.retry.max_attempts", 3)
	v.SetDefault("screen.default_language", "en")
	v.SetDefault("screen.default_max_results", 30)
	v.SetDefault("screen.per_query_cap", 20)
	v.SetDefault("screen.results_policy", string(model.PolicyAll))
	v.SetDefault("rate_limit.rpm", 60)
	v.SetDefault("patterns.dir", "")
	v.SetDefault("cache.driver", store.DriverNone)
	v.SetDefault("cache.database_url", "trustcheck-cache.db")
	v.SetDefault("cache.ttl_secs", 3600)
	v.SetDefault("pricing.google.per_query", cost.DefaultRates().Google.PerQuery)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
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

// Validate checks the settings a command needs. mode is one of "screen",
// "serve" or "cache".
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "screen", "serve", "cache":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if !slices.Contains(store.Drivers, c.Cache.Driver) {
		problems = append(problems, "cache.driver must be one of "+strings.Join(store.Drivers, ", "))
	}
	if c.Cache.Driver != store.DriverNone {
		if c.Cache.DatabaseURL == "" {
			problems = append(problems, "cache.database_url is required")
		}
		if c.Cache.TTLSecs <= 0 {
			problems = append(problems, "cache.ttl_secs must be > 0")
		}
	}

	switch mode {
	case "cache":
		if c.Cache.Driver == store.DriverNone {
			problems = append(problems, "cache.driver is none; nothing to manage")
		}
	case "serve", "screen":
		if !model.ResultsPolicy(c.Screen.ResultsPolicy).Valid() {
			problems = append(problems, "screen.results_policy must be all or adverse_only")
		}
		if lang, err := model.ParseLanguage(c.Screen.DefaultLanguage, ""); err != nil || lang == "" {
			problems = append(problems, "screen.default_language must be en or it")
		}
		if c.Screen.DefaultMaxResults <= 0 {
			problems = append(problems, "screen.default_max_results must be > 0")
		}
		if c.Google.TimeoutSecs <= 0 {
			problems = append(problems, "google.timeout_secs must be > 0")
		}
		if mode == "serve" && c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
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
