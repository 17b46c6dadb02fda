// File: internal/config/config.go
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/kalyptra/ariadne/internal/browser"
	"github.com/kalyptra/ariadne/internal/embedding"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Database() DatabaseConfig
	Browser() browser.Config
	Embedding() embedding.Config
	Resolver() ResolverConfig

	// Browser setters, bound from CLI flags.
	SetBrowserHeadless(bool)
	SetBrowserSettleDelay(time.Duration)

	// Resolver setters.
	SetResolverLookThreshold(float64)
	SetResolverActThreshold(float64)
	SetResolverWaitTimeout(time.Duration)
	SetResolverPollInterval(time.Duration)
}

// Config holds the entire application configuration. Fields are exported so
// viper can unmarshal them; callers go through the Interface's getters.
type Config struct {
	LoggerCfg    LoggerConfig     `mapstructure:"logger" yaml:"logger"`
	DatabaseCfg  DatabaseConfig   `mapstructure:"database" yaml:"database"`
	BrowserCfg   browser.Config   `mapstructure:"browser" yaml:"browser"`
	EmbeddingCfg embedding.Config `mapstructure:"embedding" yaml:"embedding"`
	ResolverCfg  ResolverConfig   `mapstructure:"resolver" yaml:"resolver"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig        { return c.LoggerCfg }
func (c *Config) Database() DatabaseConfig    { return c.DatabaseCfg }
func (c *Config) Browser() browser.Config     { return c.BrowserCfg }
func (c *Config) Embedding() embedding.Config { return c.EmbeddingCfg }
func (c *Config) Resolver() ResolverConfig    { return c.ResolverCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetBrowserHeadless(b bool)               { c.BrowserCfg.Headless = b }
func (c *Config) SetBrowserSettleDelay(d time.Duration)   { c.BrowserCfg.SettleDelay = d }
func (c *Config) SetResolverLookThreshold(t float64)      { c.ResolverCfg.LookThreshold = t }
func (c *Config) SetResolverActThreshold(t float64)       { c.ResolverCfg.ActThreshold = t }
func (c *Config) SetResolverWaitTimeout(d time.Duration)  { c.ResolverCfg.WaitTimeout = d }
func (c *Config) SetResolverPollInterval(d time.Duration) { c.ResolverCfg.PollInterval = d }

// LoggerConfig configures the zap logger and its optional rotating file sink.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// DatabaseConfig holds the semantic store connection details.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// ResolverConfig bounds the look/wait/act engine.
type ResolverConfig struct {
	LookThreshold float64       `mapstructure:"look_threshold" yaml:"look_threshold"`
	ActThreshold  float64       `mapstructure:"act_threshold" yaml:"act_threshold"`
	SearchLimit   int           `mapstructure:"search_limit" yaml:"search_limit"`
	WaitTimeout   time.Duration `mapstructure:"wait_timeout" yaml:"wait_timeout"`
	PollInterval  time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	RefPrefix     string        `mapstructure:"ref_prefix" yaml:"ref_prefix"`
}

// DefaultConfigDir returns the directory searched for ariadne.yaml.
func DefaultConfigDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".ariadne"), nil
}

// NewDefaultConfig returns a config populated with defaults only.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "ariadne")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Database --
	v.SetDefault("database.url", "")

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.user_agent", "")
	v.SetDefault("browser.navigation_timeout", "60s")
	v.SetDefault("browser.settle_delay", "500ms")

	// -- Embedding --
	v.SetDefault("embedding.provider", "local")
	v.SetDefault("embedding.api_key", "")
	v.SetDefault("embedding.model", "")

	// -- Resolver --
	v.SetDefault("resolver.look_threshold", 0.50)
	v.SetDefault("resolver.act_threshold", 0.65)
	v.SetDefault("resolver.search_limit", 10)
	v.SetDefault("resolver.wait_timeout", "30s")
	v.SetDefault("resolver.poll_interval", "500ms")
	v.SetDefault("resolver.ref_prefix", "")
}

// NewConfigFromViper unmarshals and validates a fully loaded viper instance.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Sensitive values come from the environment, never the config file.
	v.BindEnv("embedding.api_key", "ARIADNE_EMBEDDING_API_KEY")
	v.BindEnv("database.url", "ARIADNE_DATABASE_URL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.ResolverCfg.LookThreshold < 0 || c.ResolverCfg.LookThreshold > 1 {
		return fmt.Errorf("resolver.look_threshold must be in [0, 1], got %v", c.ResolverCfg.LookThreshold)
	}
	if c.ResolverCfg.ActThreshold < 0 || c.ResolverCfg.ActThreshold > 1 {
		return fmt.Errorf("resolver.act_threshold must be in [0, 1], got %v", c.ResolverCfg.ActThreshold)
	}
	if c.ResolverCfg.SearchLimit <= 0 {
		return fmt.Errorf("resolver.search_limit must be positive, got %d", c.ResolverCfg.SearchLimit)
	}
	if c.ResolverCfg.PollInterval <= 0 {
		return fmt.Errorf("resolver.poll_interval must be positive, got %v", c.ResolverCfg.PollInterval)
	}
	switch c.EmbeddingCfg.Provider {
	case "", "local":
	case "genai":
		if c.EmbeddingCfg.APIKey == "" {
			return fmt.Errorf("embedding.provider 'genai' requires ARIADNE_EMBEDDING_API_KEY")
		}
	default:
		return fmt.Errorf("unsupported embedding.provider %q", c.EmbeddingCfg.Provider)
	}
	if lvl := strings.ToLower(c.LoggerCfg.Level); lvl != "" {
		switch lvl {
		case "debug", "info", "warn", "error", "dpanic", "panic", "fatal":
		default:
			return fmt.Errorf("unsupported logger.level %q", c.LoggerCfg.Level)
		}
	}
	return nil
}
