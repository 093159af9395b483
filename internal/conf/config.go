// Package conf loads and validates application settings via viper.
package conf

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/lawglot/lawglot-go/internal/errors"
)

// Settings is the root configuration struct, populated from config.yaml,
// environment variables and command line flags.
type Settings struct {
	Debug bool // true to enable debug log output

	Main struct {
		Name string // application name used in logs
		Log  LogConfig
	}

	LawAPI    LawAPISettings
	Crawl     CrawlSettings
	Resolve   ResolveSettings
	Output    OutputSettings
	WebServer struct {
		Port string
	}
}

// LogConfig defines the log rotation settings shared by all file loggers.
type LogConfig struct {
	Enabled    bool
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// LawAPISettings configures the law.go.kr DRF client.
type LawAPISettings struct {
	OC         string        // API key (법령정보 공동활용 OC), from env only
	SearchURL  string        // lawSearch.do base URL
	ServiceURL string        // lawService.do base URL
	Timeout    time.Duration // per-call HTTP timeout
	Sleep      time.Duration // courtesy delay between calls
	MaxRetries int           // retry budget for transient failures
	RetryDelay time.Duration // base backoff, multiplied by attempt number
	CacheTTL   time.Duration // TTL for cached upstream responses
}

// CrawlSettings configures the offline ingestion pipeline.
type CrawlSettings struct {
	Display    int // rows per page for paged endpoints (upstream max 100)
	FlushEvery int // relation seeds per committed batch
	MaxTerms   int // process only the first N seeds, 0 = all
}

// ResolveSettings bounds the resolution fan-out and response size.
type ResolveSettings struct {
	TopK            int           // tokens considered per request
	DailyPerKeyword int           // daily-term candidates per token
	LegalPerDaily   int           // legal-term candidates per daily term
	ArticlePreview  int           // article projections attached per legal term
	SummaryLimit    int           // max summary length in runes
	Budget          time.Duration // overall per-request deadline
	Concurrency     int           // max concurrent token expansions
}

// OutputSettings selects the relational store backend.
type OutputSettings struct {
	SQLite struct {
		Enabled bool
		Path    string
	}
	MySQL struct {
		Enabled  bool
		Username string
		Password string
		Database string
		Host     string
		Port     string
	}
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into Settings.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	// The API key never lives in the config file.
	settings.LawAPI.OC = apiKeyFromEnv()

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/lawglot")

	viper.SetEnvPrefix("lawglot")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// No config file is fine, defaults plus env carry the day
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}
	return nil
}

// apiKeyFromEnv resolves the upstream API key, accepting the legacy
// variable names used by earlier collection scripts.
func apiKeyFromEnv() string {
	for _, key := range []string{"LAWGO_OC", "LAWGO_ACCESS_KEY", "ACCESS_KEY"} {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			return val
		}
	}
	return ""
}

// RequireAPIKey fails fast when no upstream key is configured. Crawl and
// serve commands call this before touching the network.
func RequireAPIKey(settings *Settings) error {
	if settings.LawAPI.OC == "" {
		return errors.Newf("upstream API key missing: set the LAWGO_OC environment variable").
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return nil
}

// ValidateSettings checks numeric bounds that would otherwise surface as
// confusing runtime behavior.
func ValidateSettings(settings *Settings) error {
	if settings.Crawl.Display < 1 || settings.Crawl.Display > 100 {
		return errors.Newf("crawl.display must be between 1 and 100, got %d", settings.Crawl.Display).
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}
	if settings.Crawl.FlushEvery < 1 {
		return errors.Newf("crawl.flushevery must be positive, got %d", settings.Crawl.FlushEvery).
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}
	if settings.Resolve.ArticlePreview < 0 {
		return errors.Newf("resolve.articlepreview must not be negative, got %d", settings.Resolve.ArticlePreview).
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}
	if !settings.Output.SQLite.Enabled && !settings.Output.MySQL.Enabled {
		return errors.Newf("no output database enabled, enable output.sqlite or output.mysql").
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}
	return nil
}

// Setting returns the current settings instance, loading it on first use.
func Setting() *Settings {
	settingsMutex.RLock()
	if settingsInstance != nil {
		defer settingsMutex.RUnlock()
		return settingsInstance
	}
	settingsMutex.RUnlock()

	if _, err := Load(); err != nil {
		return nil
	}
	return settingsInstance
}

// GetSettings returns the current settings instance without loading.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}
