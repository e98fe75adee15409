package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv   = "SPONSOR_FINDER_CONFIG"
	apiKeyEnv       = "OPENROUTER_API_KEY"
	modelEnv        = "OPENROUTER_MODEL"
	feedURLEnv      = "SPONSOR_FEED_URL"
	logLevelEnv     = "LOG_LEVEL"
	defaultEnvFile  = ".env"
	defaultShowName = "LINUX Unplugged"
)

// Directory kinds understood by the sponsor directory registry.
const (
	DirectoryStatic = "static"
	DirectoryYAML   = "yaml"
	DirectorySQLite = "sqlite"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig       `yaml:"logging"`
	Show      ShowConfig          `yaml:"show"`
	Feed      FeedConfig          `yaml:"feed"`
	Reasoning ReasoningConfig     `yaml:"reasoning"`
	Directory DirectoryConfig     `yaml:"directory"`
	Discovery DiscoveryConfig     `yaml:"discovery"`
	Fatigue   FatigueConfig       `yaml:"fatigue"`
	Report    ReportConfig        `yaml:"report"`
	Conflicts []ConflictConfig    `yaml:"conflicts"`
	Adjacency map[string][]string `yaml:"adjacency"`
}

// LoggingConfig sets the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ShowConfig names the show the reports are written for.
type ShowConfig struct {
	Name string `yaml:"name"`
}

// FeedConfig points at the podcast RSS feed.
type FeedConfig struct {
	URL       string        `yaml:"url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"userAgent"`
}

// ReasoningConfig defines how to contact the OpenRouter chat completions API.
type ReasoningConfig struct {
	Endpoint      string        `yaml:"endpoint"`
	Model         string        `yaml:"model"`
	APIKey        string        `yaml:"apiKey"`
	Referer       string        `yaml:"referer"`
	AppTitle      string        `yaml:"appTitle"`
	MaxTokens     int           `yaml:"maxTokens"`
	Temperature   float64       `yaml:"temperature"`
	Timeout       time.Duration `yaml:"timeout"`
	ContentBudget int           `yaml:"contentBudget"`
}

// DirectoryConfig selects the sponsor directory backend.
// Path is used by the yaml kind, DSN by the sqlite kind.
type DirectoryConfig struct {
	Kind string `yaml:"kind"`
	Path string `yaml:"path"`
	DSN  string `yaml:"dsn"`
}

// DiscoveryConfig carries the defaults applied to records that omit optional fields.
type DiscoveryConfig struct {
	MaxResults      int      `yaml:"maxResults"`
	PricingGuidance string   `yaml:"pricingGuidance"`
	ProofSnippets   []string `yaml:"proofSnippets"`
	Objections      []string `yaml:"objections"`
	// AdjacentPodcasts is used when neither the record nor the tracker names any.
	AdjacentPodcasts []string `yaml:"adjacentPodcasts"`
}

// FatigueConfig tunes the category fatigue detector.
type FatigueConfig struct {
	WindowDays int `yaml:"windowDays"`
	Threshold  int `yaml:"threshold"`
}

// ReportConfig controls where reports go and the weekly outreach window.
type ReportConfig struct {
	OutputDir          string `yaml:"outputDir"`
	OutreachWindowDays int    `yaml:"outreachWindowDays"`
}

// ConflictConfig seeds one do-not-contact rule. ExpiryDays 0 means no expiry.
type ConflictConfig struct {
	Domain     string `yaml:"domain"`
	Reason     string `yaml:"reason"`
	ExpiryDays int    `yaml:"expiryDays"`
}

// LoadEnvFile exports variables from a .env file into the process environment
// without overriding variables that are already set. An empty path means ".env";
// a missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = defaultEnvFile
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads YAML configuration (if present) and applies environment
// overrides. An explicit path wins over SPONSOR_FINDER_CONFIG.
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			var zeros explicitValues
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else if err := yaml.Unmarshal(raw, &zeros); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
				zeros.apply(&cfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// explicitValues captures settings whose zero value is meaningful, so that a
// file may set them to zero.
type explicitValues struct {
	Reasoning struct {
		Temperature *float64 `yaml:"temperature"`
	} `yaml:"reasoning"`
	Fatigue struct {
		Threshold *int `yaml:"threshold"`
	} `yaml:"fatigue"`
}

func (v explicitValues) apply(c *Config) {
	if v.Reasoning.Temperature != nil {
		c.Reasoning.Temperature = *v.Reasoning.Temperature
	}
	if v.Fatigue.Threshold != nil {
		c.Fatigue.Threshold = *v.Fatigue.Threshold
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(apiKeyEnv); v != "" {
		c.Reasoning.APIKey = v
	}

	if v := os.Getenv(modelEnv); v != "" {
		c.Reasoning.Model = v
	}

	if v := os.Getenv(feedURLEnv); v != "" {
		c.Feed.URL = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Show.Name != "" {
		base.Show.Name = override.Show.Name
	}

	if override.Feed.URL != "" {
		base.Feed.URL = override.Feed.URL
	}
	if override.Feed.Timeout > 0 {
		base.Feed.Timeout = override.Feed.Timeout
	}
	if override.Feed.UserAgent != "" {
		base.Feed.UserAgent = override.Feed.UserAgent
	}

	if override.Reasoning.Endpoint != "" {
		base.Reasoning.Endpoint = override.Reasoning.Endpoint
	}
	if override.Reasoning.Model != "" {
		base.Reasoning.Model = override.Reasoning.Model
	}
	if override.Reasoning.APIKey != "" {
		base.Reasoning.APIKey = override.Reasoning.APIKey
	}
	if override.Reasoning.Referer != "" {
		base.Reasoning.Referer = override.Reasoning.Referer
	}
	if override.Reasoning.AppTitle != "" {
		base.Reasoning.AppTitle = override.Reasoning.AppTitle
	}
	if override.Reasoning.MaxTokens > 0 {
		base.Reasoning.MaxTokens = override.Reasoning.MaxTokens
	}
	if override.Reasoning.Temperature > 0 {
		base.Reasoning.Temperature = override.Reasoning.Temperature
	}
	if override.Reasoning.Timeout > 0 {
		base.Reasoning.Timeout = override.Reasoning.Timeout
	}
	if override.Reasoning.ContentBudget > 0 {
		base.Reasoning.ContentBudget = override.Reasoning.ContentBudget
	}

	if override.Directory.Kind != "" {
		base.Directory = override.Directory
	}

	if override.Discovery.MaxResults > 0 {
		base.Discovery.MaxResults = override.Discovery.MaxResults
	}
	if override.Discovery.PricingGuidance != "" {
		base.Discovery.PricingGuidance = override.Discovery.PricingGuidance
	}
	if len(override.Discovery.ProofSnippets) > 0 {
		base.Discovery.ProofSnippets = override.Discovery.ProofSnippets
	}
	if len(override.Discovery.Objections) > 0 {
		base.Discovery.Objections = override.Discovery.Objections
	}
	if len(override.Discovery.AdjacentPodcasts) > 0 {
		base.Discovery.AdjacentPodcasts = override.Discovery.AdjacentPodcasts
	}

	if override.Fatigue.WindowDays > 0 {
		base.Fatigue.WindowDays = override.Fatigue.WindowDays
	}
	if override.Fatigue.Threshold > 0 {
		base.Fatigue.Threshold = override.Fatigue.Threshold
	}

	if override.Report.OutputDir != "" {
		base.Report.OutputDir = override.Report.OutputDir
	}
	if override.Report.OutreachWindowDays > 0 {
		base.Report.OutreachWindowDays = override.Report.OutreachWindowDays
	}

	if len(override.Conflicts) > 0 {
		base.Conflicts = override.Conflicts
	}
	if len(override.Adjacency) > 0 {
		base.Adjacency = override.Adjacency
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Show:    ShowConfig{Name: defaultShowName},
		Feed: FeedConfig{
			URL:       "https://feeds.jupiterbroadcasting.com/lup",
			Timeout:   30 * time.Second,
			UserAgent: "SponsorFinder/1.0",
		},
		Reasoning: ReasoningConfig{
			Endpoint:      "https://openrouter.ai/api/v1",
			Model:         "anthropic/claude-3-haiku",
			Referer:       "https://linuxunplugged.com",
			AppTitle:      "LINUX Unplugged Sponsor Finder",
			MaxTokens:     1500,
			Temperature:   0.2,
			Timeout:       60 * time.Second,
			ContentBudget: 6000,
		},
		Directory: DirectoryConfig{Kind: DirectoryStatic},
		Discovery: DiscoveryConfig{
			MaxResults:      10,
			PricingGuidance: "$5,000-15,000 per episode based on similar tech podcasts",
			ProofSnippets: []string{
				"We're running this in production and it works great",
				"The community really loves this solution",
			},
			Objections: []string{
				"Budget constraints - Frame as long-term partnership investment",
				"Already working with competitors - Highlight unique value proposition",
			},
			AdjacentPodcasts: []string{"Coder Radio", "Self-Hosted", "LINUX Unplugged"},
		},
		Fatigue: FatigueConfig{WindowDays: 28, Threshold: 2},
		Report:  ReportConfig{OutputDir: "reports", OutreachWindowDays: 7},
	}
}
