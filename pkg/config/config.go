package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Database struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:regwatch.db?cache=shared&mode=rwc,description=Database connection string"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,description=Maximum number of open connections"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	} `yaml:"database" json:"database" jsonschema:"description=Database configuration"`

	Schedule struct {
		ScanInterval    int      `yaml:"scan_interval" json:"scan_interval" jsonschema:"default=30,description=Feed scan interval in minutes"`
		InterestQueries int      `yaml:"interest_queries" json:"interest_queries" jsonschema:"default=5,description=Number of top interest keywords fetched per scan"`
		BackfillQueries []string `yaml:"backfill_queries" json:"backfill_queries" jsonschema:"description=Extra search queries run on every scan"`
	} `yaml:"schedule" json:"schedule" jsonschema:"description=Scheduler configuration"`

	Feeds []Feed `yaml:"feeds" json:"feeds" jsonschema:"description=RSS feed sources"`

	Fetch struct {
		MaxAgeDays int           `yaml:"max_age_days" json:"max_age_days" jsonschema:"default=30,description=Skip feed entries older than this many days"`
		PerFeed    int           `yaml:"per_feed" json:"per_feed" jsonschema:"default=10,description=Maximum entries taken per feed"`
		Timeout    time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP timeout per feed"`
		UserAgent  string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=RegWatch/1.0,description=User agent for feed and page requests"`
	} `yaml:"fetch" json:"fetch" jsonschema:"description=Feed fetching configuration"`

	Dedup struct {
		Threshold  float64 `yaml:"threshold" json:"threshold" jsonschema:"default=0.65,minimum=0,maximum=1,description=Title similarity ratio above which stories merge"`
		WindowDays int     `yaml:"window_days" json:"window_days" jsonschema:"default=45,description=How many days of stored records each batch is compared against"`
	} `yaml:"dedup" json:"dedup" jsonschema:"description=Deduplication configuration"`

	Search struct {
		Domains      []string `yaml:"domains" json:"domains" jsonschema:"description=Allow-listed news domains for site-restricted search"`
		GovSite      string   `yaml:"gov_site" json:"gov_site" jsonschema:"default=.gov.sg,description=Government domain suffix always included in restrictions"`
		Ranker       string   `yaml:"ranker" json:"ranker" jsonschema:"default=keyword,description=Ranking backend name"`
		Jurisdiction string   `yaml:"jurisdiction" json:"jurisdiction" jsonschema:"default=Singapore,description=Jurisdiction name used to filter unrestricted results"`
	} `yaml:"search" json:"search" jsonschema:"description=Search configuration"`

	LLM LLMConfig `yaml:"llm" json:"llm" jsonschema:"description=LLM configuration for executive brief generation"`
}

// Feed names one configured RSS source
type Feed struct {
	Name string `yaml:"name" json:"name" jsonschema:"required,description=Source display name"`
	URL  string `yaml:"url" json:"url" jsonschema:"required,description=Feed URL"`
}

// LLMConfig holds LLM settings for brief generation. When disabled or
// unreachable the brief falls back to keyword synthesis.
type LLMConfig struct {
	Enabled     bool          `yaml:"enabled" json:"enabled" jsonschema:"default=false,description=Enable LLM-backed brief generation"`
	Endpoint    string        `yaml:"endpoint" json:"endpoint" jsonschema:"description=OpenAI-compatible API endpoint"`
	APIKey      string        `yaml:"api_key" json:"api_key" jsonschema:"description=API key (can use environment variable)"`
	Model       string        `yaml:"model" json:"model" jsonschema:"description=Model name (e.g. gpt-4o-mini or llama3)"`
	Temperature float64       `yaml:"temperature" json:"temperature" jsonschema:"default=0.3,description=Temperature for response generation"`
	MaxTokens   int           `yaml:"max_tokens" json:"max_tokens" jsonschema:"default=800,description=Maximum tokens in response"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Request timeout"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// set defaults for server
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}

	// set defaults for database
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "file:regwatch.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 3600
	}

	// set defaults for schedule
	if cfg.Schedule.ScanInterval == 0 {
		cfg.Schedule.ScanInterval = 30
	}
	if cfg.Schedule.InterestQueries == 0 {
		cfg.Schedule.InterestQueries = 5
	}

	// set defaults for fetching
	if cfg.Fetch.MaxAgeDays == 0 {
		cfg.Fetch.MaxAgeDays = 30
	}
	if cfg.Fetch.PerFeed == 0 {
		cfg.Fetch.PerFeed = 10
	}
	if cfg.Fetch.Timeout == 0 {
		cfg.Fetch.Timeout = 30 * time.Second
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = "RegWatch/1.0"
	}

	// set defaults for dedup
	if cfg.Dedup.Threshold == 0 {
		cfg.Dedup.Threshold = 0.65
	}
	if cfg.Dedup.WindowDays == 0 {
		cfg.Dedup.WindowDays = 45
	}

	// set defaults for search
	if cfg.Search.GovSite == "" {
		cfg.Search.GovSite = ".gov.sg"
	}
	if cfg.Search.Ranker == "" {
		cfg.Search.Ranker = "keyword"
	}
	if cfg.Search.Jurisdiction == "" {
		cfg.Search.Jurisdiction = "Singapore"
	}

	// set defaults for LLM
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.3
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 800
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 30 * time.Second
	}

	// validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	// validate server config
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}

	// validate feeds
	for i, f := range cfg.Feeds {
		if f.Name == "" {
			return fmt.Errorf("feeds[%d].name is required", i)
		}
		if f.URL == "" {
			return fmt.Errorf("feeds[%d].url is required", i)
		}
	}

	// validate dedup config
	if cfg.Dedup.Threshold <= 0 || cfg.Dedup.Threshold > 1 {
		return fmt.Errorf("dedup.threshold must be between 0 and 1")
	}
	if cfg.Dedup.WindowDays < 1 {
		return fmt.Errorf("dedup.window_days must be at least 1")
	}

	// validate LLM config, required only when enabled
	if cfg.LLM.Enabled {
		if cfg.LLM.Endpoint == "" {
			return fmt.Errorf("llm.endpoint is required when llm is enabled")
		}
		if cfg.LLM.Model == "" {
			return fmt.Errorf("llm.model is required when llm is enabled")
		}
		if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
			return fmt.Errorf("llm.temperature must be between 0 and 2")
		}
	}

	return nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetLLMConfig returns LLM configuration
func (c *Config) GetLLMConfig() LLMConfig {
	return c.LLM
}
