package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all non-secret configuration for a run.
// Credentials are loaded separately by the auth package.
type Config struct {
	// Reddit API endpoints and client identity
	Reddit RedditConfig `yaml:"reddit" json:"reddit"`

	// Instapaper API endpoint
	Instapaper InstapaperConfig `yaml:"instapaper" json:"instapaper"`

	// What to do with each saved item
	Processing ProcessingConfig `yaml:"processing" json:"processing"`

	// Client-side rate limiting for Reddit calls
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// HTTP client settings shared by both clients
	HTTP HTTPConfig `yaml:"http" json:"http"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// RedditConfig holds Reddit-specific configuration
type RedditConfig struct {
	UserAgent string `yaml:"user_agent" json:"user_agent"`
	AuthURL   string `yaml:"auth_url" json:"auth_url"`
	APIURL    string `yaml:"api_url" json:"api_url"`
	PageSize  int    `yaml:"page_size" json:"page_size"`
}

// InstapaperConfig holds Instapaper-specific configuration
type InstapaperConfig struct {
	APIURL string `yaml:"api_url" json:"api_url"`
}

// ProcessingConfig controls the saved-items loop
type ProcessingConfig struct {
	DryRun bool `yaml:"dry_run" json:"dry_run"`
	// Limit caps the number of saved items examined; 0 means all
	Limit int `yaml:"limit" json:"limit"`
	// Strict makes per-item failures produce a non-zero exit code
	Strict bool         `yaml:"strict" json:"strict"`
	Filter FilterConfig `yaml:"filter" json:"filter"`
}

// FilterConfig selects which saved items get forwarded
type FilterConfig struct {
	Subreddits     []string      `yaml:"subreddits" json:"subreddits"`
	MaxAge         time.Duration `yaml:"max_age" json:"max_age"`
	MinAge         time.Duration `yaml:"min_age" json:"min_age"`
	SelfPost       *bool         `yaml:"self_post" json:"self_post"`
	RequireURL     bool          `yaml:"require_url" json:"require_url"`
	ExcludeDomains []string      `yaml:"exclude_domains" json:"exclude_domains"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
	BurstSize         int `yaml:"burst_size" json:"burst_size"`
}

// HTTPConfig holds HTTP client configuration
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	File   string `yaml:"file" json:"file"`
	Format string `yaml:"format" json:"format"` // auto, console, json
}

// DefaultExcludeDomains are hosts whose links are not worth sending to a read-later service
var DefaultExcludeDomains = []string{
	"i.redd.it",
	"imgur.com",
	"reddit.com",
	"v.redd.it",
	"www.reddit.com",
	"www.youtube.com",
	"youtu.be",
	"youtube.com",
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	linkPosts := false
	return &Config{
		Reddit: RedditConfig{
			UserAgent: "RedditActions/0.1",
			AuthURL:   "https://www.reddit.com",
			APIURL:    "https://oauth.reddit.com",
			PageSize:  100,
		},
		Instapaper: InstapaperConfig{
			APIURL: "https://www.instapaper.com",
		},
		Processing: ProcessingConfig{
			DryRun: false,
			Limit:  0,
			Strict: false,
			Filter: FilterConfig{
				SelfPost:       &linkPosts,
				RequireURL:     true,
				ExcludeDomains: append([]string(nil), DefaultExcludeDomains...),
			},
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
			BurstSize:         5,
		},
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			File:   "",
			Format: "auto",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if ua := os.Getenv("REDDIT_USER_AGENT"); ua != "" {
		c.Reddit.UserAgent = ua
	}

	if dryRun := os.Getenv("REDDITACTIONS_DRY_RUN"); dryRun != "" {
		v, err := strconv.ParseBool(dryRun)
		if err != nil {
			errs = append(errs, fmt.Errorf("REDDITACTIONS_DRY_RUN: %w", err))
		} else {
			c.Processing.DryRun = v
		}
	}

	if limit := os.Getenv("REDDITACTIONS_LIMIT"); limit != "" {
		v, err := strconv.Atoi(limit)
		if err != nil {
			errs = append(errs, fmt.Errorf("REDDITACTIONS_LIMIT: %w", err))
		} else {
			c.Processing.Limit = v
		}
	}

	if subs := os.Getenv("REDDITACTIONS_SUBREDDITS"); subs != "" {
		c.Processing.Filter.Subreddits = splitList(subs)
	}

	if rpm := os.Getenv("REDDITACTIONS_REQUESTS_PER_MINUTE"); rpm != "" {
		v, err := strconv.Atoi(rpm)
		if err != nil {
			errs = append(errs, fmt.Errorf("REDDITACTIONS_REQUESTS_PER_MINUTE: %w", err))
		} else if v > 0 {
			c.RateLimit.RequestsPerMinute = v
		}
	}

	if logLevel := os.Getenv("REDDITACTIONS_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".redditactions.yaml",
		".redditactions.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "redditactions", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "redditactions", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Reddit.UserAgent == "" {
		errs = append(errs, errors.New("reddit user agent is required"))
	}
	if c.Reddit.AuthURL == "" || c.Reddit.APIURL == "" {
		errs = append(errs, errors.New("reddit auth and api URLs are required"))
	}
	if c.Reddit.PageSize < 1 || c.Reddit.PageSize > 100 {
		errs = append(errs, errors.New("reddit page size must be between 1 and 100"))
	}
	if c.Instapaper.APIURL == "" {
		errs = append(errs, errors.New("instapaper api URL is required"))
	}

	if c.Processing.Limit < 0 {
		errs = append(errs, errors.New("limit cannot be negative"))
	}
	f := c.Processing.Filter
	if f.MaxAge < 0 || f.MinAge < 0 {
		errs = append(errs, errors.New("filter ages cannot be negative"))
	}
	if f.MaxAge > 0 && f.MinAge > f.MaxAge {
		errs = append(errs, errors.New("filter min_age cannot exceed max_age"))
	}

	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}
	if c.RateLimit.BurstSize <= 0 {
		errs = append(errs, errors.New("burst size must be positive"))
	}

	if c.HTTP.Timeout <= 0 {
		errs = append(errs, errors.New("http timeout must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}
	validFormats := map[string]bool{"auto": true, "console": true, "json": true, "": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, errors.New("invalid log format"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in the map are applied.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if dryRun, ok := flags["dry-run"].(bool); ok {
		c.Processing.DryRun = dryRun
	}
	if limit, ok := flags["limit"].(int); ok && limit >= 0 {
		c.Processing.Limit = limit
	}
	if strict, ok := flags["strict"].(bool); ok {
		c.Processing.Strict = strict
	}
	if subs, ok := flags["subreddits"].([]string); ok && len(subs) > 0 {
		c.Processing.Filter.Subreddits = subs
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".redditactions.env"))
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	LoadDotEnv()

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
