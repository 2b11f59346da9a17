// Package config loads cardsync settings from a YAML file, an optional .env
// file and CARDSYNC_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/h0rv/cardsync/internal/domain"
)

// ErrUnknownProject is returned when a project id is not configured.
var ErrUnknownProject = errors.New("unknown project")

// Config holds all cardsync configuration.
type Config struct {
	GitHub    GitHubConfig    `yaml:"github"`
	Projects  []ProjectConfig `yaml:"projects"`
	Store     StoreConfig     `yaml:"store"`
	Cache     CacheConfig     `yaml:"cache"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Sync      SyncConfig      `yaml:"sync"`
	Server    ServerConfig    `yaml:"server"`
}

// GitHubConfig points at the repository cards are synchronized with.
type GitHubConfig struct {
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`
	Token string `yaml:"token"` // optional, gh CLI and GITHUB_TOKEN are tried first

	IssueLabel  string `yaml:"issue_label"`
	ReviewLabel string `yaml:"review_label"`
	ReviewBase  string `yaml:"review_base"`
	ReviewHead  string `yaml:"review_head"` // "{project}" expands to the project short name

	DiscussionCategory string `yaml:"discussion_category"`
}

// ProjectConfig describes one playtesting project.
type ProjectConfig struct {
	ID    int    `yaml:"id"`
	Name  string `yaml:"name"`
	Short string `yaml:"short"`
}

// StoreConfig locates the local card table.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// CacheConfig enables the Redis row cache when URL is set.
type CacheConfig struct {
	URL string `yaml:"url"`
	TTL string `yaml:"ttl"`
}

// ArtifactsConfig selects how card images are resolved. Without an object
// store endpoint, URLs are derived from URLTemplate.
type ArtifactsConfig struct {
	URLTemplate string `yaml:"url_template"`

	Endpoint    string `yaml:"endpoint"`
	AccessKey   string `yaml:"access_key"`
	SecretKey   string `yaml:"secret_key"`
	Region      string `yaml:"region"`
	Secure      bool   `yaml:"secure"`
	Bucket      string `yaml:"bucket"`
	PublicURL   string `yaml:"public_url"`
	RendererURL string `yaml:"renderer_url"`
}

// SyncConfig tunes reconciliation batches.
type SyncConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// ServerConfig configures `cardsync serve`.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			IssueLabel:         "card",
			ReviewLabel:        "playtesting",
			ReviewBase:         "main",
			ReviewHead:         "playtesting/{project}",
			DiscussionCategory: "Playtesting",
		},
		Store: StoreConfig{
			Path: "data/cards.db",
		},
		Cache: CacheConfig{
			TTL: "10m",
		},
		Artifacts: ArtifactsConfig{
			URLTemplate: "https://cards.example.org/{project}/{code}-{version}.png",
			Region:      "us-east-1",
			Bucket:      "cards",
		},
		Sync: SyncConfig{
			Concurrency: 4,
		},
		Server: ServerConfig{
			Addr: ":8787",
		},
	}
}

// Load reads the YAML file at path, then .env from the working directory,
// then environment overrides. A missing config file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := loadDotenv(".env"); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()

	return cfg, nil
}

// loadDotenv sets variables from a .env file without overriding the ones
// already present in the environment.
func loadDotenv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	c.GitHub.Owner = getenv("CARDSYNC_GITHUB_OWNER", c.GitHub.Owner)
	c.GitHub.Repo = getenv("CARDSYNC_GITHUB_REPO", c.GitHub.Repo)
	c.GitHub.Token = getenv("CARDSYNC_GITHUB_TOKEN", c.GitHub.Token)

	c.Store.Path = getenv("CARDSYNC_DB", c.Store.Path)
	c.Cache.URL = getenv("CARDSYNC_REDIS_URL", c.Cache.URL)

	c.Artifacts.Endpoint = getenv("CARDSYNC_S3_ENDPOINT", c.Artifacts.Endpoint)
	c.Artifacts.AccessKey = getenv("CARDSYNC_S3_ACCESS_KEY", c.Artifacts.AccessKey)
	c.Artifacts.SecretKey = getenv("CARDSYNC_S3_SECRET_KEY", c.Artifacts.SecretKey)
	c.Artifacts.RendererURL = getenv("CARDSYNC_RENDERER_URL", c.Artifacts.RendererURL)

	c.Sync.Concurrency = getenvInt("CARDSYNC_CONCURRENCY", c.Sync.Concurrency)
	c.Server.Addr = getenv("CARDSYNC_ADDR", c.Server.Addr)
}

// Validate reports every missing or malformed setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.GitHub.Owner == "" || c.GitHub.Repo == "" {
		errs = append(errs, errors.New("github.owner and github.repo are required"))
	}
	if len(c.Projects) == 0 {
		errs = append(errs, errors.New("at least one project is required"))
	}
	seen := make(map[int]bool)
	for _, p := range c.Projects {
		if p.ID <= 0 {
			errs = append(errs, fmt.Errorf("project %q: id must be positive", p.Name))
		}
		if seen[p.ID] {
			errs = append(errs, fmt.Errorf("project %d: configured twice", p.ID))
		}
		seen[p.ID] = true
	}
	if c.Store.Path == "" {
		errs = append(errs, errors.New("store.path is required"))
	}
	if _, err := c.CacheTTL(); err != nil {
		errs = append(errs, err)
	}
	if c.Artifacts.Endpoint != "" && c.Artifacts.RendererURL == "" {
		errs = append(errs, errors.New("artifacts.renderer_url is required with an object store"))
	}
	if c.Artifacts.Endpoint == "" && c.Artifacts.URLTemplate == "" {
		errs = append(errs, errors.New("artifacts.url_template is required without an object store"))
	}
	if c.Sync.Concurrency < 0 {
		errs = append(errs, errors.New("sync.concurrency must not be negative"))
	}
	return errors.Join(errs...)
}

// CacheTTL parses the cache TTL. Zero when unset.
func (c *Config) CacheTTL() (time.Duration, error) {
	if c.Cache.TTL == "" {
		return 0, nil
	}
	ttl, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 0, fmt.Errorf("cache.ttl: %w", err)
	}
	return ttl, nil
}

// Project returns the configured project with the given id.
func (c *Config) Project(id int) (domain.Project, error) {
	for _, p := range c.Projects {
		if p.ID == id {
			return p.domain(), nil
		}
	}
	return domain.Project{}, fmt.Errorf("%w: %d", ErrUnknownProject, id)
}

// DomainProjects returns every configured project.
func (c *Config) DomainProjects() []domain.Project {
	out := make([]domain.Project, 0, len(c.Projects))
	for _, p := range c.Projects {
		out = append(out, p.domain())
	}
	return out
}

func (p ProjectConfig) domain() domain.Project {
	return domain.Project{ID: p.ID, Name: p.Name, Short: p.Short}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
