// Package config provides configuration loading and management for the
// belhisfirm tool.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete belhisfirm configuration
type Config struct {
	Endpoint  EndpointConfig  `yaml:"endpoint"`
	Templates TemplatesConfig `yaml:"templates"`
	Database  DatabaseConfig  `yaml:"database"`
	Seeder    SeederConfig    `yaml:"seeder"`
}

// EndpointConfig configures the SPARQL endpoints
type EndpointConfig struct {
	// URL is the Ontop SPARQL endpoint queried directly
	URL string `yaml:"url"`
	// CacheURL is the same endpoint behind the Varnish cache
	CacheURL string `yaml:"cache_url"`
	// Method is POST (form-encoded) or GET
	Method string `yaml:"method"`
	// Timeout bounds a single HTTP request
	Timeout time.Duration `yaml:"timeout"`
	// MaxAttempts is the number of tries for transient failures
	MaxAttempts int `yaml:"max_attempts"`
}

// TemplatesConfig locates template override files
type TemplatesConfig struct {
	// Dir holds .rq files layered over the built-in templates (empty = none)
	Dir string `yaml:"dir"`
	// Pattern selects files under Dir
	Pattern string `yaml:"pattern"`
}

// DatabaseConfig configures the PostgreSQL database behind Ontop
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// SeederConfig holds defaults of the seed command
type SeederConfig struct {
	Companies               int    `yaml:"companies"`
	Persons                 int    `yaml:"persons"`
	BatchSize               int    `yaml:"batch_size"`
	RelationshipsPerCompany int    `yaml:"relationships_per_company"`
	Seed                    uint64 `yaml:"seed"`
}

// DefaultConfig returns a Config matching the docker compose setup
func DefaultConfig() *Config {
	return &Config{
		Endpoint: EndpointConfig{
			URL:         "http://localhost:8080/sparql",
			CacheURL:    "http://localhost:8082/sparql",
			Method:      "POST",
			Timeout:     30 * time.Second,
			MaxAttempts: 3,
		},
		Templates: TemplatesConfig{
			Dir:     "", // Built-in templates only
			Pattern: "**/*.rq",
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			Name:     "belhisfirm",
			User:     "belhisfirm_user",
			Password: "changeme_secure_password",
			SSLMode:  "disable",
		},
		Seeder: SeederConfig{
			Companies:               1000,
			Persons:                 2000,
			BatchSize:               1000,
			RelationshipsPerCompany: 3,
		},
	}
}

// DSN returns the libpq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode)
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Endpoint.URL == "" {
		return fmt.Errorf("endpoint.url is required")
	}
	for field, raw := range map[string]string{"endpoint.url": c.Endpoint.URL, "endpoint.cache_url": c.Endpoint.CacheURL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", field, raw)
		}
	}
	switch strings.ToUpper(c.Endpoint.Method) {
	case "POST", "GET":
	default:
		return fmt.Errorf("endpoint.method must be POST or GET, got %q", c.Endpoint.Method)
	}
	if c.Endpoint.Timeout <= 0 {
		return fmt.Errorf("endpoint.timeout must be positive")
	}
	if c.Endpoint.MaxAttempts < 1 {
		return fmt.Errorf("endpoint.max_attempts must be at least 1")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("database.port must be between 1 and 65535")
	}
	if c.Seeder.Companies < 0 || c.Seeder.Persons < 0 {
		return fmt.Errorf("seeder.companies and seeder.persons must not be negative")
	}
	if c.Seeder.BatchSize < 1 {
		return fmt.Errorf("seeder.batch_size must be at least 1")
	}
	if c.Seeder.RelationshipsPerCompany < 1 {
		return fmt.Errorf("seeder.relationships_per_company must be at least 1")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file over the defaults. A
// relative templates.dir is resolved against the directory of the file.
func LoadFromFile(path string) (*Config, error) {
	layer, err := readLayer(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	config.Merge(layer)
	return config, nil
}

// readLayer reads a file into an otherwise zero Config so that Merge only
// applies the keys the file sets.
func readLayer(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var layer Config
	if err := yaml.Unmarshal(data, &layer); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if dir := layer.Templates.Dir; dir != "" && !filepath.IsAbs(dir) {
		layer.Templates.Dir = filepath.Join(filepath.Dir(path), dir)
	}

	return &layer, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Endpoint
	if other.Endpoint.URL != "" {
		c.Endpoint.URL = other.Endpoint.URL
	}
	if other.Endpoint.CacheURL != "" {
		c.Endpoint.CacheURL = other.Endpoint.CacheURL
	}
	if other.Endpoint.Method != "" {
		c.Endpoint.Method = other.Endpoint.Method
	}
	if other.Endpoint.Timeout != 0 {
		c.Endpoint.Timeout = other.Endpoint.Timeout
	}
	if other.Endpoint.MaxAttempts != 0 {
		c.Endpoint.MaxAttempts = other.Endpoint.MaxAttempts
	}

	// Templates
	if other.Templates.Dir != "" {
		c.Templates.Dir = other.Templates.Dir
	}
	if other.Templates.Pattern != "" {
		c.Templates.Pattern = other.Templates.Pattern
	}

	// Database
	if other.Database.Host != "" {
		c.Database.Host = other.Database.Host
	}
	if other.Database.Port != 0 {
		c.Database.Port = other.Database.Port
	}
	if other.Database.Name != "" {
		c.Database.Name = other.Database.Name
	}
	if other.Database.User != "" {
		c.Database.User = other.Database.User
	}
	if other.Database.Password != "" {
		c.Database.Password = other.Database.Password
	}
	if other.Database.SSLMode != "" {
		c.Database.SSLMode = other.Database.SSLMode
	}

	// Seeder
	if other.Seeder.Companies != 0 {
		c.Seeder.Companies = other.Seeder.Companies
	}
	if other.Seeder.Persons != 0 {
		c.Seeder.Persons = other.Seeder.Persons
	}
	if other.Seeder.BatchSize != 0 {
		c.Seeder.BatchSize = other.Seeder.BatchSize
	}
	if other.Seeder.RelationshipsPerCompany != 0 {
		c.Seeder.RelationshipsPerCompany = other.Seeder.RelationshipsPerCompany
	}
	if other.Seeder.Seed != 0 {
		c.Seeder.Seed = other.Seeder.Seed
	}
}

// Environment variables read by ApplyEnv.
const (
	EnvEndpoint      = "SPARQL_ENDPOINT"
	EnvCacheEndpoint = "SPARQL_CACHE_ENDPOINT"
	EnvDBHost        = "DB_HOST"
	EnvDBPort        = "DB_PORT"
	EnvDBName        = "DB_NAME"
	EnvDBUser        = "DB_USER"
	EnvDBPassword    = "DB_PASSWORD"
)

// ApplyEnv overrides settings from environment variables. Empty values are
// ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := []struct {
		key string
		dst *string
	}{
		{EnvEndpoint, &c.Endpoint.URL},
		{EnvCacheEndpoint, &c.Endpoint.CacheURL},
		{EnvDBHost, &c.Database.Host},
		{EnvDBName, &c.Database.Name},
		{EnvDBUser, &c.Database.User},
		{EnvDBPassword, &c.Database.Password},
	}
	for _, s := range strs {
		if v, ok := lookup(s.key); ok && v != "" {
			*s.dst = v
		}
	}

	if v, ok := lookup(EnvDBPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid port %q", EnvDBPort, v)
		}
		c.Database.Port = port
	}
	return nil
}
