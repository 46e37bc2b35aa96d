// ABOUTME: Configuration loading and parsing for agui-gateway
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete agui-gateway configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Agents  AgentsConfig  `yaml:"agents"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// AgentsConfig holds A2A backend targets and routing rules
type AgentsConfig struct {
	IdleTimeout time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	IdleTimeoutRaw string `yaml:"idle_timeout"`

	// DefaultTarget names the target used when no routing rule matches
	DefaultTarget string `yaml:"default_target"`

	Targets []TargetConfig `yaml:"targets"`
	Routes  []RouteConfig  `yaml:"routes"`
}

// TargetConfig identifies one A2A backend agent endpoint
type TargetConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	Path string `yaml:"path"`
}

// RouteConfig is one prefix routing rule, evaluated in listed order.
// When StripPrefix is set, the matched prefix (and one following
// separator) is removed from the forwarded text.
type RouteConfig struct {
	Prefix      string `yaml:"prefix"`
	Target      string `yaml:"target"`
	StripPrefix bool   `yaml:"strip_prefix"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig holds metrics endpoint configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// defaultIdleTimeout bounds the wait for the next backend event when the
// config does not set agents.idle_timeout.
const defaultIdleTimeout = 5 * time.Minute

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	if len(c.Agents.Targets) == 0 {
		return fmt.Errorf("agents.targets must list at least one target")
	}

	names := make(map[string]bool, len(c.Agents.Targets))
	for i, t := range c.Agents.Targets {
		if t.Name == "" {
			return fmt.Errorf("agents.targets[%d].name is required", i)
		}
		if t.URL == "" {
			return fmt.Errorf("agents.targets[%d].url is required", i)
		}
		if names[t.Name] {
			return fmt.Errorf("agents.targets has duplicate name %q", t.Name)
		}
		names[t.Name] = true
	}

	if c.Agents.DefaultTarget == "" {
		return fmt.Errorf("agents.default_target is required")
	}
	if !names[c.Agents.DefaultTarget] {
		return fmt.Errorf("agents.default_target %q is not a listed target", c.Agents.DefaultTarget)
	}

	for i, r := range c.Agents.Routes {
		if r.Prefix == "" {
			return fmt.Errorf("agents.routes[%d].prefix is required", i)
		}
		if !names[r.Target] {
			return fmt.Errorf("agents.routes[%d].target %q is not a listed target", i, r.Target)
		}
	}

	return nil
}

// Target returns the target configuration with the given name.
func (a *AgentsConfig) Target(name string) (TargetConfig, bool) {
	for _, t := range a.Targets {
		if t.Name == name {
			return t, true
		}
	}
	return TargetConfig{}, false
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	cfg.Agents.IdleTimeout = defaultIdleTimeout

	if cfg.Agents.IdleTimeoutRaw != "" {
		d, err := time.ParseDuration(cfg.Agents.IdleTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing idle_timeout %q: %w", cfg.Agents.IdleTimeoutRaw, err)
		}
		cfg.Agents.IdleTimeout = d
	}

	return nil
}
