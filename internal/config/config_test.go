// ABOUTME: Tests for configuration loading, expansion, and validation
// ABOUTME: Uses temp-dir YAML fixtures per test case

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const validConfig = `
server:
  http_addr: ":8080"
agents:
  idle_timeout: 30s
  default_target: general
  targets:
    - name: general
      url: http://localhost:9000
      path: /a2a
    - name: research
      url: http://localhost:9001
  routes:
    - prefix: "research:"
      target: research
      strip_prefix: true
auth:
  jwt_secret: shh
logging:
  level: debug
  format: json
metrics:
  enabled: true
  path: /metrics
`

func TestLoad_ValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, 30*time.Second, cfg.Agents.IdleTimeout)
	assert.Equal(t, "general", cfg.Agents.DefaultTarget)
	require.Len(t, cfg.Agents.Targets, 2)
	assert.Equal(t, "/a2a", cfg.Agents.Targets[0].Path)
	require.Len(t, cfg.Agents.Routes, 1)
	assert.True(t, cfg.Agents.Routes[0].StripPrefix)
	assert.Equal(t, "shh", cfg.Auth.JWTSecret)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_DefaultIdleTimeout(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  http_addr: ":8080"
agents:
  default_target: main
  targets:
    - name: main
      url: http://localhost:9000
`))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.Agents.IdleTimeout)
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_AGENT_URL", "http://agent.internal:9000")
	t.Setenv("TEST_JWT_SECRET", "from-env")

	cfg, err := Load(writeConfig(t, `
server:
  http_addr: ":8080"
agents:
  default_target: main
  targets:
    - name: main
      url: ${TEST_AGENT_URL}
auth:
  jwt_secret: ${TEST_JWT_SECRET}
`))
	require.NoError(t, err)
	assert.Equal(t, "http://agent.internal:9000", cfg.Agents.Targets[0].URL)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
}

func TestLoad_UnsetEnvVarBecomesEmpty(t *testing.T) {
	s := expandEnvVars("url: ${DEFINITELY_NOT_SET_ANYWHERE}")
	assert.Equal(t, "url: ", s)
}

func TestLoad_InvalidDuration(t *testing.T) {
	_, err := Load(writeConfig(t, `
server:
  http_addr: ":8080"
agents:
  idle_timeout: not-a-duration
  default_target: main
  targets:
    - name: main
      url: http://localhost:9000
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "idle_timeout")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server: ServerConfig{HTTPAddr: ":8080"},
			Agents: AgentsConfig{
				DefaultTarget: "main",
				Targets: []TargetConfig{
					{Name: "main", URL: "http://localhost:9000"},
				},
			},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("missing http_addr", func(t *testing.T) {
		cfg := base()
		cfg.Server.HTTPAddr = ""
		assert.ErrorContains(t, cfg.Validate(), "http_addr")
	})

	t.Run("no targets", func(t *testing.T) {
		cfg := base()
		cfg.Agents.Targets = nil
		assert.ErrorContains(t, cfg.Validate(), "at least one target")
	})

	t.Run("target missing name", func(t *testing.T) {
		cfg := base()
		cfg.Agents.Targets[0].Name = ""
		assert.ErrorContains(t, cfg.Validate(), "name is required")
	})

	t.Run("target missing url", func(t *testing.T) {
		cfg := base()
		cfg.Agents.Targets[0].URL = ""
		assert.ErrorContains(t, cfg.Validate(), "url is required")
	})

	t.Run("duplicate target names", func(t *testing.T) {
		cfg := base()
		cfg.Agents.Targets = append(cfg.Agents.Targets, TargetConfig{Name: "main", URL: "http://other"})
		assert.ErrorContains(t, cfg.Validate(), "duplicate name")
	})

	t.Run("missing default target", func(t *testing.T) {
		cfg := base()
		cfg.Agents.DefaultTarget = ""
		assert.ErrorContains(t, cfg.Validate(), "default_target is required")
	})

	t.Run("default target not listed", func(t *testing.T) {
		cfg := base()
		cfg.Agents.DefaultTarget = "ghost"
		assert.ErrorContains(t, cfg.Validate(), "not a listed target")
	})

	t.Run("route with unknown target", func(t *testing.T) {
		cfg := base()
		cfg.Agents.Routes = []RouteConfig{{Prefix: "x:", Target: "ghost"}}
		assert.ErrorContains(t, cfg.Validate(), "not a listed target")
	})

	t.Run("route missing prefix", func(t *testing.T) {
		cfg := base()
		cfg.Agents.Routes = []RouteConfig{{Prefix: "", Target: "main"}}
		assert.ErrorContains(t, cfg.Validate(), "prefix is required")
	})
}

func TestAgentsConfig_Target(t *testing.T) {
	agents := AgentsConfig{Targets: []TargetConfig{
		{Name: "a", URL: "http://a"},
		{Name: "b", URL: "http://b"},
	}}

	tc, ok := agents.Target("b")
	require.True(t, ok)
	assert.Equal(t, "http://b", tc.URL)

	_, ok = agents.Target("c")
	assert.False(t, ok)
}
