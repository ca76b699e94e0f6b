// ABOUTME: Tests for configuration loading, defaults, and validation
// ABOUTME: Exercises env expansion and duration parsing against temp files

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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: ":9000"
database:
  path: "/tmp/notes.db"
llm:
  host: "http://model-host:11434"
  model: "mistral"
  chat_timeout: "45s"
sessions:
  ttl: "12h"
  sweep_interval: "30m"
logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.HTTPAddr)
	assert.Equal(t, "/tmp/notes.db", cfg.Database.Path)
	assert.Equal(t, "http://model-host:11434", cfg.LLM.Host)
	assert.Equal(t, "mistral", cfg.LLM.Model)
	assert.Equal(t, 45*time.Second, cfg.LLM.ChatTimeout)
	assert.Equal(t, 12*time.Hour, cfg.Sessions.TTL)
	assert.Equal(t, 30*time.Minute, cfg.Sessions.SweepInterval)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeConfig(t, `
database:
  path: "notes.db"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultHTTPAddr, cfg.Server.HTTPAddr)
	assert.Equal(t, DefaultLLMHost, cfg.LLM.Host)
	assert.Equal(t, DefaultLLMModel, cfg.LLM.Model)
	assert.Equal(t, DefaultChatTimeout, cfg.LLM.ChatTimeout)
	assert.Equal(t, DefaultSessionTTL, cfg.Sessions.TTL)
	assert.Equal(t, DefaultSweepInterval, cfg.Sessions.SweepInterval)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_LLM_HOST", "http://expanded:11434")

	path := writeConfig(t, `
llm:
  host: "${TEST_LLM_HOST}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://expanded:11434", cfg.LLM.Host)
}

func TestLoad_UnsetEnvVarBecomesEmpty(t *testing.T) {
	path := writeConfig(t, `
llm:
  host: "${DEFINITELY_NOT_SET_ANYWHERE}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	// an empty expansion falls through to the default
	assert.Equal(t, DefaultLLMHost, cfg.LLM.Host)
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, `
llm:
  chat_timeout: "soon"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat_timeout")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not: a: mapping")
	_, err := Load(path)
	require.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
}

func TestValidate_NegativeTimeout(t *testing.T) {
	cfg := Default()
	cfg.LLM.ChatTimeout = -time.Second
	assert.Error(t, cfg.Validate())
}

func TestValidate_ZeroSweepInterval(t *testing.T) {
	cfg := Default()
	cfg.Sessions.SweepInterval = 0
	assert.Error(t, cfg.Validate())
}
