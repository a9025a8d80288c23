package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"STUDYHALL_BACKEND_URL", "STUDYHALL_BACKEND_TOKEN", "STUDYHALL_BACKEND_TIMEOUT",
	"STUDYHALL_USERNAME", "STUDYHALL_CLASS", "STUDYHALL_DB",
	"STUDYHALL_LOG_FILE", "STUDYHALL_LOG_LEVEL",
	"STUDYHALL_KAFKA_BROKERS", "STUDYHALL_KAFKA_TOPIC",
	"STUDYHALL_LLM_PROVIDER", "STUDYHALL_LLM_MODEL",
	"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
}

// isolate clears every variable Load reads and points the config and data
// dirs at a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, k := range envKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(Options{EnvFile: filepath.Join(dir, "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Nil(t, cfg.LLM)
	assert.Error(t, cfg.Validate())
}

func TestLoad_YAMLThenEnvOverride(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "studyhall.yaml")
	writeFile(t, path, `
backend:
  url: https://api.example.test
  token: yaml-token
  timeout: 5s
user:
  username: ada
  class: JSS2
kafka:
  brokers: [k1:9092]
log:
  level: debug
`)
	t.Setenv("STUDYHALL_BACKEND_TOKEN", "env-token")
	t.Setenv("STUDYHALL_KAFKA_BROKERS", "a:9092, b:9092,")

	cfg, err := Load(Options{ConfigFile: path, EnvFile: filepath.Join(dir, "none.env")})
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.test", cfg.Backend.URL)
	assert.Equal(t, "env-token", cfg.Backend.Token)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "ada", cfg.User.Username)
	assert.Equal(t, "JSS2", cfg.User.Class)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_DefaultConfigPathUsedWhenPresent(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config", "studyhall", "config.yaml"), "user:\n  username: bola\n")

	cfg, err := Load(Options{EnvFile: filepath.Join(dir, "none.env")})
	require.NoError(t, err)
	assert.Equal(t, "bola", cfg.User.Username)
}

func TestLoad_ExplicitConfigMustExist(t *testing.T) {
	dir := isolate(t)
	_, err := Load(Options{ConfigFile: filepath.Join(dir, "nope.yaml")})
	assert.Error(t, err)
}

func TestLoad_BadTimeout(t *testing.T) {
	dir := isolate(t)
	t.Setenv("STUDYHALL_BACKEND_TIMEOUT", "soon")
	_, err := Load(Options{EnvFile: filepath.Join(dir, "none.env")})
	assert.Error(t, err)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	envFile := filepath.Join(dir, ".env")
	writeFile(t, envFile, "STUDYHALL_BACKEND_URL=http://localhost:9000\nSTUDYHALL_USERNAME=chidi\n")

	cfg, err := Load(Options{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", cfg.Backend.URL)
	assert.Equal(t, "chidi", cfg.User.Username)
}

func TestLoad_LLMDiscovery(t *testing.T) {
	dir := isolate(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(Options{EnvFile: filepath.Join(dir, "none.env")})
	require.NoError(t, err)
	require.NotNil(t, cfg.LLM)
	assert.Equal(t, "openai", cfg.LLM.Provider)
}

func TestResolveDBPath(t *testing.T) {
	dir := isolate(t)
	cfg := Default()

	p, err := cfg.ResolveDBPath(filepath.Join(dir, "flag", "a.db"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "flag", "a.db"), p)
	assert.DirExists(t, filepath.Join(dir, "flag"))

	cfg.DBPath = filepath.Join(dir, "cfg", "b.db")
	p, err = cfg.ResolveDBPath("")
	require.NoError(t, err)
	assert.Equal(t, cfg.DBPath, p)

	cfg.DBPath = ""
	p, err = cfg.ResolveDBPath("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data", "studyhall", "studyhall.db"), p)
}

func TestResolveLogFile(t *testing.T) {
	dir := isolate(t)
	cfg := Default()

	p, err := cfg.ResolveLogFile()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data", "studyhall", "studyhall.log"), p)

	cfg.Log.File = "/tmp/x.log"
	p, err = cfg.ResolveLogFile()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.log", p)
}
