// Package config loads studyhall settings from .env, an optional YAML file
// and STUDYHALL_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/studyhall/internal/llm"
	"github.com/abhisek/studyhall/internal/store"
)

// Config is the resolved application configuration.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	User    UserConfig    `yaml:"user"`
	DBPath  string        `yaml:"db_path"`
	Log     LogConfig     `yaml:"log"`
	Kafka   KafkaConfig   `yaml:"kafka"`

	// LLM is nil when no provider is configured; explanations then come
	// only from the backend.
	LLM *llm.Config `yaml:"-"`
}

// BackendConfig points at the exam REST API.
type BackendConfig struct {
	URL     string        `yaml:"url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// UserConfig is the default signed-in user.
type UserConfig struct {
	Username string `yaml:"username"`
	Class    string `yaml:"class"`
}

// LogConfig selects the log file and level.
type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// KafkaConfig enables the analytics mirror when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// Options controls where Load looks.
type Options struct {
	// ConfigFile must exist when set. Otherwise DefaultConfigPath is used
	// if present.
	ConfigFile string

	// EnvFile defaults to ".env"; a missing file is ignored.
	EnvFile string
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Backend: BackendConfig{Timeout: 15 * time.Second},
		Log:     LogConfig{Level: "info"},
	}
}

// Load resolves the configuration.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := Default()

	path := opts.ConfigFile
	required := path != ""
	if !required {
		if p, err := DefaultConfigPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		if err := cfg.loadYAML(path, required); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if lc, ok := llm.Resolve(); ok {
		cfg.LLM = &lc
	}
	return &cfg, nil
}

func (c *Config) loadYAML(path string, required bool) error {
	f, err := os.Open(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Backend.URL, "STUDYHALL_BACKEND_URL")
	setString(&c.Backend.Token, "STUDYHALL_BACKEND_TOKEN")
	if v := os.Getenv("STUDYHALL_BACKEND_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("STUDYHALL_BACKEND_TIMEOUT: %w", err)
		}
		c.Backend.Timeout = d
	}
	setString(&c.User.Username, "STUDYHALL_USERNAME")
	setString(&c.User.Class, "STUDYHALL_CLASS")
	setString(&c.DBPath, "STUDYHALL_DB")
	setString(&c.Log.File, "STUDYHALL_LOG_FILE")
	setString(&c.Log.Level, "STUDYHALL_LOG_LEVEL")
	if v := os.Getenv("STUDYHALL_KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	setString(&c.Kafka.Topic, "STUDYHALL_KAFKA_TOPIC")
	return nil
}

// Validate checks the settings an exam run needs.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Backend.URL) == "" {
		errs = append(errs, errors.New("backend URL is required (backend.url or STUDYHALL_BACKEND_URL)"))
	}
	if strings.TrimSpace(c.User.Username) == "" {
		errs = append(errs, errors.New("username is required (user.username, STUDYHALL_USERNAME or --user)"))
	}
	if c.Backend.Timeout < 0 {
		errs = append(errs, errors.New("backend timeout must not be negative"))
	}
	if c.LLM != nil {
		if err := c.LLM.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ResolveDBPath picks the database file: flag, then configured path, then
// the XDG data dir default.
func (c *Config) ResolveDBPath(flag string) (string, error) {
	for _, p := range []string{flag, c.DBPath} {
		if p != "" {
			if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
				return "", fmt.Errorf("create db dir: %w", err)
			}
			return p, nil
		}
	}
	return store.DefaultDBPath()
}

// ResolveLogFile returns the configured log file or studyhall.log in the
// data dir.
func (c *Config) ResolveLogFile() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := store.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "studyhall.log"), nil
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/studyhall/config.yaml.
func DefaultConfigPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "studyhall", "config.yaml"), nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
