// Package config resolves studychat settings from defaults, an optional TOML
// file, a .env file and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/abhisek/studychat/internal/llm"
	"github.com/abhisek/studychat/internal/tutor"
)

// Config holds all application settings.
type Config struct {
	LessonsDir string `toml:"lessons_dir"`
	ExportsDir string `toml:"exports_dir"`
	// DBPath is the event log location. Empty means store.DefaultDBPath.
	DBPath string `toml:"db_path"`

	// ArtifactLessonID names the lesson whose completion exports a deck.
	ArtifactLessonID string `toml:"artifact_lesson_id"`

	LogLevel   string `toml:"log_level"`
	LogFile    string `toml:"log_file,omitempty"`
	ListenAddr string `toml:"listen_addr"`
	// SessionIdleTTL evicts idle HTTP sessions; zero keeps them.
	SessionIdleTTL time.Duration `toml:"session_idle_ttl"`

	MaxTokens   int     `toml:"max_tokens"`
	Temperature float64 `toml:"temperature"`

	LLM llm.Config `toml:"llm"`
}

// Default returns the built-in settings.
func Default() Config {
	tc := tutor.DefaultConfig()
	return Config{
		LessonsDir:       "lessons",
		ExportsDir:       "exports",
		ArtifactLessonID: tc.ArtifactLessonID,
		LogLevel:         "info",
		ListenAddr:       ":8080",
		SessionIdleTTL:   2 * time.Hour,
		MaxTokens:        tc.MaxTokens,
		Temperature:      tc.Temperature,
		LLM:              llm.DefaultConfig(),
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/studychat/config.toml, falling back
// to ~/.config/studychat/config.toml.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "studychat", "config.toml")
}

// Load builds the configuration. An empty path reads DefaultPath when it
// exists; an explicit path must exist. Environment variables override the
// file, and provider API keys are discovered from the usual variables.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	cfg.LLM.ApplyEnv()
	cfg.LLM.DiscoverKeys()

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files (".env" when none
// are named) without overriding ones already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

func (c *Config) applyEnv() error {
	setFromEnv(&c.LessonsDir, "STUDYCHAT_LESSONS_DIR")
	setFromEnv(&c.ExportsDir, "STUDYCHAT_EXPORTS_DIR")
	setFromEnv(&c.DBPath, "STUDYCHAT_DB")
	setFromEnv(&c.ArtifactLessonID, "STUDYCHAT_ARTIFACT_LESSON")
	setFromEnv(&c.LogLevel, "STUDYCHAT_LOG_LEVEL")
	setFromEnv(&c.LogFile, "STUDYCHAT_LOG_FILE")
	setFromEnv(&c.ListenAddr, "STUDYCHAT_LISTEN_ADDR")

	if v := os.Getenv("STUDYCHAT_MAX_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("STUDYCHAT_MAX_TOKENS: %w", err)
		}
		c.MaxTokens = n
	}
	if v := os.Getenv("STUDYCHAT_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("STUDYCHAT_SESSION_TTL: %w", err)
		}
		c.SessionIdleTTL = d
	}
	if v := os.Getenv("STUDYCHAT_TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("STUDYCHAT_TEMPERATURE: %w", err)
		}
		c.Temperature = f
	}
	return nil
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks settings that have no usable fallback. A missing provider
// key is not an error here; callers warn about it via LLM.Validate.
func (c Config) Validate() error {
	if c.LessonsDir == "" {
		return fmt.Errorf("lessons_dir cannot be empty")
	}
	if c.ExportsDir == "" {
		return fmt.Errorf("exports_dir cannot be empty")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be > 0, got %d", c.MaxTokens)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be within [0, 2], got %g", c.Temperature)
	}
	if c.SessionIdleTTL < 0 {
		return fmt.Errorf("session_idle_ttl cannot be negative, got %s", c.SessionIdleTTL)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Tutor returns the tutoring settings.
func (c Config) Tutor() tutor.Config {
	return tutor.Config{
		MaxTokens:        c.MaxTokens,
		Temperature:      c.Temperature,
		ArtifactLessonID: c.ArtifactLessonID,
	}
}

// Level returns the configured log level, defaulting to info.
func (c Config) Level() slog.Level {
	lvl, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// NewLogger returns a text (or JSON) logger writing to w at the configured
// level.
func (c Config) NewLogger(w io.Writer, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Level()}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
