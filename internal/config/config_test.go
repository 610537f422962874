package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv isolates a test from the caller's environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"XDG_CONFIG_HOME",
		"STUDYCHAT_LESSONS_DIR", "STUDYCHAT_EXPORTS_DIR", "STUDYCHAT_DB",
		"STUDYCHAT_ARTIFACT_LESSON", "STUDYCHAT_LOG_LEVEL", "STUDYCHAT_LOG_FILE",
		"STUDYCHAT_LISTEN_ADDR", "STUDYCHAT_MAX_TOKENS", "STUDYCHAT_TEMPERATURE",
		"STUDYCHAT_SESSION_TTL",
		"STUDYCHAT_LLM_PROVIDER", "STUDYCHAT_LLM_TIMEOUT",
		"STUDYCHAT_OPENAI_API_KEY", "STUDYCHAT_OPENAI_MODEL", "STUDYCHAT_OPENAI_BASE_URL",
		"STUDYCHAT_ANTHROPIC_API_KEY", "STUDYCHAT_ANTHROPIC_MODEL",
		"STUDYCHAT_GEMINI_API_KEY", "STUDYCHAT_GEMINI_MODEL",
		"STUDYCHAT_OPENROUTER_API_KEY", "STUDYCHAT_OPENROUTER_MODEL",
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "lessons", cfg.LessonsDir)
	assert.Equal(t, "exports", cfg.ExportsDir)
	assert.Equal(t, "dmaic", cfg.ArtifactLessonID)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 2*time.Hour, cfg.SessionIdleTTL)
	assert.Equal(t, 1024, cfg.MaxTokens)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Error(t, cfg.LLM.Validate(), "no key configured")
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
lessons_dir = "/srv/lessons"
artifact_lesson_id = "lean"
max_tokens = 512
temperature = 0.2
log_level = "debug"

[llm]
provider = "anthropic"
timeout = "30s"

[llm.anthropic]
api_key = "sk-ant"
model = "claude-sonnet"

[llm.retry]
max_attempts = 5
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/lessons", cfg.LessonsDir)
	assert.Equal(t, "exports", cfg.ExportsDir, "unset keys keep defaults")
	assert.Equal(t, "lean", cfg.ArtifactLessonID)
	assert.Equal(t, 512, cfg.MaxTokens)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "claude-sonnet", cfg.LLM.Model())
	assert.Equal(t, 5, cfg.LLM.Retry.MaxAttempts)
	assert.Equal(t, time.Second, cfg.LLM.Retry.InitialWait)
	assert.NoError(t, cfg.LLM.Validate())

	tc := cfg.Tutor()
	assert.Equal(t, 512, tc.MaxTokens)
	assert.Equal(t, 0.2, tc.Temperature)
	assert.Equal(t, "lean", tc.ArtifactLessonID)
}

func TestLoad_DefaultPathFromXDG(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "studychat"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "studychat", "config.toml"), []byte(`listen_addr = "127.0.0.1:9000"`), 0o644))

	assert.Equal(t, filepath.Join(dir, "studychat", "config.toml"), DefaultPath())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoad_BadTOML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("max_tokens = ["), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "parsing config")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("max_tokens = 100\nexports_dir = \"file\"\n"), 0o644))

	t.Setenv("STUDYCHAT_MAX_TOKENS", "2048")
	t.Setenv("STUDYCHAT_EXPORTS_DIR", "env")
	t.Setenv("STUDYCHAT_TEMPERATURE", "1.5")
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2048, cfg.MaxTokens)
	assert.Equal(t, "env", cfg.ExportsDir)
	assert.Equal(t, 1.5, cfg.Temperature)
	assert.Equal(t, "gemini", cfg.LLM.Provider, "switches to the provider with a key")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad int", map[string]string{"STUDYCHAT_MAX_TOKENS": "many"}},
		{"zero tokens", map[string]string{"STUDYCHAT_MAX_TOKENS": "0"}},
		{"hot", map[string]string{"STUDYCHAT_TEMPERATURE": "3"}},
		{"level", map[string]string{"STUDYCHAT_LOG_LEVEL": "loud"}},
		{"bad ttl", map[string]string{"STUDYCHAT_SESSION_TTL": "soon"}},
		{"negative ttl", map[string]string{"STUDYCHAT_SESSION_TTL": "-1m"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoad_SessionIdleTTL(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`session_idle_ttl = "30m"`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTTL)

	t.Setenv("STUDYCHAT_SESSION_TTL", "0s")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Zero(t, cfg.SessionIdleTTL, "zero disables eviction")
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("STUDYCHAT_LESSONS_DIR=from-dotenv\nSTUDYCHAT_EXPORTS_DIR=from-dotenv\n"), 0o644))
	t.Setenv("STUDYCHAT_EXPORTS_DIR", "already-set")
	t.Cleanup(func() { os.Unsetenv("STUDYCHAT_LESSONS_DIR") })
	// t.Setenv("", ...) leaves the key set but empty, which godotenv treats
	// as present; unset it so the file can fill it.
	os.Unsetenv("STUDYCHAT_LESSONS_DIR")

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.LessonsDir)
	assert.Equal(t, "already-set", cfg.ExportsDir)
}

func TestNewLogger(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "warn"

	var buf bytes.Buffer
	logger := cfg.NewLogger(&buf, true)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"k":"v"`)
}
