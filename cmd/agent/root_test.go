package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoapply-agent/internal/infrastructure/env"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"LLM_PROVIDER", "WORKERS", "SETTLE_DELAY", "CAPTCHA_GRACE", "OUTPUT_DIR", "BROWSER_HEADLESS", "CLEAN_MARKUP"} {
		t.Setenv(key, "")
	}

	cfg := loadConfig(&env.EnvService{})

	assert.Equal(t, "openrouter", cfg.LLMProvider)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 2*time.Second, cfg.Agent.SettleDelay)
	assert.Equal(t, 30*time.Second, cfg.Agent.CaptchaGrace)
	assert.Equal(t, 30*time.Second, cfg.Browser.NavTimeout)
	assert.Equal(t, "output", cfg.Agent.OutputDir)
	assert.Equal(t, 5000, cfg.Agent.MarkupLimit)
	assert.False(t, cfg.Headless)
	assert.False(t, cfg.CleanMarkup)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("WORKERS", "4")
	t.Setenv("SETTLE_DELAY", "500ms")
	t.Setenv("CAPTCHA_GRACE", "1m")
	t.Setenv("BROWSER_HEADLESS", "true")
	t.Setenv("CLEAN_MARKUP", "true")
	t.Setenv("OUTPUT_DIR", "/tmp/shots")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := loadConfig(&env.EnvService{})

	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.Equal(t, "g-key", cfg.GeminiAPIKey)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 500*time.Millisecond, cfg.Agent.SettleDelay)
	assert.Equal(t, time.Minute, cfg.Agent.CaptchaGrace)
	assert.True(t, cfg.Headless)
	assert.True(t, cfg.CleanMarkup)
	assert.Equal(t, "/tmp/shots", cfg.Agent.OutputDir)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "profile.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"full_name":"Jane Doe","email":"jane@example.com","linkedin_url":"https://linkedin.com/in/jane"}`), 0o644))

	p, err := loadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", p.FullName)
	assert.Equal(t, "jane@example.com", p.Email)
	assert.Equal(t, "https://linkedin.com/in/jane", p.LinkedInURL)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"full_name":`), 0o644))
	_, err = loadProfile(bad)
	assert.ErrorContains(t, err, "parse profile")

	_, err = loadProfile(filepath.Join(dir, "missing.json"))
	assert.ErrorContains(t, err, "read profile")
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["run"])
	assert.True(t, names["serve"])
}

func TestRunCmd_RequiresFlags(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"run", "--url", "https://jobs.example.com/1"})

	err := root.Execute()
	assert.ErrorContains(t, err, "resume")
}

func TestRunCmd_MissingResumeFile(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"run", "--url", "https://jobs.example.com/1", "--resume", filepath.Join(t.TempDir(), "cv.pdf")})

	err := root.Execute()
	assert.ErrorContains(t, err, "resume not found")
}
