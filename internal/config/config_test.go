package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HealthPort)
	assert.Equal(t, filepath.Join(dir, "checklists.json"), cfg.StorePath)
	assert.False(t, cfg.Debug)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("SLACK_APP_TOKEN", "xapp-test")
	t.Setenv("TICKBOT_HEALTH_PORT", "9999")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "xoxb-test", cfg.BotToken)
	assert.Equal(t, "xapp-test", cfg.AppToken)
	assert.Equal(t, 9999, cfg.HealthPort)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "bot-token: xoxb-file\napp-token: xapp-file\nhealth-port: 9000\ndebug: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "xoxb-file", cfg.BotToken)
	assert.Equal(t, "xapp-file", cfg.AppToken)
	assert.Equal(t, 9000, cfg.HealthPort)
	assert.True(t, cfg.Debug)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "bot-token: xoxb-file\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-env")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "xoxb-env", cfg.BotToken)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(":\nnot yaml at all ["), 0644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	assert.ErrorContains(t, cfg.Validate(), "bot token")

	cfg.BotToken = "xoxb-test"
	assert.ErrorContains(t, cfg.Validate(), "app token")

	cfg.AppToken = "xapp-test"
	assert.NoError(t, cfg.Validate())
}
