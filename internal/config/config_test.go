package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	ResetForTesting()
	t.Setenv("CI", "")

	c := Get()
	assert.Equal(t, "https://crm.wkconnect.de", c.BaseURL)
	assert.True(t, c.Headless)
	assert.Equal(t, 15*time.Second, c.ActionTimeout)
	assert.Equal(t, 30*time.Second, c.NavigationTimeout)
	assert.Equal(t, 3*time.Second, c.SettleDelay)
	assert.False(t, c.CI)
	assert.NotEmpty(t, c.RunID)
}

func TestEnvOverrides(t *testing.T) {
	ResetForTesting()
	t.Setenv("BASE_URL", "https://staging.wkconnect.de/")
	t.Setenv("HEADLESS", "false")
	t.Setenv("ACTION_TIMEOUT", "5s")
	t.Setenv("CI", "true")

	c := Get()
	assert.Equal(t, "https://staging.wkconnect.de", c.BaseURL, "trailing slash should be trimmed")
	assert.False(t, c.Headless)
	assert.Equal(t, 5*time.Second, c.ActionTimeout)
	assert.True(t, c.CI)
}

func TestRunDir(t *testing.T) {
	ResetForTesting()
	t.Setenv("ARTIFACT_DIR", "out")

	c := Get()
	assert.Equal(t, filepath.Join("out", c.RunID), c.RunDir())
}

func TestDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"# comment\n"+
			"DOTENV_ONLY=from_file\n"+
			"DOTENV_BOTH='quoted'\n"+
			"MALFORMED\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("DOTENV_ONLY", "")
	t.Setenv("DOTENV_BOTH", "from_env")

	loadDotEnv()
	assert.Equal(t, "from_file", os.Getenv("DOTENV_ONLY"))
	assert.Equal(t, "from_env", os.Getenv("DOTENV_BOTH"), "real environment wins")
}
