package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultTimeoutSeconds, cfg.TimeoutSeconds)
	assert.Equal(t, ".", cfg.ExportDir)
	assert.Equal(t, "auto", cfg.OutputFormat)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, DefaultServePort, cfg.GetServeConfig().Port)
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "apidash.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
base_url: http://localhost:9999
timeout_seconds: 2
serve:
  port: 3000
`), 0o600))

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999", cfg.BaseURL)
	assert.Equal(t, 2, cfg.TimeoutSeconds)
	assert.Equal(t, 3000, cfg.GetServeConfig().Port)
	assert.Equal(t, cfgPath, GetConfigFileUsed())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "apidash.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("base_url: http://from-file\n"), 0o600))

	t.Setenv("APIDASH_BASE_URL", "http://from-env")
	t.Setenv("APIDASH_SERVE_PORT", "4000")

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, "http://from-env", cfg.BaseURL)
	assert.Equal(t, 4000, cfg.GetServeConfig().Port)
}

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())
	t.Setenv("APIDASH_BASE_URL", "http://from-env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("base-url", "", "")
	flags.Int("timeout", 0, "")
	require.NoError(t, flags.Parse([]string{"--base-url", "http://from-flag", "--timeout", "9"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, "http://from-flag", cfg.BaseURL)
	assert.Equal(t, 9, cfg.TimeoutSeconds)
}

func TestLoadConfig_UnsetFlagsIgnored(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("base-url", "http://flag-default", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
}

func TestLoadConfig_TrailingSlashTrimmed(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())
	t.Setenv("APIDASH_BASE_URL", "http://api.test/")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://api.test", cfg.BaseURL)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"relative base url", map[string]string{"APIDASH_BASE_URL": "not-a-url"}, "invalid base_url"},
		{"bad scheme", map[string]string{"APIDASH_BASE_URL": "ftp://api.test"}, "must be http or https"},
		{"zero timeout", map[string]string{"APIDASH_TIMEOUT_SECONDS": "0"}, "timeout_seconds must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig("", nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestTimeout(t *testing.T) {
	cfg := &Config{TimeoutSeconds: 5}
	assert.Equal(t, "5s", cfg.Timeout().String())
}
