package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Sidecar: SidecarConfig{
			Extension:  ".twld",
			Compressed: true,
		},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, ".twld", cfg.Sidecar.Extension)
	assert.True(t, cfg.Sidecar.Compressed)
	assert.Empty(t, cfg.Colors.Path)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
logging:
  level: debug
  format: json
sidecar:
  extension: .mtwld
  compressed: false
colors:
  path: /tmp/colors.json
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, ".mtwld", cfg.Sidecar.Extension)
	assert.False(t, cfg.Sidecar.Compressed)
	assert.Equal(t, "/tmp/colors.json", cfg.Colors.Path)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TWLD_LOGGING_LEVEL", "warn")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestLoadFromViper_Invalid(t *testing.T) {
	v := viper.New()
	v.Set("logging.level", "loud")
	v.Set("logging.format", "json")
	v.Set("sidecar.extension", ".twld")
	_, err := LoadFromViper(v)
	assert.Error(t, err)
}

func TestValidateLoggingLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.NoError(t, cfg.Validate(), "level %q should be valid", level)
	}
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingFormat(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		cfg := validConfig()
		cfg.Logging.Format = format
		assert.NoError(t, cfg.Validate(), "format %q should be valid", format)
	}
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateSidecarExtension(t *testing.T) {
	for _, ext := range []string{"", "twld", ".a/b", `.a\b`} {
		cfg := validConfig()
		cfg.Sidecar.Extension = ext
		assert.Error(t, cfg.Validate(), "extension %q should be rejected", ext)
	}
}

func TestValidateCollectsAllViolations(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	cfg.Sidecar.Extension = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
	assert.Contains(t, err.Error(), "sidecar.extension")
}

func TestValidateExtension_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		name := rapid.StringMatching(`[a-z0-9]{1,8}`).Draw(rt, "name")
		cfg := validConfig()
		cfg.Sidecar.Extension = "." + name
		assert.NoError(rt, cfg.Validate())
	})
}
