package gourdianclaims

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	t.Run("Default Config", func(t *testing.T) {
		config := DefaultConfig(testSecret)
		assert.Equal(t, DefaultHTTPHeaderName, config.HTTPHeaderName)
		assert.Empty(t, config.HTTPParameterKey)
		assert.Zero(t, config.Validity())
		assert.True(t, config.IsConfigured())
	})

	t.Run("New Config", func(t *testing.T) {
		config := NewConfig(testSecret, "Authorization", "jwt", 30*time.Minute)
		assert.Equal(t, "Authorization", config.HTTPHeaderName)
		assert.Equal(t, "jwt", config.HTTPParameterKey)
		assert.Equal(t, int64(1800000), config.ValidityPeriod)
		assert.Equal(t, 30*time.Minute, config.Validity())
	})

	t.Run("Non Positive Validity Never Expires", func(t *testing.T) {
		assert.Zero(t, Config{ValidityPeriod: 0}.Validity())
		assert.Zero(t, Config{ValidityPeriod: -5}.Validity())
	})

	t.Run("Is Configured", func(t *testing.T) {
		assert.False(t, Config{}.IsConfigured())
		assert.False(t, Config{Secret: "  "}.IsConfigured())
		assert.False(t, Config{Secret: "@@@"}.IsConfigured())
		assert.True(t, Config{Secret: otherSecret}.IsConfigured())
	})

	t.Run("String Redacts Secret", func(t *testing.T) {
		s := NewConfig(testSecret, "Jwt", "jwt", time.Second).String()
		assert.NotContains(t, s, testSecret)
		assert.Contains(t, s, "***REDACTED***")
		assert.Contains(t, s, "1000ms")
	})

	t.Run("Static Provider", func(t *testing.T) {
		config := DefaultConfig(testSecret)
		assert.Equal(t, config, StaticConfig(config).Config())
	})
}

func TestEnvConfig(t *testing.T) {
	t.Run("Reads Prefixed Variables", func(t *testing.T) {
		provider := EnvConfig(WithEnvFiles(), WithEnvironment(map[string]string{
			"GOURDIAN_JWT_SECRET":             testSecret,
			"GOURDIAN_JWT_HTTP_HEADER_NAME":   "X-Session",
			"GOURDIAN_JWT_HTTP_PARAMETER_KEY": "session",
			"GOURDIAN_JWT_VALIDITY_PERIOD":    "60000",
		}))

		config := provider.Config()
		assert.Equal(t, testSecret, config.Secret)
		assert.Equal(t, "X-Session", config.HTTPHeaderName)
		assert.Equal(t, "session", config.HTTPParameterKey)
		assert.Equal(t, time.Minute, config.Validity())
		assert.True(t, config.IsConfigured())
	})

	t.Run("Defaults", func(t *testing.T) {
		config := EnvConfig(WithEnvFiles(), WithEnvironment(map[string]string{})).Config()
		assert.Empty(t, config.Secret)
		assert.Equal(t, DefaultHTTPHeaderName, config.HTTPHeaderName)
		assert.Zero(t, config.ValidityPeriod)
		assert.False(t, config.IsConfigured())
	})

	t.Run("Invalid Values Yield Unconfigured", func(t *testing.T) {
		provider := EnvConfig(WithEnvFiles(), WithEnvironment(map[string]string{
			"GOURDIAN_JWT_SECRET":          testSecret,
			"GOURDIAN_JWT_VALIDITY_PERIOD": "one hour",
		}))
		assert.False(t, provider.Config().IsConfigured())

		m, err := NewManager(provider, WithLogger(DiscardLogger()))
		require.NoError(t, err)
		_, err = m.IssueToken(context.Background(), ClaimSet{"k": "v"})
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("Loads Once", func(t *testing.T) {
		environment := map[string]string{"GOURDIAN_JWT_SECRET": testSecret}
		provider := EnvConfig(WithEnvFiles(), WithEnvironment(environment))
		first := provider.Config()

		environment["GOURDIAN_JWT_SECRET"] = otherSecret
		assert.Equal(t, first, provider.Config())
	})

	t.Run("Loads Dotenv File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.env")
		content := "GOURDIAN_JWT_SECRET=" + otherSecret + "\nGOURDIAN_JWT_VALIDITY_PERIOD=2500\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		t.Cleanup(func() {
			os.Unsetenv("GOURDIAN_JWT_SECRET")
			os.Unsetenv("GOURDIAN_JWT_VALIDITY_PERIOD")
		})

		config := EnvConfig(WithEnvFiles(path)).Config()
		assert.Equal(t, otherSecret, config.Secret)
		assert.Equal(t, 2500*time.Millisecond, config.Validity())
	})

	t.Run("Missing Dotenv File Is Ignored", func(t *testing.T) {
		t.Setenv("GOURDIAN_JWT_SECRET", testSecret)
		config := EnvConfig(WithEnvFiles(filepath.Join(t.TempDir(), "absent.env"))).Config()
		assert.Equal(t, testSecret, config.Secret)
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("Process Environment", func(t *testing.T) {
		t.Setenv("GOURDIAN_JWT_SECRET", testSecret)
		t.Setenv("GOURDIAN_JWT_VALIDITY_PERIOD", "1000")

		config, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, testSecret, config.Secret)
		assert.Equal(t, time.Second, config.Validity())
	})

	t.Run("Parse Error", func(t *testing.T) {
		t.Setenv("GOURDIAN_JWT_VALIDITY_PERIOD", "soon")

		_, err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse environment")
	})
}
