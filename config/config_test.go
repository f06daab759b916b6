package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loadWithArgs registers flags on a fresh flag set, parses args and resolves the config.
func loadWithArgs(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg := RegisterFlags(flags)
	require.NoError(t, flags.Parse(args), "Failed to parse test flags")
	return Load(flags, cfg)
}

// clearEnv unsets every MATSERVER_ variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, fe := range flagEnv {
		key := envPrefix + fe.env
		if old, ok := os.LookupEnv(key); ok {
			os.Unsetenv(key)
			t.Cleanup(func() { os.Setenv(key, old) })
		}
	}
}

// Helper to get absolute path for comparison, ignoring errors for simplicity in tests
func absPath(path string) string {
	abs, _ := filepath.Abs(path)
	return abs
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := loadWithArgs(t)
	require.NoError(t, err)

	assert.Equal(t, defaultAddress, cfg.ListenAddress)
	assert.Equal(t, defaultPort, cfg.ListenPort)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, DriverFile, cfg.StoreDriver)
	assert.Equal(t, absPath(defaultDbFile), cfg.DbFilePath)
	assert.Equal(t, defaultEnableBackup, cfg.EnableBackup)
	assert.True(t, cfg.HashPasswords)
	assert.Equal(t, defaultBcryptCost, cfg.BcryptCost)
	assert.Empty(t, cfg.WebhookURL)
	assert.False(t, cfg.WebhookInsecureSkipVerify, "TLS verification must be on unless asked otherwise")
	assert.Equal(t, defaultWebhookTimeout, cfg.WebhookTimeout)
	assert.Equal(t, defaultResourceGroup, cfg.AzureResourceGroup)
	assert.Equal(t, defaultAutomationAccount, cfg.AzureAutomationAccount)
	assert.Equal(t, defaultBlobServiceURLFormat, cfg.BlobServiceURLFormat)
	assert.Equal(t, time.Hour, cfg.SASValidity)
	assert.Equal(t, "0.0.0.0:3001", cfg.Addr())
}

func TestLoad_EnvVars(t *testing.T) {
	clearEnv(t)
	t.Setenv("MATSERVER_LISTEN_ADDRESS", "192.168.1.100")
	t.Setenv("MATSERVER_LISTEN_PORT", "9000")
	t.Setenv("MATSERVER_DB_FILE_PATH", "/tmp/test_env.json")
	t.Setenv("MATSERVER_ENABLE_BACKUP", "false")
	t.Setenv("MATSERVER_WEBHOOK_URL", "https://hooks.example.com/webhooks?token=abc")
	t.Setenv("MATSERVER_WEBHOOK_INSECURE_SKIP_VERIFY", "true")
	t.Setenv("MATSERVER_WEBHOOK_TIMEOUT", "5s")
	t.Setenv("MATSERVER_AZURE_SUBSCRIPTION_ID", "sub-123")
	t.Setenv("MATSERVER_CORS_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")

	cfg, err := loadWithArgs(t)
	require.NoError(t, err)

	assert.Equal(t, "192.168.1.100", cfg.ListenAddress)
	assert.Equal(t, "9000", cfg.ListenPort)
	assert.Equal(t, "/tmp/test_env.json", cfg.DbFilePath)
	assert.False(t, cfg.EnableBackup)
	assert.Equal(t, "https://hooks.example.com/webhooks?token=abc", cfg.WebhookURL)
	assert.True(t, cfg.WebhookInsecureSkipVerify)
	assert.Equal(t, 5*time.Second, cfg.WebhookTimeout)
	assert.Equal(t, "sub-123", cfg.AzureSubscriptionID)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORSAllowedOrigins)
}

func TestLoad_Precedence(t *testing.T) {
	// Flag > Env > Default
	clearEnv(t)
	t.Setenv("MATSERVER_LISTEN_PORT", "9000")
	t.Setenv("MATSERVER_LISTEN_ADDRESS", "10.0.0.1")

	cfg, err := loadWithArgs(t, "--port", "9999")
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.ListenPort, "Flag value should take precedence")
	assert.Equal(t, "10.0.0.1", cfg.ListenAddress, "Env value should beat the default")
}

func TestLoad_InvalidEnvFallsBack(t *testing.T) {
	testCases := []struct {
		name   string
		key    string
		value  string
		verify func(t *testing.T, cfg *Config)
	}{
		{
			name: "Invalid duration", key: "MATSERVER_WEBHOOK_TIMEOUT", value: "soon",
			verify: func(t *testing.T, cfg *Config) { assert.Equal(t, defaultWebhookTimeout, cfg.WebhookTimeout) },
		},
		{
			name: "Invalid bool", key: "MATSERVER_ENABLE_BACKUP", value: "maybe",
			verify: func(t *testing.T, cfg *Config) { assert.Equal(t, defaultEnableBackup, cfg.EnableBackup) },
		},
		{
			name: "Invalid int", key: "MATSERVER_BCRYPT_COST", value: "twelve",
			verify: func(t *testing.T, cfg *Config) { assert.Equal(t, defaultBcryptCost, cfg.BcryptCost) },
		},
		{
			name: "Out of range bcrypt cost", key: "MATSERVER_BCRYPT_COST", value: "99",
			verify: func(t *testing.T, cfg *Config) { assert.Equal(t, defaultBcryptCost, cfg.BcryptCost) },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)

			cfg, err := loadWithArgs(t)
			require.NoError(t, err)
			tc.verify(t, cfg)
		})
	}
}

func TestLoad_StoreDrivers(t *testing.T) {
	t.Run("SQLite defaults its DSN", func(t *testing.T) {
		clearEnv(t)
		cfg, err := loadWithArgs(t, "--store", "SQLite")
		require.NoError(t, err)
		assert.Equal(t, DriverSQLite, cfg.StoreDriver)
		assert.Equal(t, defaultSQLiteFile, cfg.DatabaseDSN)
	})

	t.Run("Postgres requires a DSN", func(t *testing.T) {
		clearEnv(t)
		_, err := loadWithArgs(t, "--store", "postgres")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "requires --db-dsn")
	})

	t.Run("Postgres with DSN", func(t *testing.T) {
		clearEnv(t)
		cfg, err := loadWithArgs(t, "--store", "postgres", "--db-dsn", "host=localhost user=mat dbname=mat")
		require.NoError(t, err)
		assert.Equal(t, "host=localhost user=mat dbname=mat", cfg.DatabaseDSN)
	})

	t.Run("Unknown driver", func(t *testing.T) {
		clearEnv(t)
		_, err := loadWithArgs(t, "--store", "mongo")
		require.Error(t, err)
	})
}

func TestLoad_DbFilePath(t *testing.T) {
	clearEnv(t)

	t.Run("Relative path becomes absolute", func(t *testing.T) {
		cfg, err := loadWithArgs(t, "--db-file", "relative/db.json")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(cfg.DbFilePath), "DbFilePath should be absolute")
		assert.Equal(t, absPath("relative/db.json"), cfg.DbFilePath)
	})

	t.Run("Directory is rejected", func(t *testing.T) {
		dir := t.TempDir()
		_, err := loadWithArgs(t, "--db-file", dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "points to a directory")
	})
}

func TestLoad_BlobURLFormatNeedsPlaceholder(t *testing.T) {
	clearEnv(t)
	_, err := loadWithArgs(t, "--blob-url-format", "https://fixed.blob.core.windows.net")
	require.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)

	t.Run("Missing file is ignored", func(t *testing.T) {
		assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
		assert.NoError(t, LoadDotEnv(""))
	})

	t.Run("Values feed Load without overriding the environment", func(t *testing.T) {
		envFile := filepath.Join(t.TempDir(), ".env")
		content := "MATSERVER_LISTEN_PORT=7070\nMATSERVER_AZURE_RESOURCE_GROUP=from-file\n"
		require.NoError(t, os.WriteFile(envFile, []byte(content), 0600))
		t.Setenv("MATSERVER_AZURE_RESOURCE_GROUP", "from-env")
		t.Cleanup(func() { os.Unsetenv("MATSERVER_LISTEN_PORT") })

		require.NoError(t, LoadDotEnv(envFile))

		cfg, err := loadWithArgs(t)
		require.NoError(t, err)
		assert.Equal(t, "7070", cfg.ListenPort)
		assert.Equal(t, "from-env", cfg.AzureResourceGroup)
	})
}

func TestWebhookHost(t *testing.T) {
	assert.Equal(t, "(not configured)", webhookHost(""))
	assert.Equal(t, "hooks.example.com", webhookHost("https://hooks.example.com/webhooks?token=secret"))
	assert.Equal(t, "(invalid)", webhookHost("::not a url"))
}
