package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"
)

// Config holds all configuration settings for the application.
type Config struct {
	// Server settings
	ListenAddress      string
	ListenPort         string
	CORSAllowedOrigins []string

	// Store settings
	StoreDriver  string // file, sqlite or postgres
	DbFilePath   string
	DatabaseDSN  string
	EnableBackup bool

	// Credential settings
	HashPasswords bool
	BcryptCost    int

	// Report Trigger Gateway
	WebhookURL                string
	WebhookInsecureSkipVerify bool
	WebhookTimeout            time.Duration

	// Azure Automation job lookup
	AzureSubscriptionID    string
	AzureResourceGroup     string
	AzureAutomationAccount string

	// Blob Access Gateway
	BlobServiceURLFormat string
	SASValidity          time.Duration
}

// Store drivers.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	envPrefix = "MATSERVER_"

	defaultAddress              = "0.0.0.0"
	defaultPort                 = "3001"
	defaultCORSOrigins          = "*"
	defaultStoreDriver          = DriverFile
	defaultDbFile               = "./db.json" // Relative to working dir
	defaultSQLiteFile           = "./matserver.db"
	defaultEnableBackup         = true
	defaultHashPasswords        = true
	defaultBcryptCost           = 12
	defaultWebhookTimeout       = 30 * time.Second
	defaultResourceGroup        = "mat-automation-rg"
	defaultAutomationAccount    = "mat-automation-account"
	defaultBlobServiceURLFormat = "https://%s.blob.core.windows.net"
	defaultSASValidity          = time.Hour
)

// flagEnv maps every flag to the environment variable that may supply it.
var flagEnv = []struct{ flag, env string }{
	{"address", "LISTEN_ADDRESS"},
	{"port", "LISTEN_PORT"},
	{"cors-origins", "CORS_ORIGINS"},
	{"store", "STORE_DRIVER"},
	{"db-file", "DB_FILE_PATH"},
	{"db-dsn", "DB_DSN"},
	{"enable-backup", "ENABLE_BACKUP"},
	{"hash-passwords", "HASH_PASSWORDS"},
	{"bcrypt-cost", "BCRYPT_COST"},
	{"webhook-url", "WEBHOOK_URL"},
	{"webhook-insecure-skip-verify", "WEBHOOK_INSECURE_SKIP_VERIFY"},
	{"webhook-timeout", "WEBHOOK_TIMEOUT"},
	{"azure-subscription-id", "AZURE_SUBSCRIPTION_ID"},
	{"azure-resource-group", "AZURE_RESOURCE_GROUP"},
	{"azure-automation-account", "AZURE_AUTOMATION_ACCOUNT"},
	{"blob-url-format", "BLOB_URL_FORMAT"},
	{"sas-validity", "SAS_VALIDITY"},
}

// RegisterFlags defines every configuration flag on flags and returns the Config
// the flags write into. Call Load after flags have been parsed.
func RegisterFlags(flags *pflag.FlagSet) *Config {
	cfg := &Config{}
	flags.StringVar(&cfg.ListenAddress, "address", defaultAddress, "Server listen address (Env: MATSERVER_LISTEN_ADDRESS)")
	flags.StringVar(&cfg.ListenPort, "port", defaultPort, "Server listen port (Env: MATSERVER_LISTEN_PORT)")
	flags.StringSliceVar(&cfg.CORSAllowedOrigins, "cors-origins", []string{defaultCORSOrigins}, "Allowed CORS origins (Env: MATSERVER_CORS_ORIGINS)")
	flags.StringVar(&cfg.StoreDriver, "store", defaultStoreDriver, "Document store driver: file, sqlite or postgres (Env: MATSERVER_STORE_DRIVER)")
	flags.StringVar(&cfg.DbFilePath, "db-file", defaultDbFile, "Path to the JSON database file (Env: MATSERVER_DB_FILE_PATH)")
	flags.StringVar(&cfg.DatabaseDSN, "db-dsn", "", "SQL DSN for the sqlite or postgres store (Env: MATSERVER_DB_DSN)")
	flags.BoolVar(&cfg.EnableBackup, "enable-backup", defaultEnableBackup, "Keep a .bak copy of the JSON file on every save (Env: MATSERVER_ENABLE_BACKUP)")
	flags.BoolVar(&cfg.HashPasswords, "hash-passwords", defaultHashPasswords, "Store bcrypt hashes instead of plaintext passwords (Env: MATSERVER_HASH_PASSWORDS)")
	flags.IntVar(&cfg.BcryptCost, "bcrypt-cost", defaultBcryptCost, "Bcrypt cost factor (Env: MATSERVER_BCRYPT_COST)")
	flags.StringVar(&cfg.WebhookURL, "webhook-url", "", "Azure Automation webhook URL for report runs (Env: MATSERVER_WEBHOOK_URL)")
	flags.BoolVar(&cfg.WebhookInsecureSkipVerify, "webhook-insecure-skip-verify", false, "Skip TLS verification for the webhook call (Env: MATSERVER_WEBHOOK_INSECURE_SKIP_VERIFY)")
	flags.DurationVar(&cfg.WebhookTimeout, "webhook-timeout", defaultWebhookTimeout, "Timeout for the webhook call (Env: MATSERVER_WEBHOOK_TIMEOUT)")
	flags.StringVar(&cfg.AzureSubscriptionID, "azure-subscription-id", "", "Subscription holding the automation account (Env: MATSERVER_AZURE_SUBSCRIPTION_ID)")
	flags.StringVar(&cfg.AzureResourceGroup, "azure-resource-group", defaultResourceGroup, "Resource group of the automation account (Env: MATSERVER_AZURE_RESOURCE_GROUP)")
	flags.StringVar(&cfg.AzureAutomationAccount, "azure-automation-account", defaultAutomationAccount, "Automation account name (Env: MATSERVER_AZURE_AUTOMATION_ACCOUNT)")
	flags.StringVar(&cfg.BlobServiceURLFormat, "blob-url-format", defaultBlobServiceURLFormat, "Blob service URL, %s is the storage account (Env: MATSERVER_BLOB_URL_FORMAT)")
	flags.DurationVar(&cfg.SASValidity, "sas-validity", defaultSASValidity, "Lifetime of download links (Env: MATSERVER_SAS_VALIDITY)")
	return cfg
}

// LoadDotEnv loads variables from a .env file without overriding ones already
// set in the environment. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("DEBUG: No env file at '%s', skipping.", path)
			return nil
		}
		return fmt.Errorf("failed to load env file '%s': %w", path, err)
	}
	log.Printf("INFO: Loaded environment from %s", path)
	return nil
}

// Load resolves cfg (as returned by RegisterFlags) against the environment and
// validates it. Command-line flags take precedence over environment variables,
// which take precedence over defaults.
func Load(flags *pflag.FlagSet, cfg *Config) (*Config, error) {
	for _, fe := range flagEnv {
		if flags.Changed(fe.flag) {
			continue
		}
		value, ok := os.LookupEnv(envPrefix + fe.env)
		if !ok {
			continue
		}
		if err := flags.Set(fe.flag, value); err != nil {
			// Invalid env values fall back to the default, like invalid durations always have.
			log.Printf("WARN: Invalid value for %s%s: '%s'. Using default. Error: %v", envPrefix, fe.env, value, err)
			_ = flags.Set(fe.flag, flags.Lookup(fe.flag).DefValue)
		}
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	switch cfg.StoreDriver {
	case DriverFile:
		absDbPath, err := filepath.Abs(cfg.DbFilePath)
		if err != nil {
			return nil, fmt.Errorf("could not determine absolute path for db-file '%s': %w", cfg.DbFilePath, err)
		}
		cfg.DbFilePath = absDbPath
		// The file itself may not exist yet; it is created on the first save.
		if info, err := os.Stat(cfg.DbFilePath); err == nil && info.IsDir() {
			return nil, fmt.Errorf("database path '%s' points to a directory, not a file", cfg.DbFilePath)
		}
	case DriverSQLite:
		if cfg.DatabaseDSN == "" {
			cfg.DatabaseDSN = defaultSQLiteFile
		}
	case DriverPostgres:
		if cfg.DatabaseDSN == "" {
			return nil, fmt.Errorf("store driver '%s' requires --db-dsn", cfg.StoreDriver)
		}
	default:
		return nil, fmt.Errorf("unknown store driver '%s' (want file, sqlite or postgres)", cfg.StoreDriver)
	}

	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		log.Printf("WARN: Bcrypt cost %d out of range [%d, %d]. Using default %d.", cfg.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost, defaultBcryptCost)
		cfg.BcryptCost = defaultBcryptCost
	}
	if cfg.WebhookTimeout <= 0 {
		cfg.WebhookTimeout = defaultWebhookTimeout
	}
	if cfg.SASValidity <= 0 {
		cfg.SASValidity = defaultSASValidity
	}
	if !strings.Contains(cfg.BlobServiceURLFormat, "%s") {
		return nil, fmt.Errorf("blob-url-format '%s' must contain %%s for the storage account", cfg.BlobServiceURLFormat)
	}

	logConfiguration(cfg)
	return cfg, nil
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.ListenAddress, c.ListenPort)
}

// logConfiguration prints the loaded configuration settings. The webhook URL
// carries its token in the query string, so only the host is printed.
func logConfiguration(cfg *Config) {
	log.Println("--- Configuration ---")
	log.Printf("Server Address: %s", cfg.Addr())
	log.Printf("CORS Origins: %s", strings.Join(cfg.CORSAllowedOrigins, ","))
	log.Printf("Store Driver: %s", cfg.StoreDriver)
	if cfg.StoreDriver == DriverFile {
		log.Printf("Database File: %s", cfg.DbFilePath)
		log.Printf("Database Backup Enabled: %t", cfg.EnableBackup)
	}
	log.Printf("Password Hashing: %t (cost %d)", cfg.HashPasswords, cfg.BcryptCost)
	log.Printf("Webhook Host: %s", webhookHost(cfg.WebhookURL))
	log.Printf("Webhook TLS Verification: %t", !cfg.WebhookInsecureSkipVerify)
	log.Printf("Automation Account: %s/%s", cfg.AzureResourceGroup, cfg.AzureAutomationAccount)
	log.Printf("SAS Validity: %s", cfg.SASValidity)
	log.Println("---------------------")
	if !cfg.HashPasswords {
		log.Printf("WARN: Password hashing is disabled; user passwords are stored in plain text.")
	}
	if cfg.WebhookInsecureSkipVerify {
		log.Printf("WARN: TLS certificate verification is disabled for the report webhook.")
	}
	log.Printf("WARN: Client secrets and on-prem credentials are stored in plain text.")
}

func webhookHost(raw string) string {
	if raw == "" {
		return "(not configured)"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "(invalid)"
	}
	return u.Host
}
