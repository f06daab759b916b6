package main

import (
	"os"

	"github.com/spf13/cobra"

	"matserver/config"
	_ "matserver/docs" // Import for side effect: registers swagger spec via init()
)

// @title           MAT Record Store API
// @version         1.0.0

// @description     ## MAT Record Store API
// @description
// @description     Backend of the Microsoft 365 assessment tool. It keeps, per user, the tenant
// @description     configuration, client and on-prem credentials, feedback and the list of assessment
// @description     runs, all in a single JSON document. It also relays report runs to Azure:
// @description     *   `POST /api/execute-report` starts the report runbook through its webhook.
// @description     *   `GET /api/report-status/{jobId}` polls the Automation job.
// @description     *   `POST /api/get-download-link` mints a read-only, time-limited blob URL.
// @description
// @description     Users are identified by email. Login only checks the password; no token is issued.

// @license.name  MIT

// @host      localhost:3001
// @BasePath  /

// defaultEnvFile is read before flags and environment are resolved.
const defaultEnvFile = ".env"

// newRootCmd builds the CLI. Running it without a subcommand serves the API.
func newRootCmd() *cobra.Command {
	var envFile string
	var cfg *config.Config

	root := &cobra.Command{
		Use:   "matserver",
		Short: "Record store and report gateway for the Microsoft 365 assessment tool",
		Long: `matserver serves the record store API (users, tenants, credentials,
feedback, assessments) and relays report runs to Azure Automation and Blob Storage.

Settings come from flags, then MATSERVER_* environment variables (a .env file
is loaded first), then defaults.

Example:
  matserver --port 3001 --db-file ./db.json
  matserver migrate --store sqlite --db-dsn ./matserver.db`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				return err
			}
			_, err := config.Load(cmd.Flags(), cfg)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), cfg)
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", defaultEnvFile, "Path to a .env file (missing file is ignored)")
	cfg = config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(newServeCmd(cfg), newMigrateCmd(cfg))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
