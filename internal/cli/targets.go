package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/pgload/internal/config"
	"github.com/vvka-141/pgload/internal/db"
	"github.com/vvka-141/pgload/pkg/pgload"
)

// targetFlagValues holds the flags shared by load and plan.
type targetFlagValues struct {
	configPath     string
	targets        []string
	connection     string
	host           string
	port           int
	username       string
	database       string
	table          string
	sslMode        string
	mode           string
	awsIAM         bool
	awsRegion      string
	azure          bool
	azureTenantID  string
	azureClientID  string
	googleInstance string
	skip           []string
	include        []string
	timeout        time.Duration
}

// runSettings is everything a command needs after flags, environment and
// pgload.yaml have been merged.
type runSettings struct {
	Targets []pgload.Target
	Skip    pgload.StepSet
	Include pgload.StepSet
	Timeout time.Duration
}

func registerTargetFlags(cmd *cobra.Command, f *targetFlagValues) {
	cmd.Flags().StringVar(&f.configPath, "config", "",
		"Path to pgload.yaml or the directory containing it (default: ./pgload.yaml if present)")
	cmd.Flags().StringSliceVar(&f.targets, "target", nil,
		"Configured target to load into (can be specified multiple times)\n"+
			"Default: every target in pgload.yaml")

	// Connection string flag (mutually exclusive with granular flags)
	cmd.Flags().StringVar(&f.connection, "connection", "",
		"PostgreSQL connection string (URI or ADO.NET format).\n"+
			"Mutually exclusive with granular flags (--host, --port, --username, --sslmode).\n"+
			"Alternative: DATABASE_URL environment variable.\n"+
			"Example: postgresql://loader@localhost:5432/snowplow")

	// Granular connection flags (PostgreSQL standard)
	// Precedence: flag > environment variable > pgload.yaml > default
	cmd.Flags().StringVarP(&f.host, "host", "h", "",
		"PostgreSQL server host\n"+
			"Precedence: --host > $PGHOST > pgload.yaml > localhost")
	cmd.Flags().IntVarP(&f.port, "port", "p", 0,
		"PostgreSQL server port\n"+
			"Precedence: --port > $PGPORT > pgload.yaml > 5432")
	cmd.Flags().StringVarP(&f.username, "username", "U", "",
		"PostgreSQL user (default: $PGUSER or current OS user)")
	cmd.Flags().StringVarP(&f.database, "database", "d", "",
		"Target database name (or $PGDATABASE)")
	cmd.Flags().StringVar(&f.table, "table", "",
		"Table to load into, optionally schema-qualified (e.g. atomic.events)")
	cmd.Flags().StringVar(&f.sslMode, "sslmode", "",
		"SSL mode: disable|allow|prefer|require|verify-ca|verify-full\n"+
			"(default: prefer, or $PGSSLMODE)")
	cmd.Flags().StringVar(&f.mode, "mode", "",
		"Load strategy: auto|direct|pipe (default: auto)\n"+
			"auto pipes through psql for *.rds.amazonaws.com hosts and loads directly otherwise")

	// Cloud IAM flags
	cmd.Flags().BoolVar(&f.awsIAM, "aws-iam", false,
		"Authenticate with an AWS RDS IAM token (uses the default AWS credential chain)")
	cmd.Flags().StringVar(&f.awsRegion, "aws-region", "",
		"AWS region for RDS IAM tokens (overrides $AWS_REGION)")
	cmd.Flags().BoolVar(&f.azure, "azure", false,
		"Enable Azure Entra ID authentication\n"+
			"Uses DefaultAzureCredential chain (Managed Identity, Azure CLI, etc.)")
	cmd.Flags().StringVar(&f.azureTenantID, "azure-tenant-id", "",
		"Azure AD tenant/directory ID (overrides $AZURE_TENANT_ID)")
	cmd.Flags().StringVar(&f.azureClientID, "azure-client-id", "",
		"Azure AD application/client ID (overrides $AZURE_CLIENT_ID)")
	cmd.Flags().StringVar(&f.googleInstance, "google-instance", "",
		"Google Cloud SQL instance connection name (project:region:instance)\n"+
			"Enables Cloud SQL IAM authentication (direct mode only)")

	// Post-processing flags
	cmd.Flags().StringSliceVar(&f.skip, "skip", nil,
		"Default post-processing steps to omit: analyze")
	cmd.Flags().StringSliceVar(&f.include, "include", nil,
		"Optional post-processing steps to add: vacuum")

	cmd.Flags().DurationVar(&f.timeout, "timeout", 0,
		"Abort the whole run after this duration (default 0: no limit)\n"+
			"Examples: 30s, 5m, 1h30m")
}

// resolveRunSettings merges flags, environment and pgload.yaml into the
// targets and steps of a run.
func resolveRunSettings(cmd *cobra.Command, f *targetFlagValues) (*runSettings, error) {
	_ = godotenv.Load()

	projectCfg, err := loadProjectConfig(f.configPath)
	if err != nil {
		return nil, err
	}

	resolved, err := db.ResolveTargets(db.TargetSources{
		ConnString: f.connection,
		Names:      f.targets,
		Flags: &db.GranularConnFlags{
			Host:     f.host,
			Port:     f.port,
			Username: f.username,
			Database: f.database,
			SSLMode:  f.sslMode,
			Table:    f.table,
			Mode:     f.mode,
		},
		Cloud: &db.CloudFlags{
			AWSIAM:         f.awsIAM,
			AWSRegion:      f.awsRegion,
			Azure:          f.azure,
			AzureTenantID:  f.azureTenantID,
			AzureClientID:  f.azureClientID,
			GoogleInstance: f.googleInstance,
		},
		Env:     db.LoadFromEnvironment(),
		Project: projectCfg,
	})
	if err != nil {
		return nil, err
	}

	settings := &runSettings{
		Targets: make([]pgload.Target, 0, len(resolved)),
		Skip:    pgload.NewStepSet(f.skip...),
		Include: pgload.NewStepSet(f.include...),
		Timeout: f.timeout,
	}
	for _, t := range resolved {
		settings.Targets = append(settings.Targets, *t)
	}

	if projectCfg != nil {
		if !cmd.Flags().Changed("skip") {
			settings.Skip = pgload.NewStepSet(projectCfg.Skip...)
		}
		if !cmd.Flags().Changed("include") {
			settings.Include = pgload.NewStepSet(projectCfg.Include...)
		}
		if projectCfg.Timeout != "" && !cmd.Flags().Changed("timeout") {
			parsed, err := time.ParseDuration(projectCfg.Timeout)
			if err != nil {
				return nil, fmt.Errorf("invalid timeout in %s: %v: %w", config.ConfigFileName, err, pgload.ErrInvalidConfig)
			}
			settings.Timeout = parsed
		}
	}

	if err := validateSteps(settings.Skip, settings.Include); err != nil {
		return nil, err
	}
	return settings, nil
}

// validateSteps rejects step names the post-processing chain does not know.
func validateSteps(skip, include pgload.StepSet) error {
	var errs []error
	for _, name := range skip.Names() {
		if name != pgload.StepAnalyze {
			errs = append(errs, fmt.Errorf("cannot skip %q (skippable: %s): %w", name, pgload.StepAnalyze, pgload.ErrInvalidConfig))
		}
	}
	for _, name := range include.Names() {
		if name != pgload.StepVacuum {
			errs = append(errs, fmt.Errorf("cannot include %q (includable: %s): %w", name, pgload.StepVacuum, pgload.ErrInvalidConfig))
		}
	}
	return errors.Join(errs...)
}

// loadProjectConfig loads pgload.yaml. Without --config a missing file in the
// working directory is not an error and yields a nil config.
func loadProjectConfig(path string) (*config.ProjectConfig, error) {
	explicit := path != ""
	if !explicit {
		path = "."
	}

	projectCfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) && !explicit {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load %s: %v: %w", config.ConfigFileName, err, pgload.ErrInvalidConfig)
	}
	return projectCfg, nil
}

// logTargetVerbose logs target details when verbose mode is enabled.
func logTargetVerbose(logger pgload.Logger, t *pgload.Target) {
	logger.Verbose("Target %s resolved:", t.DisplayName())
	logger.Verbose("  Host: %s", t.Host)
	logger.Verbose("  Port: %d", t.Port)
	logger.Verbose("  User: %s", t.Username)
	logger.Verbose("  Database: %s", t.Database)
	logger.Verbose("  Table: %s", t.Table)
	logger.Verbose("  SSL Mode: %s", t.SSLMode)
	logger.Verbose("  Mode: %s", t.Mode)
	logger.Verbose("  Auth Method: %s", t.AuthMethod)
}
