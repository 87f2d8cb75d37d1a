package db

import (
	"fmt"
	"os"
	"strconv"

	"github.com/vvka-141/pgload/internal/config"
	"github.com/vvka-141/pgload/pkg/pgload"
)

// GranularConnFlags represents target parameters from CLI flags.
// These follow PostgreSQL standard flag conventions (-h, -p, -U, -d).
//
// Note: Password is NOT included as a CLI flag for security reasons.
// Use $PGPASSWORD, ~/.pgpass or a connection string instead.
type GranularConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
	Table    string
	Mode     string
}

// IsEmpty returns true if no connection-related granular flags were provided.
// Database, Table and Mode are excluded because they may refine a connection string.
func (g *GranularConnFlags) IsEmpty() bool {
	return g.Host == "" && g.Port == 0 && g.Username == "" && g.SSLMode == ""
}

// CloudFlags represents cloud IAM CLI flags.
// Note: the Azure client secret is NOT a flag; use $AZURE_CLIENT_SECRET.
type CloudFlags struct {
	AWSIAM         bool
	AWSRegion      string
	Azure          bool
	AzureTenantID  string
	AzureClientID  string
	GoogleInstance string
}

// EnvVars represents PostgreSQL standard and cloud SDK environment variables.
// See: https://www.postgresql.org/docs/current/libpq-envars.html
type EnvVars struct {
	PGHOST       string
	PGPORT       string
	PGUSER       string
	PGPASSWORD   string
	PGDATABASE   string
	PGSSLMODE    string
	DATABASE_URL string

	AWS_REGION string

	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string
}

// LoadFromEnvironment loads PostgreSQL and cloud provider environment variables.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PGHOST:              os.Getenv("PGHOST"),
		PGPORT:              os.Getenv("PGPORT"),
		PGUSER:              os.Getenv("PGUSER"),
		PGPASSWORD:          os.Getenv("PGPASSWORD"),
		PGDATABASE:          os.Getenv("PGDATABASE"),
		PGSSLMODE:           os.Getenv("PGSSLMODE"),
		DATABASE_URL:        os.Getenv("DATABASE_URL"),
		AWS_REGION:          os.Getenv("AWS_REGION"),
		AZURE_TENANT_ID:     os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:     os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET: os.Getenv("AZURE_CLIENT_SECRET"),
	}
}

// TargetSources bundles every input target resolution reads from.
type TargetSources struct {
	ConnString string
	Names      []string
	Flags      *GranularConnFlags
	Cloud      *CloudFlags
	Env        *EnvVars
	Project    *config.ProjectConfig
}

// ResolveTargets resolves the targets of a run.
//
// With --connection (or $DATABASE_URL when no granular flag is set) a single
// target is built from the connection string. Otherwise every selected target
// of pgload.yaml (all of them when Names is empty) is resolved field by field
// with precedence flag > environment > pgload.yaml > default. Without any
// configured target a single unnamed target is built from flags and environment.
//
// Returns an error if both --connection and granular flags are provided, or if
// a requested target name is not configured.
func ResolveTargets(src TargetSources) ([]*pgload.Target, error) {
	flags := src.Flags
	if flags == nil {
		flags = &GranularConnFlags{}
	}
	cloud := src.Cloud
	if cloud == nil {
		cloud = &CloudFlags{}
	}
	env := src.Env
	if env == nil {
		env = &EnvVars{}
	}
	project := src.Project
	if project == nil {
		project = &config.ProjectConfig{}
	}

	if src.ConnString != "" && !flags.IsEmpty() {
		return nil, fmt.Errorf(
			"cannot specify both --connection and granular flags (-h, -p, -U, --sslmode)\n"+
				"Choose one approach:\n"+
				"  1. Connection string: --connection \"postgresql://user@localhost:5432/snowplow\"\n"+
				"  2. Granular flags: -h localhost -p 5432 -U loader -d snowplow\n"+
				"  3. Environment variables: export PGHOST=localhost PGPORT=5432 PGUSER=loader: %w",
			pgload.ErrInvalidConfig,
		)
	}

	connStr := src.ConnString
	if connStr == "" && flags.IsEmpty() && len(src.Names) == 0 && len(project.Targets) == 0 {
		connStr = env.DATABASE_URL
	}

	if connStr != "" {
		target, err := resolveFromConnectionString(connStr, flags, env)
		if err != nil {
			return nil, err
		}
		if err := applyAuth(target, config.TargetConfig{}, cloud, env); err != nil {
			return nil, err
		}
		return []*pgload.Target{target}, nil
	}

	selected, err := selectTargets(project, src.Names)
	if err != nil {
		return nil, err
	}

	targets := make([]*pgload.Target, 0, len(selected))
	for _, tc := range selected {
		target, err := resolveFromGranularParams(flags, env, tc)
		if err != nil {
			return nil, err
		}
		if err := applyAuth(target, tc, cloud, env); err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}
	return targets, nil
}

// selectTargets returns the named config targets in the requested order.
// Without configured targets it yields one empty entry for a flag-only target.
func selectTargets(project *config.ProjectConfig, names []string) ([]config.TargetConfig, error) {
	if len(names) == 0 {
		if len(project.Targets) == 0 {
			return []config.TargetConfig{{}}, nil
		}
		return project.Targets, nil
	}

	selected := make([]config.TargetConfig, 0, len(names))
	for _, name := range names {
		tc, ok := project.Target(name)
		if !ok {
			return nil, fmt.Errorf("target %q is not defined in %s: %w", name, config.ConfigFileName, pgload.ErrInvalidConfig)
		}
		selected = append(selected, tc)
	}
	return selected, nil
}

// resolveFromConnectionString parses a connection string and overlays the
// flags that a connection string cannot carry.
//
// Environment variables are applied as fallbacks for parameters not specified
// in the connection string (following PostgreSQL standard behavior).
func resolveFromConnectionString(connStr string, flags *GranularConnFlags, env *EnvVars) (*pgload.Target, error) {
	target, err := ParseConnectionString(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %v: %w", err, pgload.ErrInvalidConfig)
	}

	if target.SSLMode == "" {
		target.SSLMode = env.PGSSLMODE
	}
	if target.SSLMode == "" {
		target.SSLMode = "prefer"
	}
	if target.Password == "" {
		target.Password = env.PGPASSWORD
	}
	if flags.Database != "" {
		target.Database = flags.Database
	}
	target.Table = flags.Table

	mode, err := pgload.ParseConnectivityMode(flags.Mode)
	if err != nil {
		return nil, err
	}
	target.Mode = mode

	return target, nil
}

// resolveFromGranularParams builds a Target from flags, environment variables
// and one pgload.yaml entry.
//
// Precedence for each parameter:
// 1. CLI flag (highest priority)
// 2. Environment variable
// 3. pgload.yaml
// 4. Default value (lowest priority)
func resolveFromGranularParams(flags *GranularConnFlags, env *EnvVars, tc config.TargetConfig) (*pgload.Target, error) {
	target := &pgload.Target{
		Name:       tc.Name,
		AuthMethod: pgload.AuthMethodStandard,
	}

	target.Host = firstNonEmpty(flags.Host, env.PGHOST, tc.Host)
	if target.Host == "" && tc.GoogleInstance == "" {
		target.Host = "localhost"
	}

	switch {
	case flags.Port != 0:
		target.Port = flags.Port
	case env.PGPORT != "":
		port, err := strconv.Atoi(env.PGPORT)
		if err != nil {
			return nil, fmt.Errorf("invalid $PGPORT value '%s': must be an integer: %w", env.PGPORT, pgload.ErrInvalidConfig)
		}
		target.Port = port
	case tc.Port != 0:
		target.Port = tc.Port
	default:
		target.Port = pgload.DefaultPort
	}

	target.Username = firstNonEmpty(flags.Username, env.PGUSER, tc.Username, os.Getenv("USER"), os.Getenv("USERNAME"))
	target.Password = env.PGPASSWORD
	target.Database = firstNonEmpty(flags.Database, env.PGDATABASE, tc.Database)
	target.SSLMode = firstNonEmpty(flags.SSLMode, env.PGSSLMODE, tc.SSLMode, "prefer")
	target.Table = firstNonEmpty(flags.Table, tc.Table)

	mode, err := pgload.ParseConnectivityMode(firstNonEmpty(flags.Mode, tc.Mode))
	if err != nil {
		return nil, err
	}
	target.Mode = mode

	return target, nil
}

// applyAuth selects the auth method: cloud flags > pgload.yaml auth_method >
// Azure environment credentials > standard.
func applyAuth(target *pgload.Target, tc config.TargetConfig, cloud *CloudFlags, env *EnvVars) error {
	method, err := pgload.ParseAuthMethod(tc.AuthMethod)
	if err != nil {
		return err
	}

	tenantID := firstNonEmpty(cloud.AzureTenantID, env.AZURE_TENANT_ID, tc.AzureTenantID)
	clientID := firstNonEmpty(cloud.AzureClientID, env.AZURE_CLIENT_ID, tc.AzureClientID)
	googleInstance := firstNonEmpty(cloud.GoogleInstance, tc.GoogleInstance)

	switch {
	case cloud.AWSIAM:
		method = pgload.AuthMethodAWSIAM
	case cloud.Azure || cloud.AzureTenantID != "" || cloud.AzureClientID != "":
		method = pgload.AuthMethodAzureEntraID
	case cloud.GoogleInstance != "":
		method = pgload.AuthMethodGoogleIAM
	case tc.AuthMethod == "" && (env.AZURE_TENANT_ID != "" || env.AZURE_CLIENT_ID != ""):
		method = pgload.AuthMethodAzureEntraID
	}

	target.AuthMethod = method
	switch method {
	case pgload.AuthMethodAWSIAM:
		target.AWSRegion = firstNonEmpty(cloud.AWSRegion, env.AWS_REGION, tc.AWSRegion)
	case pgload.AuthMethodAzureEntraID:
		target.AzureTenantID = tenantID
		target.AzureClientID = clientID
		target.AzureClientSecret = env.AZURE_CLIENT_SECRET
	case pgload.AuthMethodGoogleIAM:
		target.GoogleInstance = googleInstance
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
