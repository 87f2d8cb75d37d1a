package cli

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pgload/pkg/pgload"
)

const twoTargetConfig = `targets:
  - name: warehouse
    host: db.internal
    database: snowplow
    username: loader
    table: atomic.events
  - name: rds
    host: events.abc.eu-west-1.rds.amazonaws.com
    database: snowplow
    username: loader
    table: atomic.events
    auth_method: aws-iam
    aws_region: eu-west-1
skip: [analyze]
include: [vacuum]
timeout: 5m
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pgload.yaml")
	writeFile(t, path, content)
	return path
}

func TestResolveRunSettings_FromConfig(t *testing.T) {
	clearTargetEnv(t)
	cmd, f, _ := newTestCommand(t)
	setFlags(t, cmd, "config", writeConfig(t, twoTargetConfig))

	settings, err := resolveRunSettings(cmd, &f.targetFlagValues)
	require.NoError(t, err)

	require.Len(t, settings.Targets, 2)
	assert.Equal(t, "warehouse", settings.Targets[0].Name)
	assert.Equal(t, "db.internal", settings.Targets[0].Host)
	assert.Equal(t, 5432, settings.Targets[0].Port)
	assert.Equal(t, "atomic.events", settings.Targets[0].Table)
	assert.Equal(t, pgload.AuthMethodStandard, settings.Targets[0].AuthMethod)

	assert.Equal(t, "rds", settings.Targets[1].Name)
	assert.Equal(t, pgload.AuthMethodAWSIAM, settings.Targets[1].AuthMethod)
	assert.Equal(t, "eu-west-1", settings.Targets[1].AWSRegion)

	assert.True(t, settings.Skip.Has(pgload.StepAnalyze))
	assert.True(t, settings.Include.Has(pgload.StepVacuum))
	assert.Equal(t, 5*time.Minute, settings.Timeout)
}

func TestResolveRunSettings_FlagsOverrideConfig(t *testing.T) {
	clearTargetEnv(t)
	cmd, f, _ := newTestCommand(t)
	setFlags(t, cmd,
		"config", writeConfig(t, twoTargetConfig),
		"target", "warehouse",
		"host", "override.internal",
		"table", "staging.events",
		"skip", "",
		"include", "",
		"timeout", "30s")

	settings, err := resolveRunSettings(cmd, &f.targetFlagValues)
	require.NoError(t, err)

	require.Len(t, settings.Targets, 1)
	assert.Equal(t, "override.internal", settings.Targets[0].Host)
	assert.Equal(t, "staging.events", settings.Targets[0].Table)
	assert.Empty(t, settings.Skip.Names())
	assert.Empty(t, settings.Include.Names())
	assert.Equal(t, 30*time.Second, settings.Timeout)
}

func TestResolveRunSettings_EnvOverridesConfig(t *testing.T) {
	clearTargetEnv(t)
	t.Setenv("PGHOST", "env.internal")
	t.Setenv("PGPASSWORD", "secret")
	cmd, f, _ := newTestCommand(t)
	setFlags(t, cmd, "config", writeConfig(t, twoTargetConfig), "target", "warehouse")

	settings, err := resolveRunSettings(cmd, &f.targetFlagValues)
	require.NoError(t, err)

	assert.Equal(t, "env.internal", settings.Targets[0].Host)
	assert.Equal(t, "secret", settings.Targets[0].Password)
}

func TestResolveRunSettings_ConnectionString(t *testing.T) {
	clearTargetEnv(t)
	cmd, f, _ := newTestCommand(t)
	setFlags(t, cmd,
		"connection", "postgresql://loader:pw@db.internal:6432/snowplow",
		"table", "events",
		"mode", "pipe")

	settings, err := resolveRunSettings(cmd, &f.targetFlagValues)
	require.NoError(t, err)

	require.Len(t, settings.Targets, 1)
	target := settings.Targets[0]
	assert.Equal(t, "db.internal", target.Host)
	assert.Equal(t, 6432, target.Port)
	assert.Equal(t, "pw", target.Password)
	assert.Equal(t, pgload.ModeRemotePipe, target.Mode)
	assert.False(t, settings.Skip.Has(pgload.StepAnalyze))
	assert.Zero(t, settings.Timeout)
}

func TestResolveRunSettings_Errors(t *testing.T) {
	tests := []struct {
		name  string
		flags []string
	}{
		{"connection with granular flags", []string{"connection", "postgresql://localhost/db", "host", "other"}},
		{"unknown mode", []string{"host", "db.internal", "mode", "sideways"}},
		{"unknown skip step", []string{"host", "db.internal", "skip", "vacuum"}},
		{"unknown include step", []string{"host", "db.internal", "include", "reindex"}},
		{"missing config file", []string{"config", "/nonexistent/pgload.yaml"}},
		{"unknown target", []string{"target", "nowhere"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearTargetEnv(t)
			cmd, f, _ := newTestCommand(t)
			setFlags(t, cmd, tt.flags...)

			_, err := resolveRunSettings(cmd, &f.targetFlagValues)
			require.Error(t, err)
			assert.True(t, errors.Is(err, pgload.ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestResolveRunSettings_InvalidConfigTimeout(t *testing.T) {
	clearTargetEnv(t)
	cmd, f, _ := newTestCommand(t)
	setFlags(t, cmd, "config", writeConfig(t, "targets:\n  - name: a\n    table: events\ntimeout: soon\n"))

	_, err := resolveRunSettings(cmd, &f.targetFlagValues)
	assert.True(t, errors.Is(err, pgload.ErrInvalidConfig))
}

func TestLoadProjectConfig_MissingDefaultIsNotAnError(t *testing.T) {
	cfg, err := loadProjectConfig("")
	require.NoError(t, err)
	assert.Nil(t, cfg)
}
