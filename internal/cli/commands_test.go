package cli

import (
	"testing"

	"github.com/vvka-141/pgload/pkg/pgload"
)

func TestCommands_Registered(t *testing.T) {
	for _, name := range []string{"load", "plan", "version"} {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered (got %v, %v)", name, cmd, err)
		}
	}
}

func TestLoadCmd_ArgsValidation(t *testing.T) {
	err := loadCmd.Args(loadCmd, []string{})
	if err == nil {
		t.Fatal("Expected error for missing args")
	}
	exitCode := pgload.ExitCodeForError(err)
	if exitCode != pgload.ExitUsageError {
		t.Errorf("Expected exit code %d (usage), got %d for: %v", pgload.ExitUsageError, exitCode, err)
	}
}

func TestLoadCmd_ArgsValidation_TooMany(t *testing.T) {
	if err := loadCmd.Args(loadCmd, []string{"a", "b"}); err == nil {
		t.Fatal("Expected error for too many args")
	}
}

func TestPlanCmd_ArgsValidation(t *testing.T) {
	if err := planCmd.Args(planCmd, []string{}); err == nil {
		t.Fatal("Expected error for missing args")
	}
}

func TestLoadCmd_SharedFlags(t *testing.T) {
	for _, cmd := range []string{"load", "plan"} {
		c, _, _ := rootCmd.Find([]string{cmd})
		for _, flag := range []string{
			"config", "target", "connection", "host", "port", "username", "database", "table",
			"sslmode", "mode", "aws-iam", "aws-region", "azure", "azure-tenant-id",
			"azure-client-id", "google-instance", "skip", "include", "timeout",
		} {
			if c.Flags().Lookup(flag) == nil {
				t.Errorf("%s: missing --%s", cmd, flag)
			}
		}
	}
	if loadCmd.Flags().Lookup("psql") == nil {
		t.Error("load: missing --psql")
	}
}

func TestLoad_MissingTable(t *testing.T) {
	clearTargetEnv(t)
	cmd, f, _ := newTestCommand(t)
	setFlags(t, cmd, "connection", "postgresql://loader@localhost:5432/snowplow")

	err := runLoadWith(cmd, f, t.TempDir())
	if got := pgload.ExitCodeForError(err); got != pgload.ExitConfigError {
		t.Errorf("Expected exit code %d, got %d for: %v", pgload.ExitConfigError, got, err)
	}
}

func TestLoad_MissingEventsDir(t *testing.T) {
	clearTargetEnv(t)
	cmd, f, _ := newTestCommand(t)
	setFlags(t, cmd,
		"connection", "postgresql://loader@localhost:5432/snowplow",
		"table", "events")

	err := runLoadWith(cmd, f, "/nonexistent/events/abc123")
	if got := pgload.ExitCodeForError(err); got != pgload.ExitDirectoryUnreadable {
		t.Errorf("Expected exit code %d, got %d for: %v", pgload.ExitDirectoryUnreadable, got, err)
	}
}

func TestLoad_ConnectionRefused(t *testing.T) {
	clearTargetEnv(t)
	dir := t.TempDir()
	writeFile(t, dir+"/part-00000", "e1\tweb\tx\n")

	cmd, f, _ := newTestCommand(t)
	setFlags(t, cmd,
		"connection", "postgresql://loader@127.0.0.1:1/snowplow?sslmode=disable",
		"table", "events",
		"mode", "direct")

	err := runLoadWith(cmd, f, dir)
	if got := pgload.ExitCodeForError(err); got != pgload.ExitConnectionError {
		t.Errorf("Expected exit code %d, got %d for: %v", pgload.ExitConnectionError, got, err)
	}
}

func TestLoad_PipeClientMissing(t *testing.T) {
	clearTargetEnv(t)
	dir := t.TempDir()
	writeFile(t, dir+"/part-00000", "e1\tweb\tx\n")

	cmd, f, _ := newTestCommand(t)
	setFlags(t, cmd,
		"connection", "postgresql://loader@127.0.0.1:1/snowplow",
		"table", "events",
		"mode", "pipe",
		"psql", "/nonexistent/bin/psql")

	err := runLoadWith(cmd, f, dir)
	if got := pgload.ExitCodeForError(err); got != pgload.ExitProcessFailed {
		t.Errorf("Expected exit code %d, got %d for: %v", pgload.ExitProcessFailed, got, err)
	}
}
