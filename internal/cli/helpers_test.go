package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

// newTestCommand returns a command carrying the load flags, detached from
// the package-level commands so tests do not share flag state.
func newTestCommand(t *testing.T) (*cobra.Command, *loadFlagValues, *bytes.Buffer) {
	t.Helper()

	cmd := &cobra.Command{Use: "test"}
	f := &loadFlagValues{}
	registerTargetFlags(cmd, &f.targetFlagValues)
	cmd.Flags().StringVar(&f.psqlBinary, "psql", "", "")
	cmd.Flags().BoolP("verbose", "v", false, "")

	var out bytes.Buffer
	cmd.SetOut(&out)
	return cmd, f, &out
}

func setFlags(t *testing.T, cmd *cobra.Command, kv ...string) {
	t.Helper()
	for i := 0; i+1 < len(kv); i += 2 {
		if err := cmd.Flags().Set(kv[i], kv[i+1]); err != nil {
			t.Fatalf("set --%s: %v", kv[i], err)
		}
	}
}

// clearTargetEnv isolates a test from the caller's PostgreSQL and cloud
// environment.
func clearTargetEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"PGHOST", "PGPORT", "PGUSER", "PGPASSWORD", "PGDATABASE", "PGSSLMODE", "DATABASE_URL",
		"AWS_REGION", "AZURE_TENANT_ID", "AZURE_CLIENT_ID", "AZURE_CLIENT_SECRET",
	} {
		t.Setenv(name, "")
	}
	t.Setenv("USER", "tester")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
