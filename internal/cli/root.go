package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pgload",
	Short: "Bulk-load event files into PostgreSQL",
	Long: `pgload bulk-loads part-* event files into PostgreSQL tables with COPY.

Self-hosted servers read the files directly inside one BEGIN/COMMIT
transaction. Managed hosts (Amazon RDS) cannot read server-side files, so each
file is streamed through psql instead. After a successful load the table is
analyzed and, on request, vacuumed.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or target definition
  11 - Database connection failed
  13 - COPY or maintenance statement failed
  15 - Events directory unreadable
  16 - psql failed or could not be started`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for pgload")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
