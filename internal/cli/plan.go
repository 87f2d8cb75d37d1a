package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vvka-141/pgload/internal/logging"
	"github.com/vvka-141/pgload/internal/services"
	"github.com/vvka-141/pgload/pkg/pgload"
)

var planCmd = &cobra.Command{
	Use:   "plan <events_dir>",
	Short: "Show what load would run, without connecting",
	Long: `Plan resolves the targets and event files exactly like load and prints, per
target, the selected mode followed by the statements load would submit.
Nothing is sent to any database.

Examples:
  pgload plan ./events -d snowplow --table atomic.events
  pgload plan ./events --target rds --include vacuum`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

var planFlags targetFlagValues

func init() {
	rootCmd.AddCommand(planCmd)
	registerTargetFlags(planCmd, &planFlags)
}

func runPlan(cmd *cobra.Command, args []string) error {
	return runPlanWith(cmd, &planFlags, args[0])
}

func runPlanWith(cmd *cobra.Command, f *targetFlagValues, eventsDir string) error {
	verbose := getVerboseFlag(cmd)
	logger := logging.NewConsoleLogger(verbose)

	settings, err := resolveRunSettings(cmd, f)
	if err != nil {
		return err
	}

	loader := newLoadService(logging.NewNullLogger(), "")
	for i := range settings.Targets {
		target := &settings.Targets[i]
		if verbose {
			logTargetVerbose(logger, target)
		}

		plan, err := loader.Plan(pgload.LoadRequest{
			EventsDir:    eventsDir,
			Target:       *target,
			SkipSteps:    settings.Skip,
			IncludeSteps: settings.Include,
		})
		if err != nil {
			return err
		}

		post, err := services.MaintenanceStatement(target.Table, settings.Skip, settings.Include)
		if err != nil {
			return err
		}
		printPlan(cmd.OutOrStdout(), target, plan, post)
	}
	return nil
}

// printPlan writes one target's plan: a header line, the load statements
// and the post-processing statement.
func printPlan(w io.Writer, target *pgload.Target, plan services.Plan, post string) {
	fmt.Fprintf(w, "-- target %s: %s mode, %d event file(s)\n", target.DisplayName(), plan.Mode(), plan.FileCount())
	for _, line := range plan.Describe() {
		fmt.Fprintln(w, line)
	}
	if post != "" {
		fmt.Fprintln(w, post)
	}
}
