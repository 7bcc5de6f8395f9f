package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/psantana5/timedop/internal/proc"
	"github.com/psantana5/timedop/pkg/report"
)

// runCmd is the external-command face of the bounded-call contract: same
// deadline, same forcible kill, but the work is an arbitrary command
// instead of a registered operation.
var runCmd = &cobra.Command{
	Use:   "run [flags] -- <command> [args...]",
	Short: "Run an external command under a deadline",
	Long: `Run spawns a command in its own process group and waits up to --timeout.
On overrun the whole process group is killed, so the command cannot leave
runaway children behind.

Example:
  timedop run --timeout 30s -- ffmpeg -i input.mp4 output.mp4
  timedop run --timeout 5s -- sleep 60`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBoundedCommand,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runBoundedCommand(cmd *cobra.Command, args []string) error {
	log := newLogger()
	log.Info("running bounded command", map[string]interface{}{
		"command": args[0], "timeout": timeout().String(),
	})

	report.Global().CallStarted()
	res, err := proc.RunBounded(cmd.Context(), timeout(), os.Stdout, os.Stderr, args[0], args[1:]...)
	if err != nil {
		report.Global().CallFailed()
		return err
	}

	if res.TimedOut {
		report.Global().CallTimedOut()
		fields := map[string]interface{}{
			"pid": res.PID, "elapsed": res.Duration.String(),
		}
		if res.Usage != nil {
			fields["cpu_percent"] = res.Usage.CPUPercent
			fields["rss_bytes"] = res.Usage.RSSBytes
		}
		log.Warn("command killed at deadline", fields)
		return fmt.Errorf("%s timed out after %s", args[0], timeout())
	}

	report.Global().CallCompleted(res.Duration)
	log.Info("command finished", map[string]interface{}{
		"pid": res.PID, "exit_code": res.ExitCode,
		"reason": string(res.Reason), "elapsed": res.Duration.String(),
	})
	if res.ExitCode != 0 {
		return fmt.Errorf("%s exited with code %d", args[0], res.ExitCode)
	}
	return nil
}
