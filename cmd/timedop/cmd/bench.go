package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/psantana5/timedop/pkg/report"
	"github.com/psantana5/timedop/pkg/timedcall"
	"github.com/psantana5/timedop/pkg/timedop"
)

var (
	benchOp        string
	benchCount     int
	benchRate      float64
	benchTarget    int64
	benchIncrement int64
	benchOut       string
)

// benchCmd repeats a bounded call at a limited rate and summarizes the
// outcomes. Useful for sizing a deadline before wiring it into a job.
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Repeat a bounded call and summarize outcomes",
	Long: `Bench performs a registered operation repeatedly under the configured
deadline, pacing the calls with a rate limiter, and prints a summary table.
Counters can be exported to YAML with --out.

Example:
  timedop bench --count 10 --rate 2 --target 5000000
  timedop bench --op sleep --count 5 --timeout 100ms`,
	RunE: runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().StringVar(&benchOp, "op", opBusyWork, "registered operation to call")
	benchCmd.Flags().IntVar(&benchCount, "count", 5, "number of calls")
	benchCmd.Flags().Float64Var(&benchRate, "rate", 1, "calls per second")
	benchCmd.Flags().Int64Var(&benchTarget, "target", 5000000, "work target passed as the first argument")
	benchCmd.Flags().Int64Var(&benchIncrement, "increment", 1, "increment kwarg for busy_work")
	benchCmd.Flags().StringVar(&benchOut, "out", "", "write counter snapshot to this YAML file")
}

func runBench(cmd *cobra.Command, args []string) error {
	if benchCount < 1 {
		return fmt.Errorf("--count must be at least 1")
	}
	log := newLogger()
	limiter := rate.NewLimiter(rate.Limit(benchRate), 1)

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Call", "Elapsed", "Outcome", "Result")

	for i := 1; i <= benchCount; i++ {
		if err := limiter.Wait(cmd.Context()); err != nil {
			return err
		}

		watch := timedop.New("").Start()
		result, err := timedcall.Call(cmd.Context(), benchOp,
			timedcall.Args{benchTarget},
			timedcall.Kwargs{{Key: "increment", Value: benchIncrement}},
			timedcall.WithTimeout(timeout()),
			timedcall.WithLogger(log),
		)
		watch.Stop()

		var timedOut *timedcall.TimedOut
		var workerErr *timedcall.WorkerError
		switch {
		case errors.As(err, &timedOut):
			table.Append(fmt.Sprintf("%d", i), watch.String()+"s", "timed out", "")
		case errors.As(err, &workerErr):
			table.Append(fmt.Sprintf("%d", i), watch.String()+"s", "failed", workerErr.Message)
		case err != nil:
			return err
		default:
			table.Append(fmt.Sprintf("%d", i), watch.String()+"s", "ok", fmt.Sprintf("%v", result))
		}
	}

	table.Render()

	snap := report.Global().Snapshot()
	fmt.Printf("\nstarted=%d completed=%d timed_out=%d failed=%d busy=%.2fs\n",
		snap.CallsStarted, snap.CallsCompleted, snap.CallsTimedOut, snap.CallsFailed, snap.BusySeconds)

	if benchOut != "" {
		f, err := os.Create(benchOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", benchOut, err)
		}
		defer f.Close()
		if err := report.Global().WriteYAML(f); err != nil {
			return err
		}
		log.Info("wrote counter snapshot", map[string]interface{}{"path": benchOut})
	}
	return nil
}
