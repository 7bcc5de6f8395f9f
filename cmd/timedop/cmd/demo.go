package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/psantana5/timedop/pkg/timedcall"
	"github.com/psantana5/timedop/pkg/timedop"
)

// demoCmd walks through the library surface: manual stopwatch use, scoped
// measurements, nested measurements, and bounded calls that return and
// time out.
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Show stopwatch and bounded-call usage",
	Long: `Runs simulated busy work under a stopwatch, nests scoped measurements,
then performs two bounded calls: one that returns within its deadline and
one that is killed at the deadline.`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

type demoRow struct {
	phase   string
	elapsed string
	outcome string
}

func runDemo(cmd *cobra.Command, args []string) error {
	var rows []demoRow

	// Manual start/stop with a custom display format.
	t := timedop.New("Elapsed: ")
	if err := t.SetFormat("%0.2fs"); err != nil {
		return err
	}
	t.Start()
	fmt.Println("Simulating some long operation.")
	simulateBusyWork("simulating work")
	if err := t.Stop(); err != nil {
		return err
	}
	fmt.Println(t)
	rows = append(rows, demoRow{"manual stopwatch", t.String(), "ok"})

	// Scoped measurement: Stop is guaranteed when the function returns.
	fmt.Println()
	scoped := timedop.New("Elapsed: ").Do(func(t *timedop.TimedOp) {
		for i := 1; i <= 3; i++ {
			simulateBusyWork(fmt.Sprintf("round %d", i))
			fmt.Printf("%d: %s\n", i, t)
		}
	})
	rows = append(rows, demoRow{"scoped stopwatch", scoped.String(), "ok"})

	// Nested scopes: each sub-operation gets its own watch under a total.
	fmt.Println()
	total := timedop.New("Total: ").Do(func(t *timedop.TimedOp) {
		for i := 1; i <= 3; i++ {
			sub := timedop.New(fmt.Sprintf("Sub Operation %d: ", i)).Do(func(*timedop.TimedOp) {
				simulateBusyWork(fmt.Sprintf("sub operation %d", i))
			})
			fmt.Println(sub)
		}
		fmt.Println(t)
	})
	rows = append(rows, demoRow{"nested stopwatch", total.String(), "ok"})

	// Bounded calls. The first target finishes well inside the deadline;
	// the second is picked to guarantee a kill.
	log := newLogger()
	for _, target := range []int64{5000000, 100000000000} {
		watch := timedop.New("").Start()
		result, err := timedcall.Call(context.Background(), opBusyWork,
			timedcall.Args{target},
			timedcall.Kwargs{{Key: "increment", Value: int64(2)}},
			timedcall.WithTimeout(2*time.Second),
			timedcall.WithLogger(log),
		)
		watch.Stop()

		phase := fmt.Sprintf("bounded call (%d)", target)
		var timedOut *timedcall.TimedOut
		switch {
		case errors.As(err, &timedOut):
			fmt.Printf("\n%v\n", err)
			rows = append(rows, demoRow{phase, watch.String(), "timed out"})
		case err != nil:
			return err
		default:
			fmt.Printf("\nA timed call returned: %v\n", result)
			rows = append(rows, demoRow{phase, watch.String(), "ok"})
		}
	}

	fmt.Println()
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Phase", "Elapsed", "Outcome")
	for _, row := range rows {
		table.Append(row.phase, row.elapsed, row.outcome)
	}
	table.Render()

	return nil
}

// simulateBusyWork spins through a fixed amount of counting with a
// progress bar, standing in for a real workload.
func simulateBusyWork(description string) {
	const total = 5000000
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
	)
	var count int64
	for count < total {
		count++
		if count%(total/100) == 0 {
			bar.Add(1)
		}
	}
	bar.Finish()
	fmt.Println()
}
