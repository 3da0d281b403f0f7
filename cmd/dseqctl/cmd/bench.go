package cmd

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/dmrogers-hpc/dseq/pkg/dseq"
	"github.com/dmrogers-hpc/dseq/pkg/fabric"
	"github.com/dmrogers-hpc/dseq/pkg/repartition"
	"github.com/dmrogers-hpc/dseq/pkg/utils"
)

var (
	benchProcs  int
	benchM      int
	benchTarget int
)

// benchCmd times reduce, scan and repartition over iterates(m) across
// a local cohort, printing a utils.Timer summary. It is a benchmarking
// harness for the library's own collectives, not a workload of its
// own.
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark reduce/scan/repartition over a local cohort",
	RunE:  runBench,
}

func init() {
	benchCmd.Flags().IntVar(&benchProcs, "procs", 4, "Number of simulated ranks")
	benchCmd.Flags().IntVar(&benchM, "m", 100000, "Size of the input sequence")
	benchCmd.Flags().IntVar(&benchTarget, "target", 8, "Target partition count for repartition")
	rootCmd.AddCommand(benchCmd)
}

// benchRow is a fixed-width element used to exercise repartition,
// mirroring scenario 6 in the library's test matrix: iterates(m) is
// turned into one length-4 row per element before being resegmented
// into --target blocks.
type benchRow []int

func runBench(cmd *cobra.Command, args []string) error {
	log := GetLogger()
	procs := benchProcs
	if c := GetConfig(); c != nil && c.Fabric.Procs > 0 && !cmd.Flags().Changed("procs") {
		procs = c.Fabric.Procs
	}

	world := fabric.NewWorld(procs)
	rec := buildAuditRecorder()
	timer := utils.NewTimer("bench", utils.WithLogger(log))

	var wg sync.WaitGroup
	wg.Add(procs)

	var mu sync.Mutex
	var benchErr error
	var sum int
	var scanLast int
	var repartitionLen int

	for r := 0; r < procs; r++ {
		r := r
		go func() {
			defer wg.Done()
			ctx := dseq.NewContext(world.Rank(r), log).WithAudit(rec)

			d := ctx.Iterates(benchM, false)

			reduceTimer := timer.StartRank(r, "reduce")
			total, err := dseq.Reduce[int, int](d, 0,
				func(acc *int, e int) { *acc += e },
				func(dst *int, src int) { *dst += src },
				true,
			)
			reduceTimer.Stop()
			if err != nil {
				mu.Lock()
				benchErr = fmt.Errorf("reduce: %w", err)
				mu.Unlock()
				return
			}

			scanTimer := timer.StartRank(r, "scan")
			scanned, err := d.Scan(func(a, b int) int { return a + b })
			scanTimer.Stop()
			if err != nil {
				mu.Lock()
				benchErr = fmt.Errorf("scan: %w", err)
				mu.Unlock()
				return
			}
			var last int
			if local := scanned.Local(); len(local) > 0 && r == procs-1 {
				last = local[len(local)-1]
			}

			rowsDS := dseq.NewLocal(ctx, toRows(d.Local()))

			repartitionTimer := timer.StartRank(r, "repartition")
			out, err := dseq.Repartition[benchRow, benchRow](
				rowsDS,
				func(r benchRow) int { return len(r) },
				func(e benchRow, ranges []repartition.Range) []benchRow {
					blocks := make([]benchRow, len(ranges))
					for i, rg := range ranges {
						blocks[i] = append(benchRow(nil), e[rg.Lo:rg.Hi]...)
					}
					return blocks
				},
				func(blocks []benchRow) benchRow {
					var out benchRow
					for _, b := range blocks {
						out = append(out, b...)
					}
					return out
				},
				benchTarget,
			)
			repartitionTimer.Stop()
			if err != nil {
				mu.Lock()
				benchErr = fmt.Errorf("repartition: %w", err)
				mu.Unlock()
				return
			}

			mu.Lock()
			sum = total
			if r == procs-1 {
				scanLast = last
			}
			repartitionLen += len(out)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if benchErr != nil {
		return benchErr
	}

	log.Info("bench: m=%d procs=%d target=%d sum=%d scan_last=%d repartition_local_total=%d",
		benchM, procs, benchTarget, sum, scanLast, repartitionLen)
	timer.PrintSummary()
	return nil
}

// toRows turns one length-4 row per element, mirroring the
// (x, 4)-shaped array benchmark scenario.
func toRows(xs []int) []benchRow {
	out := make([]benchRow, len(xs))
	for i, x := range xs {
		r := make(benchRow, 4)
		for k := range r {
			r[k] = x
		}
		out[i] = r
	}
	return out
}
