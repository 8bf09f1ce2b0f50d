package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/budgetd/pkg/cli"
	"mercator-hq/budgetd/pkg/limits"
)

var benchFlags struct {
	tenants     uint64
	ops         int64
	concurrency int
	queryRatio  float64
	maxAmount   float64
	seed        uint64
	format      string
	quiet       bool
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Load test the budgeting engine in-process",
	Long: `Drive the configured policies with a random mix of spend recordings and
budget queries across many projects, and report throughput.

The workload runs in-process against a fresh registry, with the maintenance
loop running, so it measures the engine rather than a transport.

Examples:
  # Default: 2^16 projects, 1M operations on every CPU
  budgetd bench

  # Large tenant space, queries only 10% of the time
  budgetd bench --tenants 1048576 --ops 10000000 --query-ratio 0.1

  # Machine-readable output
  budgetd bench --format json --quiet`,
	RunE: runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().Uint64Var(&benchFlags.tenants, "tenants", 1<<16, "number of distinct projects")
	benchCmd.Flags().Int64Var(&benchFlags.ops, "ops", 1_000_000, "total operations")
	benchCmd.Flags().IntVar(&benchFlags.concurrency, "concurrency", runtime.GOMAXPROCS(0), "concurrent workers")
	benchCmd.Flags().Float64Var(&benchFlags.queryRatio, "query-ratio", 0.5, "fraction of operations that only query")
	benchCmd.Flags().Float64Var(&benchFlags.maxAmount, "max-amount", 1.0, "upper bound of a random spend amount")
	benchCmd.Flags().Uint64Var(&benchFlags.seed, "seed", 1, "random seed")
	benchCmd.Flags().StringVar(&benchFlags.format, "format", "text", "output format: text, json")
	benchCmd.Flags().BoolVarP(&benchFlags.quiet, "quiet", "q", false, "do not print progress")
}

// benchOptions describes one workload.
type benchOptions struct {
	Tenants     uint64
	Ops         int64
	Concurrency int
	QueryRatio  float64
	MaxAmount   float64
	Seed        uint64
}

func (o benchOptions) validate() error {
	switch {
	case o.Tenants == 0:
		return fmt.Errorf("--tenants must be positive")
	case o.Ops <= 0:
		return fmt.Errorf("--ops must be positive")
	case o.Concurrency <= 0:
		return fmt.Errorf("--concurrency must be positive")
	case o.QueryRatio < 0 || o.QueryRatio > 1:
		return fmt.Errorf("--query-ratio must be between 0 and 1")
	case o.MaxAmount < 0:
		return fmt.Errorf("--max-amount must not be negative")
	}
	return nil
}

type benchResult struct {
	Operations   int64                `json:"operations"`
	Records      int64                `json:"records"`
	Queries      int64                `json:"queries"`
	Exceeding    int64                `json:"exceeding_decisions"`
	Duration     time.Duration        `json:"duration_ns"`
	OpsPerSecond float64              `json:"ops_per_second"`
	Tracked      int                  `json:"tracked_records"`
	Policies     []limits.PolicyStats `json:"policies"`
}

func (r benchResult) Text() string {
	var b strings.Builder
	b.WriteString("Results:\n")
	b.WriteString("--------\n")
	fmt.Fprintf(&b, "Operations:      %d (%d record, %d query)\n", r.Operations, r.Records, r.Queries)
	fmt.Fprintf(&b, "Duration:        %.2fs\n", r.Duration.Seconds())
	fmt.Fprintf(&b, "Throughput:      %.0f ops/s\n", r.OpsPerSecond)
	fmt.Fprintf(&b, "Exceeding:       %d decisions\n", r.Exceeding)
	fmt.Fprintf(&b, "Tracked records: %d\n", r.Tracked)
	for _, p := range r.Policies {
		fmt.Fprintf(&b, "  %-24s tracked=%d exceeding=%d\n", p.Name, p.Tracked, p.Exceeding)
	}
	return strings.TrimRight(b.String(), "\n")
}

func runBench(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(benchFlags.format)
	if err != nil {
		return err
	}

	opts := benchOptions{
		Tenants:     benchFlags.tenants,
		Ops:         benchFlags.ops,
		Concurrency: benchFlags.concurrency,
		QueryRatio:  benchFlags.queryRatio,
		MaxAmount:   benchFlags.maxAmount,
		Seed:        benchFlags.seed,
	}
	if err := opts.validate(); err != nil {
		return err
	}

	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	registry, err := newRegistry(cfg, discardLogger())
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}

	var progressOut io.Writer = cmd.ErrOrStderr()
	if benchFlags.quiet {
		progressOut = io.Discard
	}

	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	result := runWorkload(ctx, registry, opts, progressOut)
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), result)
}

// runWorkload drives registry with opts until the operations are done or
// ctx is cancelled.
func runWorkload(ctx context.Context, registry *limits.Registry, opts benchOptions, progressOut io.Writer) benchResult {
	policies := registry.Policies()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = registry.Run(ctx) }()

	progress := cli.NewProgress(progressOut, opts.Ops)
	go progress.Run(ctx, 500*time.Millisecond)

	type tally struct{ records, queries, exceeding int64 }
	tallies := make([]tally, opts.Concurrency)

	start := time.Now()
	var wg sync.WaitGroup
	for w := 0; w < opts.Concurrency; w++ {
		n := opts.Ops / int64(opts.Concurrency)
		if int64(w) < opts.Ops%int64(opts.Concurrency) {
			n++
		}

		wg.Add(1)
		go func(w int, n int64) {
			defer wg.Done()
			rng := rand.New(rand.NewPCG(opts.Seed, uint64(w)))
			t := &tallies[w]

			for i := int64(0); i < n; i++ {
				if i%1024 == 0 && ctx.Err() != nil {
					return
				}

				policy := policies[rng.IntN(len(policies))]
				tenant := rng.Uint64N(opts.Tenants)

				var exceeds bool
				if rng.Float64() < opts.QueryRatio {
					exceeds = registry.ExceedsBudget(policy, tenant)
					t.queries++
				} else {
					exceeds = registry.RecordSpending(policy, tenant, rng.Float64()*opts.MaxAmount)
					t.records++
				}
				if exceeds {
					t.exceeding++
				}
				if i%256 == 255 {
					progress.Add(256)
				}
			}
			progress.Add(n % 256)
		}(w, n)
	}
	wg.Wait()
	elapsed := time.Since(start)
	progress.Finish()

	result := benchResult{
		Duration: elapsed,
		Tracked:  registry.Len(),
		Policies: registry.Stats(),
	}
	for _, t := range tallies {
		result.Records += t.records
		result.Queries += t.queries
		result.Exceeding += t.exceeding
	}
	result.Operations = result.Records + result.Queries
	if elapsed > 0 {
		result.OpsPerSecond = float64(result.Operations) / elapsed.Seconds()
	}
	return result
}
