package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cwbudde/harmonysearch/internal/config"
	"github.com/cwbudde/harmonysearch/internal/opt"
	"github.com/cwbudde/harmonysearch/internal/problem"
	"github.com/cwbudde/harmonysearch/internal/store"
)

var (
	specPath      string
	optimizerName string
	hmcr          float64
	par           float64
	iters         int
	memorySize    int
	seed          int64
	maximize      bool
	restarts      int
	numVars       int
	saveRun       bool
	runDataDir    string
	compressTrace bool
)

var runCmd = &cobra.Command{
	Use:   "run [problem]",
	Short: "Run a one-shot optimization",
	Long: `Runs a single optimization against a named problem or a YAML run spec
(--config) and prints the best solutions found. Flags override run spec
values.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOptimization,
}

func init() {
	runCmd.Flags().StringVar(&specPath, "config", "", "YAML run spec path")
	runCmd.Flags().StringVar(&optimizerName, "optimizer", "harmony", "Optimizer backend: harmony, random, mayfly")
	runCmd.Flags().Float64Var(&hmcr, "hmcr", 0, "Memory consideration rate (0 = engine default)")
	runCmd.Flags().Float64Var(&par, "par", 0, "Pitch adjustment rate (0 = engine default)")
	runCmd.Flags().IntVar(&iters, "iters", 0, "Max iterations (0 = engine default)")
	runCmd.Flags().IntVar(&memorySize, "memory", 0, "Memory size (0 = engine default)")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Random seed (0 = clock)")
	runCmd.Flags().BoolVar(&maximize, "maximize", false, "Maximize the objective instead of minimizing")
	runCmd.Flags().IntVar(&restarts, "restarts", 1, "Independent restarts, best outcome wins")
	runCmd.Flags().IntVar(&numVars, "vars", 0, "Number of variables (0 = problem default)")
	runCmd.Flags().BoolVar(&saveRun, "save", false, "Persist the run record and trace")
	runCmd.Flags().StringVar(&runDataDir, "data-dir", "./data", "Base directory for saved runs")
	runCmd.Flags().BoolVar(&compressTrace, "compress", false, "Compress the saved trace with zstd")

	rootCmd.AddCommand(runCmd)
}

func runOptimization(cmd *cobra.Command, args []string) error {
	spec, err := resolveRunSpec(cmd, args)
	if err != nil {
		return err
	}

	p, err := problem.Get(spec.Problem)
	if err != nil {
		return err
	}
	domain := spec.BuildDomain(p)
	cfg := spec.EngineConfig.Normalize()

	slog.Info("Starting optimization",
		"problem", spec.Problem,
		"optimizer", spec.Optimizer,
		"iters", cfg.Iterations,
		"restarts", spec.Restarts,
	)

	// Run optimization
	start := time.Now()
	var out *opt.Outcome

	if spec.Restarts >= 2 {
		ms := &opt.MultiStart{
			Restarts: spec.Restarts,
			BaseSeed: cfg.Seed,
			Maximize: cfg.Maximize,
			Factory: func(restartSeed int64) (opt.Optimizer, error) {
				c := cfg
				c.Seed = restartSeed
				return opt.New(spec.Optimizer, c, nil)
			},
		}
		out, err = ms.Run(p.Objective, p.Constraint, domain)
	} else {
		var backend opt.Optimizer
		backend, err = opt.New(spec.Optimizer, cfg, nil)
		if err == nil {
			out, err = backend.Run(p.Objective, p.Constraint, domain)
		}
	}
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	slog.Info("Optimization complete",
		"elapsed", elapsed,
		"initial_cost", out.InitialCost,
		"final_cost", out.BestCost,
		"iterations", out.Iterations,
		"converged", out.Converged,
	)

	// Print summary
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Problem:\t%s\n", spec.Problem)
	fmt.Fprintf(w, "Optimizer:\t%s\n", spec.Optimizer)
	fmt.Fprintf(w, "Best cost:\t%.6g\n", out.BestCost)
	fmt.Fprintf(w, "Best:\t%s\n", formatVector(out.Best))
	fmt.Fprintf(w, "Iterations:\t%d\n", out.Iterations)
	fmt.Fprintf(w, "Converged:\t%t\n", out.Converged)
	fmt.Fprintf(w, "Elapsed:\t%s\n", elapsed.Round(time.Millisecond))
	w.Flush()

	if len(out.Solutions) > 1 {
		fmt.Printf("\n%d solutions tie the best cost:\n", len(out.Solutions))
		sw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for i, sol := range out.Solutions {
			fmt.Fprintf(sw, "  %d\t%s\n", i+1, formatVector(sol))
		}
		sw.Flush()
	}

	// Persist when asked
	if saveRun {
		runStore, err := store.NewFSStore(runDataDir)
		if err != nil {
			return fmt.Errorf("failed to open run store: %w", err)
		}
		runID := uuid.New().String()
		runConfig := store.RunConfig{
			Problem:      spec.Problem,
			Optimizer:    spec.Optimizer,
			Restarts:     spec.Restarts,
			Vars:         spec.Vars,
			EngineConfig: cfg,
		}
		if err := runStore.SaveRun(store.NewRunRecord(runID, runConfig, out)); err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
		if len(out.Trace) > 0 {
			if err := store.WriteTrace(runStore.BaseDir(), runID, out.Trace, compressTrace); err != nil {
				return fmt.Errorf("failed to save trace: %w", err)
			}
		}
		fmt.Printf("\nSaved run %s under %s\n", runID, runDataDir)
	}

	return nil
}

// resolveRunSpec builds the effective run spec: the YAML file when given,
// the positional problem name and changed flags layered on top.
func resolveRunSpec(cmd *cobra.Command, args []string) (*config.RunSpec, error) {
	spec := &config.RunSpec{}
	if specPath != "" {
		loaded, err := config.Load(specPath)
		if err != nil {
			return nil, err
		}
		spec = loaded
	}

	if len(args) == 1 {
		spec.Problem = args[0]
	}

	flags := cmd.Flags()
	if spec.Optimizer == "" || flags.Changed("optimizer") {
		spec.Optimizer = optimizerName
	}
	if flags.Changed("hmcr") {
		spec.HMCR = hmcr
	}
	if flags.Changed("par") {
		spec.PAR = par
	}
	if flags.Changed("iters") {
		spec.Iterations = iters
	}
	if flags.Changed("memory") {
		spec.MemorySize = memorySize
	}
	if spec.Seed == 0 || flags.Changed("seed") {
		spec.Seed = seed
	}
	if flags.Changed("maximize") {
		spec.Maximize = maximize
	}
	if spec.Restarts == 0 || flags.Changed("restarts") {
		spec.Restarts = restarts
	}
	if flags.Changed("vars") {
		spec.Vars = numVars
	}

	if spec.Problem == "" {
		return nil, fmt.Errorf("a problem name or --config is required")
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

// formatVector renders a candidate as a compact bracket list.
func formatVector(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
