package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-gauge/internal/config"
	"github.com/mvp-joe/project-gauge/internal/engine"
	"github.com/mvp-joe/project-gauge/internal/measure"
	"github.com/mvp-joe/project-gauge/internal/metric"
	"github.com/mvp-joe/project-gauge/internal/report"
	"github.com/mvp-joe/project-gauge/internal/storage"
	"github.com/mvp-joe/project-gauge/internal/watcher"
)

// ErrQualityGateFailed is returned by analyze --fail-on-gate when the gate is red.
var ErrQualityGateFailed = errors.New("quality gate failed")

var (
	quietFlag      bool
	watchFlag      bool
	noHistoryFlag  bool
	failOnGateFlag bool
	leakPeriodFlag string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <report>",
	Short: "Compute the measures and quality gate of an analysis report",
	Long: `Analyze runs the computation pipeline over a scanner report (YAML or JSON)
and records the analysis in the history database.

The pipeline:
  - Builds the component tree, reusing component uuids from history
  - Resolves the leak period (date, days, previous_version or a version)
  - Loads duplications and serializes them per file
  - Aggregates size and duplication measures up the tree
  - Computes variations against the leak period analysis
  - Evaluates the quality gate on the project
  - Persists components, the analysis, its measures and properties

Examples:
  # Analyze a report
  gauge analyze build/report.yml

  # Compare to the last 30 days instead of the configured leak period
  gauge analyze build/report.yml --leak-period 30

  # Re-run the analysis whenever the report is rewritten
  gauge analyze build/report.yml --watch

  # Fail the build when the quality gate is red
  gauge analyze build/report.yml --fail-on-gate
`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	analyzeCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Re-run the analysis when the report changes")
	analyzeCmd.Flags().BoolVar(&noHistoryFlag, "no-history", false, "Do not read or write the history database")
	analyzeCmd.Flags().BoolVar(&failOnGateFlag, "fail-on-gate", false, "Exit with an error when the quality gate is ERROR")
	analyzeCmd.Flags().StringVar(&leakPeriodFlag, "leak-period", "", "Override the configured leak period")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	// Set up context with cancellation for Ctrl+C
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(cmd.ErrOrStderr(), "\nInterrupted! Cancelling analysis...")
			cancel()
		case <-ctx.Done():
		}
	}()

	rootDir, cfg, logger, err := loadEnvironment()
	if err != nil {
		return err
	}
	if leakPeriodFlag != "" {
		cfg.LeakPeriod = leakPeriodFlag
	}

	a, err := newAnalyzer(analyzerOptions{
		Config:    cfg,
		RootDir:   rootDir,
		NoHistory: noHistoryFlag,
		Quiet:     quietFlag,
		Out:       cmd.OutOrStdout(),
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	reportPath := args[0]
	pc, err := a.Run(ctx, reportPath)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("analysis cancelled")
		}
		return err
	}

	if !watchFlag {
		if failOnGateFlag && pc.GateStatus != nil && pc.GateStatus.Level == measure.LevelError {
			return fmt.Errorf("%w: %s", ErrQualityGateFailed, pc.GateStatus.Text())
		}
		return nil
	}

	w, err := watcher.NewReportWatcher([]string{reportPath}, watcher.Options{Logger: logger})
	if err != nil {
		return fmt.Errorf("failed to watch report: %w", err)
	}
	defer w.Stop()

	err = w.Start(ctx, func(reports []string) {
		for _, path := range reports {
			if _, err := a.Run(ctx, path); err != nil && ctx.Err() == nil {
				logger.Error("analysis failed", "report", path, "error", err)
			}
		}
	})
	if err != nil {
		return fmt.Errorf("watch mode failed: %w", err)
	}
	if !quietFlag {
		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for changes...\n", reportPath)
	}

	<-ctx.Done()
	if !quietFlag {
		fmt.Fprintln(cmd.OutOrStdout(), "Watch mode stopped")
	}
	return nil
}

type analyzerOptions struct {
	Config    *config.Config
	RootDir   string
	NoHistory bool
	Quiet     bool
	Out       io.Writer
	Logger    hclog.Logger
}

// analyzer runs analyses against one history database. Runs are serialized by
// the analysis lock.
type analyzer struct {
	cfg      *config.Config
	quiet    bool
	out      io.Writer
	logger   hclog.Logger
	progress engine.ProgressReporter
	db       *sql.DB
	lock     *storage.AnalysisLock
	metrics  metric.Repository
}

func newAnalyzer(opts analyzerOptions) (*analyzer, error) {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}

	a := &analyzer{
		cfg:      opts.Config,
		quiet:    opts.Quiet,
		out:      opts.Out,
		logger:   opts.Logger,
		progress: NewCLIProgressReporter(opts.Out, opts.Quiet),
	}

	if opts.NoHistory {
		a.metrics = metric.MustNewRegistry(metric.Core())
		return a, nil
	}

	dbPath := opts.Config.DatabasePath(opts.RootDir)
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, err
	}

	lockDir := filepath.Dir(dbPath)
	if dbPath == ":memory:" {
		lockDir = opts.RootDir
	}
	lock, err := storage.NewAnalysisLock(lockDir, opts.Config.Storage.LockName)
	if err != nil {
		db.Close()
		return nil, err
	}

	// Measures reference metrics by id, so the catalogue must come from the database.
	stored, err := storage.LoadMetrics(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	metrics, err := metric.NewRegistry(stored)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("invalid metric catalogue: %w", err)
	}

	a.db = db
	a.lock = lock
	a.metrics = metrics
	return a, nil
}

// Run analyzes one report file.
func (a *analyzer) Run(ctx context.Context, reportPath string) (*engine.Context, error) {
	start := time.Now()

	r, err := report.Load(reportPath)
	if err != nil {
		return nil, err
	}

	stores := engine.Stores{}
	if a.db != nil {
		if err := a.lock.Acquire(ctx, time.Duration(a.cfg.Storage.LockTimeout)*time.Second); err != nil {
			return nil, err
		}
		defer func() {
			if err := a.lock.Release(); err != nil {
				a.logger.Warn("failed to release analysis lock", "path", a.lock.Path(), "error", err)
			}
		}()
		stores = engine.NewStores(a.db)
	}

	pc, err := engine.NewContext(engine.Options{
		Report:   r,
		Metrics:  a.metrics,
		Settings: a.cfg.ToEngineSettings(),
		Stores:   stores,
		Logger:   a.logger,
	})
	if err != nil {
		return nil, err
	}

	if err := engine.NewRunner(engine.DefaultSteps(), a.progress, a.logger).Run(ctx, pc); err != nil {
		a.logger.Error("analysis failed", "report", reportPath, "analysis", pc.AnalysisUUID, "error", err)
		return nil, err
	}

	a.logger.Info("analysis complete", "report", reportPath, "analysis", pc.AnalysisUUID, "duration", time.Since(start))
	if !a.quiet {
		a.printSummary(pc, time.Since(start))
	}
	return pc, nil
}

func (a *analyzer) printSummary(pc *engine.Context, elapsed time.Duration) {
	root := pc.Tree.Root()
	fmt.Fprintf(a.out, "✓ Analysis of %s complete: %s components, %s files in %.1fs\n",
		root.Key(), formatNumber(pc.Tree.Size()), formatNumber(len(pc.Tree.Files())), elapsed.Seconds())
	fmt.Fprintf(a.out, "  Analysis:     %s\n", pc.AnalysisUUID)

	if p, err := pc.Period.Period(); err == nil && p != nil {
		fmt.Fprintf(a.out, "  Leak period:  %s\n", p)
	} else {
		fmt.Fprintf(a.out, "  Leak period:  none\n")
	}

	if pc.GateStatus == nil || len(pc.GateStatus.Results) == 0 {
		fmt.Fprintf(a.out, "  Quality gate: no conditions\n")
		return
	}
	if text := pc.GateStatus.Text(); text != "" {
		fmt.Fprintf(a.out, "  Quality gate: %s (%s)\n", pc.GateStatus.Level, text)
	} else {
		fmt.Fprintf(a.out, "  Quality gate: %s\n", pc.GateStatus.Level)
	}
}

// Close releases the history database.
func (a *analyzer) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
