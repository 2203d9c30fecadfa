package cli

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-gauge/internal/config"
	"github.com/mvp-joe/project-gauge/internal/logging"
)

var (
	cfgFile    string
	projectDir string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gauge",
	Short: "Gauge - compute measures and quality gates from analysis reports",
	Long: `Gauge turns a scanner's analysis report into project measures.

It builds the component tree, loads duplications, aggregates size and
duplication measures, computes variations against the leak period, evaluates
the quality gate and records the analysis in a local history database.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <dir>/.gauge/config.yml)")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "C", "", "project directory (default is the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadEnvironment resolves the project directory, loads its configuration
// and builds the logger shared by every command.
func loadEnvironment() (string, *config.Config, hclog.Logger, error) {
	rootDir := projectDir
	if rootDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", nil, nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		rootDir = wd
	}

	loader := config.NewLoader(rootDir)
	if cfgFile != "" {
		loader = config.NewFileLoader(rootDir, cfgFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return "", nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if verbose {
		cfg.Log.Level = "debug"
	}
	return rootDir, cfg, logging.New(cfg.Log), nil
}
