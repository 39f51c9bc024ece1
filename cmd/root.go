package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/metascope/internal/aggregate"
	cfgpkg "github.com/KaramelBytes/metascope/internal/config"
	"github.com/KaramelBytes/metascope/internal/explore"
	"github.com/KaramelBytes/metascope/internal/logging"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global

	// Process logger, built before every command runs
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "metascope",
	Short: "metascope: explore research-paper metadata from the command line",
	Long: `metascope loads a paper-metadata CSV (CORD-19 style), drops incomplete rows,
derives publication years and abstract lengths, and summarizes the collection
by year, journal, title words and source, either as a report or as a local
web dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "info"
		if cfg != nil {
			level = cfg.LogLevel
		}
		l, err := logging.New(level, debug)
		if err != nil {
			return err
		}
		logger = l
		logger.Debug("command starting", zap.String("command", cmd.CommandPath()), zap.Strings("args", args))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.metascope/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		return
	}
	if err := c.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: ignoring config: %v\n", err)
		cfg = nil
		return
	}
	cfg = c
}

// settings returns the loaded config, or the defaults when none could be read.
func settings() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	return &cfgpkg.Global{
		DataPath:        "metadata.csv",
		TopJournals:     aggregate.DefaultTopJournals,
		TopWords:        aggregate.DefaultTopWords,
		WordField:       string(aggregate.FieldTitle),
		SampleRows:      5,
		DefaultYearFrom: aggregate.DefaultRange.Lo,
		DefaultYearTo:   aggregate.DefaultRange.Hi,
		ListenAddr:      "127.0.0.1:8501",
		LogLevel:        "info",
	}
}

// exploreOptions merges config values with any flags the user set.
func exploreOptions(cmd *cobra.Command, topJournals, topWords int, wordField string) (explore.Options, error) {
	s := settings()
	opt := explore.Options{TopJournals: s.TopJournals, TopWords: s.TopWords}
	if cmd.Flags().Changed("top-journals") {
		opt.TopJournals = topJournals
	}
	if cmd.Flags().Changed("top-words") {
		opt.TopWords = topWords
	}
	field := s.WordField
	if cmd.Flags().Changed("word-field") {
		field = wordField
	}
	f, err := aggregate.ParseField(field)
	if err != nil {
		return opt, err
	}
	opt.WordField = f
	return opt, nil
}

// sampleRows returns the --sample-rows value when set, else the configured
// count. Negative values are rejected.
func sampleRows(cmd *cobra.Command, flagVal int) (int, error) {
	if !cmd.Flags().Changed("sample-rows") {
		return settings().SampleRows, nil
	}
	if flagVal < 0 {
		return 0, fmt.Errorf("--sample-rows must not be negative")
	}
	return flagVal, nil
}

// dataPath picks the file argument, falling back to the configured path.
func dataPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return settings().DataPath
}

// loadDataset runs the load and clean stages, logging what was dropped.
func loadDataset(path string) (*explore.Dataset, error) {
	logger.Debug("loading dataset", zap.String("path", path))
	ds, err := explore.Load(path)
	if err != nil {
		return nil, err
	}
	rows, cols := ds.Table.Shape()
	logger.Info("dataset loaded",
		zap.String("path", path),
		zap.Int("rows", rows),
		zap.Int("columns", cols),
		zap.Int("cleaned", len(ds.Cleaned)),
		zap.Int("dropped", ds.Dropped()),
		zap.Int("missing_year", ds.MissingYear()))
	return ds, nil
}
