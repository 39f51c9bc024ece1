package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/metascope/internal/aggregate"
	"github.com/KaramelBytes/metascope/internal/dashboard"
	"github.com/KaramelBytes/metascope/internal/utils"
)

var (
	srvAddr        string
	srvTopJournals int
	srvTopWords    int
	srvWordField   string
	srvSampleRows  int
)

var serveCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Serve an interactive dashboard for a metadata CSV",
	Long: `Load and clean a paper-metadata CSV once, then serve a local dashboard with
the overview, missing values, charts, a word cloud and a year-range filter.
JSON views are under /api, Prometheus metrics under /metrics.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := utils.ExpandHome(dataPath(args))
		if err != nil {
			return err
		}
		eo, err := exploreOptions(cmd, srvTopJournals, srvTopWords, srvWordField)
		if err != nil {
			return err
		}
		n, err := sampleRows(cmd, srvSampleRows)
		if err != nil {
			return err
		}
		s := settings()
		opt := dashboard.Options{
			Options:      eo,
			DefaultRange: aggregate.YearRange{Lo: s.DefaultYearFrom, Hi: s.DefaultYearTo},
			SampleRows:   n,
		}
		addr := s.ListenAddr
		if cmd.Flags().Changed("addr") {
			addr = srvAddr
		}

		ds, err := loadDataset(path)
		if err != nil {
			return err
		}
		srv, err := dashboard.New(ds, opt, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		fmt.Printf("✓ Dashboard for %s at http://%s (Ctrl+C to stop)\n", path, addr)
		return srv.Run(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&srvAddr, "addr", "127.0.0.1:8501", "listen address")
	serveCmd.Flags().IntVar(&srvTopJournals, "top-journals", aggregate.DefaultTopJournals, "number of journals to chart (0 = all)")
	serveCmd.Flags().IntVar(&srvTopWords, "top-words", aggregate.DefaultTopWords, "number of words in the cloud (0 = all)")
	serveCmd.Flags().StringVar(&srvWordField, "word-field", "title", "column to count words from: title|abstract")
	serveCmd.Flags().IntVar(&srvSampleRows, "sample-rows", 5, "rows shown in the selection sample table")
}
