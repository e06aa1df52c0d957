package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/talent-scout/scout/internal/report"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a shortlisting report over all finished interviews",
	Run: func(cmd *cobra.Command, _ []string) {
		runReport(cmd)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringP("job-description", "f", "", "path to the job description file (required)")
	reportCmd.Flags().StringP("output", "o", "", "write the report to a file instead of stdout")
	_ = reportCmd.MarkFlagRequired("job-description")
}

func runReport(cmd *cobra.Command) {
	ctx := context.Background()

	logger := newLogger()
	requireRecruiter(logger)

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	jdPath := cmd.Flag("job-description").Value.String()
	jd, err := os.ReadFile(jdPath)
	if err != nil {
		logger.Fatal("reading the job description", zap.Error(err))
	}

	recs, err := recordsStore().List()
	if err != nil {
		logger.Fatal("listing interview records", zap.Error(err))
	}

	generator, err := newGenerator(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the ai generator", zap.Error(err))
	}

	shortlister := report.NewShortlister(generator, logger)

	out, err := shortlister.Shortlist(ctx, string(jd), recs)
	if err != nil {
		logger.Fatal("generating the shortlist report", zap.Error(err))
	}

	outPath := strings.TrimSpace(cmd.Flag("output").Value.String())
	if outPath == "" {
		fmt.Println(out)
		return
	}

	if err := os.WriteFile(outPath, []byte(out+"\n"), 0o644); err != nil {
		logger.Fatal("writing the report file", zap.Error(err))
	}
	logger.Info("report written", zap.String("file", outPath))
}
