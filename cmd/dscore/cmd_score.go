package main

import (
	service "github.com/okian/dscore/internal/app"
	"github.com/okian/dscore/internal/format"
	"github.com/okian/dscore/pkg/logger"
	"github.com/spf13/cobra"
)

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score ref.rttm sys.rttm",
		Short: "Score one system RTTM against a reference RTTM",
		Args:  withUsage(cobra.ExactArgs(2)),
		RunE:  runScore,
	}
	addDERFlags(cmd)
	addFrameFlags(cmd)
	cmd.Flags().Bool("nats", false, "Report information metrics in nats instead of bits")
	return cmd
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	mode, err := tableMode(cmd)
	if err != nil {
		return err
	}
	log := logger.Named("score")
	svc := service.New(append(service.FromConfig(cfg), service.WithLogger(log))...)

	row, err := svc.ScorePair(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	log.Debug(cmd.Context(), "scored pair",
		logger.String("file_id", row.FileID),
		logger.Float64("der", row.DER),
	)
	return format.Report(cmd.OutOrStdout(), row, mode)
}
