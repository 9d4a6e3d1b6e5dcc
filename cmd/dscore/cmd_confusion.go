package main

import (
	service "github.com/okian/dscore/internal/app"
	"github.com/okian/dscore/internal/format"
	"github.com/okian/dscore/pkg/logger"
	"github.com/spf13/cobra"
)

func newConfusionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "confusion ref.rttm sys.rttm",
		Short: "Print the confusion matrix between reference and system frame classes",
		Long: `Confusion prints the contingency table between reference and system
frame classes of a single recording. Frames with overlapping speakers form
composite classes such as "A_B".`,
		Args: withUsage(cobra.ExactArgs(2)),
		RunE: runConfusion,
	}
	addFrameFlags(cmd)
	cmd.Flags().Bool("norm", false, "Normalize rows to sum to 1")
	return cmd
}

func runConfusion(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	mode, err := tableMode(cmd)
	if err != nil {
		return err
	}
	norm, err := cmd.Flags().GetBool("norm")
	if err != nil {
		return err
	}
	svc := service.New(append(service.FromConfig(cfg), service.WithLogger(logger.Named("confusion")))...)

	c, err := svc.ConfusionFiles(cmd.Context(), args[0], args[1], norm)
	if err != nil {
		return err
	}
	return format.Confusion(cmd.OutOrStdout(), c, mode)
}
