package main

import (
	"github.com/okian/dscore/internal/adapters/dataframe"
	service "github.com/okian/dscore/internal/app"
	"github.com/okian/dscore/pkg/logger"
	"github.com/spf13/cobra"
)

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch scores.tsv ref_dir sys_dir",
		Short: "Score a batch of recordings and write a tab-delimited dataframe",
		Long: `Batch scores every file id found as <id>.rttm in both ref_dir and sys_dir,
or the ids listed one per line in the -S script file, and writes one row per
recording to scores.tsv.

Recordings missing either RTTM file are logged and skipped.`,
		Args: withUsage(cobra.ExactArgs(3)),
		RunE: runBatch,
	}
	addDERFlags(cmd)
	addFrameFlags(cmd)
	f := cmd.Flags()
	f.StringP("script", "S", "", "Script file listing file ids, one per line")
	f.String("additional-columns", "", "Extra columns as semicolon delimited CNAME=VAL pairs")
	f.IntP("jobs", "j", 0, "Number of scoring workers (0 = number of CPUs)")
	return cmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	cols, err := f.GetString("additional-columns")
	if err != nil {
		return err
	}
	extra, err := dataframe.ParseAdditionalColumns(cols)
	if err != nil {
		return err
	}
	script, err := f.GetString("script")
	if err != nil {
		return err
	}

	log := logger.Named("batch")
	svc := service.New(append(service.FromConfig(cfg), service.WithLogger(log))...)

	res, err := svc.Batch(ctx, service.BatchRequest{
		RefDir:     args[1],
		SysDir:     args[2],
		ScriptFile: script,
	})
	if err != nil {
		return err
	}
	if err := dataframe.WriteFile(args[0], res.Rows, extra); err != nil {
		return err
	}
	log.Info(ctx, "batch scored",
		logger.String("output", args[0]),
		logger.Int("rows", len(res.Rows)),
		logger.Int("failed", res.Failed),
		logger.Int("duplicates", res.Duplicates),
	)
	return nil
}
