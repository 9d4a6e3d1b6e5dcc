package main

import (
	"errors"
	"fmt"

	"github.com/okian/dscore/internal/config"
	"github.com/okian/dscore/internal/format"
	"github.com/okian/dscore/pkg/logger"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var errNoCommand = errors.New("no command given")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dscore",
		Short: "Score speaker diarization output against a reference",
		Long: `dscore compares system RTTM files against reference RTTM files.

DER is computed by the NIST md-eval tool with a forgiveness collar. B-cubed,
Goodman-Kruskal tau, conditional entropy, mutual information and NMI are
computed from frame-level labelings without any collar.`,
		Args:          withUsage(cobra.NoArgs),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.PrintErrln(cmd.UsageString())
			return errNoCommand
		},
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	pf := root.PersistentFlags()
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("md-eval", "md-eval-22.pl", "Path to the md-eval script used for DER")
	pf.String("format", "ascii", "Table format for reports (ascii, markdown)")

	root.AddCommand(newScoreCmd())
	root.AddCommand(newBatchCmd())
	root.AddCommand(newConfusionCmd())
	root.AddCommand(newServeCmd())
	return root
}

// withUsage wraps an argument validator so that a rejected invocation also
// prints the command usage. SilenceUsage keeps cobra quiet on run errors.
func withUsage(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			cmd.PrintErrln(cmd.UsageString())
			return err
		}
		return nil
	}
}

// loadConfig layers explicitly set flags over the loaded configuration and
// initializes the process logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, nil
}

// applyFlags copies flags the user set on cmd into cfg. Flags left at their
// defaults never override the file or environment.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	var err error
	set := func(name string, fn func() error) {
		if err == nil && f.Changed(name) {
			err = fn()
		}
	}

	set("log-level", func() (e error) { cfg.LogLevel, e = f.GetString("log-level"); return })
	set("md-eval", func() (e error) { cfg.MDEvalPath, e = f.GetString("md-eval"); return })
	set("step", func() (e error) { cfg.Step, e = f.GetFloat64("step"); return })
	set("collar", func() (e error) { cfg.Collar, e = f.GetFloat64("collar"); return })
	set("nats", func() (e error) { cfg.Nats, e = f.GetBool("nats"); return })
	set("addr", func() (e error) { cfg.Addr, e = f.GetString("addr"); return })
	set("jobs", func() (e error) { cfg.WorkerCount, e = f.GetInt("jobs"); return })
	set("score-overlaps", func() error {
		score, e := f.GetBool("score-overlaps")
		cfg.IgnoreOverlaps = !score
		return e
	})
	return err
}

func tableMode(cmd *cobra.Command) (format.Mode, error) {
	name, err := cmd.Flags().GetString("format")
	if err != nil {
		return format.ASCII, err
	}
	return format.ParseMode(name)
}

// addDERFlags registers the flags that only affect DER.
func addDERFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("collar", 0.250, "Collar size in seconds for DER computation")
	cmd.Flags().Bool("score-overlaps", false, "Score overlapped reference speech when computing DER")
}

// addFrameFlags registers the flags of the frame-level metrics.
func addFrameFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("step", 0.010, "Frame step size in seconds")
}
