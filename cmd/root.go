package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cmmoran/externgen/internal/logging"
)

// Version is stamped at build time.
var Version = "dev"

type rootFlags struct {
	configFiles []string
	level       string
	logFormat   string
}

// Execute runs the command tree and exits non-zero on failure. This is
// called by main.main().
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCommand builds the externgen command tree.
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:          "externgen",
		Short:        "Generate Haxe extern declarations from a host type catalog",
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			l, err := logging.New(c.ErrOrStderr(), flags.level, logging.Format(flags.logFormat))
			if err != nil {
				return err
			}
			zap.ReplaceGlobals(l.With(zap.String("command", c.Name())))
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = zap.L().Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.level, "level", "l", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&flags.logFormat, "log-format", string(logging.FormatConsole), "log encoding (console, json)")
	pf.StringSliceVar(&flags.configFiles, "config", nil, "config file(s) - multiple config files are merged with last specified file having highest priority")

	root.AddCommand(
		NewGenerateCommand(flags),
		NewSnapshotCommand(flags),
		NewWatchCommand(flags),
	)
	return root
}
