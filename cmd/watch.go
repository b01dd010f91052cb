package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cmmoran/externgen/pkg/action/watch"
)

func NewWatchCommand(rf *rootFlags) *cobra.Command {
	c := &cobra.Command{
		Use:   "watch",
		Short: "regenerate whenever an input changes",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			opts, err := loadOptions(c, rf)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watch.New(opts, afero.NewOsFs(), zap.L()).Watch(ctx)
		},
	}
	addOptionFlags(c)
	return c
}
