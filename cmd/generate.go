package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cmmoran/externgen/pkg/action/generate"
)

func NewGenerateCommand(rf *rootFlags) *cobra.Command {
	c := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "generate extern declarations",
		Long:    "Read the type catalog and write one extern declaration file per eligible type",
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			opts, err := loadOptions(c, rf)
			if err != nil {
				return err
			}
			summary, err := generate.Generate(c.Context(), opts, afero.NewOsFs(), zap.L())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.OutOrStdout(), summary)
			return err
		},
	}
	addOptionFlags(c)
	return c
}
