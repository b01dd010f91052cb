package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cmmoran/externgen/pkg/action/snapshot"
)

const defaultManifest = ".externgen/manifest.yaml"

func NewSnapshotCommand(rf *rootFlags) *cobra.Command {
	var manifestPath string
	c := &cobra.Command{
		Use:   "snapshot",
		Short: "record and compare generation runs",
	}
	c.PersistentFlags().StringVarP(&manifestPath, "manifest", "m", defaultManifest, "snapshot manifest file")

	var name, version string
	record := &cobra.Command{
		Use:   "record",
		Short: "generate and record the run under a version",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			opts, err := loadOptions(c, rf)
			if err != nil {
				return err
			}
			s, err := snapshot.Record(c.Context(), opts, afero.NewOsFs(), zap.L(), manifestPath, name, version)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(c.OutOrStdout(), "recorded %s %s: %d types, %d members\n", s.Name, s.Version, s.Types, s.Members)
			return err
		},
	}
	record.Flags().StringVar(&name, "name", "externgen", "snapshot name")
	record.Flags().StringVar(&version, "version", "", "semantic version of the snapshot")
	_ = record.MarkFlagRequired("version")
	addOptionFlags(record)

	list := &cobra.Command{
		Use:   "list",
		Short: "list recorded snapshots",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			m, err := snapshot.List(afero.NewOsFs(), manifestPath)
			if err != nil {
				return err
			}
			out := c.OutOrStdout()
			for _, s := range m.Snapshots {
				marker := " "
				switch s.Version {
				case m.CurrentVersion:
					marker = "*"
				case m.PreviousVersion:
					marker = "-"
				}
				if _, err := fmt.Fprintf(out, "%s %s\t%s\t%d types\t%d members\t%s\n",
					marker, s.Version, s.Name, s.Types, s.Members, s.OutDir); err != nil {
					return err
				}
			}
			return nil
		},
	}

	diff := &cobra.Command{
		Use:   "diff [from [to]]",
		Short: "compare file digests of two snapshots (default: previous and current)",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			var from, to string
			if len(args) > 0 {
				from = args[0]
			}
			if len(args) > 1 {
				to = args[1]
			}
			d, err := snapshot.Diff(afero.NewOsFs(), manifestPath, from, to)
			if err != nil {
				return err
			}
			if d == "" {
				d = "no changes\n"
			}
			_, err = fmt.Fprint(c.OutOrStdout(), d)
			return err
		},
	}

	c.AddCommand(record, list, diff)
	return c
}
