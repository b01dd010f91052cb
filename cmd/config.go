package cmd

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/cmmoran/externgen/pkg/externgen"
)

const envPrefix = "EXTERNGEN"

// optionFlags maps configuration keys to the flags that override them.
var optionFlags = map[string]string{
	"root_namespace": "root-namespace",
	"root_package":   "root-package",
	"out_dir":        "out",
	"extension":      "ext",
	"concurrency":    "concurrency",
	"clean":          "clean",
	"catalogs":       "catalog",
	"assemblies":     "assembly",
	"docs":           "docs",
	"exclude_types":  "exclude",
	"debounce":       "debounce",
}

func addOptionFlags(c *cobra.Command) {
	d := externgen.NewOptions()
	f := c.Flags()
	f.StringP("root-namespace", "n", d.RootNamespace, "host namespace to emit, sub-namespaces included")
	f.StringP("root-package", "p", d.RootPackage, "output package of the root namespace (default: root namespace lower-cased)")
	f.StringP("out", "o", d.OutDir, "directory to write declarations into")
	f.String("ext", d.Extension, "extension of generated files")
	f.IntP("concurrency", "j", d.Concurrency, "number of types rendered in parallel")
	f.Bool("clean", d.Clean, "remove the output directory before writing")
	f.StringSliceP("catalog", "c", nil, "catalog module files or directories (yaml, json, toml)")
	f.StringSliceP("assembly", "a", nil, "assembly metadata files or directories (dll, winmd)")
	f.StringSliceP("docs", "d", nil, "XML documentation files or directories")
	f.StringSliceP("exclude", "x", nil, "type name patterns to skip, ex: UnityEngine.Experimental.*")
	f.Duration("debounce", d.Debounce, "quiet period before a watched change regenerates")
}

// loadOptions layers config files, EXTERNGEN_* environment variables and
// command flags, in increasing priority.
func loadOptions(c *cobra.Command, rf *rootFlags) (*externgen.Options, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if err := readConfig(v, rf.configFiles); err != nil {
		return nil, err
	}
	for key, name := range optionFlags {
		if err := v.BindPFlag(key, c.Flags().Lookup(name)); err != nil {
			return nil, errors.Wrapf(err, "bind flag %s", name)
		}
	}

	opts := externgen.NewOptions()
	if err := v.Unmarshal(opts); err != nil {
		return nil, errors.Wrap(err, "decode options")
	}
	return opts, nil
}

func readConfig(v *viper.Viper, files []string) error {
	l := zap.L()
	if len(files) == 0 {
		v.SetConfigName("externgen")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				return nil
			}
			return errors.Wrap(err, "read config")
		}
		l.Debug("using config file", zap.String("file", v.ConfigFileUsed()))
		return nil
	}

	for i, file := range files {
		v.SetConfigFile(file)
		read := v.MergeInConfig
		if i == 0 {
			read = v.ReadInConfig
		}
		if err := read(); err != nil {
			return errors.WithHint(errors.Wrapf(err, "read config %s", file),
				"config files may be yaml, json or toml")
		}
		l.Debug("merged config file", zap.String("file", file))
	}
	return nil
}
