package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mithrel/lessonplan/internal/config"
)

// flagValue converts a changed flag into the value stored under its config
// key. Durations are stored as strings so validation sees what a config
// file would hold.
func flagValue(fs *pflag.FlagSet, f *pflag.Flag) (any, error) {
	switch f.Value.Type() {
	case "bool":
		return fs.GetBool(f.Name)
	case "int":
		return fs.GetInt(f.Name)
	case "duration":
		d, err := fs.GetDuration(f.Name)
		return d.String(), err
	default:
		return f.Value.String(), nil
	}
}

// applyConfigFlagOverrides layers changed flags over v. A flag whose name is
// a config key overrides that key; aliases maps other flag names to keys.
func applyConfigFlagOverrides(cmd *cobra.Command, v *viper.Viper, aliases map[string]string) {
	keys := make(map[string]string, len(aliases))
	for _, opt := range config.GetConfigOptions() {
		keys[opt.Key] = opt.Key
	}
	for name, key := range aliases {
		keys[name] = key
	}
	fs := cmd.Flags()
	fs.Visit(func(f *pflag.Flag) {
		key, ok := keys[f.Name]
		if !ok {
			return
		}
		if val, err := flagValue(fs, f); err == nil {
			v.Set(key, val)
		}
	})
}
