package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mithrel/lessonplan/internal/config"
	"github.com/mithrel/lessonplan/internal/wire"
)

type ctxKey string

const (
	appKey ctxKey = "app"
	cfgKey ctxKey = "cfg"
)

// noApp marks commands that only need configuration, not the store.
const noApp = "noapp"

// Execute builds the root command and runs it.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the Cobra root command and wires dependencies.
func NewRootCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:           "lessonplan-cli",
		Short:         "lessonplan: generate, render and keep lesson plans",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			if cfgPath != "" {
				v.SetConfigFile(cfgPath)
			}
			if err := config.Load(cmd.Context(), v); err != nil {
				return err
			}
			applyConfigFlagOverrides(cmd, v, rootFlagKeys)
			ctx := context.WithValue(cmd.Context(), cfgKey, v)
			if cmd.Annotations[noApp] == "" {
				app, err := wire.BuildApp(ctx, v)
				if err != nil {
					return err
				}
				ctx = context.WithValue(ctx, appKey, app)
			}
			cmd.SetContext(ctx)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app, ok := cmd.Context().Value(appKey).(*wire.App); ok {
				return app.Close()
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (yaml|toml)")
	cmd.PersistentFlags().String("server-url", "", "lesson backend base URL (overrides server_url)")
	cmd.PersistentFlags().String("data-dir", "", "directory for local state (overrides data_dir)")

	cmd.AddCommand(newAskCmd())
	cmd.AddCommand(newRetryCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newSaveCmd())
	cmd.AddCommand(newCopyCmd())
	cmd.AddCommand(newRenderCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newIngestCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newAuthCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newCompletionCmd())

	cmd.Run = func(cmd *cobra.Command, args []string) { _ = cmd.Help() }

	return cmd
}

// rootFlagKeys maps persistent flags onto config keys.
var rootFlagKeys = map[string]string{
	"server-url": "server_url",
	"data-dir":   "data_dir",
}

func getApp(cmd *cobra.Command) *wire.App {
	v := cmd.Context().Value(appKey)
	if v == nil {
		fmt.Fprintln(os.Stderr, "internal error: app not initialized")
		os.Exit(1)
	}
	return v.(*wire.App)
}

func getConfig(cmd *cobra.Command) *viper.Viper {
	if v, ok := cmd.Context().Value(cfgKey).(*viper.Viper); ok {
		return v
	}
	return viper.New()
}

// configPath is the file config-writing commands operate on.
func configPath(cmd *cobra.Command) string {
	if f := cmd.Flag("config"); f != nil && f.Value.String() != "" {
		return f.Value.String()
	}
	if used := getConfig(cmd).ConfigFileUsed(); used != "" {
		return used
	}
	return config.DefaultConfigPath()
}
