package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const appName = "lessonplan"

type ConfigOption struct {
	Key     string
	Default any
	Comment string
}

// OutputModes lists the accepted values of the output option.
var OutputModes = []string{"pretty", "html", "markdown", "plain", "json", "yaml"}

// GetConfigOptions returns the default configuration options and their meanings.
// This is the single source of truth for default values and generator output.
func GetConfigOptions() []ConfigOption {
	return []ConfigOption{
		{Key: "server_url", Default: "http://127.0.0.1:5000", Comment: "Lesson backend base URL used by ask/retry/status"},
		{Key: "request_timeout", Default: "120s", Comment: "Timeout for a single backend request (Go duration)"},
		{Key: "output", Default: "pretty", Comment: "Default output mode: pretty|html|markdown|plain|json|yaml"},
		{Key: "download_dir", Default: ".", Comment: "Directory where saved lesson plans are written"},
		{Key: "data_dir", Default: defaultDataDir(), Comment: "Directory for local state; DB is data_dir/lessonplan.db"},
		{Key: "http_addr", Default: ":5000", Comment: "Listen address for `lessonplan-cli serve`"},

		{Key: "auth.token", Default: "", Comment: "Bearer token sent to (client) or required by (server) /ask"},
		{Key: "auth.key_provider", Default: "config", Comment: "Where the token lives: config|keyring"},

		{Key: "retrieval.max_chunks", Default: 3, Comment: "Number of document chunks used to ground a lesson"},

		{Key: "ingest.chunk_size", Default: 300, Comment: "Chunk window size in words"},
		{Key: "ingest.chunk_overlap", Default: 50, Comment: "Words shared by consecutive chunks"},

		{Key: "server.max_body_bytes", Default: 16 << 20, Comment: "Largest accepted /ask request body"},

		{Key: "history.limit", Default: 20, Comment: "Rows shown by `history list` when --limit is not given"},
		{Key: "ui.spinner", Default: true, Comment: "Show the loading indicator while a lesson is generated"},
		{Key: "ui.pager", Default: "", Comment: "Pager for long terminal output; empty uses $PAGER, \"none\" disables"},
	}
}

// applyDefaults seeds Viper with defaults defined in GetConfigOptions.
func applyDefaults(v *viper.Viper) {
	for _, o := range GetConfigOptions() {
		v.SetDefault(o.Key, o.Default)
	}
}

// Load resolves configuration with precedence: defaults < file < env.
// Flags bound by the CLI sit above all of these.
func Load(ctx context.Context, v *viper.Viper) error {
	// If SetConfigFile was provided upstream it takes precedence; these
	// paths are fallbacks.
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, appName))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", appName))
		}
		v.AddConfigPath(".")
	}

	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	// Environment variables: LESSONPLAN_*
	v.SetEnvPrefix(appName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if v.GetString("data_dir") == "" {
		v.Set("data_dir", defaultDataDir())
	}
	return nil
}

// defaultDataDir resolves default data dir: $XDG_DATA_HOME/lessonplan or ~/.local/share/lessonplan
func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", appName)
}

// DefaultConfigPath resolves the standard config.toml location.
func DefaultConfigPath() string {
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		home, _ := os.UserHomeDir()
		xdg = filepath.Join(home, ".config")
	}
	return filepath.Join(xdg, appName, "config.toml")
}

// ResolveDBPath returns the sqlite DB file path under data_dir.
func ResolveDBPath(v *viper.Viper) string {
	return filepath.Join(expandHome(v.GetString("data_dir")), appName+".db")
}

// ResolveDownloadDir returns download_dir with ~ expanded.
func ResolveDownloadDir(v *viper.Viper) string {
	dir := v.GetString("download_dir")
	if dir == "" {
		return "."
	}
	return expandHome(dir)
}

func expandHome(dir string) string {
	if dir == "" {
		return defaultDataDir()
	}
	if dir[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, dir[1:])
		}
	}
	return dir
}
