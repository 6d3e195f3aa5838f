package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mithrel/lessonplan/internal/server"
)

func newServeCmd() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the lesson backend over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			if listen == "" {
				listen = app.Cfg.GetString("http_addr")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if n, err := app.Store.Chunks.Count(ctx); err == nil && n == 0 {
				app.Log.Printf("serve: no documents ingested; run `lessonplan-cli ingest <dir>` first")
			}
			return server.New(app.Cfg, app.Store, app.Assistant, app.Log).ListenAndServe(ctx, listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default http_addr)")
	return cmd
}
