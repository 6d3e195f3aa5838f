package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <dir|file>...",
		Short: "Chunk curriculum documents into the retrieval store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			var files, chunks int
			for _, path := range args {
				fi, err := os.Stat(path)
				if err != nil {
					return err
				}
				if fi.IsDir() {
					sum, err := app.Ingester.IngestDir(cmd.Context(), path)
					if err != nil {
						return err
					}
					files += sum.Files
					chunks += sum.Chunks
					continue
				}
				n, err := app.Ingester.IngestFile(cmd.Context(), path, filepath.Base(path))
				if err != nil {
					return err
				}
				files++
				chunks += n
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "ingested %d files into %d chunks\n", files, chunks)
			return nil
		},
	}
	return cmd
}
