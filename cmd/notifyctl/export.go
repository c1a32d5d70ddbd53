package main

import (
	"fmt"
	"io"
	"os"

	"delivery-notify-service/internal/adapters/store"
	"delivery-notify-service/internal/services"

	"github.com/spf13/cobra"
)

func newExportCmd(c *cli) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every stored delivery as spreadsheet rows (CSV)",
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			a, err := c.open(cmd.Context(), nil, noSend())
			if err != nil {
				return err
			}
			defer a.Close()

			rows := services.Flatten(a.Dispatcher.Repo.Snapshot())

			var w io.Writer = cmd.OutOrStdout()
			toFile := outPath != "" && outPath != "-"
			if toFile {
				f, ferr := os.Create(outPath)
				if ferr != nil {
					return fmt.Errorf("export: %w", ferr)
				}
				defer func() {
					if cerr := f.Close(); err == nil && cerr != nil {
						err = fmt.Errorf("export: %w", cerr)
					}
				}()
				w = f
			}

			if err := store.WriteRows(w, rows); err != nil {
				return fmt.Errorf("export: %w", err)
			}
			if toFile {
				fmt.Fprintf(cmd.ErrOrStderr(), "exported %d rows to %s\n", len(rows), outPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file, - for stdout")
	return cmd
}
