package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/flowview/graphsource"
)

func newGraphCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Manage stored graph snapshots",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "import <instanceId> <file>",
		Short: "Store a graph as the snapshot of an instance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}

			a, svc, err := opts.loadApp(true)
			if err != nil {
				return err
			}
			defer svc.Close()
			if err := a.RegisterComponent(svc.Store); err != nil {
				return err
			}

			return a.RunTask(cmd.Context(), func(ctx context.Context) error {
				if err := svc.Source.ImportJSON(ctx, args[0], data); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "stored %s\n", graphsource.Key(args[0]))
				return nil
			})
		},
	})
	return cmd
}
