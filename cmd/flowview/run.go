package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/flowview/graph"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	wo := &watchOptions{}
	cmd := &cobra.Command{
		Use:   "run <graph.json>",
		Short: "Execute a graph on the engine and watch it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			g, err := graph.Decode(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			a, svc, err := opts.loadApp(true)
			if err != nil {
				return err
			}
			defer svc.Close()
			if err := register(a, svc, false); err != nil {
				return err
			}

			return a.RunTask(cmd.Context(), func(ctx context.Context) error {
				page, exec, err := svc.Executions.Launch(ctx, g)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "launched instance %s (%d task(s))\n", exec.InstanceID, len(exec.Tasks))
				return watchPage(ctx, cmd.OutOrStdout(), page, svc.Updates(), a.Cfg.View.Options(), wo.once)
			})
		},
	}
	cmd.Flags().BoolVar(&wo.once, "once", false, "print one table after the first status fetch and exit")
	return cmd
}
