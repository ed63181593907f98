package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kbukum/flowview/app"
	"github.com/kbukum/flowview/bootstrap"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve execution pages over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, svc, err := opts.loadApp(false)
			if err != nil {
				return err
			}
			defer svc.Close()

			if err := register(a, svc, true); err != nil {
				return err
			}
			a.OnConfigure(func(_ context.Context, a *bootstrap.App[*app.Config]) error {
				svc.RegisterRoutes(a.Name, a.Components.HealthAll)
				return nil
			})
			return a.Run(cmd.Context())
		},
	}
}
