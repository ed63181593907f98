package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/kbukum/flowview/app"
	"github.com/kbukum/flowview/bootstrap"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "flowview",
		Short:         "Watch workflow executions as they run",
		Long:          "flowview draws a workflow graph and colours each node by the engine's live status: green when completed, blue when active, red when still pending.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default: ./cmd/flowview/config.yml, ./config/config.yml or ./config.yml)")

	cmd.AddCommand(
		newServeCmd(opts),
		newWatchCmd(opts),
		newRunCmd(opts),
		newGraphCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// loadApp loads the config and wires the services. Terminal commands pass
// quiet so logs go to stderr, the startup summary is dropped and the
// watched page is never unmounted as idle.
func (o *rootOptions) loadApp(quiet bool) (*bootstrap.App[*app.Config], *app.Services, error) {
	cfg, err := app.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}

	var bopts []bootstrap.Option
	if quiet {
		if cfg.Logging.Output == "" {
			cfg.Logging.Output = "stderr"
		}
		bopts = append(bopts, bootstrap.WithSummaryOutput(io.Discard))
		cfg.Interaction.IdleTimeout = -1
	}
	a, err := bootstrap.NewApp(cfg, bopts...)
	if err != nil {
		return nil, nil, err
	}

	svc, err := app.Build(cfg, a.Logger)
	if err != nil {
		return nil, nil, err
	}
	return a, svc, nil
}

func register(a *bootstrap.App[*app.Config], svc *app.Services, withServer bool) error {
	for _, c := range svc.Components(withServer) {
		if err := a.RegisterComponent(c); err != nil {
			return err
		}
	}
	return nil
}
