package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/flowview/execution"
	"github.com/kbukum/flowview/view"
)

type watchOptions struct {
	once bool
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	wo := &watchOptions{}
	cmd := &cobra.Command{
		Use:   "watch <instanceId>",
		Short: "Print the status table of an execution until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, svc, err := opts.loadApp(true)
			if err != nil {
				return err
			}
			defer svc.Close()
			if err := register(a, svc, false); err != nil {
				return err
			}

			return a.RunTask(cmd.Context(), func(ctx context.Context) error {
				page, err := svc.Executions.Mount(ctx, args[0], nil)
				if err != nil {
					return err
				}
				return watchPage(ctx, cmd.OutOrStdout(), page, svc.Updates(), a.Cfg.View.Options(), wo.once)
			})
		},
	}
	cmd.Flags().BoolVar(&wo.once, "once", false, "print one table after the first status fetch and exit")
	return cmd
}

// watchPage redraws the page each time its poller applies a snapshot.
// With once it waits for the first fetch result and renders a single table.
func watchPage(ctx context.Context, w io.Writer, page *execution.Page, updates <-chan string, opts view.Options, once bool) error {
	term := view.NewTerminal(w, opts)
	id := page.InstanceID()

	if once {
		if st := page.State().Poll; st.LastSuccess.IsZero() && st.Failures == 0 {
			waitUpdate(ctx, updates, id, 2*page.State().Interval)
		}
		return term.Render(view.Build(page.State(), opts))
	}

	for {
		if err := term.Render(view.Build(page.State(), opts)); err != nil {
			return err
		}
		fmt.Fprintln(w)
		if !waitUpdate(ctx, updates, id, 0) {
			return nil
		}
	}
}

// waitUpdate blocks until id is updated. A positive limit bounds the wait;
// it reports false only when ctx ends.
func waitUpdate(ctx context.Context, updates <-chan string, id string, limit time.Duration) bool {
	var timeout <-chan time.Time
	if limit > 0 {
		timer := time.NewTimer(limit)
		defer timer.Stop()
		timeout = timer.C
	}
	for {
		select {
		case <-ctx.Done():
			return false
		case <-timeout:
			return true
		case got := <-updates:
			if got == id {
				return true
			}
		}
	}
}
