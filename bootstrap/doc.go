// Package bootstrap runs the flowview process lifecycle: config defaults
// and validation, logger setup, ordered component start, hooks, a startup
// summary and graceful shutdown on SIGINT/SIGTERM.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(store)
//	app.RegisterComponent(registry)
//	app.RegisterComponent(server.NewComponent(srv))
//	err = app.Run(ctx)
//
// Long-running commands use Run; finite ones (`flowview run`, `watch`) use
// RunTask so the task's return ends the process.
package bootstrap
