// Package bootstrap runs the service lifecycle.
//
// NewApp applies config defaults, validates the config and initializes the
// logger. Components registered with the App are started in order, hooks
// run around them, and Run blocks until SIGINT/SIGTERM before stopping
// everything in reverse. RunTask gives one-shot CLI commands the same
// lifecycle without blocking on a signal.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(sweeper)
//	app.RegisterComponent(httpServer)
//	return app.Run(ctx)
package bootstrap
