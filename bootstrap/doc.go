// Package bootstrap runs kvbridge processes through a uniform lifecycle.
//
// An App owns the typed configuration, the logger and a component
// registry. Run serves until a signal arrives (the serve command);
// RunTask executes one finite task (query, ping, insert, log-insert)
// between the same startup and shutdown steps:
//
//  1. start registered components in order
//  2. OnStart hooks
//  3. ready check, OnReady hooks, startup summary
//  4. the task, or block until SIGINT/SIGTERM
//  5. OnStop hooks, stop components in reverse order
package bootstrap
