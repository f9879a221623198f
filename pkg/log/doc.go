/*
Package log provides structured logging for the preference store using
zerolog.

A single package-level Logger is configured once via Init and shared by
every other package. Component loggers (WithComponent, WithKey,
WithBatchID) attach structured fields the way the rest of the codebase
expects: one field per call, never string-formatted context.
*/
package log
