// Package logging assembles the structured slog loggers used by the sca
// command and its packages.
//
// It owns the console and JSON handlers, level and output plumbing, run and
// chunk tagging through context, and pruning of old session log files. Discard
// serves tests and wiring code that cannot fail.
package logging
