// Package logging configures structured logging for the engine.
//
// Setup builds a slog.Logger from a Config and installs it as the
// process default, so component loggers created with slog.Default()
// inherit the configured level and format. JSON output is the default;
// text output is available for local development.
package logging
