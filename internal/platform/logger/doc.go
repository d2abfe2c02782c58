// Package logger provides structured logging for the application. It
// configures the process-wide slog logger from configuration and carries
// request-scoped loggers through context.Context so that handlers and stores
// share trace attributes without threading a logger argument everywhere.
package logger
