// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured JSON logging
// with configurable log levels. Output goes to stdout and, when a log file is
// configured, to a size-rotated file managed by lumberjack.
package logger
