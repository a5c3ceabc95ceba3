// Package logger wraps rs/zerolog with service- and component-scoped loggers,
// a small structured-fields helper, and a process-wide global logger used by
// packages that have no logger injected.
package logger
