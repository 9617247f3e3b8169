// Package apperrors maps failures onto process exit codes. Domain packages
// carry their own error types and implement ExitCoder; this package holds the
// codes, the command-line error types and the handler that prints a failed
// run.
package apperrors
