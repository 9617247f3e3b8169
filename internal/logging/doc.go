// Package logging builds the zerolog loggers used by the command line and
// adapts them to the small field-based interface the HTTP server logs through.
package logging
