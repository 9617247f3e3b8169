// Package ui provides theme and color support for the terminal output of the
// CLI and the dashboard. Color accessors return empty strings when colors are
// disabled, so callers can always interpolate them.
package ui
