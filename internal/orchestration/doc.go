// Package orchestration runs one or more LCS strategies concurrently on the
// same pair and checks that they agree. It decouples business logic from
// presentation via the ProgressReporter and ResultPresenter interfaces.
package orchestration
