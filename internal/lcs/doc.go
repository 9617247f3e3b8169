// Package lcs is the longest-common-subsequence engine.
//
// A Pair of sequences is solved by filling a padded (m+1) x (n+1) Table with
// the classic recurrence (see Evaluate) and walking the table backwards to
// recover one LCS string. Three fill strategies produce identical tables:
//
//   - sequential: row-major, one goroutine.
//   - wavefront: a fixed pool of goroutines sweeps anti-diagonals i+j=d,
//     separated by a barrier.
//   - distributed: ranks own contiguous row bands, share no memory, and pass
//     boundary row segments down the chain through a transport.Endpoint.
//
// Ties between the top and left neighbours are always resolved towards the
// top, so every strategy recovers the same string, not just the same length.
package lcs
