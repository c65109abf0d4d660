// Package session implements the coaching session controller: recording a
// reference movement, practising against it with live feedback, and
// scoring the practice run with full sequence alignment.
//
// Frame ingestion is single-threaded. The controller guards its state
// with a mutex so callers may poll it while a background comparison runs.
package session
