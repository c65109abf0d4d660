// Package sqlite contains SQLite repository implementations for motion
// domain types.
//
// All database reads and writes for saved reference sequences and
// session results belong here rather than in the layer packages. The
// sequence payload is the l5sequence blob, stored unchanged.
package sqlite
