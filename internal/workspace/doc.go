// Package workspace manages per-job scratch directories.
//
// Every download job works inside its own uuid-named directory under the
// configured scratch root, so concurrent jobs never share filesystem
// state. Directories are removed when the job finishes on any path; the
// Sweeper catches the ones a crash left behind, skipping directories that
// belong to jobs still in flight.
package workspace
