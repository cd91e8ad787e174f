// Package runner executes the external media tools (yt-dlp, ffmpeg) as
// subprocesses.
//
// It provides:
//   - Direct argv execution (no shell interpretation of arguments)
//   - Separate stdout/stderr capture, with stderr preserved in ToolError
//   - Context-based cancellation that kills the child process
//   - A process registry so shutdown can kill in-flight tools
//   - Per-tool invocation metrics
//
// Callers depend on the CommandRunner interface, which tests satisfy with
// fakes instead of real binaries.
package runner
