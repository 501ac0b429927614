// Package logging provides slog helpers for consistent structured
// logging across the codebase.
//
// All logs go to stderr so stdout stays free for the stdio transport's
// protocol stream.
package logging
