// Package logging provides a simple leveled logging interface for the
// searchable gallery.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The log level is configured via the LOG_LEVEL environment variable (or
// DEBUG=true). Output is produced by zap; Configure selects console or JSON
// encoding and an optional size-rotated log file.
package logging
