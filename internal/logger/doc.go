// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger writing console output to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing utilities,
//   - convenience functions (InfoKV, Warnf, ErrorKV and friends).
//
// Stdout is left to command output such as resolved URLs, so every log line
// goes to stderr. Services accept a context and extract the logger from it.
package logger
