// Package config loads and validates the reporter configuration from a
// YAML file. Secrets (the static API key) are resolved from environment
// variables named in the file rather than stored in it. Watch provides
// fsnotify-based hot reload so a long-running host can pick up endpoint
// or frame changes without a restart.
package config
