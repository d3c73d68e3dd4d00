// Package config defines installer settings and provides helpers to load,
// validate and save them in YAML format.
//
// A missing settings file is not an error for the CLI: LoadOrDefault falls
// back to Default, which installs the bundled manifest into ~/.local/bin.
package config
