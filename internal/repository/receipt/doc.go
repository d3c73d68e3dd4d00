// Package receipt persists the record of the last successful installation.
//
// The FileRepository stores a Receipt as YAML next to the installed binary
// and exposes a Repository interface that the installer depends on.
package receipt
