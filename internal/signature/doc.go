// Package signature signs and verifies release manifests with detached
// OpenPGP signatures.
//
// The packager signs a manifest with a private key; the installer verifies
// the manifest bytes against a public keyring before parsing them.
package signature
