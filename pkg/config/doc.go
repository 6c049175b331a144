// Package config loads and represents the effective application
// configuration.
//
// Configuration comes from a YAML file with EGG_* environment variables
// layered on top. The loader keeps the raw key set alongside the typed
// struct so callers can ask whether a key was actually present in the
// source - needed for deprecated-key warnings, where a zero value and an
// absent key must be told apart.
package config
