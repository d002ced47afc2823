// Package cli defines the Cobra command tree for the platformview CLI. Each
// file in this package registers one top-level command (tree, watch,
// platform, etc.) with the root command. Commands delegate to internal
// packages and only handle flag parsing and output formatting.
package cli
