// Package cli implements the chore command-line interface.
//
// The interface is declared as a [CLI] struct parsed by kong. Persistent
// configuration is read from a YAML file in the user's config directory and
// resolved into flag values; command-line flags override the file. Logging
// flags are applied during an early pre-parse scan so that diagnostics
// emitted while parsing already honor them.
package cli
