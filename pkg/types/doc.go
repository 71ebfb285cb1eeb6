// Package types defines the configuration records, the Obfuscator contract,
// and the sentinel errors shared by the satchel storage packages.
package types
