package types

import "errors"

// Store operation errors.
var (
	// ErrUnknownSection is returned when an operation references a section
	// ID that was never successfully registered.
	ErrUnknownSection = errors.New("unknown section")

	// ErrCorruptData is returned when deobfuscation or deserialization of a
	// section file fails. The two stages wrap it with distinct messages so
	// diagnostics can tell them apart.
	ErrCorruptData = errors.New("corrupt section data")

	// ErrCoercion is returned when a stored value cannot represent the
	// static type a caller requested.
	ErrCoercion = errors.New("cannot coerce stored value")
)

// Configuration and rekey errors.
var (
	// ErrObfuscatorUnknown is returned for an obfuscator name that no
	// implementation answers to.
	ErrObfuscatorUnknown = errors.New("unknown obfuscator")

	// ErrNilObfuscator is returned by Rekey when either obfuscator is nil.
	ErrNilObfuscator = errors.New("obfuscator must not be nil")

	// ErrFileMissing is returned when a raw-byte operation targets a
	// section file that does not exist.
	ErrFileMissing = errors.New("section file does not exist")

	// ErrSectionIDEmpty is returned by Config.Validate for a configured
	// section without an ID.
	ErrSectionIDEmpty = errors.New("section id must not be empty")
)
