package types

// Obfuscator is a reversible byte transform applied to serialized section
// data before it reaches disk. It is a defense against casual inspection,
// not a security control: Deobfuscate(Obfuscate(x)) == x for all valid
// UTF-8 x, with no key management and no authentication.
type Obfuscator interface {
	// Obfuscate transforms serialized text into the bytes written to disk.
	Obfuscate(text string) []byte

	// Deobfuscate reverses Obfuscate. Input that was not produced by the
	// matching Obfuscate returns an error wrapping ErrCorruptData rather
	// than garbage that fails later during deserialization.
	Deobfuscate(data []byte) (string, error)
}
