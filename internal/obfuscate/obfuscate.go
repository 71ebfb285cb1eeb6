// Package obfuscate provides the built-in reversible transforms applied to
// serialized section data before it is written to disk, and the name lookup
// used by configuration.
package obfuscate

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/satchel-io/satchel/pkg/types"
)

// Obfuscator names accepted in configuration. The xor obfuscator also
// accepts an inline key as "xor:<key>".
const (
	NameIdentity = "identity"
	NameNone     = "none"
	NameBase64   = "base64"
	NameXOR      = "xor"
)

// defaultXORKey applies when configuration selects "xor" without a key.
var defaultXORKey = []byte("satchel")

// ForName returns the obfuscator for a configuration name. The empty name
// selects identity, so section files stay inspectable with a plain text
// viewer unless configuration says otherwise.
func ForName(name string) (types.Obfuscator, error) {
	switch {
	case name == "" || name == NameIdentity || name == NameNone:
		return Identity{}, nil
	case name == NameBase64:
		return Base64{}, nil
	case name == NameXOR:
		return XOR{Key: defaultXORKey}, nil
	case strings.HasPrefix(name, NameXOR+":"):
		key := strings.TrimPrefix(name, NameXOR+":")
		if key == "" {
			return nil, fmt.Errorf("%w: xor key must not be empty", types.ErrObfuscatorUnknown)
		}
		return XOR{Key: []byte(key)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrObfuscatorUnknown, name)
	}
}

// Identity writes serialized data as-is.
type Identity struct{}

// Obfuscate returns the text bytes unchanged.
func (Identity) Obfuscate(text string) []byte { return []byte(text) }

// Deobfuscate returns the bytes as a string. Non-UTF-8 content means the
// file was written by a different obfuscator or truncated.
func (Identity) Deobfuscate(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: file is not valid UTF-8 text", types.ErrCorruptData)
	}
	return string(data), nil
}

// Base64 re-encodes serialized data with standard base64. Defense against
// casual inspection only.
type Base64 struct{}

// Obfuscate encodes text as standard base64.
func (Base64) Obfuscate(text string) []byte {
	out := make([]byte, base64.StdEncoding.EncodedLen(len(text)))
	base64.StdEncoding.Encode(out, []byte(text))
	return out
}

// Deobfuscate decodes standard base64. A decode failure surfaces as corrupt
// data, keeping it distinguishable from a later deserialization failure.
func (Base64) Deobfuscate(data []byte) (string, error) {
	out := make([]byte, base64.StdEncoding.DecodedLen(len(data)))
	n, err := base64.StdEncoding.Decode(out, data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrCorruptData, err)
	}
	return string(out[:n]), nil
}

// XOR applies a repeating-key XOR over the serialized bytes. An empty key
// degenerates to the identity transform.
type XOR struct {
	Key []byte
}

// Obfuscate XORs the text bytes with the repeating key.
func (x XOR) Obfuscate(text string) []byte {
	out := []byte(text)
	if len(x.Key) == 0 {
		return out
	}
	for i := range out {
		out[i] ^= x.Key[i%len(x.Key)]
	}
	return out
}

// Deobfuscate reverses the XOR. The transform itself cannot fail, so a
// UTF-8 validity check stands in for corruption detection.
func (x XOR) Deobfuscate(data []byte) (string, error) {
	out := make([]byte, len(data))
	copy(out, data)
	if len(x.Key) > 0 {
		for i := range out {
			out[i] ^= x.Key[i%len(x.Key)]
		}
	}
	if !utf8.Valid(out) {
		return "", fmt.Errorf("%w: xor output is not valid UTF-8 text (wrong key?)", types.ErrCorruptData)
	}
	return string(out), nil
}
