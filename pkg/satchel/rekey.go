package satchel

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/satchel-io/satchel/internal/section"
	"github.com/satchel-io/satchel/pkg/types"
)

// Rekey rewrites a section file from one obfuscator to another: read the
// raw bytes, deobfuscate with the old obfuscator, re-obfuscate with the new
// one, replace the file atomically.
//
// Rekey is an offline utility. It must not run while a registry is serving
// the section. All preconditions are verified before the file is touched,
// so a precondition failure leaves the original file intact.
func Rekey(path string, oldObf, newObf types.Obfuscator) error {
	if oldObf == nil || newObf == nil {
		return types.ErrNilObfuscator
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("rekey %q: %w", path, types.ErrFileMissing)
	}
	if err != nil {
		return fmt.Errorf("rekey %q: %w", path, err)
	}

	text, err := oldObf.Deobfuscate(raw)
	if err != nil {
		return fmt.Errorf("rekey %q: %w", path, err)
	}
	// The deobfuscated payload must be the serialized section map. Anything
	// else means the wrong old obfuscator was supplied; rewriting would
	// destroy the only readable copy.
	if !json.Valid([]byte(text)) {
		return fmt.Errorf("rekey %q: deobfuscated payload is not section data: %w",
			path, types.ErrCorruptData)
	}

	if err := section.WriteFileAtomic(path, newObf.Obfuscate(text)); err != nil {
		return fmt.Errorf("rekey %q: %w", path, err)
	}
	return nil
}
