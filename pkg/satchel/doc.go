// Package satchel provides the section registry: named, independently
// filed key/value sections with pluggable obfuscation, typed access,
// synchronous change notification, cached property handles, and an offline
// rekey utility for moving a section file between obfuscators.
//
// A registry is constructed once at the application's composition root with
// Open and passed to call sites; there is no package-level global instance.
package satchel
