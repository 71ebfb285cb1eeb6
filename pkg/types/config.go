package types

// DefaultSection is the section every registry attempts to provide, backed
// by a file directly under the resolved base data directory.
const DefaultSection = "default"

// Section describes one persistence unit: a named key/value map backed by
// exactly one file. Path is a template; the registry expands placeholders
// and environment variables once, at resolution time. An empty Path
// defaults to "<id>.satchel" under the base data directory. An empty
// Obfuscator falls back to the registry-wide default.
type Section struct {
	ID         string `json:"id" yaml:"id" mapstructure:"id"`
	Path       string `json:"path,omitempty" yaml:"path,omitempty" mapstructure:"path"`
	Obfuscator string `json:"obfuscator,omitempty" yaml:"obfuscator,omitempty" mapstructure:"obfuscator"`
}

// Config holds everything a registry needs to resolve its sections.
type Config struct {
	// DataDir is the base data directory. When empty, the environment
	// override and platform default chain applies.
	DataDir string `json:"data_dir,omitempty" yaml:"data_dir,omitempty" mapstructure:"data_dir"`

	// DefaultObfuscator names the obfuscator for sections that do not pick
	// their own. Empty selects identity.
	DefaultObfuscator string `json:"default_obfuscator,omitempty" yaml:"default_obfuscator,omitempty" mapstructure:"default_obfuscator"`

	// Sections lists the additional sections beyond the default one.
	// Zero-valued entries are treated as unconfigured and skipped.
	Sections []Section `json:"sections,omitempty" yaml:"sections,omitempty" mapstructure:"sections"`
}

// Validate checks that every configured section names an ID. Collision
// detection is not Validate's job; it happens at registry resolution, which
// has the resolved paths in hand.
func (c Config) Validate() error {
	for _, s := range c.Sections {
		if s == (Section{}) {
			continue
		}
		if s.ID == "" {
			return ErrSectionIDEmpty
		}
	}
	return nil
}
