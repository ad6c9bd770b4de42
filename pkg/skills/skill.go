// Package skills reads skill directories: a folder holding a SKILL.md file
// whose YAML front matter names and describes the skill, plus optional
// scripts/, references/ and assets/ folders.
package skills

// FileName is the manifest every skill directory must contain.
const FileName = "SKILL.md"

// Optional resource folders of a skill.
const (
	ScriptsDir    = "scripts"
	ReferencesDir = "references"
	AssetsDir     = "assets"
)

// Skill represents a discovered skill with its metadata
type Skill struct {
	Name        string    // Directory name
	Description string    // From front matter
	Directory   string    // Full path to the skill directory
	Content     string    // Body of SKILL.md without front matter
	Metadata    *Metadata // nil when the front matter is missing or invalid
}

// Metadata represents the YAML frontmatter in SKILL.md files
type Metadata struct {
	Name        string   `mapstructure:"name" yaml:"name"`
	Description string   `mapstructure:"description" yaml:"description"`
	Source      string   `mapstructure:"source" yaml:"source,omitempty"`
	Version     string   `mapstructure:"version" yaml:"version,omitempty"`
	Keywords    []string `mapstructure:"keywords" yaml:"keywords,omitempty"`
	Aliases     []string `mapstructure:"aliases" yaml:"aliases,omitempty"`
}
