package config

// Descriptor keys shared by every backend type. Any other top-level key is a
// type-specific option.
const (
	KeyType                  = "type"
	KeyImplementation        = "implementation"
	KeyIdentifier            = "identifier"
	KeyLabel                 = "label"
	KeyDescription           = "description"
	KeyURLPrefix             = "url_prefix"
	KeyProjectsDir           = "projects_dir"
	KeyProjectConfigFilename = "project_config_filename"
	KeyProjectConfigFile     = "project_config_file"
	KeyDefaultEmoji          = "default_emoji"
)

var commonKeys = map[string]bool{
	KeyType:                  true,
	KeyImplementation:        true,
	KeyIdentifier:            true,
	KeyLabel:                 true,
	KeyDescription:           true,
	KeyURLPrefix:             true,
	KeyProjectsDir:           true,
	KeyProjectConfigFilename: true,
	KeyProjectConfigFile:     true,
	KeyDefaultEmoji:          true,
}

// Descriptor is the declarative configuration of one backend instance.
// ParseDescriptor only copies fields; defaults and validation are applied by
// the backend constructor that consumes it.
type Descriptor struct {
	// Source is the file the descriptor was read from, if any.
	Source string

	Type           string
	Implementation string
	Identifier     string
	Label          string
	Description    string
	URLPrefix      string
	ProjectsDir    string

	// ProjectConfigFilename names the per-project sidecar file.
	ProjectConfigFilename string
	DefaultEmoji          string

	// Options holds every type-specific key, e.g. "markdown" or "entry_point".
	Options Values

	// Raw is the complete decoded document.
	Raw Values
}

// ParseDescriptor extracts a Descriptor from a decoded document.
func ParseDescriptor(raw Values) Descriptor {
	if raw == nil {
		raw = Values{}
	}
	d := Descriptor{
		Type:           raw.String(KeyType, ""),
		Implementation: raw.String(KeyImplementation, ""),
		Identifier:     raw.String(KeyIdentifier, ""),
		Label:          raw.String(KeyLabel, ""),
		Description:    raw.String(KeyDescription, ""),
		URLPrefix:      raw.String(KeyURLPrefix, ""),
		ProjectsDir:    raw.String(KeyProjectsDir, ""),
		DefaultEmoji:   raw.String(KeyDefaultEmoji, ""),
		Options:        Values{},
		Raw:            raw,
	}
	d.ProjectConfigFilename = raw.String(KeyProjectConfigFilename, raw.String(KeyProjectConfigFile, ""))

	for k, v := range raw {
		if !commonKeys[k] {
			d.Options[k] = v
		}
	}
	return d
}

// ID returns the identifier the descriptor will register under:
// the explicit identifier, falling back to the type.
func (d Descriptor) ID() string {
	if d.Identifier != "" {
		return d.Identifier
	}
	return d.Type
}
