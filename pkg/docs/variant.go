package docs

// Variant selects the suffixes and sidecar section of a docs backend.
type Variant struct {
	// Type is the descriptor type that selects this variant.
	Type string

	// Section is the sidecar key holding hidden_files / hidden_folders.
	Section string

	// Suffixes are the recognized document suffixes in precedence order.
	Suffixes []string

	// Kinds labels files by suffix in the navigation tree.
	Kinds map[string]string
}

// Built-in variants.
var (
	Document = Variant{
		Type:     "document",
		Section:  "markdown",
		Suffixes: []string{".md"},
	}

	Records = Variant{
		Type:     "records",
		Section:  "records",
		Suffixes: []string{".md", ".csv"},
		Kinds:    map[string]string{".md": "page", ".csv": "database"},
	}
)

// Descriptor option holding markdown extension names.
const OptionExtensions = "markdown.extensions"
