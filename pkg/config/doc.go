// Package config is the configuration store for mph.
//
// It reads two kinds of declarative documents:
//   - Backend descriptors: one file per backend instance in the descriptor
//     directory, discovered by extension and loaded in filename order.
//   - Project sidecars: one optional file per hosted project (".mph-config"
//     by default) carrying the display name, emoji and visibility options.
//
// Both are decoded into Values, a plain key/value tree. YAML (and therefore
// JSON) documents are decoded with gopkg.in/yaml.v3 and TOML documents with
// github.com/BurntSushi/toml; the file extension selects the decoder and
// extension-less files are treated as YAML.
//
// Nested options are looked up with dotted paths ("markdown.hidden_files")
// or JSONPath expressions ("$.markdown.extensions[0]"):
//
//	desc := config.ParseDescriptor(values)
//	exts := desc.Options.Strings("markdown.extensions")
//
// A missing sidecar is an empty configuration. A malformed sidecar is logged
// and also treated as empty; parse failures never reach request handlers.
package config
