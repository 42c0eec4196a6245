// Package resolve maps user-supplied page fragments onto documents inside a
// project directory and builds the navigation tree shown next to them.
//
// A Resolver is parameterized by its recognized suffixes, in precedence
// order. The document backend uses New(".md"); the records backend uses
// New(".md", ".csv"). Resolution of a fragment proceeds as:
//
//  1. Empty fragment: the default document of the project root.
//  2. A literal existing file with a recognized suffix.
//  3. A fragment without a recognized suffix: a sibling file with the same
//     stem and a recognized suffix. When several match, the suffix earlier in
//     the precedence list wins, then the lexically smaller name.
//  4. An existing directory: its default document.
//
// The default document of a directory is readme.<suffix>, then
// index.<suffix> (case-insensitive), then the alphabetically first document.
//
// Every path produced from user input is checked with Contain before it is
// returned: the canonical target must stay below the canonical project root,
// so ".." segments and symbolic links pointing outside the root are reported
// as ErrEscape, which is also ErrNotFound.
package resolve
