package resolve

import (
	"path"

	"github.com/bmatcuk/doublestar/v4"
)

// Hidden lists files and folders kept out of trees and listings. Entries
// match either exactly or as doublestar globs ("drafts/**", "*.tmp.md").
// File entries are tested against the project-relative path only, so
// "README.md" hides the root readme and "**/README.md" hides all of them.
// Folder entries match either the folder name or its relative path.
//
// Hidden entries stay reachable by direct URL.
type Hidden struct {
	Files   []string
	Folders []string
}

// File reports whether the document at rel is hidden.
func (h Hidden) File(rel string) bool {
	return matchAny(h.Files, rel)
}

// Folder reports whether the folder at rel is hidden.
func (h Hidden) Folder(rel string) bool {
	return matchAny(h.Folders, rel) || matchAny(h.Folders, path.Base(rel))
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if p == name {
			return true
		}
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}
