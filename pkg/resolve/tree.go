package resolve

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
)

// File is a document in a Tree.
type File struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Slug string `json:"slug"`
	Kind string `json:"kind,omitempty"`
}

// Folder is a subdirectory in a Tree.
type Folder struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Node *Node  `json:"node"`
}

// Node is one directory level of a project tree.
type Node struct {
	Files   []File   `json:"files"`
	Folders []Folder `json:"folders"`
}

// Child returns the subtree for the folder called name, or nil.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, f := range n.Folders {
		if f.Name == name {
			return f.Node
		}
	}
	return nil
}

// Empty reports whether the node holds no files and no folders.
func (n *Node) Empty() bool {
	return n == nil || (len(n.Files) == 0 && len(n.Folders) == 0)
}

// Tree builds the navigation tree under root. Files and folders are sorted
// case-insensitively. Unreadable directories produce empty nodes and symbolic
// links to directories are not followed.
//
// Each file's Slug is the one Slug computes, so it resolves back to the same
// file even when a hidden sibling shares its stem.
func (r *Resolver) Tree(root string, hidden Hidden) *Node {
	return r.walk(root, "", hidden)
}

func (r *Resolver) walk(root, rel string, hidden Hidden) *Node {
	node := &Node{Files: []File{}, Folders: []Folder{}}
	dir := filepath.Join(root, filepath.FromSlash(rel))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return node
	}

	var dirs []string
	for _, e := range entries {
		child := path.Join(rel, e.Name())
		switch {
		case e.IsDir():
			if !hidden.Folder(child) {
				dirs = append(dirs, e.Name())
			}
		case r.Recognized(e.Name()) && fileEntry(dir, e):
			if !hidden.File(child) {
				node.Files = append(node.Files, File{
					Name: e.Name(),
					Path: child,
					Kind: r.Kind(e.Name()),
				})
			}
		}
	}

	sort.Slice(node.Files, func(i, j int) bool { return lessFold(node.Files[i].Name, node.Files[j].Name) })
	for i := range node.Files {
		node.Files[i].Slug = r.Slug(root, node.Files[i].Path)
	}

	sortFold(dirs)
	for _, name := range dirs {
		child := path.Join(rel, name)
		node.Folders = append(node.Folders, Folder{
			Name: name,
			Path: child,
			Node: r.walk(root, child, hidden),
		})
	}
	return node
}

// List returns every visible document under root as sorted relative paths.
func (r *Resolver) List(root string, hidden Hidden) []string {
	var out []string
	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && p != root {
				return fs.SkipDir
			}
			return nil
		}
		if p == root {
			return nil
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if hidden.Folder(rel) {
				return fs.SkipDir
			}
			return nil
		}
		if r.Recognized(d.Name()) && fileEntry(filepath.Dir(p), d) && !hidden.File(rel) {
			out = append(out, rel)
		}
		return nil
	})
	sort.Strings(out)
	return out
}
