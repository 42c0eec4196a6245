package resolve

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a fragment does not name a document.
	ErrNotFound = errors.New("document not found")

	// ErrEscape is returned when a fragment would leave the project root.
	ErrEscape = fmt.Errorf("%w: path escapes project root", ErrNotFound)
)

// Default document base names, in priority order.
var defaultNames = []string{"readme", "index"}

// Resolver resolves fragments against a set of recognized suffixes.
// It holds no per-request state and is safe for concurrent use.
type Resolver struct {
	suffixes []string
	kinds    map[string]string
}

// New creates a Resolver. Suffixes are matched case-insensitively and a
// leading dot is added when missing; their order is the tie-break precedence.
func New(suffixes ...string) *Resolver {
	r := &Resolver{kinds: map[string]string{}}
	for _, s := range suffixes {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if !strings.HasPrefix(s, ".") {
			s = "." + s
		}
		if r.rank(s) < 0 {
			r.suffixes = append(r.suffixes, s)
		}
	}
	return r
}

// WithKinds labels documents by suffix (for example ".csv" -> "database").
func (r *Resolver) WithKinds(kinds map[string]string) *Resolver {
	for suffix, kind := range kinds {
		r.kinds[strings.ToLower(suffix)] = kind
	}
	return r
}

// Suffixes returns the recognized suffixes in precedence order.
func (r *Resolver) Suffixes() []string {
	return append([]string(nil), r.suffixes...)
}

// Recognized reports whether name carries a recognized suffix.
func (r *Resolver) Recognized(name string) bool {
	return r.rank(strings.ToLower(path.Ext(name))) >= 0
}

// Kind returns the label configured for name's suffix, or "".
func (r *Resolver) Kind(name string) string {
	return r.kinds[strings.ToLower(path.Ext(name))]
}

func (r *Resolver) rank(suffix string) int {
	for i, s := range r.suffixes {
		if s == suffix {
			return i
		}
	}
	return -1
}

// Resolve maps fragment to a slash-separated path relative to root.
func (r *Resolver) Resolve(root, fragment string) (string, error) {
	normalized := strings.Trim(filepath.ToSlash(fragment), "/")
	if normalized == "" {
		return r.DefaultDocument(root, "")
	}

	rel := path.Clean(normalized)
	if !filepath.IsLocal(filepath.FromSlash(rel)) {
		return "", ErrEscape
	}
	candidate := filepath.Join(root, filepath.FromSlash(rel))

	if r.Recognized(rel) {
		if isFile(candidate) {
			return r.contained(root, rel)
		}
	} else if match, ok := r.stemMatch(root, rel); ok {
		return r.contained(root, match)
	}

	if isDir(candidate) {
		return r.DefaultDocument(root, rel)
	}
	return "", ErrNotFound
}

// stemMatch looks beside rel for a document whose stem equals rel's base name.
func (r *Resolver) stemMatch(root, rel string) (string, bool) {
	parent, stem := path.Split(rel)
	entries, err := os.ReadDir(filepath.Join(root, filepath.FromSlash(parent)))
	if err != nil {
		return "", false
	}

	var matches []string
	for _, name := range r.documents(filepath.Join(root, filepath.FromSlash(parent)), entries) {
		if strings.TrimSuffix(name, path.Ext(name)) == stem {
			matches = append(matches, name)
		}
	}
	if len(matches) == 0 {
		return "", false
	}
	sort.Slice(matches, func(i, j int) bool { return r.before(matches[i], matches[j]) })
	return path.Join(parent, matches[0]), true
}

// before orders same-stem candidates: suffix precedence, then name.
func (r *Resolver) before(a, b string) bool {
	ra, rb := r.rank(strings.ToLower(path.Ext(a))), r.rank(strings.ToLower(path.Ext(b)))
	if ra != rb {
		return ra < rb
	}
	return a < b
}

// DefaultDocument selects the landing document of relDir ("" for the root).
func (r *Resolver) DefaultDocument(root, relDir string) (string, error) {
	relDir = strings.Trim(relDir, "/")
	if relDir != "" && !filepath.IsLocal(filepath.FromSlash(relDir)) {
		return "", ErrEscape
	}
	dir := filepath.Join(root, filepath.FromSlash(relDir))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", ErrNotFound
	}
	docs := r.documents(dir, entries)
	if len(docs) == 0 {
		return "", ErrNotFound
	}

	chosen := ""
	for _, base := range defaultNames {
		for _, suffix := range r.suffixes {
			for _, name := range docs {
				if strings.ToLower(name) == base+suffix {
					chosen = name
					break
				}
			}
			if chosen != "" {
				break
			}
		}
		if chosen != "" {
			break
		}
	}
	if chosen == "" {
		sortFold(docs)
		chosen = docs[0]
	}
	return r.contained(root, path.Join(relDir, chosen))
}

// documents returns the names of recognized files among entries, in
// directory order. Symbolic links to files count; links to directories do not.
func (r *Resolver) documents(dir string, entries []os.DirEntry) []string {
	var names []string
	for _, e := range entries {
		if !r.Recognized(e.Name()) {
			continue
		}
		if fileEntry(dir, e) {
			names = append(names, e.Name())
		}
	}
	return names
}

func (r *Resolver) contained(root, rel string) (string, error) {
	if _, err := Contain(root, rel); err != nil {
		return "", err
	}
	return rel, nil
}

func fileEntry(dir string, e os.DirEntry) bool {
	if e.Type().IsRegular() {
		return true
	}
	if e.Type()&os.ModeSymlink != 0 {
		return isFile(filepath.Join(dir, e.Name()))
	}
	return false
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

// sortFold sorts names case-insensitively with a case-sensitive tie-break.
func sortFold(names []string) {
	sort.Slice(names, func(i, j int) bool { return lessFold(names[i], names[j]) })
}

func lessFold(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

// Slug returns the shortest fragment that resolves back to rel: the path
// without its suffix when that is unambiguous, otherwise rel itself.
func (r *Resolver) Slug(root, rel string) string {
	stem := strings.TrimSuffix(rel, path.Ext(rel))
	if got, err := r.Resolve(root, stem); err == nil && got == rel {
		return stem
	}
	return rel
}
