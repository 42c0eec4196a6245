package resolve

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// Contain maps fragment to an absolute canonical path below root.
//
// The fragment is rejected lexically when it climbs above root. The target
// must exist, and its canonical path (all symbolic links followed) must equal
// the path securejoin computes while keeping every link inside root; a link
// that leaves the root makes the two differ and yields ErrEscape.
func Contain(root, fragment string) (string, error) {
	rel := path.Clean("/" + strings.Trim(filepath.ToSlash(fragment), "/"))[1:]
	if rel == "" {
		rel = "."
	}
	if !filepath.IsLocal(filepath.FromSlash(rel)) || hasDotDot(fragment) {
		return "", ErrEscape
	}

	canonRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if canonRoot, err = filepath.Abs(canonRoot); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	real, err := filepath.EvalSymlinks(filepath.Join(canonRoot, filepath.FromSlash(rel)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	safe, err := securejoin.SecureJoin(canonRoot, rel)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if filepath.Clean(safe) != real {
		return "", ErrEscape
	}
	if back, err := filepath.Rel(canonRoot, real); err != nil || !filepath.IsLocal(back) {
		return "", ErrEscape
	}
	return real, nil
}

func hasDotDot(fragment string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(fragment), "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}
