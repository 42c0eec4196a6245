package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DirectoryLoader loads backend descriptors from a directory.
type DirectoryLoader struct {
	// Path is the directory to load from.
	Path string

	// Pattern selects descriptor files by name. Defaults to DescriptorPattern.
	Pattern string

	// Create makes the directory when it does not exist.
	Create bool
}

// DescriptorFile is one successfully decoded descriptor document.
type DescriptorFile struct {
	Path   string
	Name   string
	Values Values
}

// LoadResult contains the result of loading a directory.
type LoadResult struct {
	// Files are the decoded documents in filename order.
	Files []DescriptorFile

	// Errors are the files that could not be read or decoded.
	Errors []LoadError
}

// LoadError represents an error loading a specific file.
type LoadError struct {
	Path    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NewDirectoryLoader creates a loader that creates the directory if needed.
func NewDirectoryLoader(path string) *DirectoryLoader {
	return &DirectoryLoader{
		Path:    path,
		Pattern: DescriptorPattern,
		Create:  true,
	}
}

// Load decodes every matching file directly inside the directory (no
// recursion). A file that fails to decode is reported in Errors and does
// not stop the others. Only a problem with the directory itself is fatal.
func (d *DirectoryLoader) Load() (*LoadResult, error) {
	if d.Create {
		if err := os.MkdirAll(d.Path, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create descriptor directory: %w", err)
		}
	}

	info, err := os.Stat(d.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("directory not found: %s", d.Path)
		}
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", d.Path)
	}

	names, err := d.findDescriptorFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory: %w", err)
	}

	result := &LoadResult{}
	for _, name := range names {
		path := filepath.Join(d.Path, name)
		values, err := DecodeFile(path)
		if err != nil {
			result.Errors = append(result.Errors, LoadError{
				Path:    path,
				Message: "failed to load",
				Err:     err,
			})
			continue
		}
		result.Files = append(result.Files, DescriptorFile{
			Path:   path,
			Name:   name,
			Values: values,
		})
	}
	return result, nil
}

// findDescriptorFiles returns matching regular file names sorted lexicographically.
func (d *DirectoryLoader) findDescriptorFiles() ([]string, error) {
	pattern := d.Pattern
	if pattern == "" {
		pattern = DescriptorPattern
	}

	fsys := os.DirFS(d.Path)
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}
