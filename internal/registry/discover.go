package registry

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agentx-labs/platformview/internal/fileobj"
	"github.com/agentx-labs/platformview/internal/manifest"
)

// isManifestFile returns true if the filename looks like a platform manifest.
func isManifestFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

// Discover reads every manifest in dir, in file name order. Linked entries
// are read from their target. A missing directory yields no manifests.
// Manifests that cannot be parsed, and later manifests reusing an identifier,
// are skipped and reported in the second return value.
func Discover(dir string) ([]Found, []error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, []error{err}
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !isManifestFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	seen := make(map[string]string)
	var found []Found
	var problems []error
	for _, name := range names {
		f, err := readEntry(filepath.Join(dir, name))
		if err != nil {
			problems = append(problems, err)
			continue
		}
		if prev, dup := seen[f.Manifest.ID]; dup {
			problems = append(problems, &DuplicateError{ID: f.Manifest.ID, Path: f.Path, First: prev})
			continue
		}
		seen[f.Manifest.ID] = f.Path
		found = append(found, f)
	}
	return found, problems
}

// readEntry parses one directory entry, following a link to its target.
func readEntry(path string) (Found, error) {
	f := Found{Path: path, Source: path}
	if target, err := fileobj.LinkTarget(path); err == nil {
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		f.Source = target
		f.Linked = true
	}

	m, err := manifest.Parse(f.Source)
	if err != nil {
		return Found{}, err
	}
	f.Manifest = m
	return f, nil
}

// DuplicateError reports a manifest whose identifier was already claimed by
// an earlier file.
type DuplicateError struct {
	ID    string
	Path  string
	First string
}

func (e *DuplicateError) Error() string {
	return "platform " + e.ID + " in " + e.Path + " duplicates " + e.First
}
