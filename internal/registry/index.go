package registry

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// stamp summarizes the manifests in dir: names, sizes and modification
// times, with linked entries stamped by their target. Two equal stamps mean
// a reload would read the same files, so Refresh can skip it.
func stamp(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	var parts []string
	for _, e := range entries {
		if e.IsDir() || !isManifestFile(e.Name()) {
			continue
		}
		// os.Stat follows symlinks, which is what a linked manifest needs.
		info, err := os.Stat(filepath.Join(dir, e.Name()))
		if err != nil {
			parts = append(parts, e.Name()+":missing")
			continue
		}
		parts = append(parts, e.Name()+":"+strconv.FormatInt(info.Size(), 10)+":"+strconv.FormatInt(info.ModTime().UnixNano(), 10))
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}
