package fileobj

import (
	"archive/zip"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileObject is an existing file or directory on disk.
type FileObject struct {
	path  string
	isDir bool
}

// Path returns the absolute, link-resolved path.
func (f *FileObject) Path() string { return f.path }

// NameExt returns the base name including its extension, e.g. "ejb.jar".
func (f *FileObject) NameExt() string { return filepath.Base(f.path) }

// IsFolder reports whether the object is a directory.
func (f *FileObject) IsFolder() bool { return f.isDir }

// ArchiveRoot identifies the root folder inside a zip archive. It is a value
// type: two roots for the same archive compare equal.
type ArchiveRoot struct {
	Archive string
}

// Packages lists the Java packages in the archive: every directory holding
// at least one file, dotted and sorted. Files at the top level produce "".
// Metadata directories such as META-INF are skipped.
func (r ArchiveRoot) Packages() ([]string, error) {
	zr, err := zip.OpenReader(r.Archive)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	seen := make(map[string]bool)
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		dir := pathDir(f.Name)
		if dir == "META-INF" || strings.HasPrefix(dir, "META-INF/") {
			continue
		}
		seen[strings.ReplaceAll(dir, "/", ".")] = true
	}

	pkgs := make([]string, 0, len(seen))
	for p := range seen {
		pkgs = append(pkgs, p)
	}
	sort.Strings(pkgs)
	return pkgs, nil
}

func pathDir(name string) string {
	i := strings.LastIndex(name, "/")
	if i < 0 {
		return ""
	}
	return name[:i]
}

// Resolver converts paths using the local filesystem. The zero value is
// ready to use.
type Resolver struct{}

// ToFileObject returns the file object for path, or false when nothing
// exists there.
func (Resolver) ToFileObject(path string) (*FileObject, bool) {
	return ToFileObject(path)
}

// ArchiveRoot returns the archive root for f, or false when f is not a
// readable zip archive.
func (Resolver) ArchiveRoot(f *FileObject) (ArchiveRoot, bool) {
	return GetArchiveRoot(f)
}

// ToFileObject resolves path to an existing file object.
func ToFileObject(path string) (*FileObject, bool) {
	if path == "" {
		return nil, false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, false
	}
	if target, err := LinkTarget(abs); err == nil {
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(abs), target)
		}
		abs = filepath.Clean(target)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, false
	}
	return &FileObject{path: abs, isDir: info.IsDir()}, true
}

// GetArchiveRoot returns the archive root for f when f is a zip archive.
func GetArchiveRoot(f *FileObject) (ArchiveRoot, bool) {
	if f == nil || f.isDir {
		return ArchiveRoot{}, false
	}
	if !IsArchiveFile(f.path) {
		return ArchiveRoot{}, false
	}
	return ArchiveRoot{Archive: f.path}, true
}

// IsArchiveFile reports whether the file at path opens as a zip archive.
func IsArchiveFile(path string) bool {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return false
	}
	zr.Close()
	return true
}
