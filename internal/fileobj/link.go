package fileobj

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// sidecarSuffix marks the file recording the target of a copied link.
const sidecarSuffix = ".target"

// Link makes link point at target. A native symlink is used when the
// platform allows it; otherwise the target is copied and its path recorded in
// a sidecar so LinkTarget can still recover it.
func Link(target, link string) error {
	if err := os.Symlink(target, link); err == nil {
		return nil
	} else if runtime.GOOS != "windows" {
		return err
	}

	if err := copyForLink(target, link); err != nil {
		return fmt.Errorf("copying link target: %w", err)
	}
	if err := os.WriteFile(link+sidecarSuffix, []byte(target), 0o644); err != nil {
		return fmt.Errorf("writing link sidecar: %w", err)
	}
	return nil
}

// Unlink removes a link created by Link, including any sidecar.
func Unlink(link string) error {
	err := os.Remove(link)
	_ = os.Remove(link + sidecarSuffix)
	return err
}

// LinkTarget returns what link points at. For copied links the sidecar is
// consulted. An error means path is not a link.
func LinkTarget(path string) (string, error) {
	target, err := os.Readlink(path)
	if err == nil {
		return target, nil
	}
	data, readErr := os.ReadFile(path + sidecarSuffix)
	if readErr != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func copyForLink(target, link string) error {
	src := target
	if !filepath.IsAbs(src) {
		src = filepath.Join(filepath.Dir(link), target)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(link)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
