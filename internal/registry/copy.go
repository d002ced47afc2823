package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentx-labs/platformview/internal/fileobj"
	"github.com/agentx-labs/platformview/internal/manifest"
	"github.com/agentx-labs/platformview/internal/platform"
)

// Add validates the manifest at path and installs it in the platforms
// directory as <id>.yaml, copying it or, with link set, linking to it. A
// copied manifest with relative classpath entries is rewritten with those
// entries made absolute so it keeps pointing at the same archives.
func (r *Registry) Add(path string, link bool) (*platform.Instance, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	result, err := manifest.Validate(data)
	if err != nil {
		return nil, fmt.Errorf("validating manifest %s: %w", path, err)
	}
	if !result.Valid {
		return nil, &InvalidManifestError{Path: path, Issues: result.Issues}
	}

	raw, err := manifest.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	id := raw.ID

	if _, err := r.Entry(id); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrExists, id)
	}
	dst := filepath.Join(r.dir, id+".yaml")
	if _, err := os.Lstat(dst); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrExists, dst)
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating platforms directory %s: %w", r.dir, err)
	}

	if link {
		if err := fileobj.Link(abs, dst); err != nil {
			return nil, fmt.Errorf("linking %s: %w", path, err)
		}
	} else {
		if hasRelativeClasspath(raw) {
			resolved, err := manifest.Parse(abs)
			if err != nil {
				return nil, err
			}
			if data, err = manifest.Marshal(resolved); err != nil {
				return nil, err
			}
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", dst, err)
		}
	}

	r.logger.Debug().Str("id", id).Str("path", dst).Bool("linked", link).Msg("platform added")
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r.Instance(id)
}

// Remove deletes the manifest for id from the platforms directory. For a
// linked manifest only the link is removed.
func (r *Registry) Remove(id string) error {
	f, err := r.Entry(id)
	if err != nil {
		return err
	}

	if f.Linked {
		err = fileobj.Unlink(f.Path)
	} else {
		err = os.Remove(f.Path)
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", f.Path, err)
	}

	r.logger.Debug().Str("id", id).Str("path", f.Path).Msg("platform removed")
	return r.Reload()
}

// SetDefault marks id as the default platform and clears the flag on every
// other manifest. Linked manifests are edited at their target.
func (r *Registry) SetDefault(id string) error {
	if _, err := r.Entry(id); err != nil {
		return err
	}

	r.mu.RLock()
	var edits []Found
	for eid, e := range r.entries {
		if e.found.Manifest.Default != (eid == id) {
			edits = append(edits, e.found)
		}
	}
	r.mu.RUnlock()

	for _, f := range edits {
		if err := writeDefaultFlag(f.Source, f.Manifest.ID == id); err != nil {
			return err
		}
	}
	return r.Reload()
}

func writeDefaultFlag(path string, def bool) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("reading manifest %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading manifest %s: %w", path, err)
	}
	out, err := manifest.SetDefaultFlag(data, def)
	if err != nil {
		return fmt.Errorf("updating manifest %s: %w", path, err)
	}
	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return nil
}

func hasRelativeClasspath(m *manifest.PlatformManifest) bool {
	for _, tool := range m.Tools {
		for _, entry := range tool.Classpath {
			if entry != "" && !filepath.IsAbs(entry) {
				return true
			}
		}
	}
	return false
}
