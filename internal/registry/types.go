package registry

import (
	"errors"
	"fmt"

	"github.com/agentx-labs/platformview/internal/manifest"
)

var (
	// ErrNotFound is returned when no platform has the requested identifier.
	ErrNotFound = errors.New("platform not found")
	// ErrExists is returned when adding a platform whose identifier is taken.
	ErrExists = errors.New("platform already exists")
)

// Found is a manifest located in the platforms directory.
type Found struct {
	// Path is the file in the platforms directory.
	Path string
	// Source is the file the manifest was read from; it differs from Path
	// when the entry is a link.
	Source   string
	Linked   bool
	Manifest *manifest.PlatformManifest
}

// InvalidManifestError reports a manifest rejected by schema validation.
type InvalidManifestError struct {
	Path   string
	Issues []manifest.ValidationIssue
}

func (e *InvalidManifestError) Error() string {
	switch len(e.Issues) {
	case 0:
		return "invalid manifest " + e.Path
	case 1:
		return fmt.Sprintf("invalid manifest %s: %s", e.Path, e.Issues[0])
	default:
		return fmt.Sprintf("invalid manifest %s: %s (and %d more)", e.Path, e.Issues[0], len(e.Issues)-1)
	}
}
