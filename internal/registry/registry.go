package registry

import (
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/agentx-labs/platformview/internal/listener"
	"github.com/agentx-labs/platformview/internal/log"
	"github.com/agentx-labs/platformview/internal/platform"
	"github.com/rs/zerolog"
)

// Registry is the set of platforms described by the manifests in one
// directory. It implements both the platform lookup and the instance
// notifications the logical view consumes.
type Registry struct {
	dir    string
	logger zerolog.Logger

	listeners listener.List[platform.InstanceEvent]

	mu        sync.RWMutex
	entries   map[string]*entry
	defaultID string
	stamp     string
	lookups   int
}

type entry struct {
	instance *platform.Instance
	found    Found
}

// New returns an empty registry over dir. Call Reload to read it.
func New(dir string) *Registry {
	return &Registry{
		dir:     dir,
		logger:  log.WithComponent("registry"),
		entries: make(map[string]*entry),
	}
}

// Open returns a registry over dir with its manifests loaded.
func Open(dir string) (*Registry, error) {
	r := New(dir)
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Dir returns the platforms directory.
func (r *Registry) Dir() string { return r.dir }

// Platform looks up a platform by identifier.
func (r *Registry) Platform(id string) (platform.Platform, bool) {
	r.mu.Lock()
	r.lookups++
	e, ok := r.entries[id]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	return e.instance, true
}

// Lookups returns how many times Platform has been called.
func (r *Registry) Lookups() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookups
}

// Instance returns the concrete instance for id.
func (r *Registry) Instance(id string) (*platform.Instance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e.instance, nil
}

// Entry returns where the manifest for id was found.
func (r *Registry) Entry(id string) (Found, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return Found{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e.found, nil
}

// List returns every platform, newest version first. Platforms whose version
// is not semver come last; ties are broken by identifier.
func (r *Registry) List() []*platform.Instance {
	r.mu.RLock()
	list := make([]*platform.Instance, 0, len(r.entries))
	for _, e := range r.entries {
		list = append(list, e.instance)
	}
	r.mu.RUnlock()

	slices.SortFunc(list, func(a, b *platform.Instance) int {
		va, vb := a.Version(), b.Version()
		switch {
		case va != nil && vb != nil:
			if c := vb.Compare(va); c != 0 {
				return c
			}
		case va != nil:
			return -1
		case vb != nil:
			return 1
		}
		switch {
		case a.ID() < b.ID():
			return -1
		case a.ID() > b.ID():
			return 1
		}
		return 0
	})
	return list
}

// Default returns the default platform identifier.
func (r *Registry) Default() (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultID, r.defaultID != ""
}

// Subscribe registers fn for instance notifications.
func (r *Registry) Subscribe(fn func(platform.InstanceEvent)) listener.Subscription {
	return r.listeners.Subscribe(fn)
}

// Reload rereads the platforms directory. Platforms that disappeared are
// announced as removed, new ones as added, and platforms that are still
// present are updated in place so their own subscribers see attribute
// changes. Manifests that fail to parse are logged and skipped.
func (r *Registry) Reload() error {
	if _, err := os.Stat(r.dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading platforms directory %s: %w", r.dir, err)
	}
	st := stamp(r.dir)
	found, problems := Discover(r.dir)
	for _, err := range problems {
		r.logger.Warn().Err(err).Str("dir", r.dir).Msg("skipping platform manifest")
	}

	next := make(map[string]Found, len(found))
	nextDefault := ""
	for _, f := range found {
		next[f.Manifest.ID] = f
		if f.Manifest.Default && nextDefault == "" {
			nextDefault = f.Manifest.ID
		}
	}

	var events []platform.InstanceEvent
	var updates []func()

	r.mu.Lock()
	for id := range r.entries {
		if _, ok := next[id]; !ok {
			delete(r.entries, id)
			events = append(events, platform.InstanceEvent{Kind: platform.InstanceRemoved, ID: id})
		}
	}
	for _, f := range found {
		id := f.Manifest.ID
		if e, ok := r.entries[id]; ok {
			e.found = f
			inst, m := e.instance, f.Manifest
			updates = append(updates, func() { inst.Update(m) })
			continue
		}
		r.entries[id] = &entry{instance: platform.NewInstance(f.Manifest), found: f}
		events = append(events, platform.InstanceEvent{Kind: platform.InstanceAdded, ID: id})
	}
	if nextDefault != r.defaultID {
		events = append(events, platform.InstanceEvent{Kind: platform.DefaultInstanceChanged, ID: nextDefault, OldID: r.defaultID})
		r.defaultID = nextDefault
	}
	r.stamp = st
	r.mu.Unlock()

	r.logger.Debug().Str("dir", r.dir).Int("platforms", len(found)).Int("events", len(events)).Msg("registry reloaded")

	for _, update := range updates {
		update()
	}
	for _, e := range events {
		r.listeners.Fire(e)
	}
	return nil
}

// Refresh reloads the registry when the platforms directory changed since
// the last load and reports whether it did.
func (r *Registry) Refresh() (bool, error) {
	r.mu.RLock()
	unchanged := r.stamp == stamp(r.dir)
	r.mu.RUnlock()
	if unchanged {
		return false, nil
	}
	return true, r.Reload()
}
