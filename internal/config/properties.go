package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/agentx-labs/platformview/internal/branding"
	"github.com/agentx-labs/platformview/internal/listener"
	"github.com/agentx-labs/platformview/internal/log"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"
)

// ServerInstanceKey is the project property naming the bound server platform.
const ServerInstanceKey = "j2ee.server.instance"

// keyDelimiter keeps dotted property names flat.
const keyDelimiter = "::"

const propertiesFile = "project.yaml"

// PropertyEvent reports a project property change. An empty value means the
// property is unset on that side of the change.
type PropertyEvent struct {
	Key string
	Old string
	New string
}

// PropertiesPath returns the property file of the project rooted at dir.
func PropertiesPath(dir string) string {
	return filepath.Join(dir, branding.HomeDir(), propertiesFile)
}

// Properties is a project's flat string property map, backed by a YAML file.
// Keys are case-insensitive and stored lower-cased. Every change, whether made
// through Set and Unset or picked up by Reload, is announced to subscribers
// once per key.
type Properties struct {
	path      string
	logger    zerolog.Logger
	listeners listener.List[PropertyEvent]

	mu     sync.RWMutex
	values map[string]string

	watchOnce sync.Once
}

// OpenProperties loads the property file at path. A missing file is an empty
// property map.
func OpenProperties(path string) (*Properties, error) {
	p := &Properties{
		path:   path,
		logger: log.WithComponent("properties"),
	}
	values, err := readProperties(path)
	if err != nil {
		return nil, err
	}
	p.values = values
	return p, nil
}

// Path returns the backing file.
func (p *Properties) Path() string { return p.path }

// Property returns the value of key. Empty values count as unset.
func (p *Properties) Property(key string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v := p.values[normalize(key)]
	return v, v != ""
}

// Keys returns the set property names, sorted.
func (p *Properties) Keys() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Subscribe registers fn for property changes.
func (p *Properties) Subscribe(fn func(PropertyEvent)) listener.Subscription {
	return p.listeners.Subscribe(fn)
}

// Set stores value under key and saves the file.
func (p *Properties) Set(key, value string) error {
	if value == "" {
		return p.Unset(key)
	}
	return p.update(func(values map[string]string) {
		values[normalize(key)] = value
	})
}

// Unset removes key and saves the file.
func (p *Properties) Unset(key string) error {
	return p.update(func(values map[string]string) {
		delete(values, normalize(key))
	})
}

func (p *Properties) update(edit func(map[string]string)) error {
	p.mu.Lock()
	next := make(map[string]string, len(p.values)+1)
	for k, v := range p.values {
		next[k] = v
	}
	edit(next)
	if err := writeProperties(p.path, next); err != nil {
		p.mu.Unlock()
		return err
	}
	events := diff(p.values, next)
	p.values = next
	p.mu.Unlock()

	p.fire(events)
	return nil
}

// Reload rereads the file and announces every key whose value changed.
func (p *Properties) Reload() error {
	values, err := readProperties(p.path)
	if err != nil {
		return err
	}

	p.mu.Lock()
	events := diff(p.values, values)
	p.values = values
	p.mu.Unlock()

	p.logger.Debug().Str("path", p.path).Int("changes", len(events)).Msg("properties reloaded")
	p.fire(events)
	return nil
}

// Watch reloads the properties whenever the file is written. The watch runs
// for the rest of the process; calling Watch again has no effect.
func (p *Properties) Watch() error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(p.path), err)
	}
	p.watchOnce.Do(func() {
		// A dedicated instance: viper rereads its own state on every event,
		// and Reload reads through a fresh one.
		w := newViper(p.path)
		w.OnConfigChange(func(e fsnotify.Event) {
			p.logger.Debug().Str("event", e.String()).Msg("property file changed")
			if err := p.Reload(); err != nil {
				p.logger.Warn().Err(err).Str("path", p.path).Msg("reloading properties")
			}
		})
		w.WatchConfig()
	})
	return nil
}

func (p *Properties) fire(events []PropertyEvent) {
	for _, e := range events {
		p.listeners.Fire(e)
	}
}

func newViper(path string) *viper.Viper {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	v.SetConfigFile(path)
	v.SetConfigType(fileType)
	return v
}

func readProperties(path string) (map[string]string, error) {
	values := make(map[string]string)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return values, nil
	}

	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading properties %s: %w", path, err)
	}
	for _, key := range v.AllKeys() {
		if value := v.GetString(key); value != "" {
			values[key] = value
		}
	}
	return values, nil
}

func writeProperties(path string, values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("encoding properties: %w", err)
	}
	if len(values) == 0 {
		data = nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing properties %s: %w", path, err)
	}
	return nil
}

// diff returns one event per key whose value differs, in key order.
func diff(old, next map[string]string) []PropertyEvent {
	keys := make([]string, 0, len(old)+len(next))
	for k := range old {
		keys = append(keys, k)
	}
	for k := range next {
		if _, ok := old[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	var events []PropertyEvent
	for _, k := range keys {
		if old[k] != next[k] {
			events = append(events, PropertyEvent{Key: k, Old: old[k], New: next[k]})
		}
	}
	return events
}

func normalize(key string) string {
	return strings.ToLower(key)
}
