package config

import (
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"
)

func openTemp(t *testing.T) *Properties {
	t.Helper()
	p, err := OpenProperties(PropertiesPath(t.TempDir()))
	if err != nil {
		t.Fatalf("OpenProperties: %v", err)
	}
	return p
}

func TestPropertiesPath(t *testing.T) {
	got := PropertiesPath("/work/app")
	want := filepath.Join("/work/app", ".platformview", "project.yaml")
	if got != want {
		t.Errorf("PropertiesPath() = %q, want %q", got, want)
	}
}

func TestPropertiesMissingFile(t *testing.T) {
	p := openTemp(t)
	if v, ok := p.Property(ServerInstanceKey); ok {
		t.Errorf("Property() = %q, true on a missing file", v)
	}
	if len(p.Keys()) != 0 {
		t.Errorf("Keys() = %v, want none", p.Keys())
	}
}

func TestPropertiesDottedKeysStayFlat(t *testing.T) {
	p := openTemp(t)
	if err := p.Set(ServerInstanceKey, "srv1"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	reopened, err := OpenProperties(p.Path())
	if err != nil {
		t.Fatalf("OpenProperties: %v", err)
	}
	if v, ok := reopened.Property(ServerInstanceKey); !ok || v != "srv1" {
		t.Errorf("Property() = %q, %v; want srv1", v, ok)
	}
	if got := reopened.Keys(); !slices.Equal(got, []string{ServerInstanceKey}) {
		t.Errorf("Keys() = %v", got)
	}

	data, err := os.ReadFile(p.Path())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "j2ee.server.instance: srv1\n" {
		t.Errorf("file = %q, want a flat key", data)
	}
}

func TestPropertiesEvents(t *testing.T) {
	p := openTemp(t)
	var events []PropertyEvent
	sub := p.Subscribe(func(e PropertyEvent) { events = append(events, e) })

	p.Set(ServerInstanceKey, "srv1")
	p.Set(ServerInstanceKey, "srv1")
	p.Set(ServerInstanceKey, "srv2")
	p.Unset(ServerInstanceKey)
	p.Unset(ServerInstanceKey)

	want := []PropertyEvent{
		{Key: ServerInstanceKey, Old: "", New: "srv1"},
		{Key: ServerInstanceKey, Old: "srv1", New: "srv2"},
		{Key: ServerInstanceKey, Old: "srv2", New: ""},
	}
	if !slices.Equal(events, want) {
		t.Errorf("events = %+v, want %+v", events, want)
	}

	sub.Cancel()
	p.Set("other", "x")
	if len(events) != len(want) {
		t.Error("cancelled subscription still notified")
	}
}

func TestPropertiesCaseInsensitive(t *testing.T) {
	p := openTemp(t)
	if err := p.Set("J2EE.Server.Instance", "srv1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, ok := p.Property(ServerInstanceKey); !ok || v != "srv1" {
		t.Errorf("Property() = %q, %v", v, ok)
	}
}

func TestPropertiesReloadDiffs(t *testing.T) {
	p := openTemp(t)
	p.Set(ServerInstanceKey, "srv1")
	p.Set("keep", "same")

	var events []PropertyEvent
	p.Subscribe(func(e PropertyEvent) { events = append(events, e) })

	content := "j2ee.server.instance: srv2\nkeep: same\nadded: x1\n"
	if err := os.WriteFile(p.Path(), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := p.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	want := []PropertyEvent{
		{Key: "added", Old: "", New: "x1"},
		{Key: ServerInstanceKey, Old: "srv1", New: "srv2"},
	}
	if !slices.Equal(events, want) {
		t.Errorf("events = %+v, want %+v", events, want)
	}
}

func TestPropertiesWatch(t *testing.T) {
	p := openTemp(t)
	if err := p.Watch(); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	var mu sync.Mutex
	changed := make(chan struct{}, 1)
	p.Subscribe(func(e PropertyEvent) {
		mu.Lock()
		defer mu.Unlock()
		if e.Key == ServerInstanceKey && e.New == "srv9" {
			select {
			case changed <- struct{}{}:
			default:
			}
		}
	})

	if err := os.WriteFile(p.Path(), []byte("j2ee.server.instance: srv9\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("property change not observed")
	}
}
