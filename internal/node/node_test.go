package node

import (
	"runtime"
	"slices"
	"testing"

	"github.com/agentx-labs/platformview/internal/fileobj"
	"github.com/agentx-labs/platformview/internal/i18n"
	"github.com/agentx-labs/platformview/internal/icon"
	"github.com/agentx-labs/platformview/internal/manifest"
	"github.com/agentx-labs/platformview/internal/platform"
	"github.com/agentx-labs/platformview/internal/tree"
)

func newNode(t *testing.T, tc Context, store PropertyStore) *PlatformNode {
	t.Helper()
	n := New(tc, store, propName, ClassPathSupport{}, WithPrinter(english))
	t.Cleanup(n.Destroy)
	return n
}

func keyLabels(keys []Key) []string {
	var out []string
	for _, k := range keys {
		out = append(out, k.Label)
	}
	return out
}

func nodeLabels(nodes []tree.Node) []string {
	var out []string
	for _, n := range nodes {
		out = append(out, tree.Label(n))
	}
	return out
}

func TestGlassFishScenario(t *testing.T) {
	cp := newClasspath(t)
	tc := newContext(t, newRegistry(glassfish(cp)))
	n := newNode(t, tc, newStore(propName, "srv1"))

	if got := n.HTMLDisplayName(); got != "GlassFish (Embeddable EJB Container)" {
		t.Errorf("HTMLDisplayName() = %q", got)
	}
	if n.DisplayName() != "" || n.Name() != "" {
		t.Errorf("DisplayName() = %q, Name() = %q; want both empty", n.DisplayName(), n.Name())
	}
	if n.Icon(tree.IconSmall) != icon.MustLoad("glassfish") {
		t.Errorf("Icon() = %v, want glassfish", n.Icon(tree.IconSmall))
	}
	if n.OpenedIcon(tree.IconSmall) != n.Icon(tree.IconSmall) {
		t.Error("OpenedIcon() differs from Icon()")
	}

	want := []Key{
		{Root: fileobj.ArchiveRoot{Archive: cp.a}, Label: "A.jar"},
		{Root: fileobj.ArchiveRoot{Archive: cp.b}, Label: "B.jar"},
	}
	if got := n.children.computeKeys(); !slices.Equal(got, want) {
		t.Errorf("computeKeys() = %+v, want %+v", got, want)
	}
	if got := nodeLabels(n.Children().Nodes()); !slices.Equal(got, []string{"A.jar", "B.jar"}) {
		t.Errorf("children = %v", got)
	}
	tc.settle(t)
}

func TestUnsetIdentifierScenario(t *testing.T) {
	tc := newContext(t, newRegistry())
	n := newNode(t, tc, newStore())

	if got := n.HTMLDisplayName(); got != "<Missing J2EE Server>" {
		t.Errorf("HTMLDisplayName() = %q", got)
	}
	if n.Icon(tree.IconSmall) != BrokenIcon || n.OpenedIcon(tree.IconLarge) != BrokenIcon {
		t.Error("icons are not the broken composite")
	}
	if keys := n.children.computeKeys(); len(keys) != 0 {
		t.Errorf("computeKeys() = %v, want none", keys)
	}
	if nodes := n.Children().Nodes(); len(nodes) != 0 {
		t.Errorf("children = %v, want none", nodeLabels(nodes))
	}
	if tc.reg.lookups() != 0 {
		t.Errorf("registry consulted %d times for an unset identifier", tc.reg.lookups())
	}
}

func TestUnknownIdentifierShowsMissing(t *testing.T) {
	tc := newContext(t, newRegistry())
	n := newNode(t, tc, newStore(propName, "srv9"))

	if got := n.HTMLDisplayName(); got != "<Missing J2EE Server>" {
		t.Errorf("HTMLDisplayName() = %q", got)
	}
	if n.Icon(tree.IconSmall) != BrokenIcon {
		t.Error("icon is not the broken composite")
	}
	if _, ok := n.cache.resolve(); ok {
		t.Error("unknown identifier resolved")
	}
	if n.cache.cached() != nil {
		t.Error("failed resolution cached a handle")
	}
}

func TestBrokenIconComposite(t *testing.T) {
	base := icon.MustLoad(icon.Server)
	if BrokenIcon.Bounds() != base.Bounds() {
		t.Errorf("broken icon bounds = %v, want %v", BrokenIcon.Bounds(), base.Bounds())
	}
	if BrokenIcon.Name() != "j2eeServer+brokenProjectBadge@8,0" {
		t.Errorf("broken icon name = %q", BrokenIcon.Name())
	}
}

func TestPlatformWithoutIconShowsBroken(t *testing.T) {
	p := &fakePlatform{id: "bare", name: "Bare"}
	tc := newContext(t, newRegistry(p))
	n := newNode(t, tc, newStore(propName, "bare"))

	if n.Icon(tree.IconSmall) != BrokenIcon {
		t.Error("nil platform icon not replaced by the broken composite")
	}
	if got := n.HTMLDisplayName(); got != "Bare (Embeddable EJB Container)" {
		t.Errorf("HTMLDisplayName() = %q", got)
	}
}

func TestFixedPolicies(t *testing.T) {
	tc := newContext(t, newRegistry())
	n := newNode(t, tc, newStore())

	if n.CanCopy() {
		t.Error("CanCopy() = true")
	}
	for _, ctx := range []bool{false, true} {
		if a := n.Actions(ctx); a == nil || len(a) != 0 {
			t.Errorf("Actions(%v) = %#v, want empty non-nil", ctx, a)
		}
	}
	if n.Children().IsLeaf() {
		t.Error("platform node children reported as leaf")
	}
}

func TestLocalizedLabels(t *testing.T) {
	cp := newClasspath(t)
	tc := newContext(t, newRegistry(glassfish(cp)))

	de := New(tc, newStore(propName, "srv1"), propName, ClassPathSupport{}, WithPrinter(i18n.Printer("de")))
	defer de.Destroy()
	if got := de.HTMLDisplayName(); got != "GlassFish (Einbettbarer EJB-Container)" {
		t.Errorf("HTMLDisplayName() = %q", got)
	}

	missing := New(tc, newStore(), propName, ClassPathSupport{}, WithPrinter(i18n.Printer("de")))
	defer missing.Destroy()
	if got := missing.HTMLDisplayName(); got != "<Fehlender J2EE-Server>" {
		t.Errorf("HTMLDisplayName() = %q", got)
	}
	tc.settle(t)
}

func TestCacheCoherence(t *testing.T) {
	cp := newClasspath(t)
	tc := newContext(t, newRegistry(glassfish(cp)))
	n := newNode(t, tc, newStore(propName, "srv1"))

	first, ok := n.cache.resolve()
	if !ok {
		t.Fatal("resolve failed")
	}
	second, _ := n.cache.resolve()
	if first != second {
		t.Error("second resolve returned a different handle")
	}
	n.HTMLDisplayName()
	n.Icon(tree.IconSmall)
	n.children.computeKeys()
	if tc.reg.lookups() != 1 {
		t.Errorf("registry lookups = %d, want 1", tc.reg.lookups())
	}
	tc.settle(t)
}

func TestResolveAnnouncesIcon(t *testing.T) {
	cp := newClasspath(t)
	tc := newContext(t, newRegistry(glassfish(cp)))
	n := newNode(t, tc, newStore(propName, "srv1"))
	rec := record(n)

	n.cache.resolve()
	tc.settle(t)
	n.cache.resolve()
	tc.settle(t)

	if got := rec.kinds(); !slices.Equal(got, []tree.EventKind{tree.IconChanged, tree.OpenedIconChanged}) {
		t.Errorf("events = %v, want one icon change", got)
	}
}

func TestInvalidationTriggers(t *testing.T) {
	tests := []struct {
		name    string
		trigger func(*fakeStore, *fakeRegistry, *PlatformNode)
	}{
		{"property changed", func(s *fakeStore, _ *fakeRegistry, _ *PlatformNode) {
			s.set(propName, "srv2")
		}},
		{"instance added", func(_ *fakeStore, r *fakeRegistry, _ *PlatformNode) {
			r.listeners.Fire(platform.InstanceEvent{Kind: platform.InstanceAdded, ID: "other"})
		}},
		{"instance removed", func(_ *fakeStore, r *fakeRegistry, _ *PlatformNode) {
			r.listeners.Fire(platform.InstanceEvent{Kind: platform.InstanceRemoved, ID: "other"})
		}},
		{"classpath changed", func(_ *fakeStore, _ *fakeRegistry, n *PlatformNode) {
			n.cache.cached().(*platform.Instance).SetToolClasspath(platform.ToolEmbeddableEJB, []string{"/x.jar"})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newRegistry()
			reg.factory = func(id string) (platform.Platform, bool) {
				return platform.NewInstance(&manifest.PlatformManifest{
					ID: id, DisplayName: id, Version: "1.0.0",
					Tools: map[string]manifest.ToolConfig{platform.ToolEmbeddableEJB: {Classpath: []string{}}},
				}), true
			}
			tc := newContext(t, reg)
			store := newStore(propName, "srv1")
			n := newNode(t, tc, store)

			before, ok := n.cache.resolve()
			if !ok {
				t.Fatal("resolve failed")
			}
			tc.settle(t)

			tt.trigger(store, reg, n)
			tc.settle(t)

			after, ok := n.cache.resolve()
			if !ok {
				t.Fatal("resolve failed after trigger")
			}
			if after == before {
				t.Error("resolve returned the previously cached handle")
			}
			if n.refreshes.Load() != 1 {
				t.Errorf("refreshes = %d, want 1", n.refreshes.Load())
			}
		})
	}
}

func TestUnrelatedPropertyIgnored(t *testing.T) {
	cp := newClasspath(t)
	tc := newContext(t, newRegistry(glassfish(cp)))
	store := newStore(propName, "srv1")
	n := newNode(t, tc, store)

	store.set("platform.active", "other")
	tc.settle(t)
	if n.refreshes.Load() != 0 {
		t.Errorf("refreshes = %d, want 0", n.refreshes.Load())
	}
}

func TestDefaultInstanceChangeIgnored(t *testing.T) {
	cp := newClasspath(t)
	tc := newContext(t, newRegistry(glassfish(cp)))
	n := newNode(t, tc, newStore(propName, "srv1"))
	n.cache.resolve()
	tc.settle(t)
	rec := record(n)

	tc.reg.listeners.Fire(platform.InstanceEvent{Kind: platform.DefaultInstanceChanged, ID: "srv1", OldID: "srv0"})
	tc.settle(t)

	if n.refreshes.Load() != 0 || len(rec.list()) != 0 {
		t.Errorf("default change caused %d refreshes and events %v", n.refreshes.Load(), rec.kinds())
	}
	if n.cache.cached() == nil {
		t.Error("default change invalidated the cache")
	}
}

func TestInstanceRemovedScenario(t *testing.T) {
	cp := newClasspath(t)
	tc := newContext(t, newRegistry(glassfish(cp)))
	n := newNode(t, tc, newStore(propName, "srv1"))
	if _, ok := n.cache.resolve(); !ok {
		t.Fatal("resolve failed")
	}
	tc.settle(t)
	rec := record(n)

	tc.reg.remove("srv1")
	tc.settle(t)

	if n.refreshes.Load() != 1 {
		t.Errorf("refreshes = %d, want 1", n.refreshes.Load())
	}
	if _, ok := n.cache.resolve(); ok {
		t.Error("removed platform still resolves")
	}
	want := []tree.EventKind{tree.NameChanged, tree.DisplayNameChanged, tree.IconChanged, tree.OpenedIconChanged}
	if got := rec.kinds(); !slices.Equal(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for _, e := range rec.list()[:2] {
		if !e.Unknown {
			t.Errorf("%v event carries values, want unknown", e.Kind)
		}
	}
	if got := n.HTMLDisplayName(); got != "<Missing J2EE Server>" {
		t.Errorf("HTMLDisplayName() = %q after removal", got)
	}
}

func TestRefreshIsIdempotent(t *testing.T) {
	cp := newClasspath(t)
	tc := newContext(t, newRegistry(glassfish(cp)))
	n := newNode(t, tc, newStore(propName, "srv1"))
	n.Children().Nodes()

	n.refresh()
	tc.settle(t)
	html, img, keys := n.HTMLDisplayName(), n.Icon(tree.IconSmall), n.children.keys.Keys()

	n.refresh()
	n.refresh()
	tc.settle(t)

	if n.HTMLDisplayName() != html || n.Icon(tree.IconSmall) != img {
		t.Error("presentation changed on repeated refresh")
	}
	if got := n.children.keys.Keys(); !slices.Equal(got, keys) {
		t.Errorf("keys = %v, want %v", got, keys)
	}
	if len(keys) != 2 {
		t.Errorf("keys = %v, want two archives", keyLabels(keys))
	}
}

func TestCapabilityGating(t *testing.T) {
	cp := newClasspath(t)
	p := &fakePlatform{id: "srv1", name: "Plain", supported: false, classpath: []string{cp.a, cp.b}}
	tc := newContext(t, newRegistry(p))
	n := newNode(t, tc, newStore(propName, "srv1"))

	if keys := n.children.computeKeys(); len(keys) != 0 {
		t.Errorf("computeKeys() = %v for an unsupported tool", keyLabels(keys))
	}
}

func TestSkipOnFailurePreservesOrder(t *testing.T) {
	cp := newClasspath(t)
	p := &fakePlatform{id: "srv1", name: "Mixed", supported: true,
		classpath: []string{cp.b, cp.missing(), cp.text, cp.a}}
	tc := newContext(t, newRegistry(p))
	n := newNode(t, tc, newStore(propName, "srv1"))

	if got := keyLabels(n.children.computeKeys()); !slices.Equal(got, []string{"B.jar", "A.jar"}) {
		t.Errorf("computeKeys() = %v, want [B.jar A.jar]", got)
	}
}

func TestDisplayNameRelay(t *testing.T) {
	cp := newClasspath(t)
	inst := glassfish(cp)
	tc := newContext(t, newRegistry(inst))
	n := newNode(t, tc, newStore(propName, "srv1"))
	n.cache.resolve()
	tc.settle(t)
	rec := record(n)

	inst.SetDisplayName("Eclipse GlassFish")
	tc.settle(t)

	events := rec.list()
	if len(events) != 2 {
		t.Fatalf("events = %v, want name and display name", rec.kinds())
	}
	for i, kind := range []tree.EventKind{tree.NameChanged, tree.DisplayNameChanged} {
		e := events[i]
		if e.Kind != kind || e.Old != "GlassFish" || e.New != "Eclipse GlassFish" || e.Unknown {
			t.Errorf("event %d = %+v", i, e)
		}
	}
	if n.refreshes.Load() != 0 {
		t.Error("display name change triggered a refresh")
	}
	if got := n.HTMLDisplayName(); got != "Eclipse GlassFish (Embeddable EJB Container)" {
		t.Errorf("HTMLDisplayName() = %q", got)
	}
}

func TestClasspathChangeReconcilesChildren(t *testing.T) {
	cp := newClasspath(t)
	inst := glassfish(cp)
	tc := newContext(t, newRegistry(inst))
	n := newNode(t, tc, newStore(propName, "srv1"))

	nodes := n.Children().Nodes()
	if len(nodes) != 2 {
		t.Fatalf("children = %v", nodeLabels(nodes))
	}
	a := nodes[0]
	tc.settle(t)

	inst.SetToolClasspath(platform.ToolEmbeddableEJB, []string{cp.a})
	tc.settle(t)

	after := n.Children().Nodes()
	if got := nodeLabels(after); !slices.Equal(got, []string{"A.jar"}) {
		t.Fatalf("children = %v, want [A.jar]", got)
	}
	if after[0] != a {
		t.Error("node for the unchanged archive was recreated")
	}
}

func TestNewestKeyComputationWins(t *testing.T) {
	cp := newClasspath(t)
	p := &fakePlatform{id: "srv1", name: "GF", supported: true, classpath: []string{cp.a}}
	mc := &manualContext{reg: newRegistry(p)}
	n := New(mc, newStore(propName, "srv1"), propName, ClassPathSupport{}, WithPrinter(english))
	defer n.Destroy()

	n.Children().Nodes()
	mc.ui.take()

	n.children.postAddNotify()
	n.children.postAddNotify()
	bg := mc.bg.take()
	if len(bg) != 2 {
		t.Fatalf("background tasks = %d, want 2", len(bg))
	}

	bg[0]()
	p.setClasspathQuietly([]string{cp.b})
	bg[1]()

	ui := mc.ui.take()
	if len(ui) != 2 {
		t.Fatalf("ui tasks = %d, want 2", len(ui))
	}
	// Apply the newer result first; the older one must not overwrite it.
	ui[1]()
	ui[0]()

	if got := keyLabels(n.children.keys.Keys()); !slices.Equal(got, []string{"B.jar"}) {
		t.Errorf("keys = %v, want [B.jar]", got)
	}
}

func TestActivationYieldsToNewerComputation(t *testing.T) {
	cp := newClasspath(t)
	p := &fakePlatform{id: "srv1", name: "GF", supported: true, classpath: []string{cp.a}}
	mc := &manualContext{reg: newRegistry(p)}
	n := New(mc, newStore(propName, "srv1"), propName, ClassPathSupport{}, WithPrinter(english))
	defer n.Destroy()
	n.cache.resolve()
	mc.ui.take()

	// A refresh computes and applies newer keys while activation is still
	// reading the old classpath.
	p.mu.Lock()
	p.onEntries = func() {
		p.setClasspathQuietly([]string{cp.b})
		n.children.postAddNotify()
		for _, task := range mc.bg.take() {
			task()
		}
		for _, task := range mc.ui.take() {
			task()
		}
	}
	p.mu.Unlock()

	if got := nodeLabels(n.Children().Nodes()); !slices.Equal(got, []string{"B.jar"}) {
		t.Errorf("children = %v, want [B.jar]", got)
	}
	if got := keyLabels(n.children.keys.Keys()); !slices.Equal(got, []string{"B.jar"}) {
		t.Errorf("keys = %v, want [B.jar]", got)
	}
}

func TestRefreshRunsInScheduledSteps(t *testing.T) {
	cp := newClasspath(t)
	p := &fakePlatform{id: "srv1", name: "GF", supported: true, classpath: []string{cp.a}}
	mc := &manualContext{reg: newRegistry(p)}
	store := newStore(propName, "srv1")
	n := New(mc, store, propName, ClassPathSupport{}, WithPrinter(english))
	defer n.Destroy()

	n.Children().Nodes()
	for _, task := range mc.ui.take() {
		task()
	}
	rec := record(n)
	p.setClasspathQuietly([]string{cp.b})

	// The notification thread only schedules.
	store.set(propName, "srv1")
	if len(rec.list()) != 0 || n.refreshes.Load() != 0 {
		t.Fatalf("listener ran work inline: events %v, refreshes %d", rec.kinds(), n.refreshes.Load())
	}
	if len(mc.bg.take()) != 0 {
		t.Fatal("background work queued before the refresh ran")
	}
	ui := mc.ui.take()
	if len(ui) != 1 {
		t.Fatalf("ui tasks = %d, want 1", len(ui))
	}

	// The UI step announces unknown names and a new icon, then hands the
	// key computation to the background.
	ui[0]()
	want := []tree.EventKind{tree.NameChanged, tree.DisplayNameChanged, tree.IconChanged, tree.OpenedIconChanged}
	if got := rec.kinds(); !slices.Equal(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for _, e := range rec.list()[:2] {
		if !e.Unknown {
			t.Errorf("%v event carries values, want unknown", e.Kind)
		}
	}
	bg := mc.bg.take()
	if len(bg) != 1 {
		t.Fatalf("background tasks = %d, want 1", len(bg))
	}
	rec.reset()

	// Keys computed in the background are applied only on the UI executor.
	bg[0]()
	if got := keyLabels(n.children.keys.Keys()); !slices.Equal(got, []string{"A.jar"}) {
		t.Errorf("keys before apply = %v, want [A.jar]", got)
	}
	if slices.Contains(rec.kinds(), tree.ChildrenAdded) {
		t.Error("children changed off the UI executor")
	}
	for _, task := range mc.ui.take() {
		task()
	}
	if got := keyLabels(n.children.keys.Keys()); !slices.Equal(got, []string{"B.jar"}) {
		t.Errorf("keys after apply = %v, want [B.jar]", got)
	}
	if got := rec.kinds(); !slices.Contains(got, tree.ChildrenAdded) || !slices.Contains(got, tree.ChildrenRemoved) {
		t.Errorf("events = %v, want children added and removed", got)
	}
}

func TestInactiveChildrenStayEmpty(t *testing.T) {
	cp := newClasspath(t)
	tc := newContext(t, newRegistry(glassfish(cp)))
	n := newNode(t, tc, newStore(propName, "srv1"))

	n.refresh()
	tc.settle(t)
	if n.children.keys.Active() || len(n.children.keys.Keys()) != 0 {
		t.Error("refresh populated children that were never shown")
	}
	if n.cache.cached() == nil {
		t.Error("background recomputation did not resolve the platform")
	}
}

func TestDestroyStopsReacting(t *testing.T) {
	cp := newClasspath(t)
	tc := newContext(t, newRegistry(glassfish(cp)))
	store := newStore(propName, "srv1")
	n := New(tc, store, propName, ClassPathSupport{}, WithPrinter(english))
	nodes := n.Children().Nodes()
	tc.settle(t)

	n.Destroy()
	n.Destroy()

	if store.listeners.Len() != 0 || tc.reg.listeners.Len() != 0 {
		t.Errorf("listeners left: store %d, registry %d", store.listeners.Len(), tc.reg.listeners.Len())
	}
	if n.cache.cached() != nil {
		t.Error("cache kept its handle")
	}
	if n.children.keys.Active() || len(n.children.keys.Keys()) != 0 {
		t.Error("children not released")
	}
	if pv := nodes[0].(*PackageViewNode); pv.packages.Active() {
		t.Error("archive node not destroyed")
	}

	store.set(propName, "srv2")
	tc.settle(t)
	if n.refreshes.Load() != 0 {
		t.Errorf("destroyed node refreshed %d times", n.refreshes.Load())
	}
}

func TestCollectedNodeDropsSubscriptions(t *testing.T) {
	tc := newContext(t, newRegistry())
	store := newStore()

	func() {
		New(tc, store, propName, ClassPathSupport{})
	}()
	if store.listeners.Len() != 1 {
		t.Fatalf("store listeners = %d, want 1", store.listeners.Len())
	}

	for i := 0; i < 10 && store.listeners.Len() > 0; i++ {
		runtime.GC()
		store.set("unrelated", "x")
	}
	if store.listeners.Len() != 0 {
		t.Error("subscription of a collected node was not dropped")
	}
	tc.settle(t)
}
