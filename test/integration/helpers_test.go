//go:build integration

package integration_test

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/agentx-labs/platformview/internal/project"
	"github.com/agentx-labs/platformview/internal/tree"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir      string // PLATFORMVIEW_HOME
	PlatformsDir string // PLATFORMVIEW_PLATFORMS
	LibDir       string // server installation holding the archives
	ProjectDir   string // a mock project directory
}

// setupTestEnv creates isolated temp directories and sets environment
// variables so all operations are sandboxed.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		HomeDir:      t.TempDir(),
		PlatformsDir: t.TempDir(),
		LibDir:       t.TempDir(),
		ProjectDir:   filepath.Join(t.TempDir(), "orders"),
	}

	t.Setenv("PLATFORMVIEW_HOME", env.HomeDir)
	t.Setenv("PLATFORMVIEW_PLATFORMS", env.PlatformsDir)

	if err := os.MkdirAll(env.ProjectDir, 0755); err != nil {
		t.Fatalf("creating project dir: %v", err)
	}
	return env
}

// setupServer writes two archives into the lib dir and returns a manifest
// for a GlassFish install whose embeddable EJB classpath lists them, plus a
// text file that is skipped.
func setupServer(t *testing.T, env *testEnv) string {
	t.Helper()

	writeJar(t, filepath.Join(env.LibDir, "glassfish-embedded.jar"), "org/glassfish/ejb/embedded/EJBContainerImpl.class")
	writeJar(t, filepath.Join(env.LibDir, "javaee-api.jar"), "javax/ejb/Stateless.class", "javax/persistence/Entity.class")
	writeFile(t, filepath.Join(env.LibDir, "README.txt"), "not an archive\n")

	return writeFile(t, filepath.Join(t.TempDir(), "glassfish.yaml"), `id: gf7
display_name: GlassFish Server
version: 7.0.9
icon: glassfish
tools:
  embeddableejb:
    classpath:
      - `+filepath.Join(env.LibDir, "glassfish-embedded.jar")+`
      - `+filepath.Join(env.LibDir, "README.txt")+`
      - `+filepath.Join(env.LibDir, "javaee-api.jar")+`
`)
}

func openProject(t *testing.T, env *testEnv) *project.Project {
	t.Helper()
	p, err := project.Open(env.ProjectDir, project.Options{
		PlatformsDir: env.PlatformsDir,
		Workers:      2,
		Printer:      message.NewPrinter(language.English),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(p.Close)
	return p
}

func settle(t *testing.T, p *project.Project) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.Settle(ctx); err != nil {
		t.Fatalf("Settle: %v", err)
	}
}

// eventually polls cond until it holds or ten seconds pass.
func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(25 * time.Millisecond)
	}
}

// childLabels returns the labels of the platform node's children.
func childLabels(p *project.Project) []string {
	var labels []string
	for _, n := range p.Platform().Children().Nodes() {
		labels = append(labels, tree.Label(n))
	}
	return labels
}

func writeJar(t *testing.T, path string, entries ...string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	zw := zip.NewWriter(f)
	for _, name := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("adding %s: %v", name, err)
		}
		w.Write([]byte("x"))
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing %s: %v", path, err)
	}
	f.Close()
}

// writeFile creates a file at the given path with the given content and
// returns the path.
func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func readString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}
