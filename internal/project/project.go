package project

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/agentx-labs/platformview/internal/config"
	"github.com/agentx-labs/platformview/internal/dispatch"
	"github.com/agentx-labs/platformview/internal/log"
	"github.com/agentx-labs/platformview/internal/node"
	"github.com/agentx-labs/platformview/internal/registry"
	"github.com/agentx-labs/platformview/internal/tree"
	"github.com/rs/zerolog"
	"golang.org/x/text/message"
)

var (
	// ErrNotProject is returned when no project file is found.
	ErrNotProject = errors.New("not a platformview project (run init first)")
	// ErrInitialized is returned by Init when the project file exists.
	ErrInitialized = errors.New("project already initialized")
)

// Options configure Open.
type Options struct {
	// PlatformsDir holds the platform manifests; empty means
	// config.PlatformsDir().
	PlatformsDir string
	// PropertyName is the property binding the server platform; empty means
	// config.ServerInstanceKey.
	PropertyName string
	// Workers sizes the background pool.
	Workers int
	// Printer localizes labels; nil uses the process-wide printer.
	Printer *message.Printer
}

// Project is an open project. It implements node.Context.
type Project struct {
	dir      string
	propName string
	logger   zerolog.Logger

	props    *config.Properties
	registry *registry.Registry
	ui       *dispatch.Queue
	bg       *dispatch.Pool

	platform *node.PlatformNode
	root     *tree.Static
}

var _ node.Context = (*Project)(nil)

// Init creates the project file in dir, binding it to server when server is
// not empty. It returns the project file path.
func Init(dir, server string) (string, error) {
	path := config.PropertiesPath(dir)
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("%w: %s", ErrInitialized, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating project directory: %w", err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		return "", fmt.Errorf("writing project file: %w", err)
	}
	if server == "" {
		return path, nil
	}

	props, err := config.OpenProperties(path)
	if err != nil {
		return "", err
	}
	if err := props.Set(config.ServerInstanceKey, server); err != nil {
		return "", err
	}
	return path, nil
}

// Find returns the project root containing dir: dir itself or its nearest
// ancestor holding a project file.
func Find(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}
	for cur := abs; ; {
		if _, err := os.Stat(config.PropertiesPath(cur)); err == nil {
			return cur, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", fmt.Errorf("%w: %s", ErrNotProject, abs)
		}
		cur = parent
	}
}

// Open opens the project rooted at dir.
func Open(dir string, opts Options) (*Project, error) {
	root, err := Find(dir)
	if err != nil {
		return nil, err
	}
	if opts.PlatformsDir == "" {
		opts.PlatformsDir = config.PlatformsDir()
	}
	if opts.PropertyName == "" {
		opts.PropertyName = config.ServerInstanceKey
	}

	props, err := config.OpenProperties(config.PropertiesPath(root))
	if err != nil {
		return nil, err
	}
	reg, err := registry.Open(opts.PlatformsDir)
	if err != nil {
		return nil, err
	}

	p := &Project{
		dir:      root,
		propName: opts.PropertyName,
		logger:   log.WithComponent("project").With().Str("project", root).Logger(),
		props:    props,
		registry: reg,
		ui:       dispatch.NewQueue("ui"),
		bg:       dispatch.NewPool("background", opts.Workers),
	}

	var nodeOpts []node.Option
	if opts.Printer != nil {
		nodeOpts = append(nodeOpts, node.WithPrinter(opts.Printer))
	}
	p.platform = node.New(p, props, opts.PropertyName, node.ClassPathSupport{}, nodeOpts...)
	p.root = tree.NewStatic(p.Name(), nil, p.platform)

	p.logger.Debug().Str("platforms", opts.PlatformsDir).Msg("project opened")
	return p, nil
}

// Dir returns the project root directory.
func (p *Project) Dir() string { return p.dir }

// Name returns the project directory's base name.
func (p *Project) Name() string { return filepath.Base(p.dir) }

// PropertyName returns the property binding the server platform.
func (p *Project) PropertyName() string { return p.propName }

func (p *Project) Properties() *config.Properties { return p.props }

func (p *Project) Registry() *registry.Registry { return p.registry }

// Platform returns the platform node.
func (p *Project) Platform() *node.PlatformNode { return p.platform }

// Root returns the project node, whose only child is the platform node.
func (p *Project) Root() tree.Node { return p.root }

func (p *Project) ModuleProvider() node.ModuleProvider { return p.registry }

func (p *Project) Platforms() node.Resolver { return p.registry }

func (p *Project) UI() node.Executor { return p.ui }

func (p *Project) Background() node.Executor { return p.bg }

// Settle waits until all posted node work has finished.
func (p *Project) Settle(ctx context.Context) error {
	return dispatch.Settle(ctx, p.ui, p.bg)
}

// Post runs fn on the UI executor, after any node work posted before it.
func (p *Project) Post(fn func()) { p.ui.Post(fn) }

// Watch reloads the project properties and the platform registry as their
// files change, until ctx is cancelled.
func (p *Project) Watch(ctx context.Context, debounce time.Duration) error {
	if err := p.props.Watch(); err != nil {
		return err
	}

	err := p.registry.Watch(ctx, debounce)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close destroys the platform node and stops the executors after they have
// drained.
func (p *Project) Close() {
	p.platform.Destroy()
	p.bg.Close()
	p.ui.Close()
}
