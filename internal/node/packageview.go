package node

import (
	"github.com/agentx-labs/platformview/internal/i18n"
	"github.com/agentx-labs/platformview/internal/icon"
	"github.com/agentx-labs/platformview/internal/log"
	"github.com/agentx-labs/platformview/internal/tree"
	"github.com/rs/zerolog"
)

// PackageViewNode shows an archive root and lists its Java packages.
type PackageViewNode struct {
	tree.Base
	key      Key
	img      *icon.Image
	pkgImg   *icon.Image
	opts     *options
	logger   zerolog.Logger
	packages *tree.Keys[string]
}

var _ tree.Node = (*PackageViewNode)(nil)

func newPackageViewNode(k Key, cs ClassPathSupport, opts *options) *PackageViewNode {
	p := &PackageViewNode{
		key:    k,
		img:    cs.archiveIcon(),
		pkgImg: cs.packageIcon(),
		opts:   opts,
		logger: log.WithComponent("node").With().Str("archive", k.Root.Archive).Logger(),
	}
	p.Bind(p)
	p.packages = tree.NewKeys(p.createPackage)
	p.packages.SetParent(&p.Base)
	p.packages.OnActivate(p.listPackages)
	p.packages.OnDeactivate(func() { p.packages.SetKeys(nil) })
	return p
}

// Key returns the key the node was created for.
func (p *PackageViewNode) Key() Key { return p.key }

func (p *PackageViewNode) Name() string                         { return p.key.Label }
func (p *PackageViewNode) DisplayName() string                  { return p.key.Label }
func (p *PackageViewNode) HTMLDisplayName() string              { return p.key.Label }
func (p *PackageViewNode) Icon(tree.IconType) *icon.Image       { return p.img }
func (p *PackageViewNode) OpenedIcon(tree.IconType) *icon.Image { return p.img }
func (p *PackageViewNode) CanCopy() bool                        { return true }
func (p *PackageViewNode) Actions(bool) []tree.Action           { return []tree.Action{} }
func (p *PackageViewNode) Children() tree.Children              { return p.packages }

// Destroy releases the package children.
func (p *PackageViewNode) Destroy() {
	p.packages.Deactivate()
}

func (p *PackageViewNode) listPackages() {
	pkgs, err := p.key.Root.Packages()
	if err != nil {
		p.logger.Debug().Err(err).Msg("listing packages")
	}
	p.packages.SetKeys(pkgs)
}

func (p *PackageViewNode) createPackage(pkg string) []tree.Node {
	label := pkg
	if label == "" {
		label = p.opts.text(i18n.DefaultPackage)
	}
	return []tree.Node{tree.NewStatic(label, p.pkgImg)}
}
