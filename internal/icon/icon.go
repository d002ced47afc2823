// Package icon loads the embedded node icons and composes badged variants.
package icon

import (
	"embed"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"sync"
)

//go:embed resources/*.png
var resources embed.FS

// Names of the embedded icons.
const (
	Server      = "j2eeServer"
	BrokenBadge = "brokenProjectBadge"
	Archive     = "jar"
	Package     = "package"
)

// Image is a named, immutable icon.
type Image struct {
	name string
	img  image.Image
}

// Name identifies the icon; composites carry the names of their parts.
func (i *Image) Name() string { return i.name }

// Image returns the pixel data.
func (i *Image) Image() image.Image { return i.img }

// Bounds returns the icon's pixel bounds.
func (i *Image) Bounds() image.Rectangle { return i.img.Bounds() }

func (i *Image) String() string { return i.name }

var cache sync.Map // name -> *Image

// Load returns the embedded icon with the given name. Repeated calls return
// the same *Image.
func Load(name string) (*Image, error) {
	if v, ok := cache.Load(name); ok {
		return v.(*Image), nil
	}
	f, err := resources.Open("resources/" + name + ".png")
	if err != nil {
		return nil, fmt.Errorf("opening icon %q: %w", name, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding icon %q: %w", name, err)
	}
	v, _ := cache.LoadOrStore(name, &Image{name: name, img: img})
	return v.(*Image), nil
}

// MustLoad is Load for icons known to be embedded; it panics otherwise and
// is meant for package-level variables.
func MustLoad(name string) *Image {
	img, err := Load(name)
	if err != nil {
		panic(err)
	}
	return img
}

// Exists reports whether an icon with the given name is embedded.
func Exists(name string) bool {
	_, err := resources.Open("resources/" + name + ".png")
	return err == nil
}

// Merge draws badge over base with its top-left corner at (x, y). The result
// grows to fit the badge if it would overflow base.
func Merge(base, badge *Image, x, y int) *Image {
	bb := base.Bounds()
	gb := badge.Bounds()
	w := max(bb.Dx(), x+gb.Dx())
	h := max(bb.Dy(), y+gb.Dy())

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, bb.Sub(bb.Min), base.img, bb.Min, draw.Src)
	at := image.Rect(x, y, x+gb.Dx(), y+gb.Dy())
	draw.Draw(dst, at, badge.img, gb.Min, draw.Over)

	return &Image{
		name: fmt.Sprintf("%s+%s@%d,%d", base.name, badge.name, x, y),
		img:  dst,
	}
}
