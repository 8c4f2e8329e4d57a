package mandel

import (
	"context"
	"image"

	xdraw "golang.org/x/image/draw"
)

// CPURenderer renders tiles on the calling goroutine.
type CPURenderer struct {
	MaxIter int
	Palette Palette // DefaultPalette when nil

	// OnTileRender, when set, is called before a tile is rendered.
	OnTileRender func(tile image.Rectangle)
}

func (r CPURenderer) RenderTile(ctx context.Context, vp Viewport, tile image.Rectangle, size image.Point) (*image.RGBA, error) {
	if r.OnTileRender != nil {
		r.OnTileRender(tile)
	}
	palette := r.Palette
	if palette == nil {
		palette = DefaultPalette
	}

	// Image has global coordinates (tile.Min .. tile.Max)
	img := image.NewRGBA(tile)
	s := vp.Sampler(size, r.MaxIter)

	for py := tile.Min.Y; py < tile.Max.Y; py++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for px := tile.Min.X; px < tile.Max.X; px++ {
			img.SetRGBA(px, py, palette(s.Sample(px, py), r.MaxIter))
		}
	}
	return img, nil
}

var _ Renderer = CPURenderer{}

// Downscale resamples src to size with a Catmull-Rom kernel. Rendering at a
// multiple of the target size and downscaling antialiases the image.
func Downscale(src *image.RGBA, size image.Point) *image.RGBA {
	dst := image.NewRGBA(image.Rectangle{Max: size})
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}
