package mandel

import (
	"context"
	"image"
)

// ImgProvider hands out the most recent complete image.
type ImgProvider interface {
	GetImage(ctx context.Context) (*image.RGBA, error)
}

// Renderer renders one tile of an image of the given size. The returned
// image has the tile's bounds in global image coordinates.
type Renderer interface {
	RenderTile(ctx context.Context, vp Viewport, tile image.Rectangle, size image.Point) (*image.RGBA, error)
}
