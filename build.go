package mandel

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ErrBuildPending is returned by Result before the build is done.
var ErrBuildPending = errors.New("build still in progress")

// RowDone notifies that one image row has been rendered. Completed counts
// the rows finished so far in this build, including Row.
type RowDone struct {
	Row       int
	Completed int
}

type buildOptions struct {
	workers    int
	bandHeight int
	renderer   Renderer
	palette    Palette
}

type BuildOption func(*buildOptions)

// WithWorkers bounds the number of tiles rendered concurrently.
// Defaults to GOMAXPROCS.
func WithWorkers(n int) BuildOption {
	return func(o *buildOptions) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithBandHeight sets how many rows make up one unit of work. Defaults to 1.
func WithBandHeight(h int) BuildOption {
	return func(o *buildOptions) {
		if h > 0 {
			o.bandHeight = h
		}
	}
}

// WithRenderer replaces the CPURenderer tiles are rendered with.
func WithRenderer(r Renderer) BuildOption {
	return func(o *buildOptions) {
		o.renderer = r
	}
}

// WithPalette sets the palette of the default CPURenderer.
func WithPalette(p Palette) BuildOption {
	return func(o *buildOptions) {
		o.palette = p
	}
}

// Build is one in-flight computation of an image. Rows are rendered in
// parallel; their completion is reported on Progress and the assembled image
// becomes available once Done is closed.
type Build struct {
	vp   Viewport
	size image.Point

	progress chan RowDone
	done     chan struct{}

	// written once before done is closed
	img *image.RGBA
	err error
}

// StartBuild starts rendering vp into an image of the given size and
// returns immediately. Canceling ctx abandons the rows not yet rendered and
// makes the build fail with the context's error.
func StartBuild(ctx context.Context, vp Viewport, size image.Point, maxIter int, opts ...BuildOption) *Build {
	o := buildOptions{
		workers:    runtime.GOMAXPROCS(0),
		bandHeight: 1,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.renderer == nil {
		o.renderer = CPURenderer{MaxIter: maxIter, Palette: o.palette}
	}

	b := &Build{
		vp:       vp,
		size:     size,
		progress: make(chan RowDone, max(size.Y, 0)),
		done:     make(chan struct{}),
	}
	go b.run(ctx, o)
	return b
}

func (b *Build) run(ctx context.Context, o buildOptions) {
	img := image.NewRGBA(image.Rectangle{Max: b.size})

	var tiles []image.Rectangle
	if b.size.X > 0 && b.size.Y > 0 {
		tiles = splitRectNoClip(img.Bounds(), b.size.X, o.bandHeight)
	}

	// workers hand finished tiles to a single coordinator, which is the
	// only sender on b.progress
	finished := make(chan image.Rectangle)
	coordinated := make(chan struct{})
	go func() {
		defer close(coordinated)
		defer close(b.progress)
		completed := 0
		for tile := range finished {
			for row := tile.Min.Y; row < tile.Max.Y; row++ {
				completed++
				b.progress <- RowDone{Row: row, Completed: completed}
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for _, tile := range tiles {
		tile := tile // per-iteration copy (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tileImg, err := o.renderer.RenderTile(gctx, b.vp, tile, b.size)
			if err != nil {
				return fmt.Errorf("render tile %s: %w", tile, err)
			}
			if tileImg == nil || tileImg.Bounds() != tile {
				return fmt.Errorf("render tile %s: renderer returned wrong bounds", tile)
			}
			// tiles never overlap, so workers write disjoint parts of img
			draw.Draw(img, tile, tileImg, tile.Min, draw.Src)
			finished <- tile
			return nil
		})
	}
	err := g.Wait()
	close(finished)
	<-coordinated

	if err != nil {
		b.err = fmt.Errorf("build %s: %w", b.vp, err)
	} else {
		b.img = img
	}
	close(b.done)
}

// Progress returns the row notifications of this build. The channel yields
// one notification per rendered row, in completion order, and is closed
// before Done. It is buffered for every row, so it need not be drained.
func (b *Build) Progress() <-chan RowDone {
	return b.progress
}

// Done is closed once the result is available.
func (b *Build) Done() <-chan struct{} {
	return b.done
}

// Result returns the rendered image without blocking.
func (b *Build) Result() (*image.RGBA, error) {
	select {
	case <-b.done:
		return b.img, b.err
	default:
		return nil, ErrBuildPending
	}
}

// Wait blocks until the build is done or ctx is canceled.
func (b *Build) Wait(ctx context.Context) (*image.RGBA, error) {
	select {
	case <-b.done:
		return b.img, b.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Rows is the number of progress notifications a successful build sends.
func (b *Build) Rows() int {
	return max(b.size.Y, 0)
}

// splitRectNoClip splits r into tiles of size tileW × tileH.
// Tiles at the right and bottom edges are smaller if r is not divisible.
func splitRectNoClip(r image.Rectangle, tileW, tileH int) []image.Rectangle {
	if tileW <= 0 || tileH <= 0 {
		panic("tile dimensions must be positive")
	}

	w := r.Dx()
	h := r.Dy()

	var tiles []image.Rectangle

	for oy := 0; oy < h; oy += tileH {
		th := min(tileH, h-oy)

		for ox := 0; ox < w; ox += tileW {
			tw := min(tileW, w-ox)

			tile := image.Rect(
				r.Min.X+ox,
				r.Min.Y+oy,
				r.Min.X+ox+tw,
				r.Min.Y+oy+th,
			)
			tiles = append(tiles, tile)
		}
	}

	return tiles
}
