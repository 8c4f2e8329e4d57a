// Package viewer drives an interactive view of the Mandelbrot set: it turns
// input events into viewports, keeps one build in flight for the newest
// viewport and presents only that build's image.
package viewer

import (
	"context"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"

	mandel "github.com/marben/mandelview"
	"github.com/marben/mandelview/internal/logging"
)

// ProgressFunc observes the rows completed by the current build.
type ProgressFunc func(completed, total int)

type Options struct {
	Size    image.Point
	MaxIter int

	// ZoomFactor scales the width by 1±ZoomFactor per scroll tick.
	ZoomFactor float64
	// TickPeriod is the time between two ticks of Run.
	TickPeriod time.Duration
	// CancelSuperseded cancels builds as soon as a newer one starts
	// instead of letting them finish and dropping their result.
	CancelSuperseded bool

	BuildOptions []mandel.BuildOption
	OnProgress   ProgressFunc
	Logger       logrus.FieldLogger
}

// inflight is a started build and what is needed to drop it.
type inflight struct {
	build  *mandel.Build
	gen    uint64
	cancel context.CancelFunc
}

// Driver owns the current viewport, the current build and the displayed
// image. Tick and Run must be called from a single goroutine; GetImage may
// be called from any goroutine.
type Driver struct {
	opts Options
	log  logrus.FieldLogger

	vp      mandel.Viewport
	dirty   bool
	pressed bool
	drag    mgl64.Vec2

	gen       uint64
	current   *inflight
	stale     []*inflight
	completed int

	displayed    atomic.Pointer[image.RGBA]
	displayedGen uint64
	firstFrame   chan struct{}
	firstOnce    sync.Once
}

// New creates a driver showing vp. The first tick starts its build.
func New(vp mandel.Viewport, opts Options) *Driver {
	if opts.TickPeriod <= 0 {
		opts.TickPeriod = time.Second / 60
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	return &Driver{
		opts:       opts,
		log:        log,
		vp:         vp,
		dirty:      true,
		firstFrame: make(chan struct{}),
	}
}

// Viewport returns the viewport of the newest build.
func (d *Driver) Viewport() mandel.Viewport {
	return d.vp
}

// Progress returns the rows completed by the current build and its total.
// Between builds both are the last build's row count.
func (d *Driver) Progress() (completed, total int) {
	return d.completed, d.opts.Size.Y
}

// Generation returns the number of builds started so far.
func (d *Driver) Generation() uint64 {
	return d.gen
}

// DisplayedGeneration returns the generation of the displayed image, or 0.
func (d *Driver) DisplayedGeneration() uint64 {
	return d.displayedGen
}

// Displayed returns the presented image, or nil before the first frame.
func (d *Driver) Displayed() *image.RGBA {
	return d.displayed.Load()
}

// GetImage waits for the first frame and returns the displayed image.
func (d *Driver) GetImage(ctx context.Context) (*image.RGBA, error) {
	select {
	case <-d.firstFrame:
		return d.displayed.Load(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

var _ mandel.ImgProvider = (*Driver)(nil)

// Run ticks until a Quit event, a presentation or build failure, or until
// ctx is done.
func (d *Driver) Run(ctx context.Context, src EventSource, surface Surface) error {
	ticker := time.NewTicker(d.opts.TickPeriod)
	defer ticker.Stop()
	defer d.dropAll()

	for {
		quit, err := d.Tick(ctx, src.PollEvents(), surface)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick applies events, starts a build if the view changed, forwards
// progress and presents the current build once it is done. It never blocks
// on a build.
func (d *Driver) Tick(ctx context.Context, events []Event, surface Surface) (quit bool, err error) {
	for _, ev := range events {
		if ev.Kind == Quit {
			return true, nil
		}
		d.apply(ev)
	}
	d.flushDrag()

	if d.dirty {
		d.start(ctx)
	}
	d.reapStale()

	if d.current == nil {
		return false, nil
	}
	return false, d.poll(surface)
}

func (d *Driver) apply(ev Event) {
	switch ev.Kind {
	case Press:
		d.pressed = true
	case Release:
		d.pressed = false
	case Drag:
		if d.pressed {
			d.drag = d.drag.Add(ev.Delta)
		}
	case Scroll:
		d.flushDrag()
		d.setViewport(d.vp.Zoom(ev.Ticks, d.opts.ZoomFactor, d.opts.Size))
	case Select:
		d.flushDrag()
		d.setViewport(d.vp.Select(ev.Rect, d.opts.Size))
	default:
		d.log.WithField("kind", ev.Kind).Debug("ignoring event")
	}
}

// flushDrag pans by the drags accumulated since the last view change, so
// they apply at the scale they were made at.
func (d *Driver) flushDrag() {
	if d.drag == (mgl64.Vec2{}) {
		return
	}
	d.setViewport(d.vp.Pan(d.drag.X(), d.drag.Y(), d.opts.Size))
	d.drag = mgl64.Vec2{}
}

func (d *Driver) setViewport(vp mandel.Viewport) {
	if vp.Equal(d.vp) {
		return
	}
	d.vp = vp
	d.dirty = true
}

// start supersedes the current build with one for d.vp.
func (d *Driver) start(ctx context.Context) {
	if d.current != nil {
		if d.opts.CancelSuperseded {
			d.current.cancel()
		}
		d.stale = append(d.stale, d.current)
	}

	d.gen++
	bctx, cancel := context.WithCancel(ctx)
	d.current = &inflight{
		build:  mandel.StartBuild(bctx, d.vp, d.opts.Size, d.opts.MaxIter, d.opts.BuildOptions...),
		gen:    d.gen,
		cancel: cancel,
	}
	d.completed = 0
	d.dirty = false

	d.log.WithFields(logrus.Fields{
		"gen":      d.gen,
		"viewport": d.vp.String(),
	}).Debug("build started")
}

// poll drains the current build's progress and presents its image once
// done.
func (d *Driver) poll(surface Surface) error {
	b := d.current.build
	completed := d.completed

	done := false
	select {
	case <-b.Done():
		done = true
	default:
	}

	// progress is closed before done, so a done build drains completely
drain:
	for {
		select {
		case n, ok := <-b.Progress():
			if !ok {
				break drain
			}
			completed = n.Completed
		default:
			if done {
				continue
			}
			break drain
		}
	}
	if completed != d.completed {
		d.completed = completed
		if d.opts.OnProgress != nil {
			d.opts.OnProgress(completed, b.Rows())
		}
	}

	if !done {
		return nil
	}

	cur := d.current
	d.current = nil
	cur.cancel()

	img, err := b.Result()
	if err != nil {
		return fmt.Errorf("build %d: %w", cur.gen, err)
	}
	if err := surface.Present(img); err != nil {
		return fmt.Errorf("present build %d: %w", cur.gen, err)
	}
	d.displayed.Store(img)
	d.displayedGen = cur.gen
	d.firstOnce.Do(func() { close(d.firstFrame) })

	d.log.WithField("gen", cur.gen).Debug("build presented")
	return nil
}

// reapStale forgets superseded builds that have finished. Their images are
// never presented.
func (d *Driver) reapStale() {
	kept := d.stale[:0]
	for _, s := range d.stale {
		select {
		case <-s.build.Done():
			s.cancel()
			d.log.WithField("gen", s.gen).Debug("discarding superseded build")
		default:
			kept = append(kept, s)
		}
	}
	clear(d.stale[len(kept):])
	d.stale = kept
}

// dropAll cancels every build still running.
func (d *Driver) dropAll() {
	if d.current != nil {
		d.current.cancel()
		d.current = nil
	}
	for _, s := range d.stale {
		s.cancel()
	}
	d.stale = nil
}
