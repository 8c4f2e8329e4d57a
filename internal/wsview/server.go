// Package wsview serves the viewer over a websocket: the browser sends
// input events as JSON text messages and receives progress as JSON and
// frames as binary PNG messages.
package wsview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"

	mandel "github.com/marben/mandelview"
	"github.com/marben/mandelview/internal/viewer"
)

// eventMsg is an input event sent by the client.
type eventMsg struct {
	Kind  string  `json:"kind"`
	DX    float64 `json:"dx,omitempty"`
	DY    float64 `json:"dy,omitempty"`
	Ticks int     `json:"ticks,omitempty"`
	X0    int     `json:"x0,omitempty"`
	Y0    int     `json:"y0,omitempty"`
	X1    int     `json:"x1,omitempty"`
	Y1    int     `json:"y1,omitempty"`
}

// maxScrollTicks bounds the wheel ticks of a single event. A wheel sends
// one tick per event.
const maxScrollTicks = 8

func (m eventMsg) event() (viewer.Event, error) {
	kind, ok := viewer.ParseEventKind(m.Kind)
	if !ok {
		return viewer.Event{}, fmt.Errorf("unknown event kind %q", m.Kind)
	}
	return viewer.Event{
		Kind:  kind,
		Delta: mgl64.Vec2{m.DX, m.DY},
		Ticks: min(max(m.Ticks, -maxScrollTicks), maxScrollTicks),
		Rect:  image.Rect(m.X0, m.Y0, m.X1, m.Y1),
	}, nil
}

// statusMsg is sent to the client as JSON.
type statusMsg struct {
	Type      string `json:"type"` // "hello" or "progress"
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Completed int    `json:"completed,omitempty"`
	Total     int    `json:"total,omitempty"`
	Viewport  string `json:"viewport,omitempty"`
}

// Server runs one viewer.Driver per websocket session.
type Server struct {
	vp   mandel.Viewport
	opts viewer.Options
	log  logrus.FieldLogger

	// driver of the most recent session, backs /image.png
	last atomic.Pointer[viewer.Driver]
}

// NewServer creates a server whose sessions start at vp. opts.OnProgress is
// replaced per session.
func NewServer(vp mandel.Viewport, opts viewer.Options, log logrus.FieldLogger) *Server {
	opts.Logger = log
	return &Server{vp: vp, opts: opts, log: log}
}

// Serve runs a session for every connection accepted on l, until l is
// closed.
func (s *Server) Serve(ctx context.Context, l *Listener) error {
	for {
		c, err := l.Accept()
		if err != nil {
			return err
		}
		go s.session(ctx, c)
	}
}

// Handler routes /ws to l, /image.png to the latest session's image and
// everything else to files under staticDir.
func (s *Server) Handler(l *Listener, staticDir string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", l)
	mux.HandleFunc("/image.png", s.serveImage)
	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
	return mux
}

func (s *Server) serveImage(w http.ResponseWriter, r *http.Request) {
	d := s.last.Load()
	if d == nil {
		http.Error(w, "no active session", http.StatusServiceUnavailable)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	var provider mandel.ImgProvider = d
	img, err := provider.GetImage(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		s.log.WithError(err).Debug("write image")
	}
}

func (s *Server) session(ctx context.Context, c *websocket.Conn) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log := s.log.WithField("session", fmt.Sprintf("%p", c))
	log.Info("session started")

	opts := s.opts
	opts.Logger = log
	opts.OnProgress = func(completed, total int) {
		msg := statusMsg{Type: "progress", Completed: completed, Total: total}
		if err := wsjson.Write(ctx, c, msg); err != nil {
			log.WithError(err).Debug("write progress")
		}
	}
	d := viewer.New(s.vp, opts)
	s.last.Store(d)

	hello := statusMsg{Type: "hello", Width: opts.Size.X, Height: opts.Size.Y, Viewport: s.vp.String()}
	if err := wsjson.Write(ctx, c, hello); err != nil {
		log.WithError(err).Warn("write hello")
		c.Close(websocket.StatusInternalError, "write failed")
		return
	}

	src := make(viewer.ChanSource, 64)
	go s.readEvents(ctx, c, src, log)

	err := d.Run(ctx, src, &connSurface{ctx: ctx, conn: c})
	switch {
	case err == nil:
		log.Info("session closed by client")
		c.Close(websocket.StatusNormalClosure, "")
	case errors.Is(err, context.Canceled):
		log.Info("session canceled")
		c.Close(websocket.StatusGoingAway, "server closing")
	default:
		log.WithError(err).Warn("session failed")
		c.Close(websocket.StatusInternalError, "render failed")
	}
}

// readEvents feeds client events into src and closes it, which quits the
// driver, once the connection fails.
func (s *Server) readEvents(ctx context.Context, c *websocket.Conn, src viewer.ChanSource, log logrus.FieldLogger) {
	defer close(src)
	for {
		var msg eventMsg
		if err := wsjson.Read(ctx, c, &msg); err != nil {
			if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
				log.WithError(err).Debug("read event")
			}
			return
		}
		ev, err := msg.event()
		if err != nil {
			log.WithError(err).Debug("dropping event")
			continue
		}
		select {
		case src <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// connSurface presents frames as binary PNG messages.
type connSurface struct {
	ctx  context.Context
	conn *websocket.Conn
	buf  bytes.Buffer
}

var encoder = png.Encoder{CompressionLevel: png.BestSpeed}

func (s *connSurface) Present(img *image.RGBA) error {
	s.buf.Reset()
	if err := encoder.Encode(&s.buf, img); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	if err := s.conn.Write(s.ctx, websocket.MessageBinary, s.buf.Bytes()); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
