package wsview

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
)

// Listener accepts websocket connections upgraded by its ServeHTTP and hands
// them to Accept, so sessions can be served from a single accept loop.
type Listener struct {
	ch     chan *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
	opts   *websocket.AcceptOptions
	log    logrus.FieldLogger
}

func NewListener(ctx context.Context, opts *websocket.AcceptOptions, log logrus.FieldLogger) *Listener {
	ctx, cancel := context.WithCancel(ctx)
	return &Listener{
		ch:     make(chan *websocket.Conn),
		ctx:    ctx,
		cancel: cancel,
		opts:   opts,
		log:    log,
	}
}

// ServeHTTP handles the http ws endpoint.
// If the websocket is successfully initialized it is passed on to Accept.
func (l *Listener) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, l.opts)
	if err != nil {
		l.log.WithError(err).Warn("websocket accept")
		return
	}

	select {
	case l.ch <- c:
	case <-l.ctx.Done():
		c.Close(websocket.StatusGoingAway, "server closing")
	}
}

// Accept waits for the next connection.
func (l *Listener) Accept() (*websocket.Conn, error) {
	select {
	case c := <-l.ch:
		return c, nil
	case <-l.ctx.Done():
		return nil, context.Cause(l.ctx)
	}
}

func (l *Listener) Close() error {
	l.cancel()
	return nil
}
