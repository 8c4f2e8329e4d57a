package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/marben/mandelview/internal/viewer"
	"github.com/marben/mandelview/internal/wsview"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive viewer over http and websockets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().String("addr", "", "http listen address")
	cmd.Flags().String("static", "", "directory served at /")
	cmd.Flags().Bool("cancel-superseded", false, "cancel builds as soon as the view changes")
	bind(a.v, cmd.Flags().Lookup("addr"), "server.addr")
	bind(a.v, cmd.Flags().Lookup("static"), "server.static_dir")
	bind(a.v, cmd.Flags().Lookup("cancel-superseded"), "viewer.cancel_superseded")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	vp, err := cfg.Image.Viewport()
	if err != nil {
		return err
	}

	srv := wsview.NewServer(vp, viewer.Options{
		Size:             image.Pt(cfg.Image.Width, cfg.Image.Height),
		MaxIter:          cfg.Image.MaxIter,
		ZoomFactor:       cfg.Viewer.ZoomFactor,
		TickPeriod:       cfg.Viewer.TickPeriod(),
		CancelSuperseded: cfg.Viewer.CancelSuperseded,
		BuildOptions:     cfg.BuildOptions(),
	}, a.log)

	// sessions are served from the listener; the http server only upgrades
	l := wsview.NewListener(ctx, nil, a.log)
	defer l.Close()

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(l, cfg.Server.StaticDir),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 2)
	go func() {
		a.log.WithField("addr", cfg.Server.Addr).Info("http listening")
		errc <- httpServer.ListenAndServe()
	}()
	go func() {
		errc <- srv.Serve(ctx, l)
	}()

	select {
	case err = <-errc:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if serr := httpServer.Shutdown(shutdownCtx); serr != nil {
		a.log.WithError(serr).Warn("http shutdown")
	}

	if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serve: %w", err)
	}
	a.log.Info("server stopped")
	return nil
}
