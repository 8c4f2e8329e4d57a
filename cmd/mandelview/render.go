package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	mandel "github.com/marben/mandelview"
)

func newRenderCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the configured region to a PNG file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.render(cmd.Context(), output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "mandel.png", "output file")
	cmd.Flags().Int("supersample", 0, "render at n times the size and downscale")
	bind(a.v, cmd.Flags().Lookup("supersample"), "image.supersample")
	return cmd
}

func (a *app) render(ctx context.Context, output string) error {
	cfg := a.cfg
	vp, err := cfg.Image.Viewport()
	if err != nil {
		return err
	}
	size := image.Pt(cfg.Image.Width, cfg.Image.Height)
	ss := cfg.Image.Supersample
	renderSize := size.Mul(ss)

	log := a.log.WithFields(logrus.Fields{
		"region":   cfg.Image.Region,
		"size":     renderSize,
		"max_iter": cfg.Image.MaxIter,
	})
	log.Info("rendering")
	start := time.Now()

	opts := append(cfg.BuildOptions(), mandel.WithRenderer(mandel.CPURenderer{
		MaxIter: cfg.Image.MaxIter,
		Palette: cfg.Image.PaletteFunc(),
		OnTileRender: func(tile image.Rectangle) {
			a.log.WithField("tile", tile).Trace("rendering tile")
		},
	}))
	b := mandel.StartBuild(ctx, vp, renderSize, cfg.Image.MaxIter, opts...)

	// log every tenth of the rows
	step := max(renderSize.Y/10, 1)
	for row := range b.Progress() {
		if row.Completed%step == 0 || row.Completed == renderSize.Y {
			log.WithField("rows", fmt.Sprintf("%d/%d", row.Completed, renderSize.Y)).Debug("progress")
		}
	}

	img, err := b.Wait(ctx)
	if err != nil {
		return err
	}
	if ss > 1 {
		img = mandel.Downscale(img, size)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %q: %w", output, err)
	}

	log.WithFields(logrus.Fields{
		"file":    output,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Info("image saved")
	return nil
}
