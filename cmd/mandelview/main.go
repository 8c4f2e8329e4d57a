// mandelview serves an interactive Mandelbrot viewer over websockets and
// renders single views to PNG files.
package main

import (
	"context"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	mandel "github.com/marben/mandelview"
	"github.com/marben/mandelview/internal/config"
	"github.com/marben/mandelview/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fatal(logrus.StandardLogger(), err)
	}
}

// fatal logs err and exits non-zero through the logger's ExitFunc.
func fatal(log *logrus.Logger, err error) {
	log.WithError(err).Fatal("mandelview")
}

func run() error {
	return newRootCmd(viper.New()).ExecuteContext(context.Background())
}

// app is the state shared by all subcommands once flags are parsed.
type app struct {
	v          *viper.Viper
	configPath string

	cfg config.Config
	log *logrus.Logger
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	a := &app{v: v}

	root := &cobra.Command{
		Use:           "mandelview",
		Short:         "Explore the Mandelbrot set",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML configuration file")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.Int("width", 0, "image width in pixels")
	flags.Int("height", 0, "image height in pixels")
	flags.Int("max-iter", 0, "iteration budget per pixel")
	flags.String("palette", "", "palette: "+strings.Join(mandel.PaletteNames(), ", "))
	flags.String("region", "", "start region: "+strings.Join(mandel.RegionNames(), ", "))
	flags.Int("workers", 0, "render workers (0 = one per CPU)")

	bind(v, flags.Lookup("log-level"), "log.level")
	bind(v, flags.Lookup("width"), "image.width")
	bind(v, flags.Lookup("height"), "image.height")
	bind(v, flags.Lookup("max-iter"), "image.max_iter")
	bind(v, flags.Lookup("palette"), "image.palette")
	bind(v, flags.Lookup("region"), "image.region")
	bind(v, flags.Lookup("workers"), "build.workers")

	root.AddCommand(newServeCmd(a), newRenderCmd(a), newConfigCmd(a))
	return root
}

// load resolves the configuration and sets up logging.
func (a *app) load() error {
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, os.Stderr)
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, logger

	if used := a.v.ConfigFileUsed(); used != "" {
		a.log.WithField("file", used).Debug("configuration loaded")
	}
	return nil
}
