package main

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	mandel "github.com/marben/mandelview"
	"github.com/marben/mandelview/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(viper.New())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigCommandAppliesFlags(t *testing.T) {
	out, err := execute(t, "config", "--width", "320", "--palette", "hsv", "--region", "seahorse")
	if err != nil {
		t.Fatal(err)
	}
	var cfg config.Config
	if err := yaml.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatalf("%v\n%s", err, out)
	}
	if cfg.Image.Width != 320 || cfg.Image.Palette != "hsv" || cfg.Image.Region != "seahorse" {
		t.Fatalf("image = %+v", cfg.Image)
	}
	if cfg.Image.Height != 600 {
		t.Fatalf("unset flag overrode the default: height = %d", cfg.Image.Height)
	}
}

func TestHelpListsChoices(t *testing.T) {
	flags := newRootCmd(viper.New()).PersistentFlags()
	for flag, names := range map[string][]string{
		"palette": mandel.PaletteNames(),
		"region":  mandel.RegionNames(),
	} {
		usage := flags.Lookup(flag).Usage
		for _, name := range names {
			if !strings.Contains(usage, name) {
				t.Errorf("--%s help %q does not mention %q", flag, usage, name)
			}
		}
	}
}

func TestInvalidFlagIsRejected(t *testing.T) {
	if _, err := execute(t, "config", "--palette", "plaid"); err == nil {
		t.Fatal("unknown palette accepted")
	}
}

func TestRenderCommand(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out.png")
	_, err := execute(t, "render",
		"--width", "40", "--height", "30", "--max-iter", "50",
		"--supersample", "2", "-o", output)
	if err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(output)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 40, 30) {
		t.Fatalf("bounds = %v", img.Bounds())
	}
}

func TestFatalExitsThroughLogger(t *testing.T) {
	var out bytes.Buffer
	log := logrus.New()
	log.SetOutput(&out)
	code := -1
	log.ExitFunc = func(c int) { code = c }

	_, err := execute(t, "config", "--palette", "plaid")
	fatal(log, err)

	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(out.String(), "plaid") || !strings.Contains(out.String(), "level=fatal") {
		t.Fatalf("log output = %q", out.String())
	}
}
