package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("info", &buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("hidden")
	logger.WithField("rows", 3).Info("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message logged at info level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "rows=3") {
		t.Errorf("info message missing: %q", out)
	}
}

func TestNewBadLevel(t *testing.T) {
	if _, err := New("chatty", &bytes.Buffer{}); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}

func TestDiscard(t *testing.T) {
	if Discard().IsLevelEnabled(logrus.ErrorLevel) {
		t.Fatal("discard logger has error level enabled")
	}
}
