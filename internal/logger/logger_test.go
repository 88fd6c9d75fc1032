package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	log := New(logrus.WarnLevel, &buf)

	log.Info("hidden")
	log.WithField("stream", "abc").Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "stream=abc") {
		t.Errorf("warn record missing: %q", out)
	}
}

func TestEntry_RoundTrip(t *testing.T) {
	e := New(logrus.InfoLevel, &bytes.Buffer{}).WithField("k", "v")
	ctx := WithLogEntry(context.Background(), e)

	if got := Entry(ctx); got != e {
		t.Errorf("Entry() = %p, want %p", got, e)
	}
}

func TestEntry_Fallback(t *testing.T) {
	e := Entry(context.Background())
	if e == nil {
		t.Fatal("Entry() returned nil")
	}
	if e.Logger != logrus.StandardLogger() {
		t.Error("fallback entry should use the standard logger")
	}
}
