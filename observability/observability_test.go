package observability

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestFields(t *testing.T) {
	f := String("k", "v")
	if f.Key() != "k" || f.Value() != "v" {
		t.Fatalf("string field: %q=%v", f.Key(), f.Value())
	}
	if got := Int("n", 7).Value(); got != 7 {
		t.Fatalf("int field value = %v", got)
	}
	if got := Float64("f", 1.5).Value(); got != 1.5 {
		t.Fatalf("float field value = %v", got)
	}
	err := errors.New("boom")
	if got := Error("err", err).Value(); got != err {
		t.Fatalf("error field value = %v", got)
	}
}

func TestNopLogger(t *testing.T) {
	var log Logger = NopLogger{}
	log.Debug("msg", String("k", "v"))
	log.Info("msg")
	log.Warn("msg")
	log.Error("msg")
	if log.With(String("k", "v")) == nil {
		t.Fatalf("With should return a usable logger")
	}
}

func TestSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlog(slog.New(slog.NewTextHandler(&buf, nil)))
	log.Info("card matched", String("id", "29912345678901"))
	out := buf.String()
	if !strings.Contains(out, "card matched") || !strings.Contains(out, "29912345678901") {
		t.Fatalf("slog output missing message or field: %q", out)
	}

	buf.Reset()
	log.With(String("stage", "enhance")).Warn("fallback chain used")
	if !strings.Contains(buf.String(), "stage=enhance") {
		t.Fatalf("With fields not carried: %q", buf.String())
	}
}
