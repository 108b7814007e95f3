package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentPipeline, Output: &buf})

	logger.Info("prepared", FieldRows, 3)
	logger.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "component=pipeline") {
		t.Fatalf("missing component in %q", out)
	}
	if !strings.Contains(out, "rows=3") {
		t.Fatalf("missing rows in %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug record written at info level: %q", out)
	}

	buf.Reset()
	logger.WithComponent(ComponentHTTP).Warn("slow")
	if !strings.Contains(buf.String(), "component=http") {
		t.Fatalf("WithComponent not applied: %q", buf.String())
	}
}

func TestLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentApp, Output: &buf})
	logger.Info("hello")
	if !strings.Contains(buf.String(), `"component":"app"`) {
		t.Fatalf("expected JSON output, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestContextRoundTrip(t *testing.T) {
	logger := New(DefaultConfig()).WithComponent(ComponentWorker)
	ctx := NewContext(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Fatalf("logger not found in context")
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatalf("expected fallback logger")
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().
		WithComponent(ComponentPipeline).
		WithOperation(OpPrepare).
		WithPipelineStats(10, 9, 1, 0, 0).
		WithError(errors.New("boom"))

	if f[FieldEmpty] != true {
		t.Fatalf("expected empty=true for zero kept rows")
	}
	if f[FieldError] != "boom" {
		t.Fatalf("error field = %v", f[FieldError])
	}
	if got := len(f.ToSlice()); got != len(f)*2 {
		t.Fatalf("ToSlice length = %d", got)
	}
	if _, ok := NewFields().WithError(nil)[FieldError]; ok {
		t.Fatalf("nil error should not be recorded")
	}
}
