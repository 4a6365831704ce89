package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestWithAttrsReplacesDuplicateKeys(t *testing.T) {
	ctx := WithAttrs(context.Background(), slog.String("component", "a"), slog.Int("prize_id", 3))
	ctx = WithComponent(ctx, "b")

	attrs := Attrs(ctx)
	if len(attrs) != 2 {
		t.Fatalf("Attrs() len = %d, want 2", len(attrs))
	}
	if attrs[0].Key != "component" || attrs[0].Value.String() != "b" {
		t.Fatalf("Attrs()[0] = %v", attrs[0])
	}
}

func TestLogWritesContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), New(&buf, "debug"))
	ctx = WithComponent(ctx, "usecase.raffle")

	Debug(ctx, "draw resolved", slog.Int("candidates", 4))

	out := buf.String()
	for _, want := range []string{"draw resolved", "component=usecase.raffle", "candidates=4"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output %q missing %q", out, want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
