package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func fixedClock(l Logger) {
	if sl, ok := l.(*StdLogger); ok {
		sl.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	}
}

func TestLogger_TextFormat_SortedKeys(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Info, Out: &buf, App: "campaign-grants"})
	fixedClock(l)

	l.Info("grant consumed", map[string]any{"grant_id": "g-1"})

	got := strings.TrimSpace(buf.String())
	want := "app=campaign-grants grant_id=g-1 level=info msg=grant consumed ts=2026-03-01T12:00:00Z"
	if got != want {
		t.Fatalf("unexpected line:\n got=%s\nwant=%s", got, want)
	}
}

func TestLogger_JSONFormat_WithFieldsAndErrors(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Debug, Format: FormatJSON, Out: &buf}).With(map[string]any{"request_id": "r-1"})

	l.Warn("notify failed", map[string]any{"err": errors.New("boom")})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid json line: %v (%s)", err, buf.String())
	}
	if entry["request_id"] != "r-1" || entry["err"] != "boom" || entry["level"] != "warn" {
		t.Fatalf("unexpected entry: %#v", entry)
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Warn, Out: &buf})

	l.Debug("hidden", nil)
	l.Info("hidden", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %q", buf.String())
	}
}

func TestFromContext_DefaultsToNop(t *testing.T) {
	if _, ok := FromContext(context.Background()).(nopLogger); !ok {
		t.Fatalf("expected nop logger without context value")
	}

	var buf bytes.Buffer
	l := New(Options{Out: &buf})
	ctx := WithContext(context.Background(), l)
	FromContext(ctx).Info("hello", nil)
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Fatalf("expected context logger to be used, got %q", buf.String())
	}
}
