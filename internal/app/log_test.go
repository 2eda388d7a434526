package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLineHandler_Handle(t *testing.T) {
	ts := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name    string
		opID    string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "basic info message",
			opID:    "op-123",
			level:   slog.LevelInfo,
			message: "document imported",
			want:    "2024-06-15T14:30:45Z\tINFO\top-123\tdocument imported\n",
		},
		{
			name:    "debug level",
			opID:    "op-456",
			level:   slog.LevelDebug,
			message: "job queued",
			want:    "2024-06-15T14:30:45Z\tDEBUG\top-456\tjob queued\n",
		},
		{
			name:    "with record attrs",
			opID:    "op-789",
			level:   slog.LevelWarn,
			message: "job failed",
			attrs:   []slog.Attr{slog.String("document_id", "d1"), slog.Int("segments", 42)},
			want:    "2024-06-15T14:30:45Z\tWARN\top-789\tjob failed\tdocument_id=d1\tsegments=42\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &lineHandler{w: &buf, level: slog.LevelDebug, opID: tt.opID}

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			r.AddAttrs(tt.attrs...)

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestLineHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := &lineHandler{w: &buf, opID: "op-1", attrs: []slog.Attr{slog.String("a", "1")}}

	h2 := h.WithAttrs([]slog.Attr{slog.String("component", "processor")}).(*lineHandler)
	if len(h.attrs) != 1 {
		t.Errorf("original handler attrs modified: got %d, want 1", len(h.attrs))
	}

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "start", 0)
	r.AddAttrs(slog.String("key", "abc"))
	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	for _, want := range []string{"a=1", "component=processor", "key=abc"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
}

func TestLineHandler_Enabled(t *testing.T) {
	h := &lineHandler{level: slog.LevelWarn}
	for level, want := range map[slog.Level]bool{
		slog.LevelDebug: false,
		slog.LevelInfo:  false,
		slog.LevelWarn:  true,
		slog.LevelError: true,
	} {
		if got := h.Enabled(context.Background(), level); got != want {
			t.Errorf("Enabled(%v) = %v, want %v", level, got, want)
		}
	}
}

func TestFanoutHandler(t *testing.T) {
	var all, warnings bytes.Buffer
	logger := slog.New(fanoutHandler{
		&lineHandler{w: &all, level: slog.LevelDebug, opID: "op"},
		&lineHandler{w: &warnings, level: slog.LevelWarn, opID: "op"},
	})

	logger.Info("document processed")
	logger.Warn("job failed", "job_id", "j1")

	if n := strings.Count(all.String(), "\n"); n != 2 {
		t.Errorf("debug handler got %d lines, want 2", n)
	}
	if got := warnings.String(); strings.Contains(got, "document processed") || !strings.Contains(got, "job_id=j1") {
		t.Errorf("warn handler output = %q", got)
	}
}

func TestNewLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "log")

	logger, f, err := newLogger(dir, "test-op")
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	defer f.Close()

	logger.Info("hello", "user_id", "alice")

	data, err := os.ReadFile(filepath.Join(dir, "sbs.log"))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "test-op\thello\tuser_id=alice") {
		t.Errorf("log file = %q", data)
	}
}
