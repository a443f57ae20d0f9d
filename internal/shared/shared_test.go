package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

func TestLogger(t *testing.T) {
	t.Run("NewLogger writes to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		l := WithLogger(NewLogger(&buf), "component", "test")
		l.Info("hello")

		out := buf.String()
		if !strings.Contains(out, "hello") || !strings.Contains(out, "component=test") {
			t.Errorf("unexpected log output %q", out)
		}
	})

	t.Run("SetLogLevel filters lower levels", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&buf)
		SetLogLevel(l, log.WarnLevel)
		l.Info("quiet")

		if buf.Len() != 0 {
			t.Errorf("expected info to be filtered, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "libcat.log")
		l, f, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("failed to create file logger: %v", err)
		}
		l.Info("written", "n", 1)
		f.Close()

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		if !strings.Contains(string(data), "written") {
			t.Errorf("expected log line in file, got %q", data)
		}
	})
}

func TestParseLevel(t *testing.T) {
	tc := []struct {
		in   string
		want log.Level
	}{
		{in: "", want: log.InfoLevel},
		{in: "debug", want: log.DebugLevel},
		{in: "WARN", want: log.WarnLevel},
		{in: "error", want: log.ErrorLevel},
		{in: "chatty", want: log.InfoLevel},
	}

	for _, tt := range tc {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected unique ids")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("expected valid uuid, got %q: %v", a, err)
	}
}
