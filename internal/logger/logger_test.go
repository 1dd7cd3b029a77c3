package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestLogger(t *testing.T) (*FileLogger, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.log")
	l, err := NewFileLogger(&Config{
		LogFilePath:   path,
		MaxFileSize:   1024 * 1024,
		MaxBackups:    2,
		Level:         LevelDebug,
		EnableConsole: false,
	})
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	return l, path
}

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestFileLogger_WritesFields(t *testing.T) {
	l, path := newTestLogger(t)
	defer l.Close()

	l.Info("extraction complete",
		String("file", "paper.pdf"),
		Int("pages", 12),
		Float64("elapsed", 1.5),
		Bool("cached", true),
	)
	l.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	content := string(data)

	for _, want := range []string{"[INFO]", "extraction complete", "file=paper.pdf", "pages=12", "elapsed=1.5", "cached=true"} {
		if !strings.Contains(content, want) {
			t.Errorf("log output missing %q, got: %s", want, content)
		}
	}
}

func TestFileLogger_LevelFiltering(t *testing.T) {
	l, path := newTestLogger(t)
	defer l.Close()

	l.SetLevel(LevelWarn)
	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	content := string(data)

	if strings.Contains(content, "debug message") {
		t.Error("debug message should have been filtered")
	}
	if strings.Contains(content, "info message") {
		t.Error("info message should have been filtered")
	}
	if !strings.Contains(content, "warn message") {
		t.Error("warn message should have been written")
	}
}

func TestFileLogger_ErrorField(t *testing.T) {
	l, path := newTestLogger(t)
	defer l.Close()

	l.Error("render failed", os.ErrNotExist, String("font", "NotoSansJP"))
	l.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	content := string(data)

	if !strings.Contains(content, "[ERROR]") {
		t.Error("missing ERROR level marker")
	}
	if !strings.Contains(content, "file does not exist") {
		t.Errorf("error message not written, got: %s", content)
	}
}

func TestFileLogger_Rotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rotate.log")
	l, err := NewFileLogger(&Config{
		LogFilePath:   path,
		MaxFileSize:   200,
		MaxBackups:    2,
		Level:         LevelDebug,
		EnableConsole: false,
	})
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer l.Close()

	for i := 0; i < 20; i++ {
		l.Info("padding message to force rotation", Int("i", i))
	}
	l.Close()

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Errorf("expected backup file after rotation: %v", err)
	}
}

func TestDuration_Field(t *testing.T) {
	f := Duration("elapsed", 1500*time.Millisecond)
	if f.Key != "elapsed" {
		t.Errorf("key = %q, want elapsed", f.Key)
	}
	if f.Value != "1.5s" {
		t.Errorf("value = %v, want 1.5s", f.Value)
	}
}

func TestErr_NilError(t *testing.T) {
	f := Err(nil)
	if f.Key != "error" || f.Value != nil {
		t.Errorf("Err(nil) = %+v, want {error nil}", f)
	}
}

func TestGetLogger_NoopFallback(t *testing.T) {
	SetGlobalLogger(nil)
	l := GetLogger()
	if l == nil {
		t.Fatal("GetLogger returned nil")
	}
	// Must not panic with no global logger configured.
	l.Info("message")
	l.Error("message", os.ErrClosed)
}
