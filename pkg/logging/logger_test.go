package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// setupTestDir points the shared sink at a temporary directory and resets global state
func setupTestDir(t *testing.T) (cleanup func()) {
	t.Helper()

	tempDir := t.TempDir()

	origLogDir := logDir
	origInitErr := initErr
	origSessionID := sessionID

	sinkMu.Lock()
	logDir = tempDir
	initErr = nil
	initOnce = sync.Once{}
	sessionID = ""
	sessionIDOnce = sync.Once{}
	sink = nil
	sinkMu.Unlock()

	return func() {
		_ = Shutdown()
		sinkMu.Lock()
		logDir = origLogDir
		initErr = origInitErr
		initOnce = sync.Once{}
		sessionID = origSessionID
		sessionIDOnce = sync.Once{}
		sinkMu.Unlock()
		_ = level.UnmarshalText([]byte("debug"))
	}
}

func readLog(t *testing.T, l *Logger) string {
	t.Helper()
	content, err := os.ReadFile(l.LogPath())
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	return string(content)
}

func TestNewLogger(t *testing.T) {
	cleanup := setupTestDir(t)
	defer cleanup()

	logger, err := NewLogger("test-component")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	if logger.component != "test-component" {
		t.Errorf("Expected component 'test-component', got %q", logger.component)
	}
	if logger.SessionID() == "" {
		t.Error("Expected non-empty session ID")
	}
	if logger.LogPath() == "" {
		t.Error("Expected non-empty log path")
	}

	// lumberjack creates the file on first write
	logger.Infof("hello")
	if _, err := os.Stat(logger.LogPath()); os.IsNotExist(err) {
		t.Errorf("Log file does not exist at %s", logger.LogPath())
	}
}

func TestLoggerFormatting(t *testing.T) {
	cleanup := setupTestDir(t)
	defer cleanup()

	logger, err := NewLogger("test")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	logger.Printf("Test message %d", 123)
	logger.Debugf("Debug message")
	logger.Infof("Info message")
	logger.Warnf("Warning message")
	logger.Errorf("Error message")

	logContent := readLog(t, logger)

	expectedPatterns := []string{
		"INFO\ttest\tTest message 123",
		"DEBUG\ttest\tDebug message",
		"INFO\ttest\tInfo message",
		"WARN\ttest\tWarning message",
		"ERROR\ttest\tError message",
	}
	for _, pattern := range expectedPatterns {
		if !strings.Contains(logContent, pattern) {
			t.Errorf("Log content missing expected pattern: %q\nContent:\n%s", pattern, logContent)
		}
	}
}

func TestConfigureLevel(t *testing.T) {
	cleanup := setupTestDir(t)
	defer cleanup()

	if err := Configure(Options{Level: "warn"}); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}

	logger, err := NewLogger("levels")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	logger.Infof("filtered out")
	logger.Warnf("kept")

	logContent := readLog(t, logger)
	if strings.Contains(logContent, "filtered out") {
		t.Error("info entry should be filtered at warn level")
	}
	if !strings.Contains(logContent, "kept") {
		t.Error("warn entry should be written")
	}

	if err := Configure(Options{Level: "loud"}); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestMultipleComponents(t *testing.T) {
	cleanup := setupTestDir(t)
	defer cleanup()

	logger1, err := NewLogger("component1")
	if err != nil {
		t.Fatalf("Failed to create logger1: %v", err)
	}
	defer logger1.Close()

	logger2, err := NewLogger("component2")
	if err != nil {
		t.Fatalf("Failed to create logger2: %v", err)
	}
	defer logger2.Close()

	if logger1.SessionID() != logger2.SessionID() {
		t.Errorf("Expected same session ID, got %q and %q", logger1.SessionID(), logger2.SessionID())
	}
	if logger1.LogPath() != logger2.LogPath() {
		t.Errorf("Expected same log path, got %q and %q", logger1.LogPath(), logger2.LogPath())
	}

	logger1.Printf("Message from component1")
	logger2.With("run", 7).Printf("Message from component2")

	logContent := readLog(t, logger1)
	if !strings.Contains(logContent, "component1\tMessage from component1") {
		t.Error("Log missing component1 entries")
	}
	if !strings.Contains(logContent, "component2\tMessage from component2") {
		t.Error("Log missing component2 entries")
	}
	if !strings.Contains(logContent, `"run": 7`) {
		t.Errorf("Log missing structured field\nContent:\n%s", logContent)
	}
}

func TestGetSessionID(t *testing.T) {
	cleanup := setupTestDir(t)
	defer cleanup()

	id1 := GetSessionID()
	id2 := GetSessionID()

	if id1 != id2 {
		t.Errorf("Expected consistent session ID, got %q and %q", id1, id2)
	}
	if id1 == "" {
		t.Error("Expected non-empty session ID")
	}
}

func TestGetLogDirectory(t *testing.T) {
	cleanup := setupTestDir(t)
	defer cleanup()

	dir, err := GetLogDirectory()
	if err != nil {
		t.Fatalf("Failed to get log directory: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("Log directory does not exist or is not a directory: %s", dir)
	}
}

func TestLoggerClose(t *testing.T) {
	cleanup := setupTestDir(t)
	defer cleanup()

	logger, err := NewLogger("test")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	if err := logger.Close(); err != nil {
		t.Errorf("First close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Second close failed: %v", err)
	}
}

func TestLogPathFormat(t *testing.T) {
	cleanup := setupTestDir(t)
	defer cleanup()

	logger, err := NewLogger("test")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	fileName := filepath.Base(logger.LogPath())
	if !strings.HasSuffix(fileName, "-webpilot.log") {
		t.Errorf("Expected log file to end with '-webpilot.log', got %q", fileName)
	}

	sessionPart := strings.TrimSuffix(fileName, "-webpilot.log")
	if !strings.Contains(sessionPart, "-") {
		t.Errorf("Expected session ID part to contain dashes (UUID format), got %q", sessionPart)
	}
}

func TestNopLogger(t *testing.T) {
	l := Nop()
	l.Infof("nothing %d", 1)
	if l.LogPath() != "" {
		t.Error("nop logger should have no log path")
	}
}
