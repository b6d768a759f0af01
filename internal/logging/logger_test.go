package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func resetState() {
	CloseAll()
	logsDir = ""
	config = loggingConfig{}
	logLevel = LevelInfo
}

func writeConfig(t *testing.T, workspace, content string) {
	t.Helper()
	dir := filepath.Join(workspace, ".prism")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

// TestAllCategoriesLog tests that all categories create log files when
// debug_mode is true.
func TestAllCategoriesLog(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, `logging:
  level: debug
  debug_mode: true
  categories:
    boot: true
    index: true
    parser: true
    chunker: true
    store: true
    watch: true
`)

	resetState()
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}

	if !IsDebugMode() {
		t.Error("Expected debug mode to be enabled")
	}

	categories := []Category{
		CategoryBoot,
		CategoryIndex,
		CategoryParser,
		CategoryChunker,
		CategoryStore,
		CategoryWatch,
	}

	for _, cat := range categories {
		if !IsCategoryEnabled(cat) {
			t.Errorf("Category %s should be enabled", cat)
		}

		logger := Get(cat)
		logger.Info("Test info message for %s", cat)
		logger.Debug("Test debug message for %s", cat)
		logger.Warn("Test warn message for %s", cat)
		logger.Error("Test error message for %s", cat)
	}

	// Also test convenience functions
	Index("Convenience index log")
	ParserDebug("Convenience parser log")
	ChunkerDebug("Convenience chunker log")
	Store("Convenience store log")
	Watch("Convenience watch log")

	CloseAll()

	logsPath := filepath.Join(tempDir, ".prism", "logs")
	entries, err := os.ReadDir(logsPath)
	if err != nil {
		t.Fatalf("Failed to read logs dir: %v", err)
	}

	for _, cat := range categories {
		found := false
		for _, entry := range entries {
			if strings.Contains(entry.Name(), string(cat)+".log") {
				found = true
				content, err := os.ReadFile(filepath.Join(logsPath, entry.Name()))
				if err != nil {
					t.Errorf("Failed to read log file for %s: %v", cat, err)
					continue
				}
				if len(content) == 0 {
					t.Errorf("Log file for %s is empty", cat)
				}
				break
			}
		}
		if !found {
			t.Errorf("No log file found for category: %s", cat)
		}
	}
}

// TestDebugModeDisabled tests that no logs are created when debug_mode is
// false.
func TestDebugModeDisabled(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, `logging:
  level: debug
  debug_mode: false
`)

	resetState()
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}

	if IsDebugMode() {
		t.Error("Expected debug mode to be DISABLED (production mode)")
	}

	for _, cat := range []Category{CategoryBoot, CategoryIndex, CategoryStore} {
		if IsCategoryEnabled(cat) {
			t.Errorf("Category %s should be DISABLED when debug_mode=false", cat)
		}
	}

	// These should all be no-ops.
	Index("This should NOT be logged")
	Store("This should NOT be logged")

	logger := Get(CategoryBoot)
	logger.Info("This should NOT be logged")
	logger.Error("This should NOT be logged")

	CloseAll()

	logsPath := filepath.Join(tempDir, ".prism", "logs")
	if entries, err := os.ReadDir(logsPath); err == nil && len(entries) > 0 {
		t.Errorf("Expected NO log files in production mode, but found %d files", len(entries))
	}
}

// TestMissingConfigMeansProduction tests that a workspace without
// .prism/config.yaml does no logging.
func TestMissingConfigMeansProduction(t *testing.T) {
	tempDir := t.TempDir()

	resetState()
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	if IsDebugMode() {
		t.Error("missing config should mean production mode")
	}
	if _, err := os.Stat(filepath.Join(tempDir, ".prism", "logs")); !os.IsNotExist(err) {
		t.Error("logs directory should not be created without config")
	}
}

// TestCategoryToggle tests individual category enable/disable.
func TestCategoryToggle(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, `logging:
  level: debug
  debug_mode: true
  categories:
    index: true
    parser: false
`)

	resetState()
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}

	if !IsCategoryEnabled(CategoryIndex) {
		t.Error("index should be enabled")
	}
	if IsCategoryEnabled(CategoryParser) {
		t.Error("parser should be DISABLED")
	}
	// Categories not in config default to enabled when debug_mode=true.
	if !IsCategoryEnabled(CategoryStore) {
		t.Error("store (not in config) should default to enabled")
	}

	Index("This SHOULD be logged")
	ParserDebug("This should NOT be logged")
	Store("This SHOULD be logged (default enabled)")

	CloseAll()

	logsPath := filepath.Join(tempDir, ".prism", "logs")
	entries, _ := os.ReadDir(logsPath)

	hasIndex, hasParser, hasStore := false, false, false
	for _, e := range entries {
		name := e.Name()
		if strings.Contains(name, "index") {
			hasIndex = true
		}
		if strings.Contains(name, "parser") {
			hasParser = true
		}
		if strings.Contains(name, "store") {
			hasStore = true
		}
	}

	if !hasIndex {
		t.Error("Expected index log file")
	}
	if hasParser {
		t.Error("Should NOT have parser log file (disabled)")
	}
	if !hasStore {
		t.Error("Expected store log file")
	}
}

// TestTimerLogging tests the timing helper.
func TestTimerLogging(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, `logging:
  level: debug
  debug_mode: true
`)

	resetState()
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}

	timer := StartTimer(CategoryIndex, "TestOperation")
	time.Sleep(time.Millisecond)
	elapsed := timer.Stop()

	if elapsed <= 0 {
		t.Error("Timer should have recorded non-zero duration")
	}

	CloseAll()
}
