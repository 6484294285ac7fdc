package logger

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestCrashHandler_SetContext(t *testing.T) {
	globalContext = &CrashContext{}

	SetBasePath("/tmp/test-tasklane")
	SetVersion("1.0.0-test")
	SetCommand("test command")
	SetLastInput("  test input  ")
	SetLastToolCall("create_task", map[string]string{"name": "x"})

	globalContext.mu.RLock()
	defer globalContext.mu.RUnlock()

	if globalContext.basePath != "/tmp/test-tasklane" {
		t.Errorf("Expected basePath '/tmp/test-tasklane', got '%s'", globalContext.basePath)
	}
	if globalContext.version != "1.0.0-test" {
		t.Errorf("Expected version '1.0.0-test', got '%s'", globalContext.version)
	}
	if globalContext.command != "test command" {
		t.Errorf("Expected command 'test command', got '%s'", globalContext.command)
	}
	if globalContext.lastInput != "test input" {
		t.Errorf("Expected lastInput 'test input', got '%s'", globalContext.lastInput)
	}
	if globalContext.lastTool != "create_task map[name:x]" {
		t.Errorf("Expected lastTool 'create_task map[name:x]', got '%s'", globalContext.lastTool)
	}
}

func TestCrashHandler_SetLastInput_Truncation(t *testing.T) {
	globalContext = &CrashContext{}

	SetLastInput(strings.Repeat("a", 3000))

	globalContext.mu.RLock()
	defer globalContext.mu.RUnlock()

	if len(globalContext.lastInput) > 600 {
		t.Errorf("Expected input to be truncated, got length %d", len(globalContext.lastInput))
	}
	if !strings.Contains(globalContext.lastInput, "[truncated]") {
		t.Error("Expected truncated input to contain '[truncated]'")
	}
}

func TestCrashHandler_FormatCrashLog(t *testing.T) {
	log := CrashLog{
		Timestamp:  time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		Version:    "1.0.0",
		Command:    "add",
		DataFile:   "/work/.tasklane/tasks.json",
		PanicValue: "test panic",
		StackTrace: "goroutine 1 [running]:\nmain.main()",
		LastInput:  "tasklane add x",
		LastTool:   "create_task {Name:x}",
		GoVersion:  "go1.24.3",
		OS:         "darwin",
		Arch:       "arm64",
	}

	formatted := formatCrashLog(log)

	for _, expected := range []string{
		"TASKLANE CRASH LOG",
		"Timestamp: 2025-01-01T12:00:00Z",
		"Command:   add",
		"Data file: /work/.tasklane/tasks.json",
		"OS/Arch:   darwin/arm64",
		"PANIC VALUE",
		"goroutine 1 [running]",
		"LAST USER INPUT",
		"LAST TOOL CALL",
		"create_task {Name:x}",
	} {
		if !strings.Contains(formatted, expected) {
			t.Errorf("Expected formatted log to contain '%s'", expected)
		}
	}
}

func TestCrashHandler_ReportPanicWritesLog(t *testing.T) {
	basePath := filepath.Join(t.TempDir(), ".tasklane")
	globalContext = &CrashContext{basePath: basePath, version: "1.0.0", command: "test"}

	var out bytes.Buffer
	reportPanic("test panic", &out)

	logs, err := ListCrashLogs()
	if err != nil {
		t.Fatalf("ListCrashLogs failed: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("Expected 1 crash log, got %d", len(logs))
	}
	content, err := os.ReadFile(logs[0])
	if err != nil {
		t.Fatalf("read crash log: %v", err)
	}
	if !strings.Contains(string(content), "test panic") {
		t.Error("Expected crash log to contain panic value")
	}
	if !strings.Contains(out.String(), logs[0]) {
		t.Errorf("Expected user message to point at %s, got %q", logs[0], out.String())
	}
}

func TestCrashHandler_HandlePanicExits(t *testing.T) {
	globalContext = &CrashContext{basePath: t.TempDir()}
	code := -1
	exit = func(c int) { code = c }
	defer func() { exit = os.Exit }()

	func() {
		defer HandlePanic()
		panic("boom")
	}()

	if code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}
}

func TestCrashHandler_CleanOldLogs(t *testing.T) {
	basePath := filepath.Join(t.TempDir(), ".tasklane")
	crashDir := filepath.Join(basePath, CrashLogDir)
	if err := os.MkdirAll(crashDir, 0755); err != nil {
		t.Fatalf("Failed to create crash dir: %v", err)
	}
	globalContext = &CrashContext{basePath: basePath}

	for i := range MaxCrashLogs + 5 {
		name := filepath.Join(crashDir, fmt.Sprintf("crash_20250101_1200%02d.log", i))
		if err := os.WriteFile(name, []byte("test"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
	}

	if err := cleanOldCrashLogs(crashDir); err != nil {
		t.Fatalf("cleanOldCrashLogs failed: %v", err)
	}

	logs, err := ListCrashLogs()
	if err != nil {
		t.Fatalf("ListCrashLogs failed: %v", err)
	}
	if len(logs) != MaxCrashLogs-1 {
		t.Errorf("Expected %d crash logs after cleanup, got %d", MaxCrashLogs-1, len(logs))
	}
	if filepath.Base(logs[len(logs)-1]) != "crash_20250101_120006.log" {
		t.Errorf("Expected oldest logs removed first, oldest remaining is %s", logs[len(logs)-1])
	}
	if filepath.Base(logs[0]) != "crash_20250101_120014.log" {
		t.Errorf("Expected newest log listed first, got %s", logs[0])
	}
}

func TestCrashHandler_GetCrashLogPath(t *testing.T) {
	globalContext = &CrashContext{basePath: "/tmp/test"}

	path := getCrashLogPath(time.Date(2025, 1, 15, 14, 30, 45, 0, time.UTC))
	if path != "/tmp/test/crash_logs/crash_20250115_143045.log" {
		t.Errorf("unexpected path '%s'", path)
	}
}

func TestCrashHandler_DefaultBasePath(t *testing.T) {
	globalContext = &CrashContext{}

	if dir := getCrashLogDir(); dir != ".tasklane/crash_logs" {
		t.Errorf("Expected default dir '.tasklane/crash_logs', got '%s'", dir)
	}
}
