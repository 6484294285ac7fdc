package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"slices"
	"strings"
	"sync"
	"time"
)

const (
	// CrashLogDir is the directory for crash logs relative to the data directory
	CrashLogDir = "crash_logs"

	// MaxCrashLogs is the maximum number of crash logs to keep
	MaxCrashLogs = 10
)

// CrashContext stores context for crash logging.
type CrashContext struct {
	mu        sync.RWMutex
	lastInput string
	lastTool  string
	command   string
	version   string
	basePath  string
	dataFile  string
}

// globalContext is the singleton crash context.
var globalContext = &CrashContext{}

// exit is replaced in tests.
var exit = os.Exit

// SetBasePath sets the base path for crash logs (the data directory).
func SetBasePath(path string) {
	globalContext.mu.Lock()
	defer globalContext.mu.Unlock()
	globalContext.basePath = path
}

// SetDataFile records the task document the process was working on.
func SetDataFile(path string) {
	globalContext.mu.Lock()
	defer globalContext.mu.Unlock()
	globalContext.dataFile = path
}

// SetVersion sets the application version for crash logs.
func SetVersion(version string) {
	globalContext.mu.Lock()
	defer globalContext.mu.Unlock()
	globalContext.version = version
}

// SetCommand sets the current command being executed.
func SetCommand(cmd string) {
	globalContext.mu.Lock()
	defer globalContext.mu.Unlock()
	globalContext.command = cmd
}

// SetLastInput sets the last user input for crash context.
func SetLastInput(input string) {
	globalContext.mu.Lock()
	defer globalContext.mu.Unlock()
	globalContext.lastInput = truncateForLog(strings.TrimSpace(input), 500)
}

// SetLastToolCall records the most recent MCP tool invocation.
func SetLastToolCall(name string, args any) {
	globalContext.mu.Lock()
	defer globalContext.mu.Unlock()
	globalContext.lastTool = truncateForLog(fmt.Sprintf("%s %+v", name, args), 2000)
}

func truncateForLog(value string, maxLen int) string {
	if len(value) <= maxLen {
		return value
	}
	return value[:maxLen] + "... [truncated]"
}

// CrashLog represents a crash log entry.
type CrashLog struct {
	Timestamp  time.Time `json:"timestamp"`
	Version    string    `json:"version"`
	Command    string    `json:"command"`
	DataFile   string    `json:"data_file,omitempty"`
	PanicValue string    `json:"panic_value"`
	StackTrace string    `json:"stack_trace"`
	LastInput  string    `json:"last_input,omitempty"`
	LastTool   string    `json:"last_tool,omitempty"`
	GoVersion  string    `json:"go_version"`
	OS         string    `json:"os"`
	Arch       string    `json:"arch"`
}

// HandlePanic is a deferred function that recovers from panics and logs them.
// Usage: defer logger.HandlePanic()
func HandlePanic() {
	if r := recover(); r != nil {
		reportPanic(r, os.Stderr)
		exit(1)
	}
}

func reportPanic(r any, w io.Writer) {
	log := createCrashLog(r)
	if err := writeCrashLog(log); err != nil {
		fmt.Fprintf(w, "\n[CRASH] Failed to write crash log: %v\n", err)
		fmt.Fprintf(w, "[CRASH] Panic: %v\n%s\n", r, log.StackTrace)
		return
	}

	fmt.Fprintf(w, "\ntasklane encountered an unexpected error.\n\n")
	fmt.Fprintf(w, "A crash log has been saved to:\n  %s\n\n", getCrashLogPath(log.Timestamp))
}

// createCrashLog creates a CrashLog from a panic value.
func createCrashLog(panicValue any) CrashLog {
	globalContext.mu.RLock()
	defer globalContext.mu.RUnlock()

	return CrashLog{
		Timestamp:  time.Now(),
		Version:    globalContext.version,
		Command:    globalContext.command,
		DataFile:   globalContext.dataFile,
		PanicValue: fmt.Sprintf("%v", panicValue),
		StackTrace: string(debug.Stack()),
		LastInput:  globalContext.lastInput,
		LastTool:   globalContext.lastTool,
		GoVersion:  runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
	}
}

// writeCrashLog writes a crash log to disk.
func writeCrashLog(log CrashLog) error {
	dir := getCrashLogDir()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create crash log dir: %w", err)
	}

	// Non-fatal, continue with writing
	if err := cleanOldCrashLogs(dir); err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] Failed to clean old crash logs: %v\n", err)
	}

	path := getCrashLogPath(log.Timestamp)
	if err := os.WriteFile(path, []byte(formatCrashLog(log)), 0644); err != nil {
		return fmt.Errorf("write crash log: %w", err)
	}
	return nil
}

// getCrashLogDir returns the directory for crash logs.
func getCrashLogDir() string {
	globalContext.mu.RLock()
	basePath := globalContext.basePath
	globalContext.mu.RUnlock()

	if basePath == "" {
		basePath = ".tasklane"
	}
	return filepath.Join(basePath, CrashLogDir)
}

// getCrashLogPath returns the path for a crash log file.
func getCrashLogPath(t time.Time) string {
	filename := fmt.Sprintf("crash_%s.log", t.Format("20060102_150405"))
	return filepath.Join(getCrashLogDir(), filename)
}

// formatCrashLog formats a CrashLog as human-readable text.
func formatCrashLog(log CrashLog) string {
	var sb strings.Builder
	banner := strings.Repeat("=", 80) + "\n"
	rule := strings.Repeat("-", 80) + "\n"

	sb.WriteString(banner + "TASKLANE CRASH LOG\n" + banner + "\n")
	header := [][2]string{
		{"Timestamp", log.Timestamp.Format(time.RFC3339)},
		{"Version", log.Version},
		{"Command", log.Command},
		{"Data file", log.DataFile},
		{"Go", log.GoVersion},
		{"OS/Arch", log.OS + "/" + log.Arch},
	}
	for _, kv := range header {
		if kv[1] == "" {
			continue
		}
		fmt.Fprintf(&sb, "%-10s %s\n", kv[0]+":", kv[1])
	}

	sections := [][2]string{
		{"PANIC VALUE", log.PanicValue + "\n"},
		{"STACK TRACE", log.StackTrace},
	}
	if log.LastInput != "" {
		sections = append(sections, [2]string{"LAST USER INPUT", log.LastInput + "\n"})
	}
	if log.LastTool != "" {
		sections = append(sections, [2]string{"LAST TOOL CALL", log.LastTool + "\n"})
	}
	for _, sec := range sections {
		sb.WriteString("\n" + rule + sec[0] + "\n" + rule + sec[1])
	}

	sb.WriteString("\n" + banner + "END OF CRASH LOG\n" + banner)
	return sb.String()
}

func isCrashLog(name string) bool {
	return strings.HasPrefix(name, "crash_") && strings.HasSuffix(name, ".log")
}

// cleanOldCrashLogs removes old crash logs so that, with the one about to be
// written, at most MaxCrashLogs remain.
func cleanOldCrashLogs(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && isCrashLog(e.Name()) {
			names = append(names, e.Name())
		}
	}
	if len(names) < MaxCrashLogs {
		return nil
	}

	// Names embed the timestamp, so lexical order is oldest first.
	slices.Sort(names)
	for _, name := range names[:len(names)-MaxCrashLogs+1] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("remove old crash log %s: %w", name, err)
		}
	}
	return nil
}

// ListCrashLogs returns the crash logs in the crash log directory, newest first.
func ListCrashLogs() ([]string, error) {
	dir := getCrashLogDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var logs []string
	for _, e := range entries {
		if !e.IsDir() && isCrashLog(e.Name()) {
			logs = append(logs, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(logs)
	slices.Reverse(logs)
	return logs, nil
}
