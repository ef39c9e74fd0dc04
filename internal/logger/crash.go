// Package logger provides structured logging setup and crash reporting.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
)

const (
	// CrashLogDir is the directory for crash logs relative to the base path.
	CrashLogDir = "crash_logs"

	// MaxCrashLogs is the maximum number of crash logs to keep.
	MaxCrashLogs = 10
)

// crashContext stores what was in flight when a run panicked.
type crashContext struct {
	mu         sync.RWMutex
	fs         afero.Fs
	basePath   string
	version    string
	command    string
	goal       string
	lastPrompt string
}

var global = &crashContext{fs: afero.NewOsFs()}

// SetBasePath sets the directory crash logs are written under.
func SetBasePath(path string) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.basePath = path
}

// SetFs replaces the filesystem crash logs are written to.
func SetFs(fs afero.Fs) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.fs = fs
}

// SetVersion records the build version.
func SetVersion(version string) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.version = version
}

// SetCommand records the command being executed.
func SetCommand(cmd string) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.command = cmd
}

// SetGoal records the research goal of the current run.
func SetGoal(goal string) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.goal = truncateForLog(strings.TrimSpace(goal), 500)
}

// SetLastPrompt records the most recent prompt sent to the model.
func SetLastPrompt(prompt string) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.lastPrompt = truncateForLog(prompt, 2000)
}

func truncateForLog(value string, maxLen int) string {
	if len(value) <= maxLen {
		return value
	}
	return value[:maxLen] + "... [truncated]"
}

// CrashReport is the content of one crash log.
type CrashReport struct {
	Timestamp  time.Time
	Version    string
	Command    string
	Goal       string
	LastPrompt string
	PanicValue string
	StackTrace string
}

// HandlePanic recovers a panic, writes a crash log and exits with status 1.
// Usage: defer logger.HandlePanic()
func HandlePanic() {
	r := recover()
	if r == nil {
		return
	}
	report := newCrashReport(r, time.Now())
	path, err := WriteCrashReport(report)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\n[CRASH] failed to write crash log: %v\n", err)
		fmt.Fprintf(os.Stderr, "[CRASH] panic: %v\n%s\n", r, report.StackTrace)
	} else {
		fmt.Fprintf(os.Stderr, "\ndeep-sql-research crashed unexpectedly.\nA crash log was saved to:\n  %s\n", path)
	}
	os.Exit(1)
}

func newCrashReport(panicValue any, at time.Time) CrashReport {
	global.mu.RLock()
	defer global.mu.RUnlock()

	return CrashReport{
		Timestamp:  at,
		Version:    global.version,
		Command:    global.command,
		Goal:       global.goal,
		LastPrompt: global.lastPrompt,
		PanicValue: fmt.Sprintf("%v", panicValue),
		StackTrace: string(debug.Stack()),
	}
}

// WriteCrashReport writes report under the crash log directory, pruning the
// oldest logs beyond MaxCrashLogs. It returns the written path.
func WriteCrashReport(report CrashReport) (string, error) {
	global.mu.RLock()
	fs, base := global.fs, global.basePath
	global.mu.RUnlock()

	if base == "" {
		base = defaultBasePath()
	}
	dir := filepath.Join(base, CrashLogDir)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create crash log dir: %w", err)
	}
	if err := pruneCrashLogs(fs, dir, MaxCrashLogs-1); err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] failed to prune crash logs: %v\n", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("crash_%s.log", report.Timestamp.Format("20060102_150405.000")))
	f, err := fs.Create(path)
	if err != nil {
		return "", fmt.Errorf("create crash log: %w", err)
	}
	defer f.Close()

	if err := formatCrashReport(f, report); err != nil {
		return "", fmt.Errorf("write crash log: %w", err)
	}
	return path, nil
}

func defaultBasePath() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "deep-sql-research")
	}
	return ".deep-sql-research"
}

func formatCrashReport(w io.Writer, r CrashReport) error {
	rule := strings.Repeat("-", 80)
	var sb strings.Builder
	fmt.Fprintf(&sb, "DEEP-SQL-RESEARCH CRASH LOG\n%s\n", rule)
	fmt.Fprintf(&sb, "Timestamp: %s\n", r.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Version:   %s\n", r.Version)
	fmt.Fprintf(&sb, "Command:   %s\n", r.Command)
	fmt.Fprintf(&sb, "Go:        %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(&sb, "\nPANIC\n%s\n%s\n", rule, r.PanicValue)
	fmt.Fprintf(&sb, "\nSTACK\n%s\n%s", rule, r.StackTrace)
	if r.Goal != "" {
		fmt.Fprintf(&sb, "\nGOAL\n%s\n%s\n", rule, r.Goal)
	}
	if r.LastPrompt != "" {
		fmt.Fprintf(&sb, "\nLAST PROMPT\n%s\n%s\n", rule, r.LastPrompt)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// pruneCrashLogs keeps at most keep crash logs in dir, removing the oldest.
func pruneCrashLogs(fs afero.Fs, dir string, keep int) error {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "crash_") && strings.HasSuffix(e.Name(), ".log") {
			names = append(names, e.Name())
		}
	}
	if len(names) <= keep {
		return nil
	}
	sort.Strings(names)
	for _, name := range names[:len(names)-keep] {
		if err := fs.Remove(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}
