// Package preflight validates the environment before the engine starts:
// root readability, data directory writability, free disk space, and
// the file descriptor budget the watcher needs.
package preflight

import (
	"fmt"
	"os"
	"path/filepath"
)

// Status is the outcome of one check.
type Status int

const (
	StatusPass Status = iota
	StatusWarn
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusWarn:
		return "WARN"
	case StatusFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// Result is one check's outcome.
type Result struct {
	Name     string `json:"name"`
	Status   Status `json:"status"`
	Message  string `json:"message"`
	Details  string `json:"details,omitempty"`
	Required bool   `json:"required"`
}

// Critical reports a required check that failed.
func (r Result) Critical() bool {
	return r.Required && r.Status == StatusFail
}

// Run executes every check against the document root and its data
// directory.
func Run(rootDir, dataDir string) []Result {
	return []Result{
		checkRoot(rootDir),
		checkDataDir(dataDir),
		checkDiskSpace(rootDir),
		checkFileDescriptors(),
	}
}

// HasCriticalFailure reports whether any required check failed.
func HasCriticalFailure(results []Result) bool {
	for _, r := range results {
		if r.Critical() {
			return true
		}
	}
	return false
}

// checkRoot verifies the document root exists and is a readable
// directory.
func checkRoot(rootDir string) Result {
	result := Result{Name: "document_root", Required: true}

	info, err := os.Stat(rootDir)
	if err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("cannot stat %s: %v", rootDir, err)
		return result
	}
	if !info.IsDir() {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("%s is not a directory", rootDir)
		return result
	}
	if _, err := os.ReadDir(rootDir); err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("cannot read %s: %v", rootDir, err)
		return result
	}

	result.Status = StatusPass
	result.Message = rootDir
	return result
}

// checkDataDir verifies the engine's private directory can be created
// and written.
func checkDataDir(dataDir string) Result {
	result := Result{Name: "data_dir", Required: true}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("cannot create %s: %v", dataDir, err)
		return result
	}

	probe := filepath.Join(dataDir, ".write-probe")
	if err := os.WriteFile(probe, nil, 0o644); err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("cannot write to %s: %v", dataDir, err)
		return result
	}
	_ = os.Remove(probe)

	result.Status = StatusPass
	result.Message = dataDir
	return result
}

func formatBytes(bytes uint64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)
	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/gb)
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/mb)
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/kb)
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}
