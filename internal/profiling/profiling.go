// Package profiling writes pprof profiles for performance work on the
// indexer and query path.
package profiling

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
)

// Session is one active profiling run. Start it before the work under
// measurement and Stop it on the way out.
type Session struct {
	cpuFile *os.File
	memPath string
}

// Start begins collection. Either path may be empty to skip that
// profile; both empty returns a nil session, safe to Stop.
func Start(cpuPath, memPath string) (*Session, error) {
	if cpuPath == "" && memPath == "" {
		return nil, nil
	}

	s := &Session{memPath: memPath}
	if cpuPath != "" {
		f, err := os.Create(cpuPath)
		if err != nil {
			return nil, fmt.Errorf("create cpu profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("start cpu profile: %w", err)
		}
		s.cpuFile = f
	}
	return s, nil
}

// Stop flushes the CPU profile and, when requested, writes a heap
// profile taken after a GC so it reflects live objects.
func (s *Session) Stop() error {
	if s == nil {
		return nil
	}

	if s.cpuFile != nil {
		pprof.StopCPUProfile()
		if err := s.cpuFile.Close(); err != nil {
			return fmt.Errorf("close cpu profile: %w", err)
		}
		s.cpuFile = nil
	}

	if s.memPath != "" {
		f, err := os.Create(s.memPath)
		if err != nil {
			return fmt.Errorf("create heap profile: %w", err)
		}
		defer func() { _ = f.Close() }()

		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("write heap profile: %w", err)
		}
	}
	return nil
}
