package engine

import "sync"

// Status is the engine's coarse health state.
type Status string

const (
	// StatusStarting means the initial scan has not finished; queries
	// receive an index-warming error.
	StatusStarting Status = "starting"
	// StatusHealthy means watching and serving normally.
	StatusHealthy Status = "healthy"
	// StatusDegraded means the notification channel failed and the
	// engine is operating on re-scans; last good snapshot still serves.
	StatusDegraded Status = "degraded"
	// StatusClosed means the engine has shut down.
	StatusClosed Status = "closed"
)

// Health is a point-in-time health report.
type Health struct {
	Status      Status   `json:"status"`
	WatcherType string   `json:"watcher_type,omitempty"`
	Generation  uint64   `json:"generation"`
	Documents   int      `json:"documents"`
	LastError   string   `json:"last_error,omitempty"`
	// ParseFailures counts documents excluded from the index because
	// they failed to parse. A sample of their paths follows.
	ParseFailures  int      `json:"parse_failures"`
	SampleFailures []string `json:"sample_failures,omitempty"`
}

// failureSampleSize bounds how many failing paths a health report carries.
const failureSampleSize = 5

// healthTracker accumulates health state. Per-document failures are
// collected in aggregate, never thrown at query time.
type healthTracker struct {
	mu             sync.Mutex
	status         Status
	lastError      string
	parseFailures  int
	sampleFailures []string
}

func newHealthTracker() *healthTracker {
	return &healthTracker{status: StatusStarting}
}

func (h *healthTracker) setStatus(s Status) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status == StatusClosed {
		return
	}
	h.status = s
}

func (h *healthTracker) degrade(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status == StatusClosed {
		return
	}
	h.status = StatusDegraded
	if err != nil {
		h.lastError = err.Error()
	}
}

func (h *healthTracker) recordParseFailure(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.parseFailures++
	if len(h.sampleFailures) < failureSampleSize {
		h.sampleFailures = append(h.sampleFailures, path)
	}
}

func (h *healthTracker) clearParseFailures() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.parseFailures = 0
	h.sampleFailures = nil
}

func (h *healthTracker) snapshot() Health {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Health{
		Status:         h.status,
		LastError:      h.lastError,
		ParseFailures:  h.parseFailures,
		SampleFailures: append([]string(nil), h.sampleFailures...),
	}
}
