// Package telemetry collects local query metrics: counts, latency
// distribution, and per-query aggregates. Everything stays in process
// memory; nothing is reported anywhere.
package telemetry

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// bucketBoundsMs are the upper bounds of the latency histogram buckets.
// The last bucket is unbounded.
var bucketBoundsMs = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000}

// trackedQueries bounds the per-query LRU.
const trackedQueries = 512

// QueryStat aggregates observations of one distinct query. The query
// text itself is stored as a truncated hash so metrics never retain
// document or query content.
type QueryStat struct {
	Hash     string    `json:"hash"`
	Terms    int       `json:"terms"`
	Count    uint64    `json:"count"`
	TotalMs  float64   `json:"total_ms"`
	LastSeen time.Time `json:"last_seen"`
}

// AvgMs is the mean latency for this query.
func (q QueryStat) AvgMs() float64 {
	if q.Count == 0 {
		return 0
	}
	return q.TotalMs / float64(q.Count)
}

// Bucket is one latency histogram bucket.
type Bucket struct {
	UpperMs float64 `json:"upper_ms"` // 0 means unbounded
	Count   uint64  `json:"count"`
}

// Snapshot is a point-in-time metrics report.
type Snapshot struct {
	TotalQueries uint64      `json:"total_queries"`
	CacheHits    uint64      `json:"cache_hits"`
	Errors       uint64      `json:"errors"`
	AvgLatencyMs float64     `json:"avg_latency_ms"`
	P95LatencyMs float64     `json:"p95_latency_ms"`
	Buckets      []Bucket    `json:"buckets,omitempty"`
	TopQueries   []QueryStat `json:"top_queries,omitempty"`
}

// QueryMetrics accumulates query telemetry. Safe for concurrent use.
type QueryMetrics struct {
	mu        sync.Mutex
	total     uint64
	cacheHits uint64
	errors    uint64
	totalMs   float64
	buckets   []uint64

	perQuery *lru.Cache[string, *QueryStat]
}

// NewQueryMetrics creates an empty metrics collector.
func NewQueryMetrics() (*QueryMetrics, error) {
	cache, err := lru.New[string, *QueryStat](trackedQueries)
	if err != nil {
		return nil, err
	}
	return &QueryMetrics{
		buckets:  make([]uint64, len(bucketBoundsMs)+1),
		perQuery: cache,
	}, nil
}

// RecordQuery records one completed query.
func (m *QueryMetrics) RecordQuery(query string, terms int, latency time.Duration, cacheHit bool) {
	ms := float64(latency.Microseconds()) / 1000.0

	m.mu.Lock()
	defer m.mu.Unlock()

	m.total++
	if cacheHit {
		m.cacheHits++
	}
	m.totalMs += ms
	m.buckets[bucketIndex(ms)]++

	if query == "" {
		return
	}
	hash := HashQuery(query)
	stat, ok := m.perQuery.Get(hash)
	if !ok {
		stat = &QueryStat{Hash: hash, Terms: terms}
		m.perQuery.Add(hash, stat)
	}
	stat.Count++
	stat.TotalMs += ms
	stat.LastSeen = time.Now()
}

// RecordError records a failed query.
func (m *QueryMetrics) RecordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors++
}

// Snapshot returns the current aggregates. topN limits the per-query
// list; zero omits it.
func (m *QueryMetrics) Snapshot(topN int) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		TotalQueries: m.total,
		CacheHits:    m.cacheHits,
		Errors:       m.errors,
		P95LatencyMs: percentile(m.buckets, m.total, 0.95),
	}
	if m.total > 0 {
		snap.AvgLatencyMs = m.totalMs / float64(m.total)
	}

	snap.Buckets = make([]Bucket, 0, len(m.buckets))
	for i, count := range m.buckets {
		b := Bucket{Count: count}
		if i < len(bucketBoundsMs) {
			b.UpperMs = bucketBoundsMs[i]
		}
		snap.Buckets = append(snap.Buckets, b)
	}

	if topN > 0 {
		stats := make([]QueryStat, 0, m.perQuery.Len())
		for _, hash := range m.perQuery.Keys() {
			if stat, ok := m.perQuery.Peek(hash); ok {
				stats = append(stats, *stat)
			}
		}
		sort.Slice(stats, func(i, j int) bool {
			if stats[i].Count != stats[j].Count {
				return stats[i].Count > stats[j].Count
			}
			return stats[i].Hash < stats[j].Hash
		})
		if len(stats) > topN {
			stats = stats[:topN]
		}
		snap.TopQueries = stats
	}
	return snap
}

// HashQuery returns a short stable identifier for a query. Queries are
// case-folded and whitespace-normalized first so trivial variants
// aggregate together.
func HashQuery(query string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])[:12]
}

func bucketIndex(ms float64) int {
	for i, bound := range bucketBoundsMs {
		if ms <= bound {
			return i
		}
	}
	return len(bucketBoundsMs)
}

// percentile estimates a latency percentile from the histogram. The
// estimate is the upper bound of the bucket holding the target rank,
// which overstates rather than understates.
func percentile(buckets []uint64, total uint64, p float64) float64 {
	if total == 0 {
		return 0
	}
	rank := uint64(p * float64(total))
	if rank == 0 {
		rank = 1
	}
	var seen uint64
	for i, count := range buckets {
		seen += count
		if seen >= rank {
			if i < len(bucketBoundsMs) {
				return bucketBoundsMs[i]
			}
			return bucketBoundsMs[len(bucketBoundsMs)-1]
		}
	}
	return 0
}
