package cache

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Hit, miss and eviction counters are labelled by Kind so search and episode
// traffic show up separately.
var (
	HitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showfinder_cache_hits_total",
			Help: "Total number of TVMaze responses served from the cache.",
		},
		[]string{"kind"},
	)

	MissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showfinder_cache_misses_total",
			Help: "Total number of cache lookups that had to call TVMaze.",
		},
		[]string{"kind"},
	)

	EvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showfinder_cache_evictions_total",
			Help: "Total number of cached responses dropped by the size limit (and, in memory, by expiry).",
		},
		[]string{"kind"},
	)

	entries = &entriesCollector{
		desc: prometheus.NewDesc(
			"showfinder_cache_entries",
			"Current number of cached responses, by backend.",
			[]string{"backend"},
			nil,
		),
		open: make(map[*instrumentedCache]struct{}),
	}
)

func init() {
	prometheus.MustRegister(HitsTotal, MissesTotal, EvictionsTotal, entries)
}

// entriesCollector sums Len over the open caches of each backend at scrape
// time, since Redis expires entries on its own.
type entriesCollector struct {
	desc *prometheus.Desc

	mu   sync.Mutex
	open map[*instrumentedCache]struct{}
}

func (e *entriesCollector) add(c *instrumentedCache) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.open[c] = struct{}{}
}

func (e *entriesCollector) remove(c *instrumentedCache) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.open, c)
}

// byBackend snapshots the entry count per backend
func (e *entriesCollector) byBackend() map[string]int {
	e.mu.Lock()
	caches := make([]*instrumentedCache, 0, len(e.open))
	for c := range e.open {
		caches = append(caches, c)
	}
	e.mu.Unlock()

	counts := make(map[string]int)
	for _, c := range caches {
		counts[c.backend] += c.Len()
	}
	return counts
}

func (e *entriesCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- e.desc
}

func (e *entriesCollector) Collect(ch chan<- prometheus.Metric) {
	for backend, n := range e.byBackend() {
		ch <- prometheus.MustNewConstMetric(e.desc, prometheus.GaugeValue, float64(n), backend)
	}
}
