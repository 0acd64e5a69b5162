package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64
	punchesRejected uint64

	mu          sync.Mutex
	punchByKind map[string]uint64
	rejections  map[string]uint64
}

func New() *Collector {
	return &Collector{punchByKind: map[string]uint64{}, rejections: map[string]uint64{}}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) PunchRecorded(kind string) {
	c.mu.Lock()
	c.punchByKind[kind]++
	c.mu.Unlock()
}

func (c *Collector) PunchRejected(reason string) {
	atomic.AddUint64(&c.punchesRejected, 1)
	c.mu.Lock()
	c.rejections[reason]++
	c.mu.Unlock()
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}

	c.mu.Lock()
	byKind := copyCounts(c.punchByKind)
	rejections := copyCounts(c.rejections)
	c.mu.Unlock()

	var recorded uint64
	for _, n := range byKind {
		recorded += n
	}

	return map[string]any{
		"requestsTotal":         total,
		"errorsTotal":           errs,
		"rateLimitedTotal":      limited,
		"avgDurationMs":         avg,
		"totalDurationMs":       totalMs,
		"punchesRecordedTotal":  recorded,
		"punchesRecordedByKind": byKind,
		"punchesRejectedTotal":  atomic.LoadUint64(&c.punchesRejected),
		"punchRejections":       rejections,
	}
}

func copyCounts(in map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
