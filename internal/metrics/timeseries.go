package metrics

import (
	"sync"
	"time"
)

// TimeSeriesPoint is one sample of the transform totals.
type TimeSeriesPoint struct {
	Timestamp time.Time        `json:"timestamp"`
	Values    map[string]int64 `json:"values"`
}

// TimeSeriesBuffer is a fixed-size ring of samples.
type TimeSeriesBuffer struct {
	mu       sync.RWMutex
	points   []TimeSeriesPoint
	size     int
	writePos int
	count    int
}

// NewTimeSeriesBuffer creates a ring holding size samples.
func NewTimeSeriesBuffer(size int) *TimeSeriesBuffer {
	if size < 1 {
		size = 1
	}
	return &TimeSeriesBuffer{
		points: make([]TimeSeriesPoint, size),
		size:   size,
	}
}

// Add stores a sample, overwriting the oldest when full.
func (b *TimeSeriesBuffer) Add(point TimeSeriesPoint) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.points[b.writePos] = point
	b.writePos = (b.writePos + 1) % b.size
	if b.count < b.size {
		b.count++
	}
}

// Since returns samples newer than cutoff, oldest first.
func (b *TimeSeriesBuffer) Since(cutoff time.Time) []TimeSeriesPoint {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var result []TimeSeriesPoint
	for i := 0; i < b.count; i++ {
		idx := (b.writePos - b.count + i + b.size) % b.size
		if p := b.points[idx]; p.Timestamp.After(cutoff) {
			result = append(result, p)
		}
	}
	return result
}

// Len returns the number of stored samples.
func (b *TimeSeriesBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}

// TimeSeriesCollector samples a Metrics instance at a fixed interval so the
// stats endpoint can show recent throughput without a Prometheus server.
type TimeSeriesCollector struct {
	metrics  *Metrics
	buffer   *TimeSeriesBuffer
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewTimeSeriesCollector creates a collector keeping size samples.
func NewTimeSeriesCollector(m *Metrics, size int, interval time.Duration) *TimeSeriesCollector {
	return &TimeSeriesCollector{
		metrics:  m,
		buffer:   NewTimeSeriesBuffer(size),
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins sampling in the background.
func (c *TimeSeriesCollector) Start() {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-c.stopCh:
				return
			case now := <-ticker.C:
				c.Collect(now)
			}
		}
	}()
}

// Stop halts sampling and waits for the loop to exit. It is safe to call
// more than once.
func (c *TimeSeriesCollector) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
	c.wg.Wait()
}

// Collect takes one sample stamped with now.
func (c *TimeSeriesCollector) Collect(now time.Time) {
	m := c.metrics
	c.buffer.Add(TimeSeriesPoint{
		Timestamp: now,
		Values: map[string]int64{
			"documents_total":     m.documentsTotal.Load(),
			"documents_failed":    m.documentsFailed.Load(),
			"rows_total":          m.rowsTotal.Load(),
			"payload_bytes_total": m.bytesTotal.Load(),
			"inbox_processed":     m.inboxProcessed.Load(),
		},
	})
}

// Recent returns the samples of the last minutes.
func (c *TimeSeriesCollector) Recent(minutes int) []TimeSeriesPoint {
	return c.buffer.Since(time.Now().Add(-time.Duration(minutes) * time.Minute))
}
