package fins

import (
	"sync"
	"time"
)

// opRecord accumulates raw counters for one operation type.
type opRecord struct {
	count    int64
	errors   int64
	duration time.Duration
}

// MetricsCollector keeps in-memory per-operation counters: calls, failures
// and cumulative duration. Safe for concurrent use. For an exportable
// variant see PrometheusMetrics.
//
// Example:
//
//	metrics := fins.NewMetricsCollector()
//	client.SetInterceptor(metrics.Interceptor())
//
//	client.ReadWords(ctx, "D100", 5)
//
//	count, errors, avgDuration := metrics.GetStats(fins.OpReadWords)
//	log.Printf("ReadWords: %d calls, %d errors, avg: %v", count, errors, avgDuration)
type MetricsCollector struct {
	mu  sync.RWMutex
	ops map[OperationType]*opRecord
}

// NewMetricsCollector creates an empty collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{ops: make(map[OperationType]*opRecord)}
}

// Interceptor returns the interceptor that feeds this collector.
func (m *MetricsCollector) Interceptor() Interceptor {
	return func(c *InterceptorCtx) (interface{}, error) {
		start := time.Now()
		result, err := c.Invoke(nil)
		m.record(c.Info().Operation, time.Since(start), err)
		return result, err
	}
}

func (m *MetricsCollector) record(op OperationType, elapsed time.Duration, err error) {
	m.mu.Lock()
	rec := m.ops[op]
	if rec == nil {
		rec = &opRecord{}
		m.ops[op] = rec
	}
	rec.count++
	rec.duration += elapsed
	if err != nil {
		rec.errors++
	}
	m.mu.Unlock()
}

// GetStats returns the call count, error count and average duration
// recorded for one operation type.
func (m *MetricsCollector) GetStats(op OperationType) (count int64, errors int64, avgDuration time.Duration) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec := m.ops[op]
	if rec == nil {
		return 0, 0, 0
	}
	return rec.count, rec.errors, rec.duration / time.Duration(rec.count)
}

// Reset discards all recorded metrics.
func (m *MetricsCollector) Reset() {
	m.mu.Lock()
	m.ops = make(map[OperationType]*opRecord)
	m.mu.Unlock()
}

// OperationStats is an aggregate view of one operation's metrics.
type OperationStats struct {
	Count       int64
	Errors      int64
	AvgDuration time.Duration
}

// GetAllStats returns a snapshot for every operation seen so far.
func (m *MetricsCollector) GetAllStats() map[OperationType]OperationStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := make(map[OperationType]OperationStats, len(m.ops))
	for op, rec := range m.ops {
		stats[op] = OperationStats{
			Count:       rec.count,
			Errors:      rec.errors,
			AvgDuration: rec.duration / time.Duration(rec.count),
		}
	}
	return stats
}
