package status

import (
	"math"
	"sync"
	"sync/atomic"
)

// AtomicFloat is a float64 stored as atomic bits
type AtomicFloat struct {
	bits atomic.Uint64
}

// Store sets the value atomically
func (f *AtomicFloat) Store(v float64) {
	f.bits.Store(math.Float64bits(v))
}

// Load reads the value atomically
func (f *AtomicFloat) Load() float64 {
	return math.Float64frombits(f.bits.Load())
}

// MetricMap holds named metrics of one atomic type. Get allocates on first
// use; callers cache the returned pointer and write lock-free afterwards.
type MetricMap[T any] struct {
	mu      sync.RWMutex
	metrics map[string]*T
}

// NewMetricMap creates an empty metric map
func NewMetricMap[T any]() *MetricMap[T] {
	return &MetricMap[T]{
		metrics: make(map[string]*T),
	}
}

// Get returns the metric pointer for name, creating it when absent
func (m *MetricMap[T]) Get(name string) *T {
	m.mu.RLock()
	p, ok := m.metrics[name]
	m.mu.RUnlock()
	if ok {
		return p
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok = m.metrics[name]; ok {
		return p
	}
	p = new(T)
	m.metrics[name] = p
	return p
}

// Count returns the number of registered metrics
func (m *MetricMap[T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.metrics)
}

// Names returns the registered metric names
func (m *MetricMap[T]) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.metrics))
	for n := range m.metrics {
		names = append(names, n)
	}
	return names
}
