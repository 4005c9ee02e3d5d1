// Package timesync measures drift between the engine's requested timeline
// position and an external reference clock (typically media playback).
// Samples are diagnostic only: drift never gates scheduling.
package timesync

import (
	"math"

	"github.com/lixenwraith/kinetext/parameter"
)

// ClockSource is an external reference clock, queried only, never driven
type ClockSource interface {
	// CurrentTimeMs returns the reference position in milliseconds
	CurrentTimeMs() float64

	// IsPlaying reports whether the reference is advancing
	IsPlaying() bool
}

// SyncSample is one drift measurement
type SyncSample struct {
	RequestedMs int64
	SourceMs    float64
	OffsetMs    float64 // absolute offset from the requested position
	Accurate    bool
}

// SyncAccuracy aggregates the retained sample window
type SyncAccuracy struct {
	CurrentOffsetMs float64
	AverageOffsetMs float64
	MinOffsetMs     float64
	MaxOffsetMs     float64
	AccurateRatio   float64 // fraction of samples classified accurate
	SampleCount     int
}

// Monitor measures clock drift into a fixed-capacity ring buffer, oldest
// samples evicted first. Single-writer: owned by one orchestrator instance,
// not safe for concurrent use.
type Monitor struct {
	source ClockSource

	samples [parameter.SyncSampleCapacity]SyncSample
	head    int // next write index
	count   int // valid samples, saturates at capacity
}

// NewMonitor creates a monitor with no clock bound. Sampling without a
// source degrades to zero-offset inaccurate samples rather than failing.
func NewMonitor(source ClockSource) *Monitor {
	return &Monitor{source: source}
}

// SetClockSource rebinds the external reference clock and clears the
// sample history, which was measured against the previous source
func (m *Monitor) SetClockSource(source ClockSource) {
	m.source = source
	m.head = 0
	m.count = 0
}

// Sample reads the bound clock, measures the absolute offset from
// requestedMs and appends the result to the ring. With no clock bound the
// sample is recorded as offset 0, accurate false; Sample never panics.
func (m *Monitor) Sample(requestedMs int64) SyncSample {
	s := SyncSample{RequestedMs: requestedMs}

	if m.source != nil {
		s.SourceMs = m.source.CurrentTimeMs()
		s.OffsetMs = math.Abs(s.SourceMs - float64(requestedMs))
		s.Accurate = s.OffsetMs < parameter.SyncAccuracyThresholdMs
	}

	m.samples[m.head] = s
	m.head = (m.head + 1) % parameter.SyncSampleCapacity
	if m.count < parameter.SyncSampleCapacity {
		m.count++
	}
	return s
}

// Accuracy aggregates the retained samples. An empty history yields the
// zero SyncAccuracy.
func (m *Monitor) Accuracy() SyncAccuracy {
	if m.count == 0 {
		return SyncAccuracy{}
	}

	// Last written sample sits just behind head
	last := m.samples[(m.head-1+parameter.SyncSampleCapacity)%parameter.SyncSampleCapacity]

	acc := SyncAccuracy{
		CurrentOffsetMs: last.OffsetMs,
		MinOffsetMs:     math.Inf(1),
		MaxOffsetMs:     math.Inf(-1),
		SampleCount:     m.count,
	}

	sum := 0.0
	accurate := 0
	for i := 0; i < m.count; i++ {
		s := m.samples[(m.head-1-i+2*parameter.SyncSampleCapacity)%parameter.SyncSampleCapacity]
		sum += s.OffsetMs
		acc.MinOffsetMs = math.Min(acc.MinOffsetMs, s.OffsetMs)
		acc.MaxOffsetMs = math.Max(acc.MaxOffsetMs, s.OffsetMs)
		if s.Accurate {
			accurate++
		}
	}
	acc.AverageOffsetMs = sum / float64(m.count)
	acc.AccurateRatio = float64(accurate) / float64(m.count)
	return acc
}

// HasSource reports whether a reference clock is bound
func (m *Monitor) HasSource() bool {
	return m.source != nil
}
