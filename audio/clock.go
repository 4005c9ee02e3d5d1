// Package audio provides the playback reference clock and the demo track.
// The clock reports the position of audio actually delivered to the
// speaker, so animation driven by it stays locked to what the listener
// hears rather than to wall time.
package audio

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const defaultSampleRate = beep.SampleRate(48000)

// ErrSpeakerInit reports an unavailable audio backend
var ErrSpeakerInit = errors.New("audio: speaker init failed")

// Clock is a playback-position clock over a beep streamer. Position
// advances only while samples are being pulled, so pausing the stream
// freezes the clock. Safe for concurrent readers.
type Clock struct {
	sampleRate beep.SampleRate
	ctrl       *beep.Ctrl
	samples    atomic.Int64
	playing    atomic.Bool
}

// counting wraps a streamer and accumulates samples delivered
type counting struct {
	inner beep.Streamer
	clock *Clock
}

func (c *counting) Stream(samples [][2]float64) (int, bool) {
	n, ok := c.inner.Stream(samples)
	c.clock.samples.Add(int64(n))
	return n, ok
}

func (c *counting) Err() error {
	return c.inner.Err()
}

// NewClock initializes the speaker at the given rate (0 takes the
// default) and starts playing the streamer with position tracking
// attached. Fails with ErrSpeakerInit when no audio backend is available;
// callers degrade to a monotonic clock.
func NewClock(rate beep.SampleRate, stream beep.Streamer) (*Clock, error) {
	if rate == 0 {
		rate = defaultSampleRate
	}
	if err := speaker.Init(rate, rate.N(time.Millisecond*100)); err != nil {
		return nil, errors.Join(ErrSpeakerInit, err)
	}

	c := &Clock{sampleRate: rate}
	c.ctrl = &beep.Ctrl{Streamer: &counting{inner: stream, clock: c}}
	c.playing.Store(true)
	speaker.Play(c.ctrl)
	return c, nil
}

// CurrentTimeMs implements the clock source read: milliseconds of audio
// delivered since playback began
func (c *Clock) CurrentTimeMs() float64 {
	return float64(c.samples.Load()) / float64(c.sampleRate) * 1000
}

// IsPlaying implements the clock source liveness check
func (c *Clock) IsPlaying() bool {
	return c.playing.Load()
}

// Pause stops pulling samples; the position freezes
func (c *Clock) Pause() {
	speaker.Lock()
	c.ctrl.Paused = true
	speaker.Unlock()
	c.playing.Store(false)
}

// Resume continues playback from the frozen position
func (c *Clock) Resume() {
	speaker.Lock()
	c.ctrl.Paused = false
	speaker.Unlock()
	c.playing.Store(true)
}

// Close silences the stream. The speaker itself has no close; clearing
// the streamer stops sample delivery.
func (c *Clock) Close() {
	speaker.Lock()
	c.ctrl.Streamer = nil
	c.ctrl.Paused = true
	speaker.Unlock()
	c.playing.Store(false)
}
