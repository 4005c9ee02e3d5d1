package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/kinetext/core"
)

// TickCallback is invoked once per host frame with the delta since the
// previous tick
type TickCallback func(delta time.Duration)

// TickSource is the host tick driver: one callback invocation per render
// frame. Subscribe returns an id for Unsubscribe; subscriptions take effect
// from the next tick.
type TickSource interface {
	Subscribe(fn TickCallback) int
	Unsubscribe(id int)
	Start()
	Stop()
	Running() bool
}

type subscription struct {
	id int
	fn TickCallback
}

// TickerSource drives subscribers from a wall-clock ticker with
// drift-corrected deadlines: a slow tick shortens the following sleep
// rather than shifting all later ticks.
type TickerSource struct {
	interval time.Duration
	clock    TimeProvider

	mu     sync.Mutex
	subs   []subscription
	nextID int

	running  atomic.Bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewTickerSource creates a source ticking at the given interval
func NewTickerSource(interval time.Duration) *TickerSource {
	return &TickerSource{
		interval: interval,
		clock:    NewMonotonicTimeProvider(),
	}
}

// Subscribe implements TickSource
func (ts *TickerSource) Subscribe(fn TickCallback) int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	id := ts.nextID
	ts.nextID++
	ts.subs = append(ts.subs, subscription{id: id, fn: fn})
	return id
}

// Unsubscribe implements TickSource; effective from the next tick
func (ts *TickerSource) Unsubscribe(id int) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	for i, s := range ts.subs {
		if s.id == id {
			ts.subs = append(ts.subs[:i], ts.subs[i+1:]...)
			return
		}
	}
}

// Start begins the tick loop; starting a running source is a no-op
func (ts *TickerSource) Start() {
	if !ts.running.CompareAndSwap(false, true) {
		return
	}
	ts.stopChan = make(chan struct{})
	ts.wg.Add(1)
	core.Go(ts.loop)
}

// Stop halts the tick loop and waits for it to exit
func (ts *TickerSource) Stop() {
	if !ts.running.CompareAndSwap(true, false) {
		return
	}
	close(ts.stopChan)
	ts.wg.Wait()
}

// Running implements TickSource
func (ts *TickerSource) Running() bool {
	return ts.running.Load()
}

func (ts *TickerSource) loop() {
	defer ts.wg.Done()

	lastTick := ts.clock.Now()
	deadline := lastTick.Add(ts.interval)

	timer := time.NewTimer(ts.interval)
	defer timer.Stop()

	for {
		select {
		case <-ts.stopChan:
			return
		case <-timer.C:
		}

		now := ts.clock.Now()
		delta := now.Sub(lastTick)
		lastTick = now

		ts.dispatch(delta)

		deadline = deadline.Add(ts.interval)
		// Cap catch-up so a long stall does not burst-fire ticks
		if now.Sub(deadline) > ts.interval*2 {
			deadline = now.Add(ts.interval)
		}

		sleep := deadline.Sub(ts.clock.Now())
		if sleep < 0 {
			sleep = 0
		}
		timer.Reset(sleep)
	}
}

func (ts *TickerSource) dispatch(delta time.Duration) {
	ts.mu.Lock()
	subs := make([]subscription, len(ts.subs))
	copy(subs, ts.subs)
	ts.mu.Unlock()

	for _, s := range subs {
		s.fn(delta)
	}
}

// ManualTickSource is a deterministic source stepped by tests and the
// headless simulator
type ManualTickSource struct {
	mu      sync.Mutex
	subs    []subscription
	nextID  int
	running bool
}

// NewManualTickSource creates a stopped manual source
func NewManualTickSource() *ManualTickSource {
	return &ManualTickSource{}
}

// Subscribe implements TickSource
func (ms *ManualTickSource) Subscribe(fn TickCallback) int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	id := ms.nextID
	ms.nextID++
	ms.subs = append(ms.subs, subscription{id: id, fn: fn})
	return id
}

// Unsubscribe implements TickSource
func (ms *ManualTickSource) Unsubscribe(id int) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for i, s := range ms.subs {
		if s.id == id {
			ms.subs = append(ms.subs[:i], ms.subs[i+1:]...)
			return
		}
	}
}

// Start implements TickSource
func (ms *ManualTickSource) Start() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.running = true
}

// Stop implements TickSource
func (ms *ManualTickSource) Stop() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.running = false
}

// Running implements TickSource
func (ms *ManualTickSource) Running() bool {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.running
}

// SubscriberCount reports active subscriptions, for assertions
func (ms *ManualTickSource) SubscriberCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.subs)
}

// Step fires one tick with the given delta when the source is running
func (ms *ManualTickSource) Step(delta time.Duration) {
	ms.mu.Lock()
	if !ms.running {
		ms.mu.Unlock()
		return
	}
	subs := make([]subscription, len(ms.subs))
	copy(subs, ms.subs)
	ms.mu.Unlock()

	for _, s := range subs {
		s.fn(delta)
	}
}
