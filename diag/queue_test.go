package diag

import (
	"sync"
	"testing"

	"github.com/lixenwraith/kinetext/parameter"
)

func TestPushConsumeFIFO(t *testing.T) {
	q := NewQueue()

	for i := 0; i < 5; i++ {
		q.Push(Event{Type: EventFrameDrop, Frame: uint64(i)})
	}

	events := q.Consume()
	if len(events) != 5 {
		t.Fatalf("consumed %d events, want 5", len(events))
	}
	for i, ev := range events {
		if ev.Frame != uint64(i) {
			t.Errorf("event %d out of order: frame %d", i, ev.Frame)
		}
	}

	if again := q.Consume(); again != nil {
		t.Errorf("second consume returned %d events, want none", len(again))
	}
}

func TestOverflowDropsOldest(t *testing.T) {
	q := NewQueue()

	total := parameter.DiagQueueSize + 100
	for i := 0; i < total; i++ {
		q.Push(Event{Frame: uint64(i)})
	}

	events := q.Consume()
	if len(events) > parameter.DiagQueueSize {
		t.Fatalf("consumed %d events, capacity is %d", len(events), parameter.DiagQueueSize)
	}
	// The oldest surviving event must be from the overwritten region's end
	if events[0].Frame < 100 {
		t.Errorf("oldest frame = %d, expected oldest 100 to be overwritten", events[0].Frame)
	}
	last := events[len(events)-1]
	if last.Frame != uint64(total-1) {
		t.Errorf("newest frame = %d, want %d", last.Frame, total-1)
	}
}

func TestConcurrentProducers(t *testing.T) {
	q := NewQueue()

	const producers = 8
	const perProducer = 50

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(Event{Type: EventFallback, Frame: uint64(p*perProducer + i)})
			}
		}(p)
	}
	wg.Wait()

	seen := 0
	for {
		events := q.Consume()
		if len(events) == 0 {
			break
		}
		seen += len(events)
	}
	if seen != producers*perProducer {
		t.Errorf("consumed %d events, want %d", seen, producers*perProducer)
	}
}
