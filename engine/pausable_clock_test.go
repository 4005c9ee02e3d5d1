package engine

import (
	"sync"
	"testing"
	"time"
)

func TestPausableClockFreezesWhilePaused(t *testing.T) {
	pc := NewPausableClock()

	pc.Pause()
	frozen := pc.NowMs()
	time.Sleep(20 * time.Millisecond)
	if got := pc.NowMs(); got != frozen {
		t.Errorf("timeline advanced while paused: %d -> %d", frozen, got)
	}
	if pc.IsPlaying() {
		t.Error("paused clock reports playing")
	}

	pc.Resume()
	time.Sleep(20 * time.Millisecond)
	if got := pc.NowMs(); got <= frozen {
		t.Errorf("timeline did not advance after resume: %d", got)
	}
}

func TestPausableClockSeek(t *testing.T) {
	pc := NewPausableClock()

	pc.Seek(5000)
	got := pc.NowMs()
	if got < 5000 || got > 5100 {
		t.Errorf("after seek NowMs = %d, want ~5000", got)
	}

	pc.Pause()
	pc.Seek(1000)
	got = pc.NowMs()
	if got < 1000 || got > 1100 {
		t.Errorf("seek while paused NowMs = %d, want ~1000", got)
	}
}

func TestPauseResumeIdempotent(t *testing.T) {
	pc := NewPausableClock()

	pc.Pause()
	pc.Pause()
	if !pc.IsPaused() {
		t.Error("clock not paused")
	}
	pc.Resume()
	pc.Resume()
	if pc.IsPaused() {
		t.Error("clock still paused")
	}
}

func TestNowMsConsistentAcrossPauseToggles(t *testing.T) {
	pc := NewPausableClock()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			// A reader must never observe the paused flag without its
			// pause timestamp
			if got := pc.NowMs(); got < 0 || got > int64(time.Minute/time.Millisecond) {
				t.Errorf("NowMs = %d during pause toggle", got)
				return
			}
		}
	}()

	for i := 0; i < 1000; i++ {
		pc.Pause()
		pc.Resume()
	}
	close(stop)
	wg.Wait()
}
