package audio

import (
	"math"

	"github.com/gopxl/beep"
)

// monoBuffer is mono float64 samples at unity gain
type monoBuffer []float64

// sineTone generates a sine burst of the given frequency and length
func sineTone(rate beep.SampleRate, freq float64, samples int) monoBuffer {
	buf := make(monoBuffer, samples)
	phase := 0.0
	phaseInc := freq / float64(rate)

	for i := 0; i < samples; i++ {
		buf[i] = math.Sin(2 * math.Pi * phase)
		phase += phaseInc
		if phase >= 1.0 {
			phase -= 1.0
		}
	}
	return buf
}

// applyEnvelope applies attack/release envelope in place
func applyEnvelope(rate beep.SampleRate, buf monoBuffer, attackSec, releaseSec float64) {
	total := len(buf)
	attackSamples := int(attackSec * float64(rate))
	releaseSamples := int(releaseSec * float64(rate))

	releaseStart := total - releaseSamples
	if releaseStart < attackSamples {
		releaseStart = attackSamples
	}

	for i := 0; i < total; i++ {
		vol := 1.0
		if i < attackSamples && attackSamples > 0 {
			vol = float64(i) / float64(attackSamples)
		} else if i >= releaseStart && releaseSamples > 0 {
			vol = float64(total-i) / float64(releaseSamples)
		}
		buf[i] *= vol
	}
}

// bufferStreamer plays a mono buffer once, then silence forever so the
// clock keeps advancing past the end of the track
type bufferStreamer struct {
	buf monoBuffer
	pos int
}

func (b *bufferStreamer) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		v := 0.0
		if b.pos < len(b.buf) {
			v = b.buf[b.pos]
			b.pos++
		}
		samples[i][0] = v
		samples[i][1] = v
	}
	return len(samples), true
}

func (b *bufferStreamer) Err() error { return nil }

// Metronome builds a tick track for the given duration: a high sine burst
// on every fourth beat, a lower one otherwise. Gain keeps the ticks quiet
// under the animation.
func Metronome(rate beep.SampleRate, bpm float64, durationMs int64, gain float64) beep.Streamer {
	if rate == 0 {
		rate = defaultSampleRate
	}
	if bpm <= 0 {
		bpm = 120
	}

	total := int(float64(rate) * float64(durationMs) / 1000)
	buf := make(monoBuffer, total)

	beatSamples := int(float64(rate) * 60 / bpm)
	tickLen := int(float64(rate) * 0.05)

	for beat, start := 0, 0; start < total; beat, start = beat+1, start+beatSamples {
		freq := 440.0
		if beat%4 == 0 {
			freq = 880.0
		}
		tick := sineTone(rate, freq, tickLen)
		applyEnvelope(rate, tick, 0.005, 0.03)

		for i, v := range tick {
			if start+i >= total {
				break
			}
			buf[start+i] += v * gain
		}
	}

	return &bufferStreamer{buf: buf}
}
