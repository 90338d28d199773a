package ui

import (
	"fmt"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
)

const (
	sampleRate = 44100
	toneHz     = 440
)

// audio is a square wave buzzer, on while the machine's sound timer runs.
// The stream callback runs on its own thread and only reads the on flag.
type audio struct {
	stream *portaudio.Stream
	on     int32
	phase  int
}

func newAudio() *audio {
	return &audio{}
}

func (a *audio) start() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("Failed to initialize the audio: %w", err)
	}
	period := sampleRate / toneHz
	// Interleaved stereo, l r l r ...
	cb := func(out []float32) {
		on := atomic.LoadInt32(&a.on) == 1
		for i := 0; i+1 < len(out); i += 2 {
			var x float32
			if on {
				x = 0.05
				if a.phase < period/2 {
					x = -x
				}
			}
			a.phase = (a.phase + 1) % period
			out[i] = x   // l
			out[i+1] = x // r
		}
	}
	stream, err := portaudio.OpenDefaultStream(0, 2, sampleRate, 0, cb)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("Failed to open the audio stream: %w", err)
	}
	a.stream = stream
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("Failed to start the audio stream: %w", err)
	}
	return nil
}

// set turns the buzzer on or off.
func (a *audio) set(on bool) {
	var v int32
	if on {
		v = 1
	}
	atomic.StoreInt32(&a.on, v)
}

func (a *audio) terminate() {
	a.stream.Stop()
	a.stream.Close()
	portaudio.Terminate()
}
