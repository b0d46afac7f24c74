package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
)

// preSpeechFrames is the recent-silence tail kept ahead of detected speech
// so utterance onsets are not clipped (~200ms at 20ms frames).
const preSpeechFrames = 10

// Listener captures one utterance at a time from the default input source.
type Listener struct {
	logger *slog.Logger
}

// NewListener creates a microphone listener.
func NewListener(logger *slog.Logger) *Listener {
	return &Listener{logger: logger}
}

// CaptureUtterance records until speech has started and then ended,
// returning the voiced samples plus a short leading tail. It blocks for as
// long as the microphone stays silent; cancellation is honored between
// frames.
func (l *Listener) CaptureUtterance(ctx context.Context) ([]int16, error) {
	capture, err := StartCapture(ctx)
	if err != nil {
		return nil, fmt.Errorf("start capture: %w", err)
	}
	defer capture.Close()

	detector := NewDetector()
	var (
		samples []int16
		tail    [][]int16
		started bool
	)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case chunk, ok := <-capture.Chunks():
			if !ok {
				if started {
					return samples, nil
				}
				return nil, errors.New("capture stream ended before speech")
			}

			frame := bytesToSamples(chunk)
			inSpeech := detector.Feed(frame)

			switch {
			case inSpeech && !started:
				started = true
				l.logger.Debug("speech started")
				for _, t := range tail {
					samples = append(samples, t...)
				}
				tail = nil
				samples = append(samples, frame...)
			case inSpeech:
				samples = append(samples, frame...)
			case started:
				l.logger.Debug("speech ended", "samples", len(samples))
				return samples, nil
			default:
				tail = append(tail, frame)
				if len(tail) > preSpeechFrames {
					tail = tail[1:]
				}
			}
		}
	}
}

// bytesToSamples converts little-endian s16 PCM bytes to samples.
func bytesToSamples(b []byte) []int16 {
	samples := make([]int16, len(b)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(b[2*i:]))
	}
	return samples
}
