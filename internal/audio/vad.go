package audio

import "math"

// Detector tracks speech/silence over RMS energy levels with hysteresis,
// so brief pops do not start an utterance and brief pauses do not end one.
type Detector struct {
	speechThreshold  float64 // RMS level to start speech
	silenceThreshold float64 // RMS level to end speech
	speechFrames     int     // consecutive speech frames needed to start
	silenceFrames    int     // consecutive silence frames needed to end

	inSpeech     bool
	speechCount  int
	silenceCount int
}

// NewDetector returns a detector tuned for 16kHz 20ms frames.
func NewDetector() *Detector {
	return &Detector{
		speechThreshold:  0.015,
		silenceThreshold: 0.008,
		speechFrames:     3,  // ~60ms to start
		silenceFrames:    30, // ~600ms to end
	}
}

// Feed consumes one frame and reports whether the detector is inside
// speech afterwards.
func (d *Detector) Feed(frame []int16) bool {
	level := rms(frame)

	if d.inSpeech {
		if level < d.silenceThreshold {
			d.silenceCount++
			d.speechCount = 0
			if d.silenceCount >= d.silenceFrames {
				d.inSpeech = false
				d.silenceCount = 0
			}
		} else {
			d.silenceCount = 0
		}
		return d.inSpeech
	}

	if level >= d.speechThreshold {
		d.speechCount++
		d.silenceCount = 0
		if d.speechCount >= d.speechFrames {
			d.inSpeech = true
			d.speechCount = 0
		}
	} else {
		d.speechCount = 0
	}
	return d.inSpeech
}

// Reset clears internal state.
func (d *Detector) Reset() {
	d.inSpeech = false
	d.speechCount = 0
	d.silenceCount = 0
}

// rms computes the normalized root-mean-square level of a PCM frame.
func rms(frame []int16) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, s := range frame {
		v := float64(s) / math.MaxInt16
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(frame)))
}
