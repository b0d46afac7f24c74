// Package engine defines the speech-recognition collaborator boundary and
// its DeepSpeech-backed production adapter.
package engine

import "errors"

// ErrNotLoaded indicates inference was requested with no live model handle.
var ErrNotLoaded = errors.New("recognition model not loaded")

// Params identifies one loaded recognition model. A change to any field
// requires the handle to be rebuilt.
type Params struct {
	LibraryPath string
	ModelPath   string
	ScorerPath  string
	BeamWidth   int
}

// Handle is one live recognition model instance. At most one handle is
// outstanding per process.
type Handle interface {
	// Infer transcribes one utterance of 16 kHz mono s16 samples.
	Infer(samples []int16) (string, error)
	Close() error
}

// Engine constructs handles from parameters.
type Engine interface {
	Load(params Params) (Handle, error)
}

// LoadError reports a rejected model/scorer/beam-width combination.
type LoadError struct {
	Params Params
	Err    error
}

func (e *LoadError) Error() string {
	return "load recognition model " + e.Params.ModelPath + ": " + e.Err.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// InferenceError reports an engine failure while transcribing audio.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string {
	return "speech inference: " + e.Err.Error()
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}
