package engine

import (
	"fmt"

	astideepspeech "github.com/asticode/go-astideepspeech"
)

// DeepSpeech loads models through the libdeepspeech bindings.
//
// The binding resolves the shared library at link time, so
// Params.LibraryPath only participates in handle identity; a changed value
// still forces a rebuild but cannot redirect the loaded library.
type DeepSpeech struct{}

// Load builds a model handle from the given parameters. A partially
// configured model is closed before the error is returned.
func (DeepSpeech) Load(params Params) (Handle, error) {
	model, err := astideepspeech.New(params.ModelPath)
	if err != nil {
		return nil, &LoadError{Params: params, Err: fmt.Errorf("open model: %w", err)}
	}

	if params.ScorerPath != "" {
		if err := model.EnableExternalScorer(params.ScorerPath); err != nil {
			_ = model.Close()
			return nil, &LoadError{Params: params, Err: fmt.Errorf("enable scorer %q: %w", params.ScorerPath, err)}
		}
	}

	if params.BeamWidth > 0 {
		if err := model.SetModelBeamWidth(uint(params.BeamWidth)); err != nil {
			_ = model.Close()
			return nil, &LoadError{Params: params, Err: fmt.Errorf("set beam width %d: %w", params.BeamWidth, err)}
		}
	}

	return &deepSpeechHandle{model: model}, nil
}

type deepSpeechHandle struct {
	model *astideepspeech.Model
}

func (h *deepSpeechHandle) Infer(samples []int16) (string, error) {
	text, err := h.model.SpeechToText(samples)
	if err != nil {
		return "", &InferenceError{Err: err}
	}
	return text, nil
}

func (h *deepSpeechHandle) Close() error {
	return h.model.Close()
}
