// Package session owns the recognition engine handle lifecycle: load,
// reload-on-change, and release.
package session

import (
	"log/slog"

	"github.com/harkd/hark/internal/config"
	"github.com/harkd/hark/internal/engine"
)

// Session bridges captured audio to transcriptions while holding at most
// one live engine handle. The daemon controller is its only driver.
type Session struct {
	logger *slog.Logger
	engine engine.Engine

	handle engine.Handle
	params engine.Params
}

// New creates a session around an engine. No model is loaded until
// EnsureLoaded is called.
func New(logger *slog.Logger, eng engine.Engine) *Session {
	return &Session{logger: logger, engine: eng}
}

// ParamsFrom extracts the handle parameter tuple from a configuration.
func ParamsFrom(cfg config.Config) engine.Params {
	return engine.Params{
		LibraryPath: cfg.LibraryPath,
		ModelPath:   cfg.ModelPath,
		ScorerPath:  cfg.ScorerPath,
		BeamWidth:   cfg.BeamWidth,
	}
}

// EnsureLoaded makes the live handle match cfg's parameter tuple. An
// identical tuple is a no-op. Otherwise the existing handle is released
// first and a replacement is loaded; if the load fails no handle is held
// and Transcribe fails fast until a later EnsureLoaded succeeds.
func (s *Session) EnsureLoaded(cfg config.Config) error {
	params := ParamsFrom(cfg)
	if s.handle != nil && params == s.params {
		return nil
	}

	if s.handle != nil {
		if err := s.handle.Close(); err != nil {
			s.logger.Warn("release recognition model", "error", err.Error())
		}
		s.handle = nil
		s.params = engine.Params{}
	}

	handle, err := s.engine.Load(params)
	if err != nil {
		return err
	}

	s.handle = handle
	s.params = params
	s.logger.Info("recognition model loaded",
		"model", params.ModelPath,
		"scorer", params.ScorerPath,
		"beam_width", params.BeamWidth,
	)
	return nil
}

// Transcribe runs inference over one captured utterance.
func (s *Session) Transcribe(samples []int16) (string, error) {
	if s.handle == nil {
		return "", engine.ErrNotLoaded
	}
	return s.handle.Infer(samples)
}

// Loaded reports whether a handle is currently held.
func (s *Session) Loaded() bool {
	return s.handle != nil
}

// Close releases the held handle, if any.
func (s *Session) Close() error {
	if s.handle == nil {
		return nil
	}
	err := s.handle.Close()
	s.handle = nil
	s.params = engine.Params{}
	return err
}
