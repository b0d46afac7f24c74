// Package config resolves, parses, merges, and defaults hark configuration.
package config

// Command pairs one keyphrase with the shell command it triggers.
// Commands are identified by list position; duplicate messages are legal
// and the earliest best-scoring entry wins.
type Command struct {
	Message string `toml:"message"`
	Command string `toml:"command"`
}

// Config is the fully merged runtime configuration.
type Config struct {
	LibraryPath    string
	ModelPath      string
	ScorerPath     string
	BeamWidth      int
	MatchThreshold float64
	DebugAudioDump bool
	Commands       []Command

	// SourcePaths records the files that produced this configuration,
	// lowest precedence first. A refresh re-resolves the cascade from the
	// same CLI paths and the current environment, so the set can differ
	// when XDG candidate files appear or disappear.
	SourcePaths []string
}

// DefaultBeamWidth applies when no source file sets beam-width.
const DefaultBeamWidth = 1

// DefaultMatchThreshold applies when no source file sets match-threshold.
const DefaultMatchThreshold = 0.3

// Default returns the configuration used before any source file is merged.
func Default() Config {
	return Config{
		BeamWidth:      DefaultBeamWidth,
		MatchThreshold: DefaultMatchThreshold,
	}
}

// fileConfig is the shape of a single TOML source file. Pointer fields
// distinguish unset from zero so that later files override earlier ones
// field-by-field.
type fileConfig struct {
	LibraryPath    *string   `toml:"library-path"`
	ModelPath      *string   `toml:"model-path"`
	ScorerPath     *string   `toml:"scorer-path"`
	BeamWidth      *int      `toml:"beam-width"`
	MatchThreshold *float64  `toml:"match-threshold"`
	DebugAudioDump *bool     `toml:"debug-audio-dump"`
	Commands       []Command `toml:"commands"`
}
