package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

// Load resolves the candidate path set for cliPaths and merges every
// readable file in ascending precedence order. XDG-derived paths that do
// not exist are skipped; an explicit CLI path that cannot be read is an
// error, as is any file that fails to parse or validate. After the merge,
// model-path and a non-empty command list must be present.
func Load(cliPaths []string) (Config, error) {
	paths := CandidatePaths(cliPaths)

	explicit := make(map[string]struct{}, len(cliPaths))
	for _, p := range cliPaths {
		explicit[p] = struct{}{}
	}

	cfg := Default()
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			if _, required := explicit[path]; !required && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, &UnreadableError{Path: path, Err: err}
		}

		var file fileConfig
		if err := toml.Unmarshal(raw, &file); err != nil {
			return Config{}, &MalformedError{Path: path, Err: err}
		}
		if err := validateFile(file); err != nil {
			return Config{}, &MalformedError{Path: path, Err: err}
		}

		merge(&cfg, file)
	}

	if cfg.ModelPath == "" {
		return Config{}, &MissingFieldError{Field: "model-path"}
	}
	if len(cfg.Commands) == 0 {
		return Config{}, &MissingFieldError{Field: "commands"}
	}

	cfg.SourcePaths = paths
	return cfg, nil
}

// merge applies one source file on top of cfg. Every set field overrides
// the previous value wholesale; commands in particular replace the whole
// list rather than appending to it.
func merge(cfg *Config, file fileConfig) {
	if file.LibraryPath != nil {
		cfg.LibraryPath = *file.LibraryPath
	}
	if file.ModelPath != nil {
		cfg.ModelPath = *file.ModelPath
	}
	if file.ScorerPath != nil {
		cfg.ScorerPath = *file.ScorerPath
	}
	if file.BeamWidth != nil {
		cfg.BeamWidth = *file.BeamWidth
	}
	if file.MatchThreshold != nil {
		cfg.MatchThreshold = *file.MatchThreshold
	}
	if file.DebugAudioDump != nil {
		cfg.DebugAudioDump = *file.DebugAudioDump
	}
	if file.Commands != nil {
		cfg.Commands = append([]Command(nil), file.Commands...)
	}
}

// validateFile enforces per-file field invariants.
func validateFile(file fileConfig) error {
	if file.BeamWidth != nil && *file.BeamWidth < 1 {
		return fmt.Errorf("beam-width must be >= 1, got %d", *file.BeamWidth)
	}
	if file.MatchThreshold != nil && (*file.MatchThreshold <= 0 || *file.MatchThreshold > 1) {
		return fmt.Errorf("match-threshold must be in (0, 1], got %v", *file.MatchThreshold)
	}
	for i, cmd := range file.Commands {
		if cmd.Message == "" {
			return fmt.Errorf("commands[%d]: message must not be empty", i)
		}
		if cmd.Command == "" {
			return fmt.Errorf("commands[%d]: command must not be empty", i)
		}
	}
	return nil
}
