package config

// Store owns the active configuration and knows how to reload it from the
// same CLI path set and cascade. The daemon controller is its only driver; all
// calls arrive from a single goroutine, so the store carries no locking.
type Store struct {
	cliPaths []string
	current  Config
	loaded   bool
}

// NewStore creates a store for the given explicit CLI config paths.
// No file is read until Load is called.
func NewStore(cliPaths []string) *Store {
	return &Store{cliPaths: append([]string(nil), cliPaths...)}
}

// Load performs the initial merge and makes the result current.
func (s *Store) Load() (Config, error) {
	cfg, err := Load(s.cliPaths)
	if err != nil {
		return Config{}, err
	}
	s.current = cfg
	s.loaded = true
	return cfg, nil
}

// Refresh re-resolves and re-reads the source set. On failure the current
// configuration is left untouched and the error is returned for logging;
// a bad reload is never partially applied.
func (s *Store) Refresh() (Config, error) {
	cfg, err := Load(s.cliPaths)
	if err != nil {
		return Config{}, err
	}
	s.current = cfg
	return cfg, nil
}

// Current returns the last successfully loaded configuration.
func (s *Store) Current() Config {
	return s.current
}

// Loaded reports whether an initial Load has succeeded.
func (s *Store) Loaded() bool {
	return s.loaded
}
