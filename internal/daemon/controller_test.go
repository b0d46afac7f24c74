package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harkd/hark/internal/config"
	"github.com/harkd/hark/internal/engine"
	"github.com/harkd/hark/internal/fsm"
	"github.com/harkd/hark/internal/session"
)

type stubHandle struct {
	engine *stubEngine
	closes int
}

func (h *stubHandle) Infer(_ []int16) (string, error) {
	if h.engine.inferErr != nil {
		return "", h.engine.inferErr
	}
	return h.engine.text, nil
}

func (h *stubHandle) Close() error {
	h.closes++
	h.engine.releases++
	return nil
}

type stubEngine struct {
	loads    int
	releases int
	loadErr  error
	text     string
	inferErr error
}

func (e *stubEngine) Load(_ engine.Params) (engine.Handle, error) {
	e.loads++
	if e.loadErr != nil {
		return nil, e.loadErr
	}
	return &stubHandle{engine: e}, nil
}

type stubListener struct {
	samples []int16
	err     error
	calls   int
}

func (l *stubListener) CaptureUtterance(_ context.Context) ([]int16, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return l.samples, nil
}

type stubSpawner struct {
	commands []string
	spawned  chan string
	err      error
}

func newStubSpawner() *stubSpawner {
	return &stubSpawner{spawned: make(chan string, 8)}
}

func (s *stubSpawner) Spawn(command string) error {
	s.commands = append(s.commands, command)
	s.spawned <- command
	if s.err != nil {
		return s.err
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const lightsConfig = `
model-path = "/models/english.pbmm"
match-threshold = 0.3

[[commands]]
message = "turn on the lights"
command = "lights-on"

[[commands]]
message = "turn off the lights"
command = "lights-off"
`

// newTestStore isolates XDG lookups and loads a store from one temp file,
// returning the store and the file path for later rewrites.
func newTestStore(t *testing.T, content string) (*config.Store, string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_DIRS", filepath.Join(t.TempDir(), "xdg-system"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(t.TempDir(), "xdg-user"))
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "hark.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	store := config.NewStore([]string{path})
	_, err := store.Load()
	require.NoError(t, err)
	return store, path
}

func newTestController(t *testing.T, eng *stubEngine, listener *stubListener, spawner *stubSpawner) (*Controller, *config.Store, string) {
	t.Helper()
	store, path := newTestStore(t, lightsConfig)

	sess := session.New(testLogger(), eng)
	require.NoError(t, sess.EnsureLoaded(store.Current()))

	return New(testLogger(), store, sess, listener, spawner), store, path
}

func TestListenCycleDispatchesBestMatch(t *testing.T) {
	eng := &stubEngine{text: "turn on the light"}
	listener := &stubListener{samples: []int16{1, 2, 3}}
	spawner := newStubSpawner()
	c, _, _ := newTestController(t, eng, listener, spawner)

	require.NoError(t, c.listenCycle(context.Background()))
	require.Equal(t, 1, listener.calls)
	require.Equal(t, []string{"lights-on"}, spawner.commands)
}

func TestListenCycleLogsScorePerCommand(t *testing.T) {
	eng := &stubEngine{text: "turn on the light"}
	store, _ := newTestStore(t, lightsConfig)

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sess := session.New(logger, eng)
	require.NoError(t, sess.EnsureLoaded(store.Current()))
	c := New(logger, store, sess, &stubListener{samples: []int16{1}}, newStubSpawner())

	require.NoError(t, c.listenCycle(context.Background()))

	var scored []string
	for _, line := range strings.Split(logs.String(), "\n") {
		if line == "" {
			continue
		}
		var record struct {
			Msg     string `json:"msg"`
			Message string `json:"message"`
		}
		require.NoError(t, json.Unmarshal([]byte(line), &record))
		if record.Msg == "command match score" {
			scored = append(scored, record.Message)
		}
	}
	require.Equal(t, []string{"turn on the lights", "turn off the lights"}, scored)
}

func TestListenCycleNoMatchSpawnsNothing(t *testing.T) {
	eng := &stubEngine{text: "what time is it"}
	spawner := newStubSpawner()
	c, _, _ := newTestController(t, eng, &stubListener{samples: []int16{1}}, spawner)

	require.NoError(t, c.listenCycle(context.Background()))
	require.Empty(t, spawner.commands)
}

func TestListenCycleInferenceFailure(t *testing.T) {
	eng := &stubEngine{inferErr: &engine.InferenceError{Err: errors.New("boom")}}
	spawner := newStubSpawner()
	c, store, _ := newTestController(t, eng, &stubListener{samples: []int16{1}}, spawner)
	before := store.Current()

	err := c.listenCycle(context.Background())
	require.Error(t, err)
	var inferErr *engine.InferenceError
	require.ErrorAs(t, err, &inferErr)
	require.Empty(t, spawner.commands)
	require.Equal(t, before, store.Current())
}

func TestListenCycleCaptureFailurePassesThrough(t *testing.T) {
	captureErr := errors.New("microphone unplugged")
	spawner := newStubSpawner()
	c, _, _ := newTestController(t, &stubEngine{}, &stubListener{err: captureErr}, spawner)

	err := c.listenCycle(context.Background())
	require.ErrorIs(t, err, captureErr)
	require.Empty(t, spawner.commands)
}

func TestListenCycleSpawnFailureIsNotFatal(t *testing.T) {
	eng := &stubEngine{text: "turn off the lights"}
	spawner := newStubSpawner()
	spawner.err = errors.New("fork failed")
	c, _, _ := newTestController(t, eng, &stubListener{samples: []int16{1}}, spawner)

	require.NoError(t, c.listenCycle(context.Background()))
	require.Equal(t, []string{"lights-off"}, spawner.commands)
}

func TestReloadUnchangedModelPerformsNoEngineLoad(t *testing.T) {
	eng := &stubEngine{}
	c, _, path := newTestController(t, eng, &stubListener{}, newStubSpawner())
	require.Equal(t, 1, eng.loads)

	// Same engine parameters, different command list.
	require.NoError(t, os.WriteFile(path, []byte(`
model-path = "/models/english.pbmm"

[[commands]]
message = "lock the door"
command = "lock"
`), 0o644))

	require.NoError(t, c.reloadCycle())
	require.Equal(t, 1, eng.loads)
	require.Equal(t, 0, eng.releases)
	require.Equal(t, "lock the door", c.store.Current().Commands[0].Message)
}

func TestReloadChangedModelReleasesThenLoadsOnce(t *testing.T) {
	eng := &stubEngine{}
	c, _, path := newTestController(t, eng, &stubListener{}, newStubSpawner())

	require.NoError(t, os.WriteFile(path, []byte(`
model-path = "/models/german.pbmm"

[[commands]]
message = "turn on the lights"
command = "lights-on"
`), 0o644))

	require.NoError(t, c.reloadCycle())
	require.Equal(t, 2, eng.loads)
	require.Equal(t, 1, eng.releases)
}

func TestReloadFailureKeepsConfigAndEngine(t *testing.T) {
	eng := &stubEngine{}
	c, store, path := newTestController(t, eng, &stubListener{}, newStubSpawner())
	before := store.Current()

	require.NoError(t, os.WriteFile(path, []byte("model-path = [broken"), 0o644))

	err := c.reloadCycle()
	require.Error(t, err)
	require.Equal(t, before, store.Current())
	require.Equal(t, 1, eng.loads)
	require.Equal(t, 0, eng.releases)
	require.True(t, c.session.Loaded())
}

func TestRunOnceTerminatesAndReleasesHandle(t *testing.T) {
	eng := &stubEngine{text: "turn on the lights"}
	spawner := newStubSpawner()
	c, _, _ := newTestController(t, eng, &stubListener{samples: []int16{1}}, spawner)

	require.NoError(t, c.RunOnce(context.Background()))
	require.Equal(t, fsm.StateTerminated, c.State())
	require.Equal(t, 1, eng.releases)
	require.Equal(t, []string{"lights-on"}, spawner.commands)
}

func TestRunServesTriggersUntilCancelled(t *testing.T) {
	eng := &stubEngine{text: "turn on the lights"}
	spawner := newStubSpawner()
	c, _, _ := newTestController(t, eng, &stubListener{samples: []int16{1}}, spawner)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	c.Trigger(TriggerListen)
	select {
	case cmd := <-spawner.spawned:
		require.Equal(t, "lights-on", cmd)
	case <-time.After(5 * time.Second):
		t.Fatal("listen cycle did not dispatch")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("controller did not terminate")
	}

	require.Equal(t, fsm.StateTerminated, c.State())
	require.Equal(t, 1, eng.releases)
}

func TestTriggerCoalescesToQueueOfOne(t *testing.T) {
	c, _, _ := newTestController(t, &stubEngine{}, &stubListener{}, newStubSpawner())

	// Nothing is draining the queue, so only the first trigger is kept.
	c.Trigger(TriggerListen)
	c.Trigger(TriggerReload)
	c.Trigger(TriggerListen)

	require.Len(t, c.triggers, 1)
	require.Equal(t, TriggerListen, <-c.triggers)
}
