// Package daemon implements the trigger-driven control loop: when to
// listen, when to reload configuration, and when to terminate.
package daemon

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/harkd/hark/internal/audio"
	"github.com/harkd/hark/internal/config"
	"github.com/harkd/hark/internal/dispatch"
	"github.com/harkd/hark/internal/fsm"
	"github.com/harkd/hark/internal/matcher"
	"github.com/harkd/hark/internal/session"
)

// Trigger is one wake-up request delivered to the controller.
type Trigger int

const (
	TriggerListen Trigger = iota + 1
	TriggerReload
)

// Listener captures one complete utterance from the microphone.
type Listener interface {
	CaptureUtterance(ctx context.Context) ([]int16, error)
}

// Controller owns the configuration store and the recognition session and
// serializes all access to them: exactly one listen-or-reload cycle runs
// at a time.
type Controller struct {
	logger   *slog.Logger
	store    *config.Store
	session  *session.Session
	listener Listener
	spawner  dispatch.Spawner

	state    fsm.State
	triggers chan Trigger
}

// New wires a controller. The trigger channel has capacity one so that
// signals arriving mid-cycle coalesce instead of queueing.
func New(
	logger *slog.Logger,
	store *config.Store,
	sess *session.Session,
	listener Listener,
	spawner dispatch.Spawner,
) *Controller {
	return &Controller{
		logger:   logger,
		store:    store,
		session:  sess,
		listener: listener,
		spawner:  spawner,
		state:    fsm.StateSleeping,
		triggers: make(chan Trigger, 1),
	}
}

// State returns the current state-machine state.
func (c *Controller) State() fsm.State {
	return c.state
}

// Trigger posts a wake-up. A trigger arriving while a cycle is active is
// dropped once the queue of one is full.
func (c *Controller) Trigger(t Trigger) {
	select {
	case c.triggers <- t:
	default:
	}
}

// Run blocks serving triggers until ctx is cancelled, then releases the
// engine handle. Cancellation during a cycle is honored at the next
// checkpoint; cycles are never preempted mid-flight.
func (c *Controller) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return
		case t := <-c.triggers:
			switch t {
			case TriggerListen:
				c.transition(fsm.EventListen)
				if err := c.listenCycle(ctx); err != nil {
					c.logger.Error("listen cycle failed", "error", err.Error())
				}
				c.transition(fsm.EventDone)
			case TriggerReload:
				c.transition(fsm.EventReload)
				if err := c.reloadCycle(); err != nil {
					c.logger.Error("reload failed; previous state retained", "error", err.Error())
				}
				c.transition(fsm.EventDone)
			default:
				c.logger.Error("unknown trigger", "trigger", int(t))
			}
		}
	}
}

// RunOnce executes a single listen cycle and terminates (one-shot mode).
func (c *Controller) RunOnce(ctx context.Context) error {
	c.transition(fsm.EventListen)
	err := c.listenCycle(ctx)
	c.shutdown()
	return err
}

// listenCycle captures one utterance, transcribes it, matches it against
// the active command list, and dispatches the match.
func (c *Controller) listenCycle(ctx context.Context) error {
	cfg := c.store.Current()

	samples, err := c.listener.CaptureUtterance(ctx)
	if err != nil {
		return fmt.Errorf("capture utterance: %w", err)
	}

	if cfg.DebugAudioDump {
		if path, err := audio.DumpUtterance(samples); err != nil {
			c.logger.Warn("audio dump failed", "error", err.Error())
		} else {
			c.logger.Debug("utterance dumped", "path", path)
		}
	}

	text, err := c.session.Transcribe(samples)
	if err != nil {
		return err
	}
	c.logger.Info("utterance transcribed", "text", text, "samples", len(samples))

	for i, cmd := range cfg.Commands {
		c.logger.Debug("command match score",
			"message", cmd.Message,
			"index", i,
			"distance", matcher.Distance(text, cmd.Message),
		)
	}

	match, ok := matcher.SelectBest(text, cfg.Commands, cfg.MatchThreshold)
	if !ok {
		c.logger.Info("no command matched", "text", text, "threshold", cfg.MatchThreshold)
		return nil
	}
	c.logger.Info("command matched",
		"message", match.Command.Message,
		"index", match.Index,
		"distance", match.Distance,
	)

	if err := c.spawner.Spawn(match.Command.Command); err != nil {
		c.logger.Error("dispatch failed", "command", match.Command.Command, "error", err.Error())
	}
	return nil
}

// reloadCycle refreshes the configuration, then reloads the engine only if
// the handle parameters changed. Config and engine each swap atomically: a
// refresh failure keeps the previous configuration, and an unchanged
// parameter tuple keeps the live handle untouched.
func (c *Controller) reloadCycle() error {
	cfg, err := c.store.Refresh()
	if err != nil {
		return err
	}
	c.logger.Info("configuration reloaded",
		"commands", len(cfg.Commands),
		"model", cfg.ModelPath,
	)
	return c.session.EnsureLoaded(cfg)
}

// shutdown releases the engine handle and parks the state machine.
func (c *Controller) shutdown() {
	c.transition(fsm.EventShutdown)
	if err := c.session.Close(); err != nil {
		c.logger.Warn("release recognition model", "error", err.Error())
	}
	c.logger.Info("terminated")
}

// transition applies one state-machine event, logging the impossible case.
func (c *Controller) transition(event fsm.Event) {
	next, err := fsm.Transition(c.state, event)
	if err != nil {
		c.logger.Error("state transition rejected", "state", string(c.state), "event", string(event))
		return
	}
	c.state = next
}
