package fsm

import "fmt"

type State string

type Event string

const (
	StateSleeping   State = "sleeping"
	StateListening  State = "listening"
	StateReloading  State = "reloading"
	StateTerminated State = "terminated"
)

const (
	EventListen   Event = "listen"
	EventReload   Event = "reload"
	EventDone     Event = "done"
	EventShutdown Event = "shutdown"
)

func Transition(current State, event Event) (State, error) {
	if event == EventShutdown {
		return StateTerminated, nil
	}

	switch current {
	case StateSleeping:
		switch event {
		case EventListen:
			return StateListening, nil
		case EventReload:
			return StateReloading, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateListening:
		switch event {
		case EventDone:
			return StateSleeping, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateReloading:
		switch event {
		case EventDone:
			return StateSleeping, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateTerminated:
		return current, invalidTransition(current, event)
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
