package streamable

import (
	"log/slog"

	"github.com/robbyt/go-fsm"
)

// Lifecycle states of one request/response exchange.
const (
	StateIdle              = "idle"
	StateReceiving         = "receiving"
	StateStreaming         = "streaming"
	StateImmediateBuffered = "immediate_buffered"
	StateFinalized         = "finalized"
)

// Transitions lists the allowed moves between states. Streaming means the engine is
// attached but has produced no output yet.
var Transitions = map[string][]string{
	StateIdle:              {StateReceiving, StateFinalized},
	StateReceiving:         {StateStreaming, StateImmediateBuffered, StateFinalized},
	StateStreaming:         {StateImmediateBuffered, StateFinalized},
	StateImmediateBuffered: {StateFinalized},
	StateFinalized:         {},
}

func newMachine(handler slog.Handler) (*fsm.Machine, error) {
	return fsm.New(handler, StateIdle, Transitions)
}

// State returns the current lifecycle state.
func (t *Transport) State() string {
	return t.fsm.GetState()
}

func (t *Transport) moveTo(state string) {
	current := t.fsm.GetState()
	if current == state {
		return
	}
	if err := t.fsm.Transition(state); err != nil {
		t.logger.Debug("Ignoring state transition", "from", current, "to", state, "error", err)
	}
}
