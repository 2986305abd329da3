// Package finitestate is the lifecycle state machine shared by the long-running components
// the supervisor manages.
package finitestate

import (
	"context"
	"log/slog"
	"time"

	"github.com/robbyt/go-fsm"
)

const (
	StatusNew      = fsm.StatusNew
	StatusBooting  = fsm.StatusBooting
	StatusRunning  = fsm.StatusRunning
	StatusStopping = fsm.StatusStopping
	StatusStopped  = fsm.StatusStopped
	StatusError    = fsm.StatusError
)

// broadcastTimeout bounds delivery of a state change to each subscriber.
const broadcastTimeout = 5 * time.Second

// Machine is the subset of the state machine a component needs to report its lifecycle.
type Machine interface {
	Transition(state string) error
	GetState() string

	// GetStateChan emits every state change until ctx is canceled.
	GetStateChan(ctx context.Context) <-chan string
}

type syncMachine struct {
	*fsm.Machine
}

// GetStateChan delivers updates synchronously so a subscriber still sees Stopped during
// shutdown.
func (m *syncMachine) GetStateChan(ctx context.Context) <-chan string {
	return m.GetStateChanWithOptions(ctx, fsm.WithSyncTimeout(broadcastTimeout))
}

// New creates a machine in StatusNew using the typical supervisor transitions.
func New(handler slog.Handler) (Machine, error) {
	machine, err := fsm.New(handler, StatusNew, fsm.TypicalTransitions)
	if err != nil {
		return nil, err
	}
	return &syncMachine{Machine: machine}, nil
}
