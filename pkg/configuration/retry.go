package configuration

import (
	"errors"
	"fmt"
	"time"

	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
)

// ErrRetryArmed is returned when a composition retry cycle is already running.
var ErrRetryArmed = errors.New("composition data retry already armed")

// RetryPhase is the phase of the retry token.
type RetryPhase uint8

const (
	RetryIdle RetryPhase = iota
	RetryArmed
)

// String returns the phase name.
func (p RetryPhase) String() string {
	if p == RetryArmed {
		return "ARMED"
	}
	return "IDLE"
}

// RetryState is the composition data retry token. There is one per
// controller. Generation changes on every arm so that ticks scheduled for
// an earlier cycle can be recognized and dropped.
type RetryState struct {
	Phase      RetryPhase
	Target     mesh.Address
	Attempt    int // retries sent so far
	Deadline   time.Time
	Generation uint64
}

// Arm starts a cycle for target. Arming an armed token is rejected.
func (r RetryState) Arm(target mesh.Address, deadline time.Time) (RetryState, error) {
	if r.Phase == RetryArmed {
		return r, fmt.Errorf("%w: waiting on %s", ErrRetryArmed, r.Target)
	}
	return RetryState{
		Phase:      RetryArmed,
		Target:     target,
		Deadline:   deadline,
		Generation: r.Generation + 1,
	}, nil
}

// Tick consumes one retry. It returns the next state and whether the
// budget of maxRetries is exhausted, in which case the token is idle.
func (r RetryState) Tick(maxRetries int, nextDeadline time.Time) (RetryState, bool) {
	attempt := r.Attempt + 1
	if attempt > maxRetries {
		return r.Cancel(), true
	}
	r.Attempt = attempt
	r.Deadline = nextDeadline
	return r, false
}

// Cancel returns the idle token, keeping the generation.
func (r RetryState) Cancel() RetryState {
	return RetryState{Generation: r.Generation}
}

// Current reports whether a tick scheduled for generation is still valid.
func (r RetryState) Current(generation uint64) bool {
	return r.Phase == RetryArmed && r.Generation == generation
}

// String renders the token.
func (r RetryState) String() string {
	if r.Phase == RetryIdle {
		return "Idle"
	}
	return fmt.Sprintf("Armed(%s, attempt %d, gen %d)", r.Target, r.Attempt, r.Generation)
}
