package dialog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type State string

const (
	StateIdle       State = "idle"
	StateComposing  State = "composing"
	StateSubmitting State = "submitting"
	StateError      State = "error"
)

// Screen names a recording form whose draft is persisted.
type Screen string

const (
	ScreenSale    Screen = "sale"
	ScreenRestock Screen = "restock"
)

func (s Screen) Valid() bool { return s == ScreenSale || s == ScreenRestock }

type Intent string

const (
	IntentOpen    Intent = "open"
	IntentEdit    Intent = "edit"
	IntentSubmit  Intent = "submit"
	IntentSucceed Intent = "succeed"
	IntentFail    Intent = "fail"
	IntentCancel  Intent = "cancel"
	IntentDismiss Intent = "dismiss"
)

var ErrInvalidTransition = errors.New("dialog: invalid transition")

var transitions = map[State]map[Intent]State{
	StateIdle: {
		IntentOpen: StateComposing,
	},
	StateComposing: {
		IntentEdit:   StateComposing,
		IntentSubmit: StateSubmitting,
		IntentCancel: StateIdle,
	},
	StateSubmitting: {
		IntentSucceed: StateIdle,
		IntentFail:    StateError,
	},
	StateError: {
		IntentEdit:    StateComposing,
		IntentDismiss: StateComposing,
		IntentSubmit:  StateSubmitting,
		IntentCancel:  StateIdle,
	},
}

// Next returns the state reached from s on intent i.
func Next(s State, i Intent) (State, error) {
	if to, ok := transitions[s][i]; ok {
		return to, nil
	}
	return s, fmt.Errorf("%s on %s: %w", i, s, ErrInvalidTransition)
}

type Payload map[string]any

type Draft struct {
	UserID    uuid.UUID `json:"user_id"`
	Screen    Screen    `json:"screen"`
	State     State     `json:"state"`
	Payload   Payload   `json:"payload"`
	Message   string    `json:"message,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Apply moves the draft along intent i. Edits replace the payload when one is
// given; reaching idle clears both payload and message.
func (d Draft) Apply(i Intent, payload Payload, message string) (Draft, error) {
	to, err := Next(d.State, i)
	if err != nil {
		return d, err
	}
	d.State = to
	switch {
	case to == StateIdle:
		d.Payload = Payload{}
		d.Message = ""
	case to == StateError:
		d.Message = message
	default:
		d.Message = ""
	}
	if payload != nil && to != StateIdle {
		d.Payload = payload
	}
	return d, nil
}

type Store interface {
	// Get never fails on a missing row: it returns an idle, empty draft.
	Get(ctx context.Context, userID uuid.UUID, screen Screen) (*Draft, error)
	Set(ctx context.Context, d Draft) error
	Reset(ctx context.Context, userID uuid.UUID, screen Screen) error
}
