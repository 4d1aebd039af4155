package forms

import (
	"context"
	"errors"
	"fmt"
)

// Phase is where a form submission currently is.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseSubmitting
	PhaseSuccess
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseValidating:
		return "validating"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSuccess:
		return "success"
	case PhaseFailed:
		return "failed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

type Action string

const (
	ActionRegister Action = "register"
	ActionLogin    Action = "login"
	ActionProperty Action = "property"
	ActionForgot   Action = "forgot"
	ActionReset    Action = "reset"
	ActionMarkSold Action = "mark_sold"
	ActionAdmin    Action = "admin"
)

type labels struct{ idle, busy string }

var buttonLabels = map[Action]labels{
	ActionRegister: {"Register", "Registering..."},
	ActionLogin:    {"Login", "Logging in..."},
	ActionProperty: {"Submit Property", "Uploading..."},
	ActionForgot:   {"Send Link", "Sending..."},
	ActionReset:    {"Reset Password", "Resetting..."},
	ActionMarkSold: {"Mark Sold", "Saving..."},
	ActionAdmin:    {"Confirm", "Working..."},
}

// Label is the submit button text for the action in the given phase.
func Label(a Action, p Phase) string {
	l, ok := buttonLabels[a]
	if !ok {
		l = labels{"Submit", "Submitting..."}
	}
	if p == PhaseSubmitting {
		return l.busy
	}
	return l.idle
}

// ErrInFlight refuses a submission while the same form is still running.
var ErrInFlight = errors.New("request already in progress")

// ValidationError is a local check failure. Nothing was sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// Guard hands out the per-session in-flight slot for an action.
type Guard interface {
	Acquire(ctx context.Context, action Action) (release func(), ok bool, err error)
}

type GuardFunc func(ctx context.Context, action Action) (func(), bool, error)

func (f GuardFunc) Acquire(ctx context.Context, action Action) (func(), bool, error) {
	return f(ctx, action)
}

type Form interface {
	Action() Action
	Validate() error
}

// Run drives one submission: validate, take the guard, submit, release.
// A validation failure leaves the form idle and submit is never called.
// The guard is released on every path once acquired.
func Run(ctx context.Context, guard Guard, form Form, submit func(context.Context) error) (Phase, error) {
	if err := form.Validate(); err != nil {
		return PhaseIdle, err
	}

	release, ok, err := guard.Acquire(ctx, form.Action())
	if err != nil {
		return PhaseFailed, err
	}
	if !ok {
		return PhaseIdle, ErrInFlight
	}
	defer release()

	if err := submit(ctx); err != nil {
		return PhaseFailed, err
	}
	return PhaseSuccess, nil
}
