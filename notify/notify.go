// Package notify decouples console logic from how confirmations are asked and
// how status messages are shown.
package notify

import (
	"context"
	"errors"
)

// ErrConfirmationDeclined is returned when the user declines a destructive
// action. It is not a failure and is never announced.
var ErrConfirmationDeclined = errors.New("confirmation declined")

// Level is the severity of a Message.
type Level int

const (
	Success Level = iota
	Info
	Error
)

func (l Level) String() string {
	switch l {
	case Success:
		return "success"
	case Error:
		return "error"
	}
	return "info"
}

// Message is a transient status line shown after an action.
type Message struct {
	Level Level
	Text  string
}

// Prompt describes a destructive action awaiting confirmation.
type Prompt struct {
	Title   string
	Message string
	Confirm string // label of the affirmative choice
}

// Gateway asks for confirmations and shows messages. Confirm may block until
// the user answers and must return early when ctx is done.
type Gateway interface {
	Confirm(ctx context.Context, p Prompt) (bool, error)
	Notify(m Message)
}

// Guard runs fn only after gw confirms p. A declined prompt yields
// ErrConfirmationDeclined without calling fn. A nil gw cannot confirm, so it
// declines.
func Guard(ctx context.Context, gw Gateway, p Prompt, fn func(context.Context) error) error {
	if gw == nil {
		return ErrConfirmationDeclined
	}
	ok, err := gw.Confirm(ctx, p)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConfirmationDeclined
	}
	return fn(ctx)
}

// Outcome announces the result of a mutation: success text on nil, the error
// otherwise, and nothing for a declined confirmation. A nil gw drops the
// message.
func Outcome(gw Gateway, err error, success string) {
	if gw == nil {
		return
	}
	switch {
	case err == nil:
		gw.Notify(Message{Level: Success, Text: success})
	case errors.Is(err, ErrConfirmationDeclined):
	default:
		gw.Notify(Message{Level: Error, Text: err.Error()})
	}
}
