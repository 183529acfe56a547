// Package editor implements the create/edit form lifecycle shared by the admin
// consoles.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/eringen/buildsite/client"
	"github.com/eringen/buildsite/content"
)

// ErrNotOpen is returned by Submit when no draft is open.
var ErrNotOpen = errors.New("editor is not open")

// ErrBusy is returned by Submit while a submission is in progress.
var ErrBusy = errors.New("editor is already submitting")

// State is the lifecycle position of a Panel.
type State int

const (
	Closed State = iota
	Creating
	Editing
	Validating
	Submitting
)

func (s State) String() string {
	switch s {
	case Creating:
		return "creating"
	case Editing:
		return "editing"
	case Validating:
		return "validating"
	case Submitting:
		return "submitting"
	}
	return "closed"
}

// Panel holds one draft being created or edited. Create and Update are the
// remote operations; a Panel never calls them with a draft that has missing
// required fields.
type Panel[D content.Draft] struct {
	Create func(ctx context.Context, d D) error
	Update func(ctx context.Context, id string, d D) error

	mu     sync.Mutex
	state  State
	origin State // Creating or Editing while validating/submitting
	id     string
	draft  D
	err    error
	fields map[string]string
}

// OpenCreate starts a new draft from blank.
func (p *Panel[D]) OpenCreate(blank D) {
	p.open(Creating, "", blank)
}

// OpenEdit starts editing the entity id with its current values.
func (p *Panel[D]) OpenEdit(id string, current D) {
	p.open(Editing, id, current)
}

func (p *Panel[D]) open(s State, id string, d D) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state, p.origin, p.id, p.draft = s, s, id, d
	p.err, p.fields = nil, nil
}

// Close discards the draft.
func (p *Panel[D]) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	var zero D
	p.state, p.origin, p.id, p.draft = Closed, Closed, "", zero
	p.err, p.fields = nil, nil
}

// Edit applies fn to the open draft. It is a no-op unless the panel is
// Creating or Editing.
func (p *Panel[D]) Edit(fn func(d *D)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Creating || p.state == Editing {
		fn(&p.draft)
	}
}

func (p *Panel[D]) Draft() D {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.draft
}

func (p *Panel[D]) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// ID is the entity being edited, empty when creating.
func (p *Panel[D]) ID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.id
}

// Err is the error of the last failed submission.
func (p *Panel[D]) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// FieldErrors maps field names to messages from local validation or from the
// server's validation response.
func (p *Panel[D]) FieldErrors() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]string, len(p.fields))
	for k, v := range p.fields {
		out[k] = v
	}
	return out
}

// Submit validates the draft and sends it. On success the panel closes. On
// failure it returns to Creating or Editing with the draft intact.
func (p *Panel[D]) Submit(ctx context.Context) error {
	p.mu.Lock()
	switch p.state {
	case Creating, Editing:
	case Validating, Submitting:
		p.mu.Unlock()
		return ErrBusy
	default:
		p.mu.Unlock()
		return ErrNotOpen
	}
	p.state = Validating
	draft, id, origin := p.draft, p.id, p.origin

	if missing := draft.Missing(); len(missing) > 0 {
		err := &client.ValidationError{Message: "please fill in the required fields", Fields: missing.Map()}
		p.fail(origin, err)
		p.mu.Unlock()
		return err
	}
	p.state = Submitting
	p.mu.Unlock()

	var err error
	switch {
	case origin == Creating && p.Create != nil:
		err = p.Create(ctx, draft)
	case origin == Editing && p.Update != nil:
		err = p.Update(ctx, id, draft)
	default:
		err = fmt.Errorf("%s: no submit operation configured", origin)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.fail(origin, err)
		return err
	}
	var zero D
	p.state, p.origin, p.id, p.draft = Closed, Closed, "", zero
	p.err, p.fields = nil, nil
	return nil
}

func (p *Panel[D]) fail(origin State, err error) {
	p.state = origin
	p.err = err
	p.fields = nil
	var ve *client.ValidationError
	if errors.As(err, &ve) && len(ve.Fields) > 0 {
		p.fields = ve.Fields
	}
}
