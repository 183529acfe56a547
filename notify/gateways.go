package notify

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Terminal confirms by reading y/n answers from in and prints messages to out.
type Terminal struct {
	mu      sync.Mutex
	in      *bufio.Reader
	out     io.Writer
	pending chan answer // read still in flight after a cancelled prompt
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

type answer struct {
	line string
	err  error
}

func (t *Terminal) Confirm(ctx context.Context, p Prompt) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	label := p.Confirm
	if label == "" {
		label = "confirm"
	}
	if p.Title != "" {
		fmt.Fprintln(t.out, p.Title)
	}
	fmt.Fprintf(t.out, "%s [%s? y/N] ", p.Message, label)

	ch := t.pending
	if ch == nil {
		ch = make(chan answer, 1)
		go func() {
			line, err := t.in.ReadString('\n')
			ch <- answer{line, err}
		}()
	}
	select {
	case <-ctx.Done():
		t.pending = ch
		return false, ctx.Err()
	case a := <-ch:
		t.pending = nil
		if a.err != nil && a.err != io.EOF {
			return false, a.err
		}
		switch strings.ToLower(strings.TrimSpace(a.line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	}
}

func (t *Terminal) Notify(m Message) {
	fmt.Fprintf(t.out, "[%s] %s\n", m.Level, m.Text)
}

// Logger writes messages to a slog.Logger and answers every prompt with a
// fixed policy. It suits non-interactive runs such as scripts.
type Logger struct {
	Log    *slog.Logger
	Assume bool
}

func (l Logger) Confirm(_ context.Context, p Prompt) (bool, error) {
	l.logger().Info("confirmation", "title", p.Title, "message", p.Message, "assumed", l.Assume)
	return l.Assume, nil
}

func (l Logger) Notify(m Message) {
	if m.Level == Error {
		l.logger().Error(m.Text)
		return
	}
	l.logger().Info(m.Text, "level", m.Level.String())
}

func (l Logger) logger() *slog.Logger {
	if l.Log == nil {
		return slog.Default()
	}
	return l.Log
}

// Recorder answers prompts with Answer and keeps everything it saw.
type Recorder struct {
	mu       sync.Mutex
	Answer   bool
	Prompts  []Prompt
	Messages []Message
}

func (r *Recorder) Confirm(_ context.Context, p Prompt) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Prompts = append(r.Prompts, p)
	return r.Answer, nil
}

func (r *Recorder) Notify(m Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, m)
}

// Last returns the most recent message, if any.
func (r *Recorder) Last() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Messages) == 0 {
		return Message{}, false
	}
	return r.Messages[len(r.Messages)-1], true
}
