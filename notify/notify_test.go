package notify

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardDeclinedSkipsAction(t *testing.T) {
	rec := &Recorder{Answer: false}
	called := false
	err := Guard(context.Background(), rec, Prompt{Message: "Delete?"}, func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrConfirmationDeclined)
	assert.False(t, called)
	assert.Len(t, rec.Prompts, 1)
}

func TestGuardConfirmedRunsAction(t *testing.T) {
	rec := &Recorder{Answer: true}
	boom := errors.New("boom")
	err := Guard(context.Background(), rec, Prompt{}, func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestOutcome(t *testing.T) {
	rec := &Recorder{}
	Outcome(rec, nil, "Saved")
	Outcome(rec, ErrConfirmationDeclined, "Saved")
	Outcome(rec, errors.New("network down"), "Saved")

	require.Len(t, rec.Messages, 2)
	assert.Equal(t, Message{Level: Success, Text: "Saved"}, rec.Messages[0])
	assert.Equal(t, Error, rec.Messages[1].Level)
}

func TestNilGateway(t *testing.T) {
	called := false
	err := Guard(context.Background(), nil, Prompt{Message: "Delete?"}, func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrConfirmationDeclined)
	assert.False(t, called)

	assert.NotPanics(t, func() {
		Outcome(nil, nil, "Saved")
		Outcome(nil, errors.New("network down"), "Saved")
	})
}

func TestTerminalConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		term := NewTerminal(strings.NewReader(tt.input), &out)
		got, err := term.Confirm(context.Background(), Prompt{Message: "Delete application?", Confirm: "delete"})
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Contains(t, out.String(), "Delete application?")
	}
}

func TestTerminalConfirmHonoursContext(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	term := NewTerminal(pr, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	ok, err := term.Confirm(ctx, Prompt{Message: "Delete?"})
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
