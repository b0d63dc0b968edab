package generation

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/phrazzld/studygen-api/internal/redact"
)

// RelayState is a state of the Relay state machine.
type RelayState int

// Relay states. Idle → Streaming → Flushing → Done, with Aborted reachable
// from Streaming or Flushing.
const (
	StateIdle RelayState = iota
	StateStreaming
	StateFlushing
	StateDone
	StateAborted
)

// String returns the state name used in logs.
func (s RelayState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateFlushing:
		return "flushing"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("RelayState(%d)", int(s))
	}
}

// ChunkSink is the client transport a Relay forwards chunks to.
// WriteChunk must deliver the chunk before returning.
type ChunkSink interface {
	WriteChunk(ctx context.Context, chunk string) error
}

// CommitFunc persists the complete assistant reply.
type CommitFunc func(ctx context.Context, reply string) error

// Relay forwards a streamed model reply to a client while accumulating it,
// then commits the full reply exactly once when the stream ends gracefully.
// An aborted relay never commits, so a partial reply is never stored.
//
// A Relay handles one stream and is driven from a single goroutine.
type Relay struct {
	sink   ChunkSink
	commit CommitFunc
	logger *slog.Logger

	state  RelayState
	reply  strings.Builder
	chunks int
	cause  error
}

// NewRelay creates a relay in StateIdle. The caller must already have stored
// the user turn that prompted this reply.
func NewRelay(sink ChunkSink, commit CommitFunc, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{
		sink:   sink,
		commit: commit,
		logger: logger.With("component", "stream_relay"),
		state:  StateIdle,
	}
}

// State returns the current state.
func (r *Relay) State() RelayState {
	return r.state
}

// Reply returns the text accumulated so far.
func (r *Relay) Reply() string {
	return r.reply.String()
}

// Cause returns the error that aborted the relay, if any.
func (r *Relay) Cause() error {
	return r.cause
}

// Start moves the relay from Idle to Streaming.
func (r *Relay) Start() error {
	if r.state != StateIdle {
		return r.invalid("start")
	}
	r.state = StateStreaming
	return nil
}

// OnChunk forwards chunk to the sink and appends it to the reply.
// A cancelled context or a sink failure aborts the relay.
func (r *Relay) OnChunk(ctx context.Context, chunk string) error {
	if r.state != StateStreaming {
		return r.invalid("chunk")
	}
	if err := ctx.Err(); err != nil {
		r.abort(err)
		return fmt.Errorf("relay aborted: %w", err)
	}
	if err := r.sink.WriteChunk(ctx, chunk); err != nil {
		r.abort(err)
		return fmt.Errorf("relay aborted: client write failed: %w", err)
	}
	r.reply.WriteString(chunk)
	r.chunks++
	return nil
}

// OnEnd handles a graceful end of stream. The relay enters Flushing, commits
// the full reply once, and finishes in Done. The commit runs on a context
// detached from ctx's cancellation so a client leaving while the reply is
// being stored does not lose it. A failed commit leaves the relay Aborted.
func (r *Relay) OnEnd(ctx context.Context) error {
	if r.state != StateStreaming {
		return r.invalid("end")
	}
	r.state = StateFlushing

	reply := r.reply.String()
	if strings.TrimSpace(reply) == "" {
		err := fmt.Errorf("%w: stream ended without content", ErrModelInvocation)
		r.abort(err)
		return err
	}

	if err := r.commit(context.WithoutCancel(ctx), reply); err != nil {
		wrapped := fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
		r.abort(wrapped)
		return wrapped
	}

	r.state = StateDone
	r.logger.Debug("stream relay completed",
		"chunks", r.chunks,
		"reply_length", len(reply))
	return nil
}

// OnAbort handles an ungraceful end. Nothing is committed.
func (r *Relay) OnAbort(cause error) error {
	if r.state != StateStreaming && r.state != StateFlushing {
		return r.invalid("abort")
	}
	r.abort(cause)
	return nil
}

// Run drives the relay from a model stream until it ends or aborts. Returning
// early from the range loop stops the model stream. If ctx is done when the
// stream ends, the relay aborts instead of committing. Stream errors match
// ErrModelInvocation unless they were caused by ctx being cancelled.
func (r *Relay) Run(ctx context.Context, stream iter.Seq2[string, error]) error {
	if err := r.Start(); err != nil {
		return err
	}

	for chunk, err := range stream {
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				r.abort(ctxErr)
				return fmt.Errorf("relay aborted: %w", ctxErr)
			}
			if !errors.Is(err, ErrModelInvocation) {
				err = fmt.Errorf("%w: %w", ErrModelInvocation, err)
			}
			r.abort(err)
			return err
		}
		if err := r.OnChunk(ctx, chunk); err != nil {
			return err
		}
	}

	// A client that left before the stream ended gets no stored reply.
	if err := ctx.Err(); err != nil {
		r.abort(err)
		return fmt.Errorf("relay aborted: %w", err)
	}

	return r.OnEnd(ctx)
}

func (r *Relay) abort(cause error) {
	from := r.state
	r.state = StateAborted
	r.cause = cause
	r.logger.Warn("stream relay aborted",
		"from_state", from.String(),
		"chunks", r.chunks,
		"error", redact.Error(cause))
}

func (r *Relay) invalid(event string) error {
	return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, event, r.state)
}
