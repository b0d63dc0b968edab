package generation

import (
	"context"
	"errors"
	"iter"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink captures forwarded chunks. failAt makes the Nth write (1-based)
// fail, and onWrite runs after each successful write.
type recordingSink struct {
	mu      sync.Mutex
	chunks  []string
	failAt  int
	onWrite func(n int)
}

func (s *recordingSink) WriteChunk(ctx context.Context, chunk string) error {
	s.mu.Lock()
	n := len(s.chunks) + 1
	if s.failAt > 0 && n == s.failAt {
		s.mu.Unlock()
		return errors.New("broken pipe")
	}
	s.chunks = append(s.chunks, chunk)
	s.mu.Unlock()

	if s.onWrite != nil {
		s.onWrite(n)
	}
	return nil
}

func (s *recordingSink) Chunks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.chunks...)
}

// recordingCommit counts commits and remembers the last reply and context.
// onCommit runs before the commit returns.
type recordingCommit struct {
	calls    int
	reply    string
	ctx      context.Context
	err      error
	onCommit func()
}

func (c *recordingCommit) Commit(ctx context.Context, reply string) error {
	c.calls++
	c.reply = reply
	c.ctx = ctx
	if c.onCommit != nil {
		c.onCommit()
	}
	return c.err
}

// stream yields items in order and then err if non-nil. produced counts how
// many items were handed to the consumer.
func stream(produced *int, err error, items ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, item := range items {
			if produced != nil {
				*produced++
			}
			if !yield(item, nil) {
				return
			}
		}
		if err != nil {
			yield("", err)
		}
	}
}

func TestRelayForwardsInOrderAndCommitsOnce(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	commit := &recordingCommit{}
	relay := NewRelay(sink, commit.Commit, nil)
	assert.Equal(t, StateIdle, relay.State())

	err := relay.Run(context.Background(), stream(nil, nil, "Hel", "lo, ", "world"))

	require.NoError(t, err)
	assert.Equal(t, []string{"Hel", "lo, ", "world"}, sink.Chunks())
	assert.Equal(t, 1, commit.calls)
	assert.Equal(t, "Hello, world", commit.reply)
	assert.Equal(t, StateDone, relay.State())
	assert.Equal(t, "Hello, world", relay.Reply())
	assert.NoError(t, relay.Cause())
}

func TestRelayTransportDisconnectNeverCommits(t *testing.T) {
	t.Parallel()

	var produced int
	sink := &recordingSink{failAt: 2}
	commit := &recordingCommit{}
	relay := NewRelay(sink, commit.Commit, nil)

	err := relay.Run(context.Background(), stream(&produced, nil, "Hel", "lo, ", "world"))

	require.Error(t, err)
	assert.Equal(t, []string{"Hel"}, sink.Chunks())
	assert.Equal(t, 0, commit.calls)
	assert.Equal(t, StateAborted, relay.State())
	assert.Equal(t, 2, produced, "model stream should stop after the failed write")
	assert.Error(t, relay.Cause())
}

func TestRelayClientCancelNeverCommits(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &recordingSink{onWrite: func(n int) {
		if n == 1 {
			cancel()
		}
	}}
	commit := &recordingCommit{}
	relay := NewRelay(sink, commit.Commit, nil)

	err := relay.Run(ctx, stream(nil, nil, "Hel", "lo, ", "world"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, []string{"Hel"}, sink.Chunks())
	assert.Equal(t, 0, commit.calls)
	assert.Equal(t, StateAborted, relay.State())
}

func TestRelayCommitUsesDetachedContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The client goes away while the reply is being stored.
	commit := &recordingCommit{onCommit: cancel}
	relay := NewRelay(&recordingSink{}, commit.Commit, nil)

	err := relay.Run(ctx, stream(nil, nil, "all ", "done"))

	require.NoError(t, err)
	require.Equal(t, 1, commit.calls)
	assert.Equal(t, "all done", commit.reply)
	assert.Error(t, ctx.Err())
	assert.NoError(t, commit.ctx.Err())
	assert.Equal(t, StateDone, relay.State())
}

func TestRelayDisconnectBeforeStreamEndNeverCommits(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// One chunk is delivered, the client leaves, and the model then finishes
	// without an error.
	disconnectThenEnd := func(yield func(string, error) bool) {
		if !yield("Hel", nil) {
			return
		}
		cancel()
	}
	sink := &recordingSink{}
	commit := &recordingCommit{}
	relay := NewRelay(sink, commit.Commit, nil)

	err := relay.Run(ctx, disconnectThenEnd)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"Hel"}, sink.Chunks())
	assert.Equal(t, 0, commit.calls)
	assert.Equal(t, StateAborted, relay.State())
	assert.ErrorIs(t, relay.Cause(), context.Canceled)
}

func TestRelayDisconnectAfterLastChunkNeverCommits(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &recordingSink{onWrite: func(n int) {
		if n == 2 {
			cancel()
		}
	}}
	commit := &recordingCommit{}
	relay := NewRelay(sink, commit.Commit, nil)

	err := relay.Run(ctx, stream(nil, nil, "all ", "done"))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"all ", "done"}, sink.Chunks())
	assert.Equal(t, 0, commit.calls)
	assert.Equal(t, StateAborted, relay.State())
}

func TestRelayModelStreamError(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	commit := &recordingCommit{}
	relay := NewRelay(sink, commit.Commit, nil)

	err := relay.Run(context.Background(), stream(nil, errors.New("stream reset"), "partial"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrModelInvocation))
	assert.Equal(t, []string{"partial"}, sink.Chunks())
	assert.Equal(t, 0, commit.calls)
	assert.Equal(t, StateAborted, relay.State())
}

func TestRelayModelErrorIsNotWrappedTwice(t *testing.T) {
	t.Parallel()

	relay := NewRelay(&recordingSink{}, (&recordingCommit{}).Commit, nil)
	err := relay.Run(context.Background(), stream(nil, ErrContentBlocked))

	assert.Equal(t, ErrContentBlocked, err)
}

func TestRelayEmptyStream(t *testing.T) {
	t.Parallel()

	commit := &recordingCommit{}
	relay := NewRelay(&recordingSink{}, commit.Commit, nil)

	err := relay.Run(context.Background(), stream(nil, nil))

	assert.True(t, errors.Is(err, ErrModelInvocation))
	assert.Equal(t, 0, commit.calls)
	assert.Equal(t, StateAborted, relay.State())
}

func TestRelayCommitFailure(t *testing.T) {
	t.Parallel()

	commit := &recordingCommit{err: errors.New("insert failed")}
	relay := NewRelay(&recordingSink{}, commit.Commit, nil)

	err := relay.Run(context.Background(), stream(nil, nil, "hi"))

	assert.True(t, errors.Is(err, ErrPersistenceFailed))
	assert.Equal(t, 1, commit.calls)
	assert.Equal(t, StateAborted, relay.State())
}

func TestRelayInvalidTransitions(t *testing.T) {
	t.Parallel()

	t.Run("events before start", func(t *testing.T) {
		relay := NewRelay(&recordingSink{}, (&recordingCommit{}).Commit, nil)

		assert.True(t, errors.Is(relay.OnChunk(context.Background(), "x"), ErrInvalidTransition))
		assert.True(t, errors.Is(relay.OnEnd(context.Background()), ErrInvalidTransition))
		assert.True(t, errors.Is(relay.OnAbort(errors.New("x")), ErrInvalidTransition))
		assert.Equal(t, StateIdle, relay.State())
	})

	t.Run("relay cannot be reused", func(t *testing.T) {
		commit := &recordingCommit{}
		relay := NewRelay(&recordingSink{}, commit.Commit, nil)
		require.NoError(t, relay.Run(context.Background(), stream(nil, nil, "a")))

		err := relay.Run(context.Background(), stream(nil, nil, "b"))
		assert.True(t, errors.Is(err, ErrInvalidTransition))
		assert.Equal(t, 1, commit.calls)
		assert.Equal(t, StateDone, relay.State())
	})

	t.Run("no end after abort", func(t *testing.T) {
		commit := &recordingCommit{}
		relay := NewRelay(&recordingSink{}, commit.Commit, nil)

		require.NoError(t, relay.Start())
		require.NoError(t, relay.OnChunk(context.Background(), "partial"))
		require.NoError(t, relay.OnAbort(errors.New("client closed")))

		assert.True(t, errors.Is(relay.OnEnd(context.Background()), ErrInvalidTransition))
		assert.True(t, errors.Is(relay.OnChunk(context.Background(), "more"), ErrInvalidTransition))
		assert.Equal(t, 0, commit.calls)
		assert.Equal(t, StateAborted, relay.State())
	})
}

func TestRelayStateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "streaming", StateStreaming.String())
	assert.Equal(t, "RelayState(42)", RelayState(42).String())
}
