package generation

import (
	"context"
	"iter"
)

// Role identifies the author of a conversation turn sent to the model.
type Role string

// Model conversation roles
const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one message of conversation history passed to GenerateStream.
type Turn struct {
	Role Role
	Text string
}

// ModelClient is the boundary between the pipeline and the external language
// model. Implementations are constructed once from configuration and passed
// in explicitly.
type ModelClient interface {
	// Generate sends a single prompt and returns the complete response text.
	// Failures match ErrModelInvocation.
	Generate(ctx context.Context, prompt string) (string, error)

	// GenerateStream continues a conversation with message and yields the reply
	// in fragments. The sequence is finite and cannot be restarted. A failure is
	// yielded as a final non-nil error matching ErrModelInvocation. Stopping the
	// range loop early releases the underlying stream.
	GenerateStream(ctx context.Context, history []Turn, message string) iter.Seq2[string, error]
}
