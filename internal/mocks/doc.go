// Package mocks provides centralized mock implementations for testing.
//
// Each mock has a function field per interface method. When the field is nil
// the mock falls back to simple default behavior (usually the zero value or an
// in-memory record of what it was given). Call counts and arguments are
// tracked so tests can assert on interactions, for example that no model call
// was made for an invalid request.
//
//	model := &mocks.MockModelClient{
//	    GenerateFn: func(ctx context.Context, prompt string) (string, error) {
//	        return `{"flashcards":[{"question":"Q","answer":"A"}]}`, nil
//	    },
//	}
package mocks
