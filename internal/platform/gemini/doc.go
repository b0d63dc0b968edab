// Package gemini implements generation.ModelClient on top of Google's Gemini
// API through the google.golang.org/genai SDK.
//
// The client is built once from config.LLMConfig and injected into the
// services that need it. It performs no retries; transport failures, empty
// responses and safety blocks are all reported as generation.ErrModelInvocation
// (safety blocks more specifically as generation.ErrContentBlocked).
package gemini
