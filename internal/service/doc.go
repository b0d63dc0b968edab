// Package service contains the application use cases that sit between the
// HTTP layer and the generation pipeline.
//
// GenerationService runs the single-shot pipeline for flashcard sets and
// quizzes: quota check, request validation, prompt, model call,
// normalization, validation, answer shuffling and the two-phase write
// performed by Writer. TutorService runs the streamed chat path through a
// generation.Relay.
//
// Services receive their collaborators through constructor injection and
// depend only on the interfaces in internal/store, internal/quota and
// internal/generation, never on infrastructure packages.
package service
