// Package generation implements the generation-and-normalization pipeline
// stages that turn a request into validated study material: prompt
// construction, the ModelClient boundary to the language model, extraction
// of JSON payloads from free-form model text, validation against the
// requested content kind, answer shuffling for quizzes, and the stream relay
// used by tutor conversations.
//
// Every stage is a plain function or small type returning (value, error);
// callers short-circuit on the first error. Errors match the sentinels in
// errors.go through errors.Is.
package generation
