// Package domain contains the core business entities of the application:
// generation requests, the flashcard sets and quizzes produced from them,
// usage records that feed the quota, and tutor conversations.
//
// Entities validate themselves but know nothing about storage, HTTP or the
// language model.
package domain
