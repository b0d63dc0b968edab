// Package postgres provides PostgreSQL implementations of the store
// interfaces: flashcard sets, quizzes, usage records, tutors and chat
// messages. Parent rows and their children are written in one transaction
// through store.RunInTransaction, and driver errors are translated to store
// errors by MapError.
package postgres
