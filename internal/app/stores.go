package app

import (
	"context"
	"time"

	"quiz-portal/internal/domain"
)

// QuizStore persists quiz definitions (in-memory, Postgres, Redis-cached, etc).
// Lookups of unknown ids return domain.ErrQuizNotFound.
type QuizStore interface {
	CreateQuiz(ctx context.Context, quiz domain.Quiz) error
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	// ListQuizzes returns every quiz, newest first.
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
	UpdateQuiz(ctx context.Context, quiz domain.Quiz) error
	DeleteQuiz(ctx context.Context, quizID string) error
}

// SessionStore persists participant sessions keyed by access code.
// Lookups of unknown codes return domain.ErrSessionNotFound.
type SessionStore interface {
	CreateSession(ctx context.Context, session domain.Session) error
	GetSession(ctx context.Context, accessCode string) (domain.Session, error)
	// SaveAnswer upserts a single response; the last write for a question wins.
	SaveAnswer(ctx context.Context, accessCode, questionID string, selectedOption int) error
	// CompleteSession stores the final score and marks the session completed.
	CompleteSession(ctx context.Context, accessCode string, score int, completedAt time.Time) error
	ListSessionsByQuiz(ctx context.Context, quizID string) ([]domain.Session, error)
	// DeleteSessionsByQuiz removes every session for quizID and returns how many went.
	DeleteSessionsByQuiz(ctx context.Context, quizID string) (int, error)
}
