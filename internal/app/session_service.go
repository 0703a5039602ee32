package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"quiz-portal/internal/domain"
)

// maxCodeAttempts bounds retries when a generated access code collides.
const maxCodeAttempts = 3

// SessionService tracks participant attempts and turns them into scores.
type SessionService struct {
	sessions SessionStore
	quizzes  QuizStore
	strict   bool
	now      func() time.Time
	newCode  func() (string, error)
}

// SessionOption customizes a SessionService.
type SessionOption func(*SessionService)

// WithStrictValidation rejects unknown quizzes and questions, out-of-range
// options and changes to completed sessions. Off by default.
func WithStrictValidation(strict bool) SessionOption {
	return func(s *SessionService) { s.strict = strict }
}

// WithClock is used by tests for deterministic timestamps.
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionService) { s.now = now }
}

// WithAccessCodes replaces the access code generator.
func WithAccessCodes(gen func() (string, error)) SessionOption {
	return func(s *SessionService) { s.newCode = gen }
}

func NewSessionService(sessions SessionStore, quizzes QuizStore, opts ...SessionOption) *SessionService {
	s := &SessionService{
		sessions: sessions,
		quizzes:  quizzes,
		now:      time.Now,
		newCode:  NewAccessCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens a session for username on quizID and returns its access code.
// The quiz is only checked for existence in strict mode.
func (s *SessionService) Start(ctx context.Context, username, quizID string) (string, error) {
	if s.strict {
		if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
			return "", err
		}
	}

	now := s.now()
	for attempt := 0; ; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return "", err
		}
		session := domain.Session{
			ID:         uuid.NewString(),
			AccessCode: code,
			Username:   username,
			QuizID:     quizID,
			Responses:  map[string]int{},
			CreatedAt:  now,
			StartTime:  now,
		}
		err = s.sessions.CreateSession(ctx, session)
		if errors.Is(err, domain.ErrDuplicateAccessCode) && attempt < maxCodeAttempts-1 {
			continue
		}
		if err != nil {
			return "", err
		}
		return code, nil
	}
}

// GetByAccessCode loads the session and the quiz it references.
func (s *SessionService) GetByAccessCode(ctx context.Context, accessCode string) (domain.SessionView, error) {
	session, err := s.sessions.GetSession(ctx, accessCode)
	if err != nil {
		return domain.SessionView{}, err
	}

	view := domain.SessionView{Session: session}
	quiz, err := s.quizzes.GetQuiz(ctx, session.QuizID)
	switch {
	case err == nil:
		view.Quiz = &quiz
		view.ExpiresAt = Deadline(quiz, session)
	case errors.Is(err, domain.ErrQuizNotFound):
		// dangling reference: the session is still readable
	default:
		return domain.SessionView{}, err
	}
	return view, nil
}

// SubmitAnswer records selectedOption for questionID, replacing any earlier answer.
func (s *SessionService) SubmitAnswer(ctx context.Context, accessCode, questionID string, selectedOption int) error {
	if s.strict {
		if err := s.checkAnswer(ctx, accessCode, questionID, selectedOption); err != nil {
			return err
		}
	}
	return s.sessions.SaveAnswer(ctx, accessCode, questionID, selectedOption)
}

// SubmitQuiz scores the stored responses and marks the session completed.
// Calling it again recomputes the score from whatever responses exist then.
func (s *SessionService) SubmitQuiz(ctx context.Context, accessCode string) (int, error) {
	session, err := s.sessions.GetSession(ctx, accessCode)
	if err != nil {
		return 0, err
	}
	if s.strict && session.Completed {
		return 0, domain.ErrSessionCompleted
	}

	quiz, err := s.quizzes.GetQuiz(ctx, session.QuizID)
	if err != nil {
		return 0, err
	}

	score := Score(quiz, session.Responses)
	if err := s.sessions.CompleteSession(ctx, accessCode, score, s.now()); err != nil {
		return 0, err
	}
	return score, nil
}

func (s *SessionService) checkAnswer(ctx context.Context, accessCode, questionID string, selectedOption int) error {
	session, err := s.sessions.GetSession(ctx, accessCode)
	if err != nil {
		return err
	}
	if session.Completed {
		return domain.ErrSessionCompleted
	}
	quiz, err := s.quizzes.GetQuiz(ctx, session.QuizID)
	if err != nil {
		return err
	}
	for _, q := range quiz.Questions {
		if q.ID != questionID {
			continue
		}
		if selectedOption < 0 || selectedOption >= len(q.Options) {
			return domain.ErrOptionOutOfRange
		}
		return nil
	}
	return domain.ErrQuestionNotFound
}

// Deadline is when the participant's time runs out, or nil for untimed quizzes.
// It is advisory: the client submits on expiry and nothing here enforces it.
func Deadline(quiz domain.Quiz, session domain.Session) *time.Time {
	if quiz.TimeLimit == nil || *quiz.TimeLimit <= 0 {
		return nil
	}
	deadline := session.StartTime.Add(time.Duration(*quiz.TimeLimit) * time.Minute)
	return &deadline
}
