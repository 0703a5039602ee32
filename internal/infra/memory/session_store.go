package memory

import (
	"context"
	"sync"
	"time"

	"quiz-portal/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionStore.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session // keyed by access code
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*domain.Session),
	}
}

func (s *SessionStore) CreateSession(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.AccessCode]; ok {
		return domain.ErrDuplicateAccessCode
	}
	stored := cloneSession(session)
	s.sessions[session.AccessCode] = &stored
	return nil
}

func (s *SessionStore) GetSession(_ context.Context, accessCode string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[accessCode]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return cloneSession(*session), nil
}

func (s *SessionStore) SaveAnswer(_ context.Context, accessCode, questionID string, selectedOption int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[accessCode]
	if !ok {
		return domain.ErrSessionNotFound
	}
	if session.Responses == nil {
		session.Responses = make(map[string]int)
	}
	session.Responses[questionID] = selectedOption
	return nil
}

func (s *SessionStore) CompleteSession(_ context.Context, accessCode string, score int, completedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[accessCode]
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.Score = &score
	session.Completed = true
	session.CompletedAt = &completedAt
	return nil
}

func (s *SessionStore) ListSessionsByQuiz(_ context.Context, quizID string) ([]domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Session
	for _, session := range s.sessions {
		if session.QuizID == quizID {
			out = append(out, cloneSession(*session))
		}
	}
	return out, nil
}

func (s *SessionStore) DeleteSessionsByQuiz(_ context.Context, quizID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for code, session := range s.sessions {
		if session.QuizID == quizID {
			delete(s.sessions, code)
			deleted++
		}
	}
	return deleted, nil
}

func cloneSession(session domain.Session) domain.Session {
	responses := make(map[string]int, len(session.Responses))
	for questionID, option := range session.Responses {
		responses[questionID] = option
	}
	session.Responses = responses
	if session.Score != nil {
		score := *session.Score
		session.Score = &score
	}
	if session.CompletedAt != nil {
		at := *session.CompletedAt
		session.CompletedAt = &at
	}
	return session
}
