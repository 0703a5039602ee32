package app

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"quiz-portal/internal/domain"
)

// statsConcurrency bounds how many per-quiz session folds List runs at once.
const statsConcurrency = 8

// QuizService contains the admin use cases over quiz definitions.
type QuizService struct {
	quizzes  QuizStore
	sessions SessionStore
	now      func() time.Time
}

func NewQuizService(quizzes QuizStore, sessions SessionStore) *QuizService {
	return NewQuizServiceWithClock(quizzes, sessions, time.Now)
}

// NewQuizServiceWithClock is test-only for deterministic timestamps.
func NewQuizServiceWithClock(quizzes QuizStore, sessions SessionStore, now func() time.Time) *QuizService {
	return &QuizService{quizzes: quizzes, sessions: sessions, now: now}
}

// Create validates the input and stores a new quiz with fresh ids.
func (s *QuizService) Create(ctx context.Context, in domain.QuizInput) (domain.Quiz, error) {
	if err := in.Validate(); err != nil {
		return domain.Quiz{}, err
	}

	now := s.now()
	quiz := domain.Quiz{
		ID:        uuid.NewString(),
		Title:     in.Title,
		Questions: assignQuestionIDs(in.Questions),
		TimeLimit: in.TimeLimit,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.quizzes.CreateQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

func (s *QuizService) Get(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.quizzes.GetQuiz(ctx, quizID)
}

// List returns every quiz with attempts and average score over completed sessions.
func (s *QuizService) List(ctx context.Context) ([]domain.QuizSummary, error) {
	quizzes, err := s.quizzes.ListQuizzes(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.QuizSummary, len(quizzes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statsConcurrency)
	for i, quiz := range quizzes {
		i, quiz := i, quiz
		g.Go(func() error {
			sessions, err := s.sessions.ListSessionsByQuiz(gctx, quiz.ID)
			if err != nil {
				return err
			}
			attempts, average := Stats(sessions)
			summaries[i] = domain.QuizSummary{Quiz: quiz, Attempts: attempts, AverageScore: average}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// Update replaces the editable fields of an existing quiz.
func (s *QuizService) Update(ctx context.Context, quizID string, in domain.QuizInput) (domain.Quiz, error) {
	if err := in.Validate(); err != nil {
		return domain.Quiz{}, err
	}

	existing, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	existing.Title = in.Title
	existing.Questions = assignQuestionIDs(in.Questions)
	existing.TimeLimit = in.TimeLimit
	existing.UpdatedAt = s.now()

	if err := s.quizzes.UpdateQuiz(ctx, existing); err != nil {
		return domain.Quiz{}, err
	}
	return existing, nil
}

// Delete removes the quiz and then every session that references it.
func (s *QuizService) Delete(ctx context.Context, quizID string) error {
	if err := s.quizzes.DeleteQuiz(ctx, quizID); err != nil {
		return err
	}
	_, err := s.sessions.DeleteSessionsByQuiz(ctx, quizID)
	return err
}

// Report collects the quiz, its statistics and all of its sessions, oldest first.
func (s *QuizService) Report(ctx context.Context, quizID string) (domain.QuizReport, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.QuizReport{}, err
	}
	sessions, err := s.sessions.ListSessionsByQuiz(ctx, quizID)
	if err != nil {
		return domain.QuizReport{}, err
	}
	if sessions == nil {
		sessions = []domain.Session{}
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	attempts, average := Stats(sessions)
	return domain.QuizReport{
		Quiz:         quiz,
		TotalMarks:   quiz.TotalMarks(),
		Attempts:     attempts,
		AverageScore: average,
		Sessions:     sessions,
	}, nil
}

// assignQuestionIDs keeps ids sent by the client so edits do not orphan
// stored answers, and mints ids for new questions.
func assignQuestionIDs(questions []domain.Question) []domain.Question {
	out := make([]domain.Question, len(questions))
	for i, q := range questions {
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}
