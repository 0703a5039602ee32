package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"

	"quiz-portal/internal/domain"
)

// QuizStore keeps each quiz as a JSONB document in the quizzes table.
type QuizStore struct {
	pool *pgxpool.Pool
}

func NewQuizStore(pool *pgxpool.Pool) *QuizStore {
	return &QuizStore{pool: pool}
}

func (s *QuizStore) CreateQuiz(ctx context.Context, quiz domain.Quiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return errors.Wrap(err, "marshal quiz")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO quizzes (id, data, created_at, updated_at) VALUES ($1, $2::jsonb, $3, $4)`,
		quiz.ID, string(data), quiz.CreatedAt, quiz.UpdatedAt)
	return errors.Wrap(err, "insert quiz")
}

func (s *QuizStore) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM quizzes WHERE id=$1`, quizID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, errors.Wrap(err, "load quiz")
	}
	return decodeQuiz(raw)
}

func (s *QuizStore) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	rows, err := s.pool.Query(ctx, `SELECT data FROM quizzes ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, errors.Wrap(err, "list quizzes")
	}
	defer rows.Close()

	var quizzes []domain.Quiz
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, errors.Wrap(err, "scan quiz")
		}
		quiz, err := decodeQuiz(raw)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, errors.Wrap(rows.Err(), "list quizzes")
}

func (s *QuizStore) UpdateQuiz(ctx context.Context, quiz domain.Quiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return errors.Wrap(err, "marshal quiz")
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE quizzes SET data=$2::jsonb, updated_at=$3 WHERE id=$1`,
		quiz.ID, string(data), quiz.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "update quiz")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *QuizStore) DeleteQuiz(ctx context.Context, quizID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM quizzes WHERE id=$1`, quizID)
	if err != nil {
		return errors.Wrap(err, "delete quiz")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func decodeQuiz(raw []byte) (domain.Quiz, error) {
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, errors.Wrap(err, "unmarshal quiz")
	}
	return quiz, nil
}
