package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"

	"quiz-portal/internal/domain"
)

const uniqueViolation = "23505"

const sessionColumns = `id, access_code, username, quiz_id, responses, score, completed, created_at, completed_at`

// SessionStore keeps sessions in quiz_sessions. Responses are a JSONB object
// keyed by question id so an answer is a single-key merge.
type SessionStore struct {
	pool *pgxpool.Pool
}

func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

func (s *SessionStore) CreateSession(ctx context.Context, session domain.Session) error {
	responses := session.Responses
	if responses == nil {
		responses = map[string]int{}
	}
	data, err := json.Marshal(responses)
	if err != nil {
		return errors.Wrap(err, "marshal responses")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO quiz_sessions (id, access_code, username, quiz_id, responses, completed, created_at)
		 VALUES ($1, $2, $3, $4, $5::jsonb, false, $6)`,
		session.ID, session.AccessCode, session.Username, session.QuizID, string(data), session.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrDuplicateAccessCode
	}
	return errors.Wrap(err, "insert session")
}

func (s *SessionStore) GetSession(ctx context.Context, accessCode string) (domain.Session, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM quiz_sessions WHERE access_code=$1`, accessCode)
	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, errors.Wrap(err, "load session")
	}
	return session, nil
}

func (s *SessionStore) SaveAnswer(ctx context.Context, accessCode, questionID string, selectedOption int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE quiz_sessions SET responses = responses || jsonb_build_object($2::text, $3::int) WHERE access_code=$1`,
		accessCode, questionID, selectedOption)
	if err != nil {
		return errors.Wrap(err, "save answer")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (s *SessionStore) CompleteSession(ctx context.Context, accessCode string, score int, completedAt time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE quiz_sessions SET score=$2, completed=true, completed_at=$3 WHERE access_code=$1`,
		accessCode, score, completedAt)
	if err != nil {
		return errors.Wrap(err, "complete session")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (s *SessionStore) ListSessionsByQuiz(ctx context.Context, quizID string) ([]domain.Session, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM quiz_sessions WHERE quiz_id=$1 ORDER BY created_at`, quizID)
	if err != nil {
		return nil, errors.Wrap(err, "list sessions")
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan session")
		}
		sessions = append(sessions, session)
	}
	return sessions, errors.Wrap(rows.Err(), "list sessions")
}

func (s *SessionStore) DeleteSessionsByQuiz(ctx context.Context, quizID string) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM quiz_sessions WHERE quiz_id=$1`, quizID)
	if err != nil {
		return 0, errors.Wrap(err, "delete sessions")
	}
	return int(tag.RowsAffected()), nil
}

func scanSession(row pgx.Row) (domain.Session, error) {
	var (
		session     domain.Session
		raw         []byte
		score       *int
		completedAt *time.Time
	)
	err := row.Scan(
		&session.ID,
		&session.AccessCode,
		&session.Username,
		&session.QuizID,
		&raw,
		&score,
		&session.Completed,
		&session.CreatedAt,
		&completedAt,
	)
	if err != nil {
		return domain.Session{}, err
	}
	session.Responses = map[string]int{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &session.Responses); err != nil {
			return domain.Session{}, errors.Wrap(err, "unmarshal responses")
		}
	}
	session.StartTime = session.CreatedAt
	session.Score = score
	session.CompletedAt = completedAt
	return session, nil
}
