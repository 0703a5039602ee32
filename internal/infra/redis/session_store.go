package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"quiz-portal/internal/domain"
)

// SessionStore keeps sessions in Redis without expiry:
//
//	HSET session:{code}            id username quizId completed score createdAt completedAt
//	HSET session:{code}:responses  {questionID} {selectedOption}
//	SADD quiz:{quizID}:sessions    {code}
//
// Creation is a single script so readers never see a half-written session.
// Answers are single HSETs so concurrent answers to different questions
// never overwrite each other.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// createSessionScript claims session:{code} and writes the whole session in
// one step. A hash without createdAt is a leftover and gets overwritten.
//
//	KEYS: session, responses, quiz set
//	ARGV: id, username, quizId, createdAt, accessCode, [questionID, option]...
var createSessionScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], 'createdAt') == 1 then
	return 0
end
redis.call('DEL', KEYS[1], KEYS[2])
redis.call('HSET', KEYS[1], 'id', ARGV[1], 'username', ARGV[2], 'quizId', ARGV[3], 'completed', '0', 'createdAt', ARGV[4])
for i = 6, #ARGV, 2 do
	redis.call('HSET', KEYS[2], ARGV[i], ARGV[i + 1])
end
redis.call('SADD', KEYS[3], ARGV[5])
return 1
`)

func (s *SessionStore) CreateSession(ctx context.Context, session domain.Session) error {
	keys := []string{
		s.key(session.AccessCode),
		s.responsesKey(session.AccessCode),
		s.quizKey(session.QuizID),
	}
	args := []interface{}{
		session.ID,
		session.Username,
		session.QuizID,
		session.CreatedAt.UTC().Format(time.RFC3339Nano),
		session.AccessCode,
	}
	for questionID, option := range session.Responses {
		args = append(args, questionID, option)
	}

	created, err := createSessionScript.Run(ctx, s.client, keys, args...).Int()
	if err != nil {
		return errors.Wrap(err, "create session")
	}
	if created == 0 {
		return domain.ErrDuplicateAccessCode
	}
	return nil
}

func (s *SessionStore) GetSession(ctx context.Context, accessCode string) (domain.Session, error) {
	fields, err := s.client.HGetAll(ctx, s.key(accessCode)).Result()
	if err != nil {
		return domain.Session{}, errors.Wrap(err, "load session")
	}
	if _, ok := fields["createdAt"]; !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	responses, err := s.client.HGetAll(ctx, s.responsesKey(accessCode)).Result()
	if err != nil {
		return domain.Session{}, errors.Wrap(err, "load responses")
	}
	return decodeSession(accessCode, fields, responses)
}

func (s *SessionStore) SaveAnswer(ctx context.Context, accessCode, questionID string, selectedOption int) error {
	if err := s.mustExist(ctx, accessCode); err != nil {
		return err
	}
	err := s.client.HSet(ctx, s.responsesKey(accessCode), questionID, selectedOption).Err()
	return errors.Wrap(err, "save answer")
}

func (s *SessionStore) CompleteSession(ctx context.Context, accessCode string, score int, completedAt time.Time) error {
	if err := s.mustExist(ctx, accessCode); err != nil {
		return err
	}
	err := s.client.HSet(ctx, s.key(accessCode),
		"completed", "1",
		"score", score,
		"completedAt", completedAt.UTC().Format(time.RFC3339Nano),
	).Err()
	return errors.Wrap(err, "complete session")
}

func (s *SessionStore) ListSessionsByQuiz(ctx context.Context, quizID string) ([]domain.Session, error) {
	codes, err := s.client.SMembers(ctx, s.quizKey(quizID)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "list sessions")
	}
	sessions := make([]domain.Session, 0, len(codes))
	for _, code := range codes {
		session, err := s.GetSession(ctx, code)
		if errors.Is(err, domain.ErrSessionNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (s *SessionStore) DeleteSessionsByQuiz(ctx context.Context, quizID string) (int, error) {
	codes, err := s.client.SMembers(ctx, s.quizKey(quizID)).Result()
	if err != nil {
		return 0, errors.Wrap(err, "list sessions")
	}
	if len(codes) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, 2*len(codes)+1)
	for _, code := range codes {
		keys = append(keys, s.key(code), s.responsesKey(code))
	}
	keys = append(keys, s.quizKey(quizID))
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return 0, errors.Wrap(err, "delete sessions")
	}
	return len(codes), nil
}

func (s *SessionStore) mustExist(ctx context.Context, accessCode string) error {
	exists, err := s.client.HExists(ctx, s.key(accessCode), "createdAt").Result()
	if err != nil {
		return errors.Wrap(err, "load session")
	}
	if !exists {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (s *SessionStore) key(accessCode string) string {
	return "session:" + accessCode
}

func (s *SessionStore) responsesKey(accessCode string) string {
	return "session:" + accessCode + ":responses"
}

func (s *SessionStore) quizKey(quizID string) string {
	return "quiz:" + quizID + ":sessions"
}

func decodeSession(accessCode string, fields, responses map[string]string) (domain.Session, error) {
	session := domain.Session{
		ID:         fields["id"],
		AccessCode: accessCode,
		Username:   fields["username"],
		QuizID:     fields["quizId"],
		Completed:  fields["completed"] == "1",
		Responses:  make(map[string]int, len(responses)),
	}

	createdAt, err := time.Parse(time.RFC3339Nano, fields["createdAt"])
	if err != nil {
		return domain.Session{}, errors.Wrapf(err, "session %s createdAt", accessCode)
	}
	session.CreatedAt = createdAt
	session.StartTime = createdAt

	if raw, ok := fields["score"]; ok && session.Completed {
		score, err := strconv.Atoi(raw)
		if err != nil {
			return domain.Session{}, errors.Wrapf(err, "session %s score", accessCode)
		}
		session.Score = &score
	}
	if raw, ok := fields["completedAt"]; ok {
		completedAt, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return domain.Session{}, errors.Wrapf(err, "session %s completedAt", accessCode)
		}
		session.CompletedAt = &completedAt
	}

	for questionID, raw := range responses {
		option, err := strconv.Atoi(raw)
		if err != nil {
			return domain.Session{}, errors.Wrapf(err, "session %s response %s", accessCode, questionID)
		}
		session.Responses[questionID] = option
	}
	return session, nil
}
