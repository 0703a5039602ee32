package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-portal/internal/app"
	"quiz-portal/internal/domain"
)

// QuizCache is a read-through cache in front of another app.QuizStore.
// Each quiz is cached as JSON under quiz:{quizID}; writes go to the backing
// store first and then drop the cached copy.
type QuizCache struct {
	client  *redis.Client
	backing app.QuizStore
	ttl     time.Duration
	sf      singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuizCache(client *redis.Client, backing app.QuizStore, ttl time.Duration) *QuizCache {
	return &QuizCache{
		client:  client,
		backing: backing,
		ttl:     ttl,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuizCache) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := c.cached(ctx, quizID); ok {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quiz, ok := c.cached(ctx, quizID); ok {
			return quiz, nil
		}

		quiz, err := c.backing.GetQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}

		data, err := json.Marshal(quiz)
		if err != nil {
			return domain.Quiz{}, errors.Wrap(err, "marshal quiz")
		}
		if err := c.client.Set(ctx, c.key(quizID), data, c.ttlWithJitter()).Err(); err != nil {
			glog.Warningf("caching quiz %s: %v", quizID, err)
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (c *QuizCache) CreateQuiz(ctx context.Context, quiz domain.Quiz) error {
	return c.backing.CreateQuiz(ctx, quiz)
}

// ListQuizzes is not cached; the admin list is read rarely and must be complete.
func (c *QuizCache) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	return c.backing.ListQuizzes(ctx)
}

func (c *QuizCache) UpdateQuiz(ctx context.Context, quiz domain.Quiz) error {
	if err := c.backing.UpdateQuiz(ctx, quiz); err != nil {
		return err
	}
	return c.invalidate(ctx, quiz.ID)
}

func (c *QuizCache) DeleteQuiz(ctx context.Context, quizID string) error {
	if err := c.backing.DeleteQuiz(ctx, quizID); err != nil {
		return err
	}
	return c.invalidate(ctx, quizID)
}

func (c *QuizCache) cached(ctx context.Context, quizID string) (domain.Quiz, bool) {
	data, err := c.client.Get(ctx, c.key(quizID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			glog.Warningf("reading cached quiz %s: %v", quizID, err)
		}
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		glog.Warningf("discarding corrupt cached quiz %s: %v", quizID, err)
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (c *QuizCache) invalidate(ctx context.Context, quizID string) error {
	return errors.Wrapf(c.client.Del(ctx, c.key(quizID)).Err(), "invalidate quiz %s", quizID)
}

func (c *QuizCache) key(quizID string) string {
	return "quiz:" + quizID
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
