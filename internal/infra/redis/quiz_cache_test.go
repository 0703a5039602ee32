package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quiz-portal/internal/domain"
	"quiz-portal/internal/infra/memory"
)

func TestQuizCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	backing := &countingStore{QuizStore: memory.NewSeededQuizStore(sampleQuiz())}
	cache := NewQuizCache(newClient(mr), backing, time.Minute)

	quiz, err := cache.GetQuiz(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if backing.getCalls() != 1 {
		t.Fatalf("expected backing store called once, got %d", backing.getCalls())
	}
	if !mr.Exists("quiz:quiz-1") {
		t.Fatalf("expected quiz cached")
	}
	if ttl := mr.TTL("quiz:quiz-1"); ttl < time.Minute || ttl > time.Minute+6*time.Second {
		t.Fatalf("expected ttl within jitter window, got %v", ttl)
	}

	// Second call should hit cache, backing store not incremented.
	cached, _ := cache.GetQuiz(context.Background(), "quiz-1")
	if backing.getCalls() != 1 {
		t.Fatalf("expected cache hit, backing calls=%d", backing.getCalls())
	}
	if cached.Title != quiz.Title || len(cached.Questions) != 1 || cached.Questions[0].CorrectAnswer != 1 {
		t.Fatalf("expected cached copy to match, got %+v", cached)
	}
}

func TestQuizCacheInvalidatesOnWrite(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	backing := &countingStore{QuizStore: memory.NewSeededQuizStore(sampleQuiz())}
	cache := NewQuizCache(newClient(mr), backing, time.Minute)

	quiz, _ := cache.GetQuiz(ctx, "quiz-1")
	quiz.Title = "Renamed"
	if err := cache.UpdateQuiz(ctx, quiz); err != nil {
		t.Fatalf("update: %v", err)
	}
	if mr.Exists("quiz:quiz-1") {
		t.Fatalf("expected cache entry dropped on update")
	}
	reloaded, _ := cache.GetQuiz(ctx, "quiz-1")
	if reloaded.Title != "Renamed" {
		t.Fatalf("expected fresh title, got %q", reloaded.Title)
	}

	if err := cache.DeleteQuiz(ctx, "quiz-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := cache.GetQuiz(ctx, "quiz-1"); err != domain.ErrQuizNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := cache.DeleteQuiz(ctx, "quiz-1"); err != domain.ErrQuizNotFound {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

type countingStore struct {
	*memory.QuizStore
	mu    sync.Mutex
	calls int
}

func (s *countingStore) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.QuizStore.GetQuiz(ctx, quizID)
}

func (s *countingStore) getCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    "quiz-1",
		Title: "Arithmetic",
		Questions: []domain.Question{
			{
				ID:            "q1",
				Text:          "What is 2 + 2?",
				Options:       []string{"3", "4", "5", "6"},
				CorrectAnswer: 1,
				Marks:         2,
			},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
