package cli

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"

	"quiz-portal/internal/config"
	"quiz-portal/internal/infra/memory"
	rediscache "quiz-portal/internal/infra/redis"
)

func TestOpenBackendsDefaultsToMemory(t *testing.T) {
	b, err := openBackends(context.Background(), config.Config{}, true)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer b.close()

	if _, ok := b.quizzes.(*memory.QuizStore); !ok {
		t.Fatalf("expected memory quiz store, got %T", b.quizzes)
	}
	if _, ok := b.sessions.(*memory.SessionStore); !ok {
		t.Fatalf("expected memory session store, got %T", b.sessions)
	}
	if _, err := b.quizzes.GetQuiz(context.Background(), "sample-quiz"); err != nil {
		t.Fatalf("expected seeded sample quiz: %v", err)
	}
}

func TestOpenBackendsUsesRedisWhenConfigured(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	cfg := config.Config{}
	cfg.Redis.Addr = mr.Addr()
	b, err := openBackends(context.Background(), cfg, false)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer b.close()

	if _, ok := b.quizzes.(*rediscache.QuizCache); !ok {
		t.Fatalf("expected redis quiz cache, got %T", b.quizzes)
	}
	if _, ok := b.sessions.(*rediscache.SessionStore); !ok {
		t.Fatalf("expected redis session store, got %T", b.sessions)
	}
}

func TestOpenBackendsFailsOnUnreachableRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	addr := mr.Addr()
	mr.Close()

	cfg := config.Config{}
	cfg.Redis.Addr = addr
	if _, err := openBackends(context.Background(), cfg, false); err == nil {
		t.Fatalf("expected error for unreachable redis")
	}
}
