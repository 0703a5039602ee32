package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quiz-portal/internal/app"
	"quiz-portal/internal/config"
	"quiz-portal/internal/domain"
	"quiz-portal/internal/infra/memory"
	"quiz-portal/internal/infra/postgres"
	rediscache "quiz-portal/internal/infra/redis"
	transport "quiz-portal/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port, seed)
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "load a sample quiz when running without postgres")
	return cmd
}

type backends struct {
	quizzes  app.QuizStore
	sessions app.SessionStore
	closers  []func()
}

func (b *backends) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openBackends picks storage from config: postgres when a URL is set,
// otherwise redis for sessions when an address is set, otherwise memory.
// With redis configured, quiz reads go through a read-through cache.
func openBackends(ctx context.Context, cfg config.Config, seed bool) (*backends, error) {
	b := &backends{}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close()
			return nil, errors.Wrapf(err, "connect redis %s", cfg.Redis.Addr)
		}
		b.closers = append(b.closers, func() { redisClient.Close() })
	}

	switch {
	case cfg.Postgres.URL != "":
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			b.close()
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.close()
			return nil, errors.Wrap(err, "connect postgres")
		}
		b.closers = append(b.closers, pool.Close)
		b.quizzes = postgres.NewQuizStore(pool)
		b.sessions = postgres.NewSessionStore(pool)
		glog.Infof("using postgres storage")
	case redisClient != nil:
		b.quizzes = seededStore(seed)
		b.sessions = rediscache.NewSessionStore(redisClient)
		glog.Infof("using redis sessions with in-memory quizzes")
	default:
		b.quizzes = seededStore(seed)
		b.sessions = memory.NewSessionStore()
		glog.Infof("using in-memory storage")
	}

	if redisClient != nil {
		ttl := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
		b.quizzes = rediscache.NewQuizCache(redisClient, b.quizzes, ttl)
		glog.Infof("caching quizzes in redis for %s", ttl)
	}
	return b, nil
}

func runServer(ctx context.Context, configPath, portFlag string, seed bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "5000"
	}

	b, err := openBackends(ctx, cfg, seed)
	if err != nil {
		return err
	}
	defer b.close()

	quizService := app.NewQuizService(b.quizzes, b.sessions)
	sessionService := app.NewSessionService(b.sessions, b.quizzes, app.WithStrictValidation(cfg.Sessions.Strict))
	if cfg.Sessions.Strict {
		glog.Infof("strict session validation enabled")
	}

	server := &http.Server{
		Addr: ":" + finalPort,
		Handler: transport.NewRouter(quizService, sessionService, transport.RouterOptions{
			Prefix:         cfg.Server.Prefix,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AccessLog:      true,
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		glog.Infof("starting quiz portal on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		glog.Infof("shutting down server...")
	case <-ctx.Done():
		glog.Infof("context canceled, shutting down server...")
	case err := <-serveErr:
		return errors.Wrap(err, "listen")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func seededStore(seed bool) *memory.QuizStore {
	if !seed {
		return memory.NewQuizStore()
	}
	return memory.NewSeededQuizStore(sampleQuiz(time.Now().UTC()))
}

func sampleQuiz(now time.Time) domain.Quiz {
	timeLimit := 10
	return domain.Quiz{
		ID:        "sample-quiz",
		Title:     "General Knowledge",
		TimeLimit: &timeLimit,
		Questions: []domain.Question{
			{
				ID:            "q1",
				Text:          "What is 2 + 2?",
				Options:       []string{"3", "4", "5", "6"},
				CorrectAnswer: 1,
				Marks:         2,
			},
			{
				ID:            "q2",
				Text:          "Which planet is closest to the sun?",
				Options:       []string{"Mercury", "Venus", "Earth", "Mars"},
				CorrectAnswer: 0,
				Marks:         3,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
