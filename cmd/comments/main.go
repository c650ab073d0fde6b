package main

import (
	"context"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/comments-service/internal/events"
	"github.com/example/comments-service/internal/handlers"
	"github.com/example/comments-service/internal/platform/auth"
	"github.com/example/comments-service/internal/platform/config"
	"github.com/example/comments-service/internal/platform/db"
	"github.com/example/comments-service/internal/platform/httpserver"
	"github.com/example/comments-service/internal/platform/logging"
	"github.com/example/comments-service/internal/platform/run"
	"github.com/example/comments-service/internal/service"
	"github.com/example/comments-service/internal/store"
	"github.com/example/comments-service/internal/thread"
	"github.com/example/comments-service/internal/users"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	comments, closeStore := initStore(cfg, log)
	if closeStore != nil {
		defer closeStore()
	}

	resolver := users.NewClient(cfg.UsersAPIURL)
	publisher := initEvents(cfg, log)

	assembler := thread.NewAssembler(comments, resolver)
	mutations := service.NewMutations(comments, resolver, publisher, log)
	verifier := auth.JWTVerifier{Secret: cfg.JWTSecret}

	r := chi.NewRouter()
	httpserver.SetupRouter(r)

	// Listing forwards the caller's bearer token to the users service but
	// does not verify it locally.
	r.Group(func(r chi.Router) {
		r.Use(auth.CaptureToken)
		r.Get("/posts/{postId}/comments", handlers.ListComments(assembler))
	})
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser(verifier))
		r.Post("/posts/{postId}/comments", handlers.CreateComment(mutations))
		r.Patch("/comments/{commentId}", handlers.UpdateComment(mutations))
		r.Delete("/comments/{commentId}", handlers.DeleteComment(mutations))
	})

	srv := httpserver.New(httpserver.Options{Addr: cfg.HTTP.Addr, Router: r})

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		go func() {
			<-ctx.Done()
			_ = srv.Shutdown(context.Background())
		}()
		return srv.Start(log)
	})

	log.Info("exit", zap.Int("code", code))
	run.Exit(code)
}

// initStore selects the CommentStore backend. In production it requires a
// working Postgres connection and terminates the process otherwise.
func initStore(cfg config.AppConfig, log *zap.Logger) (store.CommentStore, func()) {
	if cfg.DatabaseURL == "" {
		if cfg.IsProduction() {
			log.Error("DATABASE_URL is required in production")
			_ = log.Sync()
			run.Exit(1)
		}
		log.Warn("DATABASE_URL not set, using in-memory comment store (development only)")
		return store.NewInMemoryCommentStore(), nil
	}

	pool, err := db.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		if cfg.IsProduction() {
			log.Error("postgres is required in production but unavailable", zap.Error(err))
			_ = log.Sync()
			run.Exit(1)
		}
		log.Warn("postgres unavailable, falling back to in-memory comment store", zap.Error(err))
		return store.NewInMemoryCommentStore(), nil
	}

	log.Info("comment store: postgres")
	return store.NewPostgresCommentStore(pool), pool.Close
}

// initEvents connects the lifecycle event publisher. NATS being down is
// never fatal; the service runs without the event stream.
func initEvents(cfg config.AppConfig, log *zap.Logger) *events.Publisher {
	if cfg.NATSURL == "" {
		log.Warn("NATS_URL not set, comment events disabled")
		return nil
	}
	nc, err := events.Connect(events.Options{URL: cfg.NATSURL})
	if err != nil {
		log.Error("nats connect, comment events disabled", zap.Error(err))
		return nil
	}
	pub, err := events.NewPublisher(nc)
	if err != nil {
		log.Error("jetstream init, comment events disabled", zap.Error(err))
		nc.Close()
		return nil
	}
	log.Info("comment events: nats jetstream")
	return pub
}
