package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/karkasai/karkasai-backend/internal/config"
	"github.com/karkasai/karkasai-backend/internal/http/handler"
	"github.com/karkasai/karkasai-backend/internal/http/router"
	"github.com/karkasai/karkasai-backend/internal/observability"
	"github.com/karkasai/karkasai-backend/internal/realtime"
	"github.com/karkasai/karkasai-backend/internal/repository"
	"github.com/karkasai/karkasai-backend/internal/security"
	"github.com/karkasai/karkasai-backend/internal/seed"
	"github.com/karkasai/karkasai-backend/internal/service"
)

const shutdownTimeout = 10 * time.Second

// App holds the wired application. Construction is eager: by the time New
// returns, the schema is migrated, the seed has run, and the server is ready
// to listen.
type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Observability *observability.Runtime
	Server        *http.Server

	bridge *realtime.Bridge
	rdb    *redis.Client
}

func New(ctx context.Context, cfg *config.Config, runtime *observability.Runtime) (*App, error) {
	log := runtime.Logger

	db, err := repository.OpenDatabase(cfg.DatabaseURL, log)
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(db); err != nil {
		return nil, err
	}

	// The gorm store needs a real database; without one the reference
	// in-memory store carries the session lifecycle.
	var sessionStore repository.SessionStore
	if cfg.DatabaseURL == "" {
		sessionStore = repository.NewMemorySessionStore()
	} else {
		sessionStore = repository.NewSessionStore(db)
	}

	codec := security.NewTokenCodec(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTokenTTL)
	userRepo := repository.NewUserRepository(db)
	users := service.NewUserService(userRepo)
	sessions := service.NewSessionService(sessionStore)

	if err := seed.Run(ctx, users, userRepo, cfg, log); err != nil {
		return nil, err
	}

	hub := realtime.NewHub(log)
	var (
		notifier service.Notifier
		bridge   *realtime.Bridge
		rdb      *redis.Client
	)
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		notifier = realtime.NewPublisher(rdb, "", log)
		bridge = realtime.NewBridge(rdb, hub, "", log)
	} else {
		log.Warn("no REDIS_ADDR configured, realtime events stay process-local")
		notifier = realtime.NewLocalNotifier(hub, log)
	}

	images := service.NoopImageStore{}
	groups := service.NewGroupService(repository.NewGroupRepository(db), repository.NewTagRepository(db), notifier)
	posts := service.NewPostService(repository.NewPostRepository(db), groups, notifier)
	comments := service.NewCommentService(repository.NewCommentRepository(db), repository.NewPostRepository(db), groups, notifier)
	tags := service.NewTagService(repository.NewTagRepository(db))

	gateway := realtime.NewGateway(log, hub, codec, originPatterns(cfg.CORSOrigins))

	h := router.New(router.Dependencies{
		AuthHandler:      handler.NewAuthHandler(codec, sessions, users, log, cfg.SessionTTL, !cfg.IsDev()),
		GroupHandler:     handler.NewGroupHandler(groups, users, images),
		PostHandler:      handler.NewPostHandler(posts, images),
		CommentHandler:   handler.NewCommentHandler(comments, images),
		TagHandler:       handler.NewTagHandler(tags),
		AdminHandler:     handler.NewAdminHandler(groups),
		Gateway:          gateway,
		TokenCodec:       codec,
		Logger:           log,
		CORSOrigins:      cfg.CORSOrigins,
		APIRateLimitRPM:  cfg.APIRateLimitRPM,
		AuthRateLimitRPM: cfg.AuthRateLimitRPM,
		EnableOTelHTTP:   cfg.OTELEnabled,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &App{
		Config:        cfg,
		Logger:        log,
		Observability: runtime,
		Server:        server,
		bridge:        bridge,
		rdb:           rdb,
	}, nil
}

// Run serves until ctx is cancelled, then drains connections and shuts the
// observability pipeline down.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info("http server listening", "addr", a.Server.Addr, "profile", a.Config.Profile)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if a.bridge != nil {
		g.Go(func() error {
			if err := a.bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		a.Logger.Info("shutting down")
		err := a.Server.Shutdown(shutdownCtx)
		if a.rdb != nil {
			err = errors.Join(err, a.rdb.Close())
		}
		return errors.Join(err, a.Observability.Shutdown(shutdownCtx))
	})

	return g.Wait()
}

// RunSessionCleanup purges expired session rows. Expiry is otherwise only
// enforced lazily at validation time, so retention is an operator concern.
func RunSessionCleanup(ctx context.Context, cfg *config.Config, log *slog.Logger) (int64, error) {
	db, err := repository.OpenDatabase(cfg.DatabaseURL, log)
	if err != nil {
		return 0, err
	}
	if err := repository.Migrate(db); err != nil {
		return 0, err
	}
	sessions := service.NewSessionService(repository.NewSessionStore(db))
	return sessions.CleanupExpired(ctx)
}

// originPatterns reduces configured CORS origins to the host patterns the
// websocket accept check understands.
func originPatterns(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			continue
		}
		out = append(out, u.Host)
	}
	return out
}
