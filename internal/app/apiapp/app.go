package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/config"
	s3infra "github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/infra/s3"
	pgrepo "github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/repo/postgres"
	redrepo "github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/repo/redis"
	authsvc "github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/services/auth"
	matchessvc "github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/services/matches"
	mediasvc "github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/services/media"
	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/services/ranking"
	ratesvc "github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/services/rate"
	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/transport/http/handlers"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, pgrepo.PoolConfig{
		DSN:             cfg.Postgres.DSN,
		MaxConns:        cfg.Postgres.MaxConns,
		MaxConnIdleTime: cfg.Postgres.MaxConnIdleTime,
	}); err != nil {
		log.Warn("postgres init failed, candidate requests will be rejected", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	repo := redrepo.NewCachedPreferences(
		pgrepo.NewPreferenceRepo(pool),
		redisClient,
		cfg.Redis.PreferenceTTL,
		log,
	)

	readiness := []handlers.ReadinessCheck{
		{Name: "postgres", Check: func(ctx context.Context) error {
			if pool == nil {
				return pgrepo.ErrPoolUnavailable
			}
			return pool.Ping(ctx)
		}},
		{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}},
	}

	deps := matchessvc.Dependencies{
		Repository: repo,
		Ranker:     ranking.NewRanker(),
		Logger:     log,
	}
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Region:    cfg.S3.Region,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, photo urls will not be signed", zap.Error(err))
	} else {
		signer := mediasvc.NewPhotoSigner(c, cfg.S3.Bucket)
		deps.PhotoSigner = signer
		readiness = append(readiness, handlers.ReadinessCheck{Name: "s3", Check: signer.EnsureBucket})
	}

	matchesService := matchessvc.NewService(deps, matchessvc.Config{
		ResultLimit:    cfg.Matching.ResultLimit,
		RequestTimeout: cfg.Matching.RequestTimeout,
	})

	limiter := ratesvc.NewLimiter(
		redrepo.NewRateRepo(redisClient),
		cfg.Matching.RatePerMinute,
		cfg.Matching.RatePer10Sec,
	)

	RegisterRoutes(r, Dependencies{
		MatchService: matchesService,
		Tokens:       authsvc.NewJWTManager(cfg.Auth.JWTSecret, 0),
		Limiter:      limiter,
		Readiness:    readiness,
		Logger:       log,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
