package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/config"
	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/infra/logger"
	pgrepo "github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/repo/postgres"
	redrepo "github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/repo/redis"
	matchessvc "github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/services/matches"
)

const app = "matchctl"

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           app,
		Short:         app + " manages the matching database and inspects candidate results",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	defaultConfig := os.Getenv("APP_CONFIG")
	if defaultConfig == "" {
		defaultConfig = "configs/config.yaml"
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfig, "config file (env APP_CONFIG)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log.level from config")

	cmd.AddCommand(
		newMigrateCmd(opts),
		newCandidatesCmd(opts),
		newExplainCmd(opts),
		newPreferenceCmd(opts),
		newTokenCmd(opts),
	)
	return cmd
}

func (o *rootOptions) load() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	log, err := logger.New(cfg.Log.Level, cfg.Env)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}

// runtime holds the storage handles a command needs. close releases them.
type runtime struct {
	cfg     config.Config
	log     *zap.Logger
	pool    *pgxpool.Pool
	redis   *goredis.Client
	repo    *pgrepo.PreferenceRepo
	cached  *redrepo.CachedPreferences
	service *matchessvc.Service
}

func (o *rootOptions) open(ctx context.Context) (*runtime, error) {
	cfg, log, err := o.load()
	if err != nil {
		return nil, err
	}

	pool, err := pgrepo.NewPool(ctx, pgrepo.PoolConfig{
		DSN:             cfg.Postgres.DSN,
		MaxConns:        cfg.Postgres.MaxConns,
		MaxConnIdleTime: cfg.Postgres.MaxConnIdleTime,
	})
	if err != nil {
		_ = log.Sync()
		return nil, err
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	repo := pgrepo.NewPreferenceRepo(pool)
	cached := redrepo.NewCachedPreferences(repo, redisClient, cfg.Redis.PreferenceTTL, log)

	return &runtime{
		cfg:    cfg,
		log:    log,
		pool:   pool,
		redis:  redisClient,
		repo:   repo,
		cached: cached,
		service: matchessvc.NewService(matchessvc.Dependencies{
			Repository: cached,
			Logger:     log,
		}, matchessvc.Config{
			ResultLimit:    cfg.Matching.ResultLimit,
			RequestTimeout: cfg.Matching.RequestTimeout,
		}),
	}, nil
}

func (r *runtime) close() {
	if r.redis != nil {
		_ = r.redis.Close()
	}
	if r.pool != nil {
		r.pool.Close()
	}
	_ = r.log.Sync()
}

func parseUserFlag(name, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("--%s must be a non-nil uuid, got %q", name, raw)
	}
	return id, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
