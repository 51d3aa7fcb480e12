// Package app constructs the process-wide services shared by cmd/api and
// cmd/worker. Postgres and Redis are optional: without them history is kept
// in memory and link caching and background jobs are off.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"

	"github.com/nikhilbhutani/mediainsight/internal/cache"
	"github.com/nikhilbhutani/mediainsight/internal/command"
	"github.com/nikhilbhutani/mediainsight/internal/config"
	"github.com/nikhilbhutani/mediainsight/internal/database"
	"github.com/nikhilbhutani/mediainsight/internal/gemini"
	"github.com/nikhilbhutani/mediainsight/internal/history"
	"github.com/nikhilbhutani/mediainsight/internal/llm"
	"github.com/nikhilbhutani/mediainsight/internal/pipeline"
	"github.com/nikhilbhutani/mediainsight/internal/queue"
	"github.com/nikhilbhutani/mediainsight/internal/relay"
	"github.com/nikhilbhutani/mediainsight/internal/retry"
	"github.com/nikhilbhutani/mediainsight/internal/storage"
	"github.com/nikhilbhutani/mediainsight/internal/transcode"
	"github.com/nikhilbhutani/mediainsight/internal/transcription"
	"github.com/nikhilbhutani/mediainsight/internal/voice"
	"github.com/nikhilbhutani/mediainsight/internal/workspace"
)

type Services struct {
	Config        *config.Config
	Pipeline      *pipeline.Orchestrator
	Voice         *voice.Dispatcher
	Catalog       *voice.Catalog
	History       history.Store
	Transcription *transcription.Client
	Gateway       llm.Gateway

	DB    *pgxpool.Pool      // nil without a database
	Redis *redis.Client      // nil when Redis is unreachable
	Cache *cache.ResultCache // nil when Redis is unreachable
	Jobs  *queue.Client      // nil when Redis is unreachable

	closers []func()
}

func Build(ctx context.Context, cfg *config.Config) (*Services, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Services{Config: cfg}
	fs := afero.NewOsFs()
	runner := command.NewExecRunner()
	workspaces := workspace.NewManager(fs, cfg.Work.Dir)
	retrier := retry.New(retry.PolicyFromConfig(cfg.Retry))

	store, err := storage.New(cfg.Storage, fs)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	chain, err := relay.Build(cfg.Relay, runner, &http.Client{}, fs)
	if err != nil {
		return nil, fmt.Errorf("init relay chain: %w", err)
	}
	slog.Info("relay chain ready", "strategies", chain.Names())

	gem := gemini.NewClient(cfg.Engine.APIKey, cfg.Engine.BaseURL, cfg.Engine.Timeout, fs)
	s.Transcription = transcription.NewClient(
		transcription.NewGeminiEngine(gem, cfg.Engine.Model),
		retrier,
		cfg.Engine.PollInterval,
		cfg.Engine.PollTimeout,
	)
	s.Gateway = llm.NewGateway(cfg.LLM, gem, cfg.Engine.Model, retrier)
	completer := llm.NewCompleter(s.Gateway)

	s.History = s.openHistory(ctx, fs)

	opts := []pipeline.Option{pipeline.WithMinUploadBytes(cfg.Relay.MinBytes)}
	if s.openRedis(ctx) {
		s.Cache = cache.NewResultCache(s.Redis, cfg.Redis.LinkTTL)
		s.Jobs = queue.NewClient(cfg.Redis)
		s.closers = append(s.closers, func() { s.Jobs.Close() })
		opts = append(opts, pipeline.WithLinkCache(s.Cache))
	}

	s.Pipeline = pipeline.NewOrchestrator(
		workspaces,
		transcode.New(cfg.Transcode, runner, fs),
		chain,
		s.Transcription,
		completer,
		s.History,
		opts...,
	)

	var primary voice.Engine
	if cfg.TTS.PrimaryAPIKey != "" {
		primary = voice.NewCloudTTS(voice.CloudTTSConfig{
			APIKey:  cfg.TTS.PrimaryAPIKey,
			BaseURL: cfg.TTS.PrimaryBaseURL,
			Model:   cfg.TTS.PrimaryModel,
		})
	}
	s.Catalog = voice.DefaultCatalog(primary != nil)
	s.Voice = voice.NewDispatcher(
		s.Catalog,
		voice.NewTranslator(completer),
		primary,
		voice.NewEdgeTTS(cfg.TTS.EdgeTTSPath, runner, workspaces),
		store,
	)

	return s, nil
}

func (s *Services) openHistory(ctx context.Context, fs afero.Fs) history.Store {
	if s.Config.Database.URL == "" {
		slog.Warn("DATABASE_URL not set, keeping history in memory")
		return history.NewMemoryStore()
	}

	db, err := database.Open(ctx, s.Config.Database)
	if err != nil {
		slog.Warn("database unavailable, keeping history in memory", "error", err)
		return history.NewMemoryStore()
	}
	if err := database.Migrate(ctx, db, fs, s.Config.Database.MigrationsPath); err != nil {
		slog.Warn("migrations failed", "error", err)
	}
	s.DB = db
	s.closers = append(s.closers, db.Close)
	return history.NewPostgresStore(db)
}

func (s *Services) openRedis(ctx context.Context) bool {
	rdb := cache.NewClient(s.Config.Redis)
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, link cache and background jobs disabled", "error", err)
		rdb.Close()
		return false
	}
	s.Redis = rdb
	s.closers = append(s.closers, func() { rdb.Close() })
	return true
}

// Close releases connections in reverse order of acquisition.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// ErrNoRedis is returned by callers that need Redis when it is unreachable.
var ErrNoRedis = errors.New("redis is required but unreachable")
