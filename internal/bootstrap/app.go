package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"health-diagnosis/internal/ai"
	appsvc "health-diagnosis/internal/app"
	"health-diagnosis/internal/cache"
	"health-diagnosis/internal/config"
	"health-diagnosis/internal/extract"
	"health-diagnosis/internal/places"
	rabbitmqClient "health-diagnosis/internal/platform/rabbitmq"
	redisClient "health-diagnosis/internal/platform/redis"
	"health-diagnosis/internal/retry"
)

type App struct {
	Config *config.Config
	Logger *slog.Logger

	Model   ai.Model
	Reports *appsvc.ReportService

	// Optional infrastructure; nil when not configured.
	Redis       *redis.Client
	RateLimiter *cache.RateLimiter
	MQConn      *amqp.Connection

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := newLogger(cfg)
	a := &App{
		Config:    cfg,
		Logger:    logger,
		StartedAt: time.Now(),
	}

	a.Model, err = newModel(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Redis.Addr != "" {
		a.Redis, err = redisClient.New(ctx, redisClient.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.RateLimiter = cache.NewRateLimiter(a.Redis, cfg.Redis.RateLimit, cfg.Redis.RateLimitSpan.Duration)
	}

	var publisher appsvc.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		a.MQConn, err = rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.App.Name)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		publisher = rabbitmqClient.NewEventPublisher(a.MQConn, cfg.RabbitMQ.EventsQueue)
	}

	policy := retry.NewFixed(cfg.Analysis.MaxAttempts, cfg.Analysis.RetryDelay.Duration)
	placesClient := places.NewClient(places.Config{
		APIKey:  cfg.Maps.APIKey,
		BaseURL: cfg.Maps.BaseURL,
		Timeout: cfg.Maps.Timeout.Duration,
	})
	if !placesClient.Configured() {
		logger.Warn("GOOGLE_MAPS_API_KEY not set, doctor recommendations are disabled")
	}

	a.Reports = appsvc.NewReportService(
		extract.NewExtractor(cfg.Upload.TempDir),
		appsvc.NewAnalysisService(a.Model, policy, logger),
		appsvc.NewDoctorService(placesClient, cfg.Maps.MaxResults, logger),
		publisher,
		logger,
	)

	logger.Info("app initialized",
		"llm_provider", cfg.LLM.Provider,
		"rate_limit", a.RateLimiter != nil,
		"analysis_events", a.MQConn != nil,
	)
	return a, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.New(handler).With("app", cfg.App.Name)
}

func newModel(ctx context.Context, cfg *config.Config) (ai.Model, error) {
	switch cfg.LLM.Provider {
	case config.ProviderOpenAI:
		return ai.NewOpenAICompatibleModel(ai.ChatConfig{
			BaseURL: cfg.LLM.BaseURL,
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLM.RequestTimeout.Duration,
		}), nil
	default:
		m, err := ai.NewGeminiModel(ctx, ai.GeminiConfig{
			APIKey:  cfg.LLM.GeminiAPIKey,
			Model:   cfg.LLM.GeminiModel,
			Timeout: cfg.LLM.RequestTimeout.Duration,
		})
		if err != nil {
			return nil, fmt.Errorf("init gemini model failed: %w", err)
		}
		return m, nil
	}
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Model != nil {
		if err := a.Model.Close(); err != nil {
			closeErr = err
		}
	}
	return closeErr
}
