package di

import (
	"context"
	"fmt"
	"time"

	domrepo "StockSage/internal/domain/repository"
	domsvc "StockSage/internal/domain/service"
	"StockSage/internal/handler/api"
	internalrepo "StockSage/internal/repository"
	"StockSage/internal/services/agents"
	"StockSage/internal/usecase"
	"StockSage/pkg/cache"
	pkgch "StockSage/pkg/clickhouse"
	"StockSage/pkg/config"
	xhttp "StockSage/pkg/http"
	pkgkafka "StockSage/pkg/kafka"
	applogger "StockSage/pkg/logger"
	"StockSage/pkg/metrics"
	"StockSage/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideAgents creates the full agent roster.
func ProvideAgents() []domsvc.Agent {
	return agents.All()
}

// ProvideBaseSpecs builds the default agent configuration from YAML.
func ProvideBaseSpecs(cfg *config.Config, roster []domsvc.Agent) (domsvc.SpecSet, error) {
	specs := domsvc.DefaultSpecs(roster)
	for name, ac := range cfg.Scoring.Agents {
		if err := specs.SetWeight(name, ac.Weight); err != nil {
			return nil, err
		}
		if !ac.IsEnabled() {
			if err := specs.Disable(name); err != nil {
				return nil, err
			}
		}
	}
	if err := specs.Validate(); err != nil {
		return nil, err
	}
	return specs, nil
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when the
// history store is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.SchemaStatements(cfg.ClickHouse.Database, "analyses")); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideHistory creates the ClickHouse history store when configured.
func ProvideHistory(client *pkgch.Client, cfg *config.Config, l *applogger.Logger) domrepo.HistoryStore {
	if client == nil {
		return nil
	}
	table := cfg.ClickHouse.Database + ".analyses"
	store := internalrepo.NewClickHouseHistory(client.DB(), table)
	if ch, ok := store.(*internalrepo.ClickHouseHistory); ok {
		ch.SetLogger(l)
	}
	return store
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
		pkgkafka.WithBatchTimeout(cfg.Kafka.BatchTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvidePublisher creates the Kafka analysis publisher when configured.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) domrepo.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideCacheService picks the cache backend: Redis when configured,
// in-memory otherwise, nil when caching is off.
func ProvideCacheService(cfg *config.Config) (cache.Service, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	if cfg.Cache.Redis.Enabled {
		return cache.NewRedisCache(
			cache.WithRedisHost(cfg.Cache.Redis.Host),
			cache.WithRedisPort(cfg.Cache.Redis.Port),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
		)
	}
	return cache.NewMemoryCache(), nil
}

// ProvideResultCache wraps the cache backend as a result cache.
func ProvideResultCache(svc cache.Service, cfg *config.Config, l *applogger.Logger) domrepo.ResultCache {
	if svc == nil {
		return nil
	}
	return internalrepo.NewCachedResults(svc, cfg.Cache.TTL, l)
}

// ProvideOrchestrator creates the agent orchestrator.
func ProvideOrchestrator(roster []domsvc.Agent, l *applogger.Logger, m domrepo.Metrics, cfg *config.Config) *usecase.Orchestrator {
	return usecase.NewOrchestrator(roster, l, m, cfg.Scoring.AgentTimeout)
}

// ProvideScoringSystem creates the batch scoring system with whatever
// optional sinks are configured.
func ProvideScoringSystem(
	orch *usecase.Orchestrator,
	cfg *config.Config,
	l *applogger.Logger,
	m domrepo.Metrics,
	rc domrepo.ResultCache,
	pub domrepo.Publisher,
	hist domrepo.HistoryStore,
) *usecase.ScoringSystem {
	opts := make([]usecase.ScoringOption, 0, 3)
	if rc != nil {
		opts = append(opts, usecase.WithResultCache(rc))
	}
	if pub != nil {
		opts = append(opts, usecase.WithPublisher(pub))
	}
	if hist != nil {
		opts = append(opts, usecase.WithHistory(hist))
	}
	return usecase.NewScoringSystem(orch, cfg.Scoring.BatchWorkers, l, m, opts...)
}

// ProvideHandler creates the HTTP handler for the scoring API.
func ProvideHandler(
	l *applogger.Logger,
	scoring *usecase.ScoringSystem,
	base domsvc.SpecSet,
	cfg *config.Config,
	hist domrepo.HistoryStore,
) xhttp.Handler {
	h := api.NewAnalysisEchoHandler(l, scoring, base, cfg.Scoring.Profiles)
	if hist != nil {
		h.SetHistory(hist)
	}
	return h
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	pub domrepo.Publisher,
	cacheSvc cache.Service,
) *server.App {
	return server.New(cfg, l, handler, chClient, pub, cacheSvc)
}
