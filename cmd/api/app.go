package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"ai-receptionist/internal/audit"
	"ai-receptionist/internal/auth"
	"ai-receptionist/internal/config"
	"ai-receptionist/internal/directory"
	"ai-receptionist/internal/extraction"
	"ai-receptionist/internal/jobs"
	"ai-receptionist/internal/metrics"
	"ai-receptionist/internal/notify"
	"ai-receptionist/internal/ratelimit"
	"ai-receptionist/internal/receptionist"
	"ai-receptionist/internal/telephony"
	"ai-receptionist/internal/transcription"
	"ai-receptionist/pkg/utils"
)

// app holds the wired dependencies of the API process.
type app struct {
	cfg      config.Config
	db       *sql.DB
	rdb      *redis.Client
	store    jobs.Store
	service  *receptionist.Service
	auth     *auth.Manager
	verifier *telephony.SignatureVerifier
	limiter  *ratelimit.IPLimiter
	registry *prometheus.Registry
}

func buildApp(ctx context.Context, cfg config.Config, log *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, registry: prometheus.NewRegistry()}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.New(a.registry)

	var err error
	if a.auth, err = auth.NewManager(cfg.Auth); err != nil {
		return nil, fmt.Errorf("auth init: %w", err)
	}

	if addr := cfg.RedisAddr(); addr != "" {
		a.rdb, err = utils.OpenRedis(ctx, utils.RedisConfig{Addr: addr, Password: cfg.Redis.Password})
		if err != nil {
			return nil, fmt.Errorf("redis init: %w", err)
		}
	}

	auditRepo, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	dir, err := openDirectory(cfg, a.rdb)
	if err != nil {
		a.Close()
		return nil, err
	}

	var idem receptionist.Idempotency = receptionist.NewMemoryIdempotency(cfg.Receptionist.IdempotencyTTL)
	if a.rdb != nil {
		idem = receptionist.NewRedisIdempotency(a.rdb, cfg.Receptionist.IdempotencyTTL)
	}

	acquirer := transcription.NewAcquirer(
		transcription.NewClient(cfg.Transcription.BaseURL, cfg.Transcription.APIKey, cfg.Transcription.Model, nil),
		cfg.Transcription.MaxAttempts,
		cfg.Transcription.BaseDelay,
	)
	acquirer.Observer = collector

	messaging := telephony.NewMessagingClient(telephony.MessagingConfig{
		AccountSID: cfg.Twilio.AccountSID,
		AuthToken:  cfg.Twilio.AuthToken,
		FromNumber: cfg.Twilio.FromNumber,
		BaseURL:    cfg.Twilio.APIBaseURL,
	}, nil)
	if !messaging.Configured() {
		log.Warn("messaging credentials missing; follow-up sms will be reported as failed")
	}

	a.service = receptionist.NewService(receptionist.Deps{
		Directory:   dir,
		Transcripts: acquirer,
		Extractor:   extraction.NewExtractor(newCompleter(cfg.Extraction), collector),
		Store:       a.store,
		Notifier:    notify.New(messaging, cfg.Receptionist.OnboardingURL),
		Idempotency: idem,
		Audit:       audit.NewService(auditRepo),
		Metrics:     collector,
	}, receptionist.Policy{
		ConfidenceThreshold: cfg.Receptionist.ConfidenceThreshold,
		Deadline:            cfg.Receptionist.PipelineDeadline,
	})

	if cfg.Twilio.VerifySignature {
		a.verifier = &telephony.SignatureVerifier{Secret: cfg.SigningSecret(), PublicURL: cfg.Twilio.WebhookURL}
	} else {
		log.Warn("webhook signature verification disabled")
	}

	a.limiter = ratelimit.New(ratelimit.Config{
		Rate:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
		Burst: cfg.RateLimit.Burst,
	})
	return a, nil
}

// openStore selects the job store by DB_DRIVER and returns the matching
// audit repository.
func (a *app) openStore(ctx context.Context) (audit.Repository, error) {
	var driver, dsn string
	switch a.cfg.DB.Driver {
	case "memory":
		a.store = jobs.NewMemoryStore()
		return audit.NewMemoryRepo(), nil
	case "sqlite":
		driver, dsn = utils.DriverSQLite, a.cfg.DB.SQLitePath
	default:
		driver, dsn = utils.DriverPostgres, a.cfg.PostgresDSN()
	}

	db, err := utils.OpenDatabase(ctx, driver, dsn, utils.PoolConfig{})
	if err != nil {
		return nil, fmt.Errorf("%s init: %w", a.cfg.DB.Driver, err)
	}
	a.db = db

	store := jobs.NewSQLStore(db, driver)
	repo := audit.NewSQLRepo(db, driver)
	// sqlite files are created on demand; postgres schemas come from receptionistctl migrate.
	if driver == utils.DriverSQLite {
		if err := store.Migrate(ctx); err != nil {
			return nil, err
		}
		if err := repo.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("audit migrate: %w", err)
		}
	}
	a.store = store
	return repo, nil
}

func openDirectory(cfg config.Config, rdb *redis.Client) (directory.Resolver, error) {
	if cfg.Receptionist.Directory == "redis" {
		if rdb == nil {
			return nil, fmt.Errorf("redis directory requires REDIS_HOST")
		}
		return directory.NewRedis(rdb, ""), nil
	}
	var (
		static *directory.StaticDirectory
		err    error
	)
	if cfg.Receptionist.ContractorDirectoryFile != "" {
		static, err = directory.LoadFile(cfg.Receptionist.ContractorDirectoryFile)
	} else {
		static, err = directory.ParsePhoneMap(cfg.Receptionist.ContractorPhoneMap)
	}
	if err != nil {
		return nil, fmt.Errorf("contractor directory: %w", err)
	}
	return static, nil
}

func newCompleter(cfg config.ExtractionConfig) extraction.Completer {
	if cfg.Provider == "anthropic" {
		return extraction.NewAnthropicCompleter(cfg.APIKey, cfg.Model, cfg.BaseURL)
	}
	return extraction.NewOpenAICompleter(cfg.BaseURL, cfg.APIKey, cfg.Model, nil)
}

func (a *app) Close() {
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
}
