package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"profileplus/internal/contact"
	"profileplus/internal/dashboard"
	"profileplus/internal/identity"
	"profileplus/internal/llm"
	"profileplus/internal/llm/gemini"
	"profileplus/internal/llm/openai"
	"profileplus/internal/previews"
	"profileplus/internal/profiles"
	"profileplus/internal/queue"
	"profileplus/internal/services/health"
	"profileplus/internal/session"
	"profileplus/internal/shared/auth"
	"profileplus/internal/shared/config"
	"profileplus/internal/shared/server"
	"profileplus/internal/shared/server/middleware"
	"profileplus/internal/shared/storage/db"
	"profileplus/internal/shared/storage/kv"
	"profileplus/internal/shared/storage/kv/local"
	"profileplus/internal/shared/storage/kv/pg"
	redisstore "profileplus/internal/shared/storage/kv/redis"
	s3store "profileplus/internal/shared/storage/kv/s3"
	"profileplus/internal/shared/storage/kv/sqlite"
	"profileplus/internal/views"
)

// MockAnalyzerDelay is how long the mock analyzer pretends to think.
var MockAnalyzerDelay = 1500 * time.Millisecond

const sessionSweepInterval = 5 * time.Minute

// App holds shared dependencies.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	Store    kv.Store
	Profiles *profiles.Store
	Catalog  *profiles.Catalog
	Sessions *session.Registry
	Analyzer llm.CVAnalyzer
	Notifier queue.Client
	Previews *previews.Channel

	closers []func() error
	cancel  context.CancelFunc
}

// Build prepares every dependency and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.StoreDriver) == "" {
		cfg.StoreDriver = "file"
	}
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{Config: cfg, cancel: cancel}

	store, closeStore, err := OpenStore(ctx, cfg)
	if err != nil {
		if !cfg.IsDevLike() {
			cancel()
			return nil, err
		}
		log.Printf("bootstrap: %s store unavailable; using in-memory store: %v", cfg.StoreDriver, err)
		store, closeStore, cfg.StoreDriver = kv.NewMemoryStore(), nil, "memory"
		app.Config = cfg
	}
	app.addCloser(closeStore)
	app.Store = store
	app.Profiles = profiles.NewStore(store)
	app.Catalog = profiles.NewCatalog(ctx, app.Profiles, profiles.SeedProfile())

	app.Analyzer, err = buildAnalyzer(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	notifier, closeNotifier, err := buildNotifier(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Notifier = notifier
	app.addCloser(closeNotifier)

	signer, err := auth.NewSigner(cfg.SessionSecret, 0, !cfg.IsDevLike())
	if err != nil {
		app.Close()
		return nil, err
	}
	checker, err := identity.NewChecker()
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("hash demo credentials: %w", err)
	}

	app.Sessions = session.NewRegistry(signer, session.Deps{
		Catalog:  app.Catalog,
		Checker:  checker,
		Analyzer: app.Analyzer,
	}, session.DefaultIdleTTL)
	go app.Sessions.RunSweeper(ctx, sessionSweepInterval)

	limiter := middleware.NewRateLimiter(nil)
	go pruneRateLimits(ctx, limiter, sessionSweepInterval)

	app.Previews = &previews.Channel{Store: app.Profiles, Hub: previews.NewHub()}
	google := identity.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, checker)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:   cfg,
		Sessions: app.Sessions,
		SessionHandler: &session.Handler{
			Registry:   app.Sessions,
			Google:     google,
			UIBaseURL:  cfg.UIBaseURL,
			DemoGoogle: cfg.IsDevLike(),
		},
		ViewHandler:      views.NewHandler(&views.Resolver{Store: app.Profiles}),
		DashboardHandler: dashboard.NewHandler(app.Previews, cfg.CVMaxBytes),
		ContactHandler:   contact.NewHandler(contact.NewService(app.Notifier)),
		PreviewHandler:   previews.NewHandler(app.Previews, cfg.CORSAllowOrigin),
		Health:           health.NewService(app.Store, cfg.StoreDriver),
		RateLimiter:      limiter,
	})

	log.Printf("bootstrap: store=%s llm=%s notify=%s google=%v", cfg.StoreDriver, cfg.LLMProvider, cfg.NotifyDriver, google.Configured())
	return app, nil
}

// Close stops background work and releases connections.
func (a *App) Close() error {
	if a.cancel != nil {
		a.cancel()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// pruneRateLimits drops buckets of clients idle past the session TTL.
func pruneRateLimits(ctx context.Context, limiter *middleware.RateLimiter, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Prune(session.DefaultIdleTTL); n > 0 {
				log.Printf("bootstrap: pruned %d idle rate-limit buckets", n)
			}
		}
	}
}

func (a *App) addCloser(fn func() error) {
	if fn != nil {
		a.closers = append(a.closers, fn)
	}
}

// OpenStore opens the key-value backend selected by cfg.StoreDriver. The
// returned close func may be nil.
func OpenStore(ctx context.Context, cfg config.Config) (kv.Store, func() error, error) {
	switch cfg.StoreDriver {
	case "memory":
		return kv.NewMemoryStore(), nil, nil
	case "sqlite":
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, nil, errors.New("DATABASE_URL is required for STORE_DRIVER=postgres")
		}
		sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			return nil, nil, err
		}
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		return pg.New(sqlDB), sqlDB.Close, nil
	case "redis":
		s, client, err := redisstore.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return s, client.Close, nil
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, nil, errors.New("S3_BUCKET is required for STORE_DRIVER=s3")
		}
		s, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	default:
		s, err := local.New(cfg.LocalStoreDir)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	}
}

func buildAnalyzer(ctx context.Context, cfg config.Config) (llm.CVAnalyzer, error) {
	mock := llm.MockAnalyzer{Delay: MockAnalyzerDelay}
	switch cfg.LLMProvider {
	case "mock":
		return mock, nil
	case "openai":
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			log.Printf("bootstrap: OPENAI_API_KEY not set; using mock analyzer")
			return mock, nil
		}
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, "")
	default:
		if strings.TrimSpace(cfg.GoogleAPIKey) == "" {
			log.Printf("bootstrap: GOOGLE_API_KEY not set; using mock analyzer")
			return mock, nil
		}
		return gemini.NewClient(ctx, cfg.GoogleAPIKey, cfg.LLMModel)
	}
}

func buildNotifier(cfg config.Config) (queue.Client, func() error, error) {
	if cfg.NotifyDriver != "amqp" {
		return queue.LogClient{}, nil, nil
	}
	if strings.TrimSpace(cfg.AMQPURL) == "" {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: AMQP_URL not set; logging contact notifications")
			return queue.LogClient{}, nil, nil
		}
		return nil, nil, errors.New("AMQP_URL is required for NOTIFY_DRIVER=amqp")
	}
	client, err := queue.NewAMQPClient(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: amqp unavailable; logging contact notifications: %v", err)
			return queue.LogClient{}, nil, nil
		}
		return nil, nil, err
	}
	return client, client.Close, nil
}
