package server

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ponto/internal/domain/audit"
	"ponto/internal/domain/auth"
	"ponto/internal/domain/core"
	"ponto/internal/domain/notifications"
	"ponto/internal/domain/punches"
	"ponto/internal/domain/reports"
	"ponto/internal/platform/config"
	"ponto/internal/platform/db"
	"ponto/internal/platform/jobs"
	"ponto/internal/platform/metrics"
	audithandler "ponto/internal/transport/http/handlers/audit"
	authhandler "ponto/internal/transport/http/handlers/auth"
	corehandler "ponto/internal/transport/http/handlers/core"
	notificationshandler "ponto/internal/transport/http/handlers/notifications"
	puncheshandler "ponto/internal/transport/http/handlers/punches"
	reportshandler "ponto/internal/transport/http/handlers/reports"
	"ponto/internal/transport/http/api"
	"ponto/internal/transport/http/middleware"
)

type RouteRegistrar interface {
	RegisterRoutes(r chi.Router)
}

// Deps is everything the HTTP router needs beyond configuration.
type Deps struct {
	Sessions middleware.SessionChecker
	Metrics  *metrics.Collector
	Ready    func(ctx context.Context) error
	Handlers []RouteRegistrar
}

func Run() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	loc := cfg.Location()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	collector := metrics.New()
	deps, jobService := wire(cfg, pool, loc, collector)
	jobService.Start(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(cfg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("server shutdown failed", "err", err)
		}
	}()

	slog.Info("ponto server listening", "addr", cfg.Addr, "timezone", loc.String())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
}

func wire(cfg config.Config, pool *pgxpool.Pool, loc *time.Location, collector *metrics.Collector) (Deps, *jobs.Service) {
	perms := auth.StaticPermissions{}
	auditService := audit.New(pool)

	authService := auth.NewService(auth.NewStore(pool), cfg.JWTSecret, cfg.TokenTTL)
	coreService := core.NewService(core.NewStore(pool), core.Passwords{
		Hash:     auth.HashPassword,
		Validate: auth.ValidatePassword,
	}, cfg.DefaultTargetShiftMinutes)
	punchService := punches.NewService(punches.NewStore(pool, pool), loc, time.Now, collector)
	reportService := reports.NewService(coreService, punchService, reports.NewStore(pool))
	notificationService := notifications.New(notifications.NewStore(pool))
	jobService := jobs.New(pool, reportService, cfg.IncompleteScanInterval, loc)
	jobService.Notifier = notificationService

	return Deps{
		Sessions: authService,
		Metrics:  collector,
		Ready:    pool.Ping,
		Handlers: []RouteRegistrar{
			authhandler.NewHandler(authService, auditService, middleware.LoginRateLimit(cfg.LoginRateLimit, cfg.RateLimitWindow)),
			corehandler.NewHandler(coreService, perms, auditService),
			puncheshandler.NewHandler(punchService, perms, middleware.NewIdempotencyStore(pool), auditService),
			reportshandler.NewHandler(reportService, jobService, punchService, perms, auditService),
			audithandler.NewHandler(auditService, perms),
			notificationshandler.NewHandler(notificationService),
		},
	}, jobService
}

func NewRouter(cfg config.Config, deps Deps) http.Handler {
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Logger(deps.Metrics))
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret, deps.Sessions))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if deps.Ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Ready(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.With(middleware.RequirePermission(auth.PermJobsRead, auth.StaticPermissions{})).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, deps.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerWindow, cfg.RateLimitWindow))
		for _, h := range deps.Handlers {
			h.RegisterRoutes(r)
		}
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})
	return router
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, filepath.Clean("/"+r.URL.Path))
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}
