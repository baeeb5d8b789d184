package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/recruitment/internal"
	"github.com/frahmantamala/recruitment/internal/assessment"
	"github.com/frahmantamala/recruitment/internal/auth"
	authPostgres "github.com/frahmantamala/recruitment/internal/auth/postgres"
	"github.com/frahmantamala/recruitment/internal/core/events"
	"github.com/frahmantamala/recruitment/internal/cv"
	cvPostgres "github.com/frahmantamala/recruitment/internal/cv/postgres"
	"github.com/frahmantamala/recruitment/internal/job"
	jobPostgres "github.com/frahmantamala/recruitment/internal/job/postgres"
	"github.com/frahmantamala/recruitment/internal/mail"
	"github.com/frahmantamala/recruitment/internal/rbac"
	rbacPostgres "github.com/frahmantamala/recruitment/internal/rbac/postgres"
	"github.com/frahmantamala/recruitment/internal/transport"
	"github.com/frahmantamala/recruitment/internal/transport/middleware"
	"github.com/frahmantamala/recruitment/internal/transport/rest"
	"github.com/frahmantamala/recruitment/internal/transport/swagger"
	"github.com/frahmantamala/recruitment/internal/user"
	userPostgres "github.com/frahmantamala/recruitment/internal/user/postgres"
	"github.com/frahmantamala/recruitment/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/hibiken/asynq"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	SQL    *sqlx.DB
	DB     *gorm.DB
	Redis  *redis.Client
	Queue  *asynq.Client
	Bus    *events.EventBus
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer deps.Close()

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			deps.Close()
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	sqlDB, db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps := &Dependencies{
		Config: config,
		SQL:    sqlDB,
		DB:     db,
		Redis:  initRedis(config.Redis),
		Bus:    events.NewEventBus(lg),
		Logger: lg,
	}

	router, err := buildRouter(deps)
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.Router = router
	return deps, nil
}

func buildRouter(deps *Dependencies) (*chi.Mux, error) {
	cfg := deps.Config
	lg := deps.Logger
	base := transport.NewBaseHandler(lg)

	// authorization
	reader := rbacPostgres.NewPermissionReader(deps.SQL)
	resolver := rbac.NewPermissionResolver(reader, permissionCache(deps), lg)
	resolver.SubscribeInvalidation(deps.Bus)

	authRepo := authPostgres.NewRepository(deps.DB)
	sessions := auth.NewSessionResolver(authRepo, nil)
	gate := rbac.NewGate(sessions, resolver, reader)
	guard := middleware.NewSessionAuth(base, gate, cfg.Security.SessionCookieName)

	// account mail
	notifier := mail.NewNotifier(mailDispatcher(deps), cfg.Security.ResetTokenTTL, lg)
	notifier.RegisterEventHandlers(deps.Bus)

	authSvc := auth.NewService(authRepo, resolver, deps.Bus, lg, auth.Options{
		BCryptCost:    cfg.Security.BCryptCost,
		SessionTTL:    cfg.Security.SessionTTL,
		ResetTokenTTL: cfg.Security.ResetTokenTTL,
	})
	rbacSvc := rbac.NewService(rbacPostgres.NewRepository(deps.DB), reader, resolver, deps.Bus, lg)
	userSvc := user.NewService(userPostgres.NewUserRepository(deps.DB), resolver, deps.Bus, lg, cfg.Security.BCryptCost)

	objects, err := cvObjectStore(cfg.Storage)
	if err != nil {
		return nil, err
	}
	cvSvc := cv.NewService(cvPostgres.NewCVRepository(deps.DB), objects, lg)
	jobSvc := job.NewService(jobPostgres.NewJobRepository(deps.DB), cvSvc, lg)
	assessmentSvc := assessment.NewService(assessment.NewOpenAIModel(cfg.OpenAI), jobSvc, cvSvc, cfg.OpenAI.MaxTokens, lg)

	handlers := rest.Handlers{
		Auth: auth.NewHandler(base, authSvc, auth.CookieConfig{
			Name:   cfg.Security.SessionCookieName,
			Secure: cfg.Security.CookieSecure,
		}),
		RBAC:       rbac.NewHandler(base, rbacSvc),
		Users:      user.NewHandler(base, userSvc),
		Jobs:       job.NewHandler(base, jobSvc),
		CV:         cv.NewHandler(base, cvSvc),
		Assessment: assessment.NewHandler(base, assessmentSvc),
		Health:     rest.NewHealthHandler(healthChecks(deps)),
	}

	if cfg.Server.OpenAPIPath != "" {
		spec, err := swagger.LoadSpec(context.Background(), cfg.Server.OpenAPIPath)
		if err != nil {
			lg.Warn("openapi document not served", "path", cfg.Server.OpenAPIPath, "error", err)
		} else {
			lg.Info("openapi document loaded", "title", spec.Title(), "operations", spec.Operations())
			handlers.Spec = spec
		}
	}

	return rest.NewRouter(handlers, guard, rest.Options{
		Origins:        cfg.Server.Origins(),
		Production:     cfg.IsProduction(),
		LoginRateLimit: cfg.Security.LoginRateLimit,
	}, lg), nil
}

func permissionCache(deps *Dependencies) rbac.Cache {
	if deps.Redis == nil {
		deps.Logger.Info("redis not configured, permission cache is process local")
		return rbac.NewMemoryCache()
	}
	return rbac.NewRedisCache(deps.Redis, deps.Config.Redis.CacheTTL)
}

func mailDispatcher(deps *Dependencies) mail.Dispatcher {
	if deps.Config.Redis.Addr == "" {
		deps.Logger.Warn("redis not configured, mail is delivered inline")
		return mail.NewInlineDispatcher(mail.NewSMTPSender(deps.Config.Mail), deps.Logger)
	}
	deps.Queue = asynq.NewClient(redisClientOpt(deps.Config.Redis))
	return mail.NewQueueDispatcher(deps.Queue, deps.Logger)
}

// cvObjectStore returns nil for the database backend, which keeps CV bytes
// in the cvs row.
func cvObjectStore(cfg internal.StorageConfig) (cv.ObjectStore, error) {
	if cfg.CVBackend != "s3" {
		return nil, nil
	}
	if cfg.S3.Bucket == "" {
		return nil, errors.New("storage.s3.bucket is required for the s3 backend")
	}
	return cv.NewS3Store(cv.NewS3Client(cfg.S3), cfg.S3.Bucket), nil
}

func healthChecks(deps *Dependencies) map[string]rest.CheckFunc {
	checks := map[string]rest.CheckFunc{
		"database": deps.SQL.PingContext,
	}
	if deps.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return deps.Redis.Ping(ctx).Err()
		}
	}
	return checks
}

func (d *Dependencies) Close() {
	if d.Queue != nil {
		if err := d.Queue.Close(); err != nil {
			d.Logger.Error("Queue close error", "error", err)
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error("Redis close error", "error", err)
		}
	}
	if d.SQL != nil {
		if err := d.SQL.Close(); err != nil {
			d.Logger.Error("Database close error", "error", err)
		}
	}
}

// initDB opens one pgx pool and shares it between sqlx, which serves the
// permission reads, and gorm, which serves the repositories.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, *gorm.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: dbConn.DB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		_ = dbConn.Close()
		return nil, nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	return dbConn, gdb, nil
}

func initRedis(cfg internal.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func redisClientOpt(cfg internal.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}
