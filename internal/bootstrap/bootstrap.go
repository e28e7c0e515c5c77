package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	appControllers "github.com/yigit/careernest/internal/app/controllers"
	appMigrations "github.com/yigit/careernest/internal/app/migrations"
	appRepos "github.com/yigit/careernest/internal/app/repositories"
	appRoutes "github.com/yigit/careernest/internal/app/routes"
	appServices "github.com/yigit/careernest/internal/app/services"
	"github.com/yigit/careernest/internal/config"
	"github.com/yigit/careernest/internal/db"
	appMiddleware "github.com/yigit/careernest/internal/middleware"
	pkgAuth "github.com/yigit/careernest/internal/pkg/auth"
	"github.com/yigit/careernest/internal/pkg/authcode"
	"github.com/yigit/careernest/internal/pkg/email"
	"github.com/yigit/careernest/internal/pkg/filestorage"
	"github.com/yigit/careernest/internal/pkg/helpers"
	"github.com/yigit/careernest/internal/pkg/logger"
	"github.com/yigit/careernest/internal/pkg/metrics"
	"github.com/yigit/careernest/internal/seed"
)

// DefaultConfigPath is used when CONFIG_PATH is not set
var DefaultConfigPath = filepath.Join("configs", "config.yaml")

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos       *appRepos.Repositories
	Services    *appServices.Services
	JWTService  *pkgAuth.JWTService
	Session     *appMiddleware.SessionAuth
	RateLimiter *appMiddleware.RateLimiter
	Controllers appRoutes.Controllers
	Registry    *prometheus.Registry
	Logger      zerolog.Logger

	closers []func() error
}

// Close releases the clients opened while building the dependencies
func (d *Dependencies) Close() error {
	if d.RateLimiter != nil {
		d.RateLimiter.Stop()
	}
	var errs error
	for i := len(d.closers) - 1; i >= 0; i-- {
		errs = errors.Join(errs, d.closers[i]())
	}
	return errs
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.EqualFold(cfg.Logging.Format, "text"),
	})

	lgr := logger.Get()
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations when
// enabled and seeds the default colleges.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	if cfg.Database.AutoMigrate {
		lgr.Info().Msg("Running database migrations...")
		if err := appMigrations.RunMigrations(cfg.GetPostgresConnectionString(), logger.Component("migrations")); err != nil {
			lgr.Error().Err(err).Msg("Database migration error")
			database.Close()
			return nil, fmt.Errorf("database migrations failed: %w", err)
		}
		lgr.Info().Msg("Database migrations successfully applied.")
	}

	repos := appRepos.NewRepositories(database)
	if err := seed.CreateDefaultData(ctx, repos.CollegeRepository, repos.DepartmentRepository, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// NewStorage builds the blob storage driver selected by the config
func NewStorage(ctx context.Context, cfg *config.Config) (filestorage.Storage, error) {
	switch cfg.Storage.Driver {
	case "s3":
		s, err := filestorage.NewS3Storage(ctx, filestorage.S3Config{
			Region:          cfg.Storage.S3.Region,
			Endpoint:        cfg.Storage.S3.Endpoint,
			AccessKeyID:     cfg.Storage.S3.AccessKeyID,
			SecretAccessKey: cfg.Storage.S3.SecretAccessKey,
			UsePathStyle:    cfg.Storage.S3.UsePathStyle,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case "cloudinary":
		s, err := filestorage.NewCloudinaryStorage(cfg.Storage.Cloudinary.URL)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		s, err := filestorage.NewLocalStorage(cfg.Storage.LocalPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// KafkaConfig maps the email queue settings
func KafkaConfig(cfg *config.Config) email.KafkaConfig {
	return email.KafkaConfig{
		Brokers:  cfg.KafkaBrokers(),
		Topic:    cfg.Email.Kafka.Topic,
		GroupID:  cfg.Email.Kafka.GroupID,
		Username: cfg.Email.Kafka.Username,
		Password: cfg.Email.Kafka.Password,
	}
}

// NewSMTPSender builds the delivering sender used by the API and the mail worker
func NewSMTPSender(cfg *config.Config) *email.SMTPSender {
	return email.NewSMTPSender(email.SMTPConfig{
		Host:      cfg.Email.SMTP.Host,
		Port:      cfg.Email.SMTP.Port,
		Username:  cfg.Email.SMTP.Username,
		Password:  cfg.Email.SMTP.Password,
		FromName:  cfg.Email.FromName,
		FromEmail: cfg.Email.From,
		UseTLS:    cfg.Email.SMTP.UseTLS,
	}, logger.Component("smtp"))
}

// NewEmailSender builds the sender selected by the config. The returned
// closer flushes queued messages.
func NewEmailSender(cfg *config.Config) (email.Sender, func() error) {
	switch cfg.Email.Driver {
	case "smtp":
		return NewSMTPSender(cfg), func() error { return nil }
	case "kafka":
		sender := email.NewKafkaSender(KafkaConfig(cfg))
		return sender, sender.Close
	default:
		return email.NewLogSender(logger.Component("email")), func() error { return nil }
	}
}

// NewAuthCodeStore uses Redis when configured and falls back to process memory
func NewAuthCodeStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (authcode.Store, func() error, error) {
	if cfg.Redis.URL == "" {
		lgr.Warn().Msg("REDIS_URL not set; auth codes are kept in memory and only valid on this instance")
		return authcode.NewMemoryStore(), func() error { return nil }, nil
	}

	client, err := authcode.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		return nil, nil, err
	}
	return authcode.NewRedisStore(client), client.Close, nil
}

// NewJWTService builds the session signer from the config
func NewJWTService(cfg *config.Config) *pkgAuth.JWTService {
	return pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		SessionDuration: helpers.ParseDuration(cfg.JWT.SessionDuration, 168*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})
}

// BuildServices initializes repositories, drivers and services. It is shared
// by the API server and the operator CLI.
func BuildServices(ctx context.Context, cfg *config.Config, database *db.PostgresDB, recorder metrics.Recorder, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}
	deps.Repos = appRepos.NewRepositories(database)
	deps.JWTService = NewJWTService(cfg)

	storage, err := NewStorage(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Str("driver", cfg.Storage.Driver).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	sender, closeSender := NewEmailSender(cfg)
	deps.closers = append(deps.closers, closeSender)

	codes, closeCodes, err := NewAuthCodeStore(ctx, cfg, lgr)
	if err != nil {
		_ = deps.Close()
		lgr.Error().Err(err).Msg("Failed to connect to redis")
		return nil, fmt.Errorf("failed to initialize auth code store: %w", err)
	}
	deps.closers = append(deps.closers, closeCodes)

	deps.Services = appServices.NewServices(appServices.Deps{
		Repos:      deps.Repos,
		Transactor: database,
		Hasher:     pkgAuth.NewPasswordHasher(pkgAuth.DefaultBcryptCost),
		JWT:        deps.JWTService,
		AuthCodes:  codes,
		Sender:     sender,
		Storage:    storage,
		Metrics:    recorder,
		Clock:      helpers.SystemClock,
		Auth: appServices.AuthConfig{
			AppURL:      cfg.App.URL,
			AppName:     cfg.App.Name,
			AuthCodeTTL: helpers.ParseDuration(cfg.Verification.AuthCodeTTL, appServices.DefaultAuthCodeTTL),
		},
		Token: appServices.TokenConfig{
			AppURL:  cfg.App.URL,
			AppName: cfg.App.Name,
			TTL:     helpers.ParseDuration(cfg.Verification.TokenTTL, appServices.DefaultTokenTTL),
		},
		Verification: appServices.VerificationConfig{
			Bucket:        cfg.Verification.Bucket,
			MaxUploadSize: cfg.Verification.MaxUploadSize,
		},
	})

	return deps, nil
}

// BuildDependencies initializes services, middleware and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	registry := metrics.NewRegistry()
	deps, err := BuildServices(ctx, cfg, database, metrics.NewCollector(registry), lgr)
	if err != nil {
		return nil, err
	}
	deps.Registry = registry

	deps.Session = appMiddleware.NewSessionAuth(deps.JWTService, appMiddleware.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.Secure,
		Domain: cfg.Session.Domain,
	}).WithAccounts(deps.Repos.AccountRepository)
	deps.RateLimiter = appMiddleware.NewRateLimiter(appMiddleware.RateLimiterConfig{
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		Burst:             cfg.RateLimit.Burst,
	})

	svc := deps.Services
	deps.Controllers = appRoutes.Controllers{
		Auth:         appControllers.NewAuthController(svc.Auth, deps.Session, lgr),
		Verification: appControllers.NewVerificationController(svc.Verification, svc.Tokens, svc.Gate, svc.Lookup, cfg.Verification.MaxUploadSize, lgr),
		Function:     appControllers.NewFunctionController(svc.Tokens, lgr),
		Pages:        appControllers.NewPageController(svc.Profiles, lgr),
		Lookup:       appControllers.NewLookupController(svc.Lookup, lgr),
		Admin:        appControllers.NewAdminController(svc.Admin, lgr),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, database *db.PostgresDB, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(logger.Component("http")))

	appRoutes.SetupRouter(router, deps.Controllers, appRoutes.Middleware{
		Session:     deps.Session,
		Gate:        deps.Services.Gate,
		RateLimiter: deps.RateLimiter,
	})

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := database.Pool.Ping(ctx); err != nil {
			lgr.Warn().Err(err).Msg("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
	})
	if deps.Registry != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(deps.Registry)))
	}

	return router
}
