package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/config"
	s3infra "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/infra/s3"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/repo/memory"
	pgrepo "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/repo/postgres"
	redrepo "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/repo/redis"
	authsvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/auth"
	listingssvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/listings"
	matchessvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/matches"
	mediasvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/media"
	notificationssvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/notifications"
	ratesvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/rate"
	swipesvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/swipes"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/transport/http/handlers"
)

type listingStore interface {
	listingssvc.Store
	matchessvc.ListingStore
}

type stores struct {
	listings   listingStore
	matches    matchessvc.MatchStore
	categories listingssvc.CategoryStore
}

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	healthChecks := make(map[string]handlers.HealthCheck)

	var (
		pool *pgxpool.Pool
		st   stores
	)
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		log.Warn("using in-memory store, data is lost on restart")
		mem := memory.NewStore()
		st = stores{listings: mem, matches: mem, categories: mem}
	default:
		if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
			log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
		} else {
			pool = p
			healthChecks["postgres"] = pool.Ping
		}
		st = stores{
			listings:   pgrepo.NewListingRepo(pool),
			matches:    pgrepo.NewMatchRepo(pool),
			categories: pgrepo.NewCategoryRepo(pool),
		}
	}

	var (
		redisClient   *goredis.Client
		rateLimiter   matchessvc.RateLimiter
		inFlight      matchessvc.InFlight
		categoryCache listingssvc.CategoryCache
	)
	if cfg.Redis.Addr != "" {
		redisClient = redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		healthChecks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
		rateLimiter = ratesvc.NewLimiter(
			redrepo.NewRateRepo(redisClient),
			cfg.Limits.InterestPerMinute,
			cfg.Limits.InterestPer10Sec,
		)
		inFlight = redrepo.NewInFlightRepo(redisClient, cfg.Matches.InFlightTTL)
		categoryCache = redrepo.NewCacheRepo(redisClient)
	} else {
		log.Warn("redis disabled, interest rate limits off and decision guard is process local")
		inFlight = matchessvc.NewLocalInFlight()
	}

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTAccessTTL)

	listingService := listingssvc.NewService(listingssvc.Dependencies{
		Store:      st.listings,
		Categories: st.categories,
		Cache:      categoryCache,
		Logger:     log.Named("listings"),
	}, listingssvc.Config{
		BrowseLimit: cfg.Listings.BrowseLimit,
		CategoryTTL: cfg.Cache.CategoriesTTL,
	})
	matchService := matchessvc.NewService(matchessvc.Dependencies{
		Listings:    st.listings,
		Matches:     st.matches,
		RateLimiter: rateLimiter,
		InFlight:    inFlight,
		Logger:      log.Named("matches"),
	})
	swipeService := swipesvc.NewService(swipesvc.Dependencies{
		Interest: matchService,
		Logger:   log.Named("swipes"),
	})
	notificationService := notificationssvc.NewService(st.matches, st.listings)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Region:    cfg.S3.Region,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}
	if cfg.S3.PublicBaseURL == "" {
		log.Warn("s3 public base url not set, media urls are presigned and expire", zap.Duration("ttl", cfg.S3.SignedURLTTL))
	}
	mediaService := mediasvc.NewService(mediasvc.NewS3Storage(s3Client, cfg.S3.Bucket), mediasvc.Config{
		MaxBytes:      cfg.S3.MaxUploadBytes,
		PublicBaseURL: cfg.S3.PublicBaseURL,
		SignedURLTTL:  cfg.S3.SignedURLTTL,
	}, log.Named("media"))

	RegisterRoutes(r, Dependencies{
		Verifier:            jwtManager,
		ListingService:      listingService,
		MatchService:        matchService,
		SwipeService:        swipeService,
		MediaService:        mediaService,
		NotificationService: notificationService,
		HealthChecks:        healthChecks,
		Logger:              log,
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
		s3:         s3Client,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started",
		zap.String("addr", a.cfg.HTTP.Addr),
		zap.String("store", a.cfg.Store.Driver),
	)
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
