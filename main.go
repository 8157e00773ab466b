package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devcamper/internal/auth"
	intconfig "devcamper/internal/config"
	intdb "devcamper/internal/db"
	router "devcamper/internal/http"
	h "devcamper/internal/http/handlers"
	"devcamper/internal/http/middleware"
	"devcamper/internal/jobs"
	"devcamper/internal/repositories"
	"devcamper/internal/repositories/memory"
	"devcamper/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

// stores groups one backend's implementations of every store interface.
type stores struct {
	users     services.UserStore
	bootcamps services.BootcampStore
	courses   services.CourseStore
	reviews   services.ReviewStore
	sources   router.Sources
	db        h.Pinger
}

func newLogger(env intconfig.Env) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if env.Production() {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

func openStores(ctx context.Context, env intconfig.Env, log logrus.FieldLogger) (stores, func(), error) {
	if env.StoreDriver == intconfig.DriverMemory {
		log.Warn("using in-memory store; data is lost on restart")
		m := memory.New()
		return stores{
			users:     m.Users(),
			bootcamps: m.Bootcamps(),
			courses:   m.Courses(),
			reviews:   m.Reviews(),
			sources: router.Sources{
				Bootcamps: m.Bootcamps(),
				Courses:   m.Courses(),
				Reviews:   m.Reviews(),
				Users:     m.Users(),
			},
		}, func() {}, nil
	}

	db, err := intconfig.OpenDB(ctx, env.DatabaseDSN)
	if err != nil {
		return stores{}, nil, err
	}
	if env.DBAutoMigrate {
		if err := intdb.RunMigrations(ctx, db.DB); err != nil {
			_ = db.Close()
			return stores{}, nil, err
		}
	}
	log.Info("connected to MySQL")

	users := repositories.NewUserRepository(db)
	bootcamps := repositories.NewBootcampRepository(db)
	courses := repositories.NewCourseRepository(db)
	reviews := repositories.NewReviewRepository(db)
	return stores{
		users:     users,
		bootcamps: bootcamps,
		courses:   courses,
		reviews:   reviews,
		sources: router.Sources{
			Bootcamps: bootcamps,
			Courses:   courses,
			Reviews:   reviews,
			Users:     users,
		},
		db: db,
	}, func() { _ = db.Close() }, nil
}

func newGeocoder(env intconfig.Env, log logrus.FieldLogger) services.Geocoder {
	if env.GeocoderProvider != "mapquest" || env.GeocoderAPIKey == "" {
		log.Warn("geocoder disabled; bootcamps are saved without a location")
		return services.NoopGeocoder{}
	}
	return services.NewCachedGeocoder(services.NewMapQuestGeocoder(env.GeocoderAPIKey), env.GeocoderCacheSize, 24*time.Hour)
}

func newMailer(env intconfig.Env, log logrus.FieldLogger) services.Mailer {
	if env.MailDriver == intconfig.MailMailgun {
		return services.NewMailgunMailer(env.Mailgun, env.FromName, env.FromEmail, log)
	}
	if env.SMTPHost == "" {
		log.Warn("SMTP_HOST not set; reset mail is logged instead of sent")
		return services.LogMailer{Log: log}
	}
	return services.SMTPMailer{
		Host:      env.SMTPHost,
		Port:      env.SMTPPort,
		Username:  env.SMTPEmail,
		Password:  env.SMTPPassword,
		FromName:  env.FromName,
		FromEmail: env.FromEmail,
	}
}

func newPhotoStore(ctx context.Context, env intconfig.Env) (services.PhotoStore, string, error) {
	if env.S3.Bucket == "" {
		return services.DiskPhotoStore{Dir: env.FileUploadPath}, env.FileUploadPath, nil
	}
	store, err := services.NewS3PhotoStore(ctx, env.S3)
	if err != nil {
		return nil, "", err
	}
	return store, "", nil
}

func newLimiter(env intconfig.Env, log logrus.FieldLogger) (middleware.Limiter, func()) {
	if env.RedisURL == "" {
		return middleware.NewMemoryLimiter(env.RateLimitMax, env.RateLimitWindow), func() {}
	}
	opts, err := redis.ParseURL(env.RedisURL)
	if err != nil {
		log.WithError(err).Warn("invalid REDIS_URL; falling back to in-process rate limiting")
		return middleware.NewMemoryLimiter(env.RateLimitMax, env.RateLimitWindow), func() {}
	}
	client := redis.NewClient(opts)
	return middleware.NewRedisLimiter(client, env.RateLimitMax, env.RateLimitWindow), func() { _ = client.Close() }
}

func main() {
	env, err := intconfig.LoadEnv()
	log := newLogger(env)
	if err != nil {
		log.WithError(err).Fatal("invalid environment")
	}
	if err := env.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	ctx := context.Background()

	st, closeStores, err := openStores(ctx, env, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open store")
	}
	defer closeStores()

	photos, uploadDir, err := newPhotoStore(ctx, env)
	if err != nil {
		log.WithError(err).Fatal("failed to configure photo storage")
	}
	limiter, closeLimiter := newLimiter(env, log)
	defer closeLimiter()

	tokens := auth.NewTokenService([]byte(env.JWTSecret), env.JWTExpire)
	aggregates := services.Aggregates{Bootcamps: st.bootcamps, Courses: st.courses, Reviews: st.reviews, Log: log}
	bootcampService := services.BootcampService{
		Bootcamps: st.bootcamps,
		Geocoder:  newGeocoder(env, log),
		Photos:    photos,
		MaxUpload: env.MaxFileUpload,
		Log:       log,
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := router.NewRouter(router.Deps{
		Log:     log,
		Users:   st.users,
		Tokens:  tokens,
		Sources: st.sources,
		Auth: h.AuthHandler{
			Service: services.AuthService{Users: st.users, Tokens: tokens, Mailer: newMailer(env, log), Log: log},
			Cookie:  h.CookieConfig{TTL: env.JWTCookieExpire, Secure: env.Production()},
		},
		Bootcamps: h.BootcampHandler{
			Service: bootcampService,
			Catalog: services.CatalogService{Bootcamps: st.bootcamps, Courses: st.courses, Log: log},
		},
		Courses: h.CourseHandler{Service: services.CourseService{
			Courses: st.courses, Bootcamps: st.bootcamps, Aggregates: aggregates, Log: log,
		}},
		Reviews: h.ReviewHandler{Service: services.ReviewService{
			Reviews: st.reviews, Bootcamps: st.bootcamps, Aggregates: aggregates, Log: log,
		}},
		UserAdmin:      h.UserHandler{Service: services.UserService{Users: st.users, Log: log}},
		System:         h.SystemHandler{DB: st.db},
		Limiter:        limiter,
		Registry:       registry,
		AllowedOrigins: env.CORSAllowedOrigins,
		UploadDir:      uploadDir,
	})

	scheduler := jobs.NewScheduler(log)
	if err := scheduler.AddResetPurge(env.ResetCleanup, st.users, nil); err != nil {
		log.WithError(err).Fatal("failed to schedule jobs")
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"addr": env.AppAddr, "env": env.AppEnv, "store": env.StoreDriver}).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	scheduler.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
		return
	}
	log.Info("server stopped")
}
