// Command server runs the portal API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vecinal/internal/audit"
	vhttp "vecinal/internal/http"
	"vecinal/internal/location/cache"
	lochandler "vecinal/internal/location/handler"
	locmetrics "vecinal/internal/location/metrics"
	locservice "vecinal/internal/location/service"
	locstore "vecinal/internal/location/store"
	memhandler "vecinal/internal/member/handler"
	memmetrics "vecinal/internal/member/metrics"
	memservice "vecinal/internal/member/service"
	memstore "vecinal/internal/member/store"
	newshandler "vecinal/internal/news/handler"
	newsservice "vecinal/internal/news/service"
	newsstore "vecinal/internal/news/store"
	"vecinal/internal/platform/config"
	"vecinal/internal/platform/httpserver"
	"vecinal/internal/platform/logger"
	"vecinal/internal/platform/metrics"
	"vecinal/internal/platform/redis"
	"vecinal/internal/platform/surreal"
	"vecinal/internal/platform/token"
	projhandler "vecinal/internal/project/handler"
	projservice "vecinal/internal/project/service"
	projstore "vecinal/internal/project/store"
	statshandler "vecinal/internal/stats/handler"
	statsservice "vecinal/internal/stats/service"
	"vecinal/internal/storage"
	tribhandler "vecinal/internal/tribunal/handler"
	tribservice "vecinal/internal/tribunal/service"
	tribstore "vecinal/internal/tribunal/store"
	userhandler "vecinal/internal/user/handler"
	usermetrics "vecinal/internal/user/metrics"
	userservice "vecinal/internal/user/service"
	userstore "vecinal/internal/user/store"
	"vecinal/pkg/platform/httputil"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Environment)
	httputil.ExposeStacks = !cfg.IsProduction()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := surreal.Connect(ctx, cfg.Surreal)
	if err != nil {
		log.Error("surrealdb connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close(context.Background())

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var publisher audit.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafka, err := audit.NewKafka(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Error("kafka connection failed", "error", err)
			os.Exit(1)
		}
		publisher = kafka
	} else {
		log.Info("no kafka brokers configured, audit events go to the log")
		publisher = audit.NewLog(log)
	}
	defer publisher.Close()

	var files storage.Store = storage.Discard{}
	if cfg.S3.Bucket != "" {
		files, err = storage.NewS3(cfg.S3.Bucket, cfg.S3.Region)
		if err != nil {
			log.Error("s3 setup failed", "error", err)
			os.Exit(1)
		}
	} else {
		log.Warn("no uploads bucket configured, uploaded files are discarded")
	}

	tokens := token.NewService(cfg.JWTSigningKey, cfg.TokenTTL)

	taxonomy := cache.Wrap(locstore.NewSurreal(db), redisClient, cfg.Redis.CacheTTL, log)
	locations := locservice.New(taxonomy,
		locservice.WithLogger(log),
		locservice.WithMetrics(locmetrics.New()),
		locservice.WithAuditPublisher(publisher),
	)

	memberStore := memstore.NewSurreal(db)
	members := memservice.New(memberStore, locations,
		memservice.WithLogger(log),
		memservice.WithMetrics(memmetrics.New()),
		memservice.WithAuditPublisher(publisher),
		memservice.WithFileStorage(files),
	)

	userStore := userstore.NewSurreal(db)
	users := userservice.New(userStore, locations, members, tokens,
		userservice.WithLogger(log),
		userservice.WithMetrics(usermetrics.New()),
		userservice.WithAuditPublisher(publisher),
	)

	newsStore := newsstore.NewSurreal(db)
	news := newsservice.New(newsStore, locations, log)

	projectStore := projstore.NewSurreal(db)
	projects := projservice.New(projectStore, locations, log)

	tribunals := tribservice.New(tribstore.NewSurreal(db), files, log, publisher)

	stats := statsservice.New(memberStore, newsStore, projectStore)

	router := vhttp.New(vhttp.Handlers{
		Locations: lochandler.New(locations, log),
		Members:   memhandler.New(members, log),
		News:      newshandler.New(news, files, log),
		Projects:  projhandler.New(projects, log),
		Tribunals: tribhandler.New(tribunals, log),
		Users:     userhandler.New(users, log),
		Stats:     statshandler.New(stats, log),
	}, tokens, metrics.New(), log)

	server := httpserver.New(cfg.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Addr, "environment", cfg.Environment)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown failed", "error", err)
			os.Exit(1)
		}
	}
	log.Info("server stopped")
}
