// Command api is the HTTP front door for submitting and tracking
// scheduling runs (SPEC_FULL.md §2.4), grounded on
// skeenode-backend/cmd/api/main.go's wiring.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"pafsched/pkg/api"
	"pafsched/pkg/api/middleware"
	"pafsched/pkg/auth"
	"pafsched/pkg/config"
	"pafsched/pkg/coordination/etcd"
	"pafsched/pkg/logger"
	"pafsched/pkg/observability"
	"pafsched/pkg/storage/postgres"
	"pafsched/pkg/storage/redis"
	"pafsched/pkg/storage/s3"
)

func main() {
	cfg := config.LoadConfig()
	log, err := logger.Init(logger.DefaultConfig("api"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("starting up")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	tracingProvider, err := observability.Init(ctx, observability.DefaultConfig("pafsched-api"))
	if err != nil {
		log.Warn("failed to initialize tracing", zap.Error(err))
	} else {
		defer tracingProvider.Shutdown(context.Background())
	}

	connStr := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)
	runStore, err := postgres.NewRunStore(connStr)
	if err != nil {
		log.Fatal("failed to initialize run store", zap.Error(err))
	}
	defer runStore.Close()

	redisAddr := fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort)
	queue, err := redis.NewQueue(redisAddr)
	if err != nil {
		log.Fatal("failed to initialize queue", zap.Error(err))
	}
	defer queue.Close()

	blobStore, err := s3.NewBlobStore(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3Endpoint)
	if err != nil {
		log.Fatal("failed to initialize blob store", zap.Error(err))
	}
	if err := blobStore.EnsureBucket(ctx); err != nil {
		log.Warn("failed to ensure bucket", zap.Error(err))
	}

	etcdCoord, err := etcd.NewEtcdCoordinator(cfg.EtcdEndpoints, cfg.LeaderElectionTTL)
	if err != nil {
		log.Fatal("failed to connect to etcd", zap.Error(err))
	}
	defer etcdCoord.Close()

	authCfg := middleware.AuthConfig{SkipPaths: []string{"/health", "/metrics"}}
	if cfg.AuthEnabled {
		rawRedis := goredis.NewClient(&goredis.Options{Addr: redisAddr})
		authCfg.APIKeyStore = auth.NewRedisAPIKeyStore(rawRedis)
		if cfg.JWTSecret != "" {
			jwtCfg := auth.DefaultJWTConfig()
			jwtCfg.SecretKey = cfg.JWTSecret
			jwtCfg.Issuer = cfg.JWTIssuer
			jwtService, err := auth.NewJWTService(jwtCfg)
			if err != nil {
				log.Fatal("failed to initialize JWT service", zap.Error(err))
			}
			authCfg.JWTService = jwtService
		}
	}

	server := api.NewServer(api.Config{
		Port:        cfg.APIPort,
		RunStore:    runStore,
		BlobStore:   blobStore,
		Queue:       queue,
		Coordinator: etcdCoord,
		AuthConfig:  authCfg,
	})

	go func() {
		if err := server.Start(); err != nil {
			log.Error("server error", zap.Error(err))
		}
	}()
	log.Info("server started", zap.String("port", cfg.APIPort))

	sig := <-sigChan
	log.Info("received signal, shutting down", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
	cancel()
	log.Info("shutdown complete")
}
