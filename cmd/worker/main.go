// Command worker runs the distributed fleet worker: it leader-elects over
// a queue partition, drains queued scheduling runs, and persists their
// outcome, grounded on skeenode-backend/cmd/executor/main.go's wiring.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"pafsched/pkg/config"
	"pafsched/pkg/coordination/etcd"
	"pafsched/pkg/logger"
	"pafsched/pkg/storage/postgres"
	"pafsched/pkg/storage/redis"
	"pafsched/pkg/storage/s3"
	"pafsched/pkg/worker"
)

func main() {
	cfg := config.LoadConfig()
	log, err := logger.Init(logger.DefaultConfig("worker"))
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

	for p := 0; p < cfg.QueuePartitions; p++ {
		partition := fmt.Sprintf("%d", p)
		w := worker.New(worker.Config{
			Partition:   partition,
			RunStore:    runStore,
			BlobStore:   blobStore,
			Queue:       queue,
			Coordinator: etcdCoord,
			Log:         log,
		})
		go func() {
			if err := w.Run(ctx); err != nil {
				log.Error("worker exited", zap.String("partition", partition), zap.Error(err))
			}
		}()
	}

	sig := <-sigChan
	log.Info("received signal, shutting down", zap.String("signal", sig.String()))
	cancel()
	time.Sleep(500 * time.Millisecond)
	log.Info("shutdown complete")
}
