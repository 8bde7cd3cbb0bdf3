// Package redis is a Redis Streams work queue implementing storage.Queue,
// grounded on skeenode/pkg/storage/redis/queue_store.go's consumer-group
// idiom, generalized to one stream per queue partition.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pafsched/pkg/storage"
)

func streamKey(partition string) string {
	return "pafsched:runs:pending:" + partition
}

// Queue is a Redis Streams-backed storage.Queue, partitioned by stream key
// so each worker fleet shard leader-elects over its own partition.
type Queue struct {
	client *redis.Client
}

// NewQueue initializes a new Redis client.
func NewQueue(addr string) (*Queue, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &Queue{client: client}, nil
}

func (q *Queue) Close() error {
	return q.client.Close()
}

// Push adds a run ID to the pending stream for its partition.
func (q *Queue) Push(ctx context.Context, partition string, runID string) error {
	err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: streamKey(partition),
		Values: map[string]interface{}{
			"run_id": runID,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to push to queue: %w", err)
	}
	return nil
}

// EnsureGroup creates the partition's consumer group if it doesn't exist.
func (q *Queue) EnsureGroup(ctx context.Context, partition string) error {
	err := q.client.XGroupCreateMkStream(ctx, streamKey(partition), "workers", "$").Err()
	if err != nil {
		if err.Error() == "BUSYGROUP Consumer Group name already exists" {
			return nil
		}
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	return nil
}

// Pop reads one pending run for a consumer, blocking briefly for new work.
func (q *Queue) Pop(ctx context.Context, partition, consumer string) (*storage.QueueMessage, error) {
	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    "workers",
		Consumer: consumer,
		Streams:  []string{streamKey(partition), ">"},
		Count:    1,
		Block:    2 * time.Second,
	}).Result()

	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read from stream: %w", err)
	}
	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return nil, nil
	}

	msg := streams[0].Messages[0]
	runID, _ := msg.Values["run_id"].(string)
	if runID == "" {
		return nil, fmt.Errorf("invalid queue message: missing run_id")
	}
	return &storage.QueueMessage{ID: msg.ID, RunID: runID}, nil
}

// Ack acknowledges a run as picked up so it won't be redelivered.
func (q *Queue) Ack(ctx context.Context, partition string, msg *storage.QueueMessage) error {
	return q.client.XAck(ctx, streamKey(partition), "workers", msg.ID).Err()
}

// Depth reports the number of entries in a partition's stream, delivered
// or not.
func (q *Queue) Depth(ctx context.Context, partition string) (int64, error) {
	info, err := q.client.XLen(ctx, streamKey(partition)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get stream length: %w", err)
	}
	return info, nil
}
