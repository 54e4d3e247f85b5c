package statusmirror

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"securestream/internal/job"
	"securestream/internal/logging"
)

const (
	keyPrefix      = "ingest:job:"
	publishTimeout = 2 * time.Second
	// Terminal job state stays readable for a day, then expires.
	terminalTTL = 24 * time.Hour
)

// Mirror writes every job mutation into a Redis hash so dashboards and
// other processes can watch ingestion without talking to the queue. Loss
// of the mirror never affects the pipeline; failures are logged and
// dropped.
type Mirror struct {
	client *redis.Client
}

// New connects to Redis at addr and verifies the connection.
func New(ctx context.Context, addr, password string, db int) (*Mirror, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	logging.Info("Status mirror connected to Redis at %s", addr)
	return &Mirror{client: client}, nil
}

// Key returns the Redis key holding the given job's state.
func Key(jobID string) string {
	return keyPrefix + jobID
}

// Publish writes the job's current status, progress and error into its
// hash. Terminal jobs get a TTL so finished entries age out.
func (m *Mirror) Publish(ctx context.Context, j *job.Job) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	key := Key(j.ID)
	fields := map[string]interface{}{
		"status":   string(j.Status),
		"progress": strconv.Itoa(j.Progress),
		"title":    j.Title,
		"error":    j.LastError,
		"updated":  j.UpdatedAt.UTC().Format(time.RFC3339),
	}

	pipe := m.client.TxPipeline()
	pipe.HSet(ctx, key, fields)
	if j.Status.Terminal() {
		pipe.Expire(ctx, key, terminalTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logging.Warn("Status mirror publish failed for job %s: %v", j.ID, err)
	}
}

// Close releases the Redis connection.
func (m *Mirror) Close() error {
	return m.client.Close()
}
