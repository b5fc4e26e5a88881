package worker

import (
	"time"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TaskPurgeSessions = "sessions:purge"
)

// Package-level Asynq client (singleton)
var client *asynq.Client

// InitClient initializes the global Asynq client for task enqueueing.
// Must be called before any EnqueueX functions.
func InitClient(redisURL string) error {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return err
	}

	client = asynq.NewClient(opt)
	return nil
}

// CloseClient closes the Asynq client connection gracefully.
func CloseClient() error {
	if client != nil {
		return client.Close()
	}
	return nil
}

// EnqueuePurgeSessions enqueues an on-demand purge of expired session rows,
// deduplicated so a manual trigger can't stack up behind the scheduled one.
func EnqueuePurgeSessions() error {
	task := asynq.NewTask(
		TaskPurgeSessions,
		nil, // Empty payload - handler purges everything expired
		asynq.MaxRetry(3),
		asynq.Timeout(time.Minute),
		asynq.Retention(24*time.Hour),
		asynq.Unique(10*time.Minute),
	)

	_, err := client.Enqueue(task)
	return err
}
