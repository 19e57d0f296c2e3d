package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrQueueClosed is returned by Dequeue once a ChannelQueue has been closed.
var ErrQueueClosed = errors.New("index queue closed")

type Queue interface {
	Enqueue(ctx context.Context, task Task) error
	// Dequeue blocks until a task is available or ctx is done.
	Dequeue(ctx context.Context) (Task, error)
}

const defaultQueueKey = "originhub:index:ideas"

// RedisQueue is a FIFO list: LPUSH on enqueue, BRPOP on dequeue.
type RedisQueue struct {
	client *redis.Client
	key    string
	poll   time.Duration
}

// NewRedisQueue connects to redisURL and verifies the connection.
func NewRedisQueue(redisURL string) (*RedisQueue, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisQueueWithClient(client), nil
}

func NewRedisQueueWithClient(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client, key: defaultQueueKey, poll: time.Second}
}

func (q *RedisQueue) Enqueue(ctx context.Context, task Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal index task: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("enqueue index task: %w", err)
	}
	return nil
}

func (q *RedisQueue) Dequeue(ctx context.Context) (Task, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Task{}, err
		}

		res, err := q.client.BRPop(ctx, q.poll, q.key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Task{}, ctxErr
			}
			return Task{}, fmt.Errorf("dequeue index task: %w", err)
		}

		// BRPOP replies with [key, value].
		var task Task
		if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
			return Task{}, fmt.Errorf("decode index task: %w", err)
		}
		return task, nil
	}
}

// Len reports the number of pending tasks.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}

// ChannelQueue is the in-process fallback used when Redis is not configured.
// Enqueue drops the task when the buffer is full rather than block a request.
type ChannelQueue struct {
	tasks chan Task
	done  chan struct{}
	once  sync.Once
}

// ErrQueueFull is returned when a ChannelQueue buffer has no room.
var ErrQueueFull = errors.New("index queue full")

func NewChannelQueue(size int) *ChannelQueue {
	if size <= 0 {
		size = 256
	}
	return &ChannelQueue{tasks: make(chan Task, size), done: make(chan struct{})}
}

func (q *ChannelQueue) Enqueue(ctx context.Context, task Task) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}

	select {
	case q.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

func (q *ChannelQueue) Dequeue(ctx context.Context) (Task, error) {
	select {
	case task := <-q.tasks:
		return task, nil
	case <-q.done:
		return Task{}, ErrQueueClosed
	case <-ctx.Done():
		return Task{}, ctx.Err()
	}
}

// Close stops pending and future Dequeue calls.
func (q *ChannelQueue) Close() error {
	q.once.Do(func() { close(q.done) })
	return nil
}
