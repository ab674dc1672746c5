package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"PortPulse/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "portpulse:queue"

// RedisQueue is a Redis-list job queue. The publisher side LPushes
// messages; consumer workers BRPop them and dispatch to the registered
// jobs. Failed messages go to a retry zset scored by next-attempt time,
// then to a dead-letter list once attempts are exhausted.
type RedisQueue struct {
	logger *logger.Logger
	config *QueueConfig
	client *redis.Client
	jobs   map[string]Job

	keyPrefix string
	consume   bool

	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// RedisQueueOption configures RedisQueue.
type RedisQueueOption func(*RedisQueue)

// WithKeyPrefix overrides the Redis key prefix so independent queues can
// share one Redis.
func WithKeyPrefix(prefix string) RedisQueueOption {
	return func(r *RedisQueue) {
		r.keyPrefix = prefix
	}
}

func newRedisQueue(lgr *logger.Logger, config *QueueConfig, client *redis.Client, consume bool, opts ...RedisQueueOption) *RedisQueue {
	if config == nil {
		config = &QueueConfig{}
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 10 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	rq := &RedisQueue{
		logger:    lgr,
		config:    config,
		client:    client,
		jobs:      make(map[string]Job),
		keyPrefix: defaultKeyPrefix,
		consume:   consume,
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(rq)
	}
	return rq
}

// NewRedisPublisher creates a publish-only queue, started immediately. A
// dead Redis is logged, not fatal: publishing is best-effort for the
// refresh endpoint and the log aggregator alike.
func NewRedisPublisher(lgr *logger.Logger, client *redis.Client, opts ...RedisQueueOption) *RedisQueue {
	q := newRedisQueue(lgr, &QueueConfig{}, client, false, opts...)
	if err := q.Start(); err != nil {
		lgr.Error("redis publisher start failed", logger.Error(err))
	}
	return q
}

// NewRedisConsumer creates a consuming queue with the given jobs
// registered. Start launches the workers.
func NewRedisConsumer(lgr *logger.Logger, config *QueueConfig, client *redis.Client, jobs []Job, opts ...RedisQueueOption) *RedisQueue {
	q := newRedisQueue(lgr, config, client, true, opts...)
	for _, job := range jobs {
		if _, dup := q.jobs[job.Type()]; dup {
			lgr.Warn("duplicate job type ignored", logger.String("type", job.Type()))
			continue
		}
		q.jobs[job.Type()] = job
	}
	return q
}

// Start verifies the Redis connection and, on the consumer side, launches
// the worker and retry goroutines.
func (r *RedisQueue) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return fmt.Errorf("queue already running")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	r.running = true

	if !r.consume {
		r.logger.Info("redis publisher started", logger.String("prefix", r.keyPrefix))
		return nil
	}

	for i := 0; i < r.config.Workers; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
	r.wg.Add(1)
	go r.requeueLoop()

	r.logger.Info("redis queue started",
		logger.Int("workers", r.config.Workers),
		logger.String("prefix", r.keyPrefix))
	return nil
}

// Stop cancels the workers and waits for them up to the context deadline.
func (r *RedisQueue) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = false
	r.mu.Unlock()

	r.cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		r.logger.Warn("timeout waiting for queue workers", logger.Error(ctx.Err()))
		return fmt.Errorf("timeout: %w", ctx.Err())
	case <-done:
		r.logger.Info("redis queue stopped")
		return nil
	}
}

// PublishMessage enqueues a message. Implements QueueService.
func (r *RedisQueue) PublishMessage(ctx context.Context, msgType string, payload interface{}) error {
	r.mu.Lock()
	running := r.running
	r.mu.Unlock()
	if !running {
		return fmt.Errorf("queue not running")
	}
	if r.consume {
		if _, ok := r.jobs[msgType]; !ok {
			return fmt.Errorf("no job registered for type: %s", msgType)
		}
	}

	msg := Message{
		ID:        strconv.FormatInt(time.Now().UnixNano(), 10),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := r.client.LPush(ctx, r.queueKey(), data).Err(); err != nil {
		return fmt.Errorf("lpush: %w", err)
	}
	return nil
}

func (r *RedisQueue) worker(id int) {
	defer r.wg.Done()
	key := r.queueKey()
	for {
		select {
		case <-r.ctx.Done():
			r.logger.Info("queue worker stopped", logger.Int("worker_id", id))
			return
		default:
		}

		ctx, cancel := context.WithTimeout(r.ctx, 2*time.Second)
		result, err := r.client.BRPop(ctx, time.Second, key).Result()
		cancel()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				continue
			}
			r.logger.Error("brpop error", logger.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if len(result) < 2 {
			continue
		}

		var msg Message
		if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
			r.logger.Error("unmarshal message", logger.Error(err))
			continue
		}
		r.dispatch(msg)
	}
}

func (r *RedisQueue) dispatch(msg Message) {
	job, ok := r.jobs[msg.Type]
	if !ok {
		r.logger.Error("no job for message type",
			logger.String("type", msg.Type),
			logger.String("id", msg.ID))
		return
	}

	if err := job.Handle(r.ctx, normalizePayload(msg.Payload)); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		r.fail(msg, job, err)
	}
}

// normalizePayload re-encodes a decoded JSON object so jobs can unmarshal
// into their own payload structs via ParsePayload.
func normalizePayload(payload interface{}) interface{} {
	m, ok := payload.(map[string]interface{})
	if !ok {
		return payload
	}
	data, err := json.Marshal(m)
	if err != nil {
		return payload
	}
	return json.RawMessage(data)
}

func (r *RedisQueue) fail(msg Message, job Job, err error) {
	r.logger.Error("job failed",
		logger.String("id", msg.ID),
		logger.String("job", job.Name()),
		logger.Int("attempt", msg.Attempts+1),
		logger.Error(err))

	if msg.Attempts >= r.config.RetryLimit {
		r.toDeadLetter(msg)
		return
	}

	msg.Attempts++
	data, merr := json.Marshal(msg)
	if merr != nil {
		r.logger.Error("marshal retry", logger.Error(merr))
		return
	}
	due := time.Now().Add(r.config.RetryDelay)
	zerr := r.client.ZAdd(context.Background(), r.retryKey(), redis.Z{
		Score:  float64(due.Unix()),
		Member: data,
	}).Err()
	if zerr != nil {
		r.logger.Error("zadd retry", logger.Error(zerr))
		return
	}
	r.logger.Info("retry scheduled",
		logger.String("id", msg.ID),
		logger.Int("attempt", msg.Attempts),
		logger.String("retry_at", due.Format(time.RFC3339)))
}

func (r *RedisQueue) toDeadLetter(msg Message) {
	r.logger.Error("max retries reached, dead-lettering",
		logger.String("id", msg.ID),
		logger.String("type", msg.Type))
	data, err := json.Marshal(msg)
	if err != nil {
		r.logger.Error("marshal dead letter", logger.Error(err))
		return
	}
	if err := r.client.LPush(context.Background(), r.deadLetterKey(), data).Err(); err != nil {
		r.logger.Error("lpush dead letter", logger.Error(err))
	}
}

// requeueLoop moves due retry messages back onto the main list.
func (r *RedisQueue) requeueLoop() {
	defer r.wg.Done()
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.requeueDue()
		}
	}
}

func (r *RedisQueue) requeueDue() {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	due, err := r.client.ZRangeByScore(r.ctx, r.retryKey(), &redis.ZRangeBy{
		Min: "0",
		Max: now,
	}).Result()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			r.logger.Error("fetch due retries", logger.Error(err))
		}
		return
	}
	if r.config.QueueSize > 0 && len(due) > r.config.QueueSize {
		due = due[:r.config.QueueSize]
	}

	for _, member := range due {
		pipe := r.client.TxPipeline()
		pipe.ZRem(r.ctx, r.retryKey(), member)
		pipe.LPush(r.ctx, r.queueKey(), member)
		if _, err := pipe.Exec(r.ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			r.logger.Error("requeue retry", logger.Error(err))
		}
	}
}

func (r *RedisQueue) queueKey() string      { return r.keyPrefix + ":messages" }
func (r *RedisQueue) retryKey() string      { return r.keyPrefix + ":retry" }
func (r *RedisQueue) deadLetterKey() string { return r.keyPrefix + ":dlq" }
