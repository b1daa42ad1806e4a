package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	applog "medquote-backend/internal/infrastructure/logger"
	"medquote-backend/internal/infrastructure/metrics"
)

const AutoQuotationKey = "jobs:auto_quotation"

// Job asks the worker pool to auto-quote one RFQ. Attempt starts at 1.
type Job struct {
	RFQID   string `json:"rfq_id"`
	Attempt int    `json:"attempt"`
}

// RedisQueue is a FIFO list: LPUSH on enqueue, BRPOP on dequeue.
type RedisQueue struct {
	rdb *redis.Client
	key string
}

func NewRedisQueue(rdb *redis.Client, key string) *RedisQueue {
	if key == "" {
		key = AutoQuotationKey
	}
	return &RedisQueue{rdb: rdb, key: key}
}

func (q *RedisQueue) Enqueue(ctx context.Context, j Job) error {
	payload, err := json.Marshal(j)
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, q.key, payload).Err()
}

// Schedule enqueues the first attempt for rfqID.
func (q *RedisQueue) Schedule(ctx context.Context, rfqID string) error {
	return q.Enqueue(ctx, Job{RFQID: rfqID, Attempt: 1})
}

// Dequeue blocks up to timeout; it returns (nil, nil) when nothing arrived.
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	res, err := q.rdb.BRPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// res = [key, value]
	var j Job
	if err := json.Unmarshal([]byte(res[1]), &j); err != nil {
		return nil, err
	}
	return &j, nil
}

func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.key).Result()
}

type HandlerFunc func(ctx context.Context, rfqID string) error

type Worker struct {
	q           *RedisQueue
	handle      HandlerFunc
	concurrency int
	maxAttempts int
	poll        time.Duration
}

func NewWorker(q *RedisQueue, handle HandlerFunc, concurrency, maxAttempts int) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Worker{q: q, handle: handle, concurrency: concurrency, maxAttempts: maxAttempts, poll: 2 * time.Second}
}

// Run consumes jobs until ctx is cancelled and all consumers have returned.
func (w *Worker) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			w.loop(ctx, n)
		}(i)
	}
	wg.Wait()
}

func (w *Worker) loop(ctx context.Context, n int) {
	log := applog.L().With(zap.String("queue", w.q.key), zap.Int("consumer", n))
	for ctx.Err() == nil {
		j, err := w.q.Dequeue(ctx, w.poll)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("dequeue failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.poll):
			}
			continue
		}
		if j == nil {
			continue
		}
		w.process(ctx, log, *j)
	}
}

func (w *Worker) process(ctx context.Context, log *zap.Logger, j Job) {
	err := w.handle(ctx, j.RFQID)
	if err == nil {
		metrics.AutoQuoteJobs.WithLabelValues("ok").Inc()
		return
	}
	if j.Attempt >= w.maxAttempts {
		metrics.AutoQuoteJobs.WithLabelValues("dropped").Inc()
		log.Error("auto-quotation job dropped", zap.String("rfq_id", j.RFQID), zap.Int("attempt", j.Attempt), zap.Error(err))
		return
	}
	metrics.AutoQuoteJobs.WithLabelValues("retry").Inc()
	log.Warn("auto-quotation job failed, retrying", zap.String("rfq_id", j.RFQID), zap.Int("attempt", j.Attempt), zap.Error(err))
	// fresh context: a retry should survive the handler's own deadline
	enqCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := w.q.Enqueue(enqCtx, Job{RFQID: j.RFQID, Attempt: j.Attempt + 1}); err != nil {
		log.Error("auto-quotation retry enqueue failed", zap.String("rfq_id", j.RFQID), zap.Error(err))
	}
}
