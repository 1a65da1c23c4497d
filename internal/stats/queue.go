package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TypeHit is the asynq task type carrying one EndpointHit.
const TypeHit = "stats:hit"

// QueueName is the asynq queue hit tasks are enqueued on.
const QueueName = "stats"

const (
	hitMaxRetry = 5
	hitTimeout  = 10 * time.Second
)

// NewHitTask wraps hit in an asynq task.
func NewHitTask(hit EndpointHit) (*asynq.Task, error) {
	payload, err := json.Marshal(hit)
	if err != nil {
		return nil, fmt.Errorf("encode hit: %w", err)
	}
	return asynq.NewTask(TypeHit, payload,
		asynq.Queue(QueueName),
		asynq.MaxRetry(hitMaxRetry),
		asynq.Timeout(hitTimeout),
	), nil
}

// Enqueuer is the subset of *asynq.Client used to publish tasks.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueSender is a HitSender that publishes hits to Redis through asynq
// instead of calling the statistics service. Delivery and retries happen in
// HitTaskHandler.
type QueueSender struct {
	queue Enqueuer
}

// NewQueueSender returns a sender publishing to queue.
func NewQueueSender(queue Enqueuer) *QueueSender {
	return &QueueSender{queue: queue}
}

// SaveHit enqueues hit.
func (s *QueueSender) SaveHit(ctx context.Context, hit EndpointHit) error {
	task, err := NewHitTask(hit)
	if err != nil {
		return err
	}
	if _, err := s.queue.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue hit: %w", err)
	}
	return nil
}

// HitTaskHandler delivers queued hits to the statistics service.
type HitTaskHandler struct {
	sender HitSender
	log    *zap.Logger
}

// NewHitTaskHandler returns a handler delivering through sender.
func NewHitTaskHandler(sender HitSender, log *zap.Logger) *HitTaskHandler {
	return &HitTaskHandler{sender: sender, log: log}
}

// ProcessTask implements asynq.Handler. Undecodable payloads are not retried.
func (h *HitTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var hit EndpointHit
	if err := json.Unmarshal(t.Payload(), &hit); err != nil {
		h.log.Error("discarding malformed hit task", zap.Error(err))
		return fmt.Errorf("decode hit: %v: %w", err, asynq.SkipRetry)
	}
	if err := h.sender.SaveHit(ctx, hit); err != nil {
		return fmt.Errorf("deliver hit %s: %w", hit.URI, err)
	}
	return nil
}

// NewQueueServer builds the asynq worker server consuming hit tasks.
func NewQueueServer(opt asynq.RedisConnOpt, concurrency int, log *zap.Logger) *asynq.Server {
	return asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{QueueName: 1},
		Logger:      log.Sugar(),
	})
}

// NewQueueMux routes hit tasks to h.
func NewQueueMux(h *HitTaskHandler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeHit, h)
	return mux
}
