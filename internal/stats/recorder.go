package stats

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// AsyncRecorder hands hits to a fixed pool of workers through a bounded
// buffer. When the buffer is full the hit is dropped and logged; Record never
// waits for delivery.
type AsyncRecorder struct {
	sender HitSender
	log    *zap.Logger
	hits   chan EndpointHit
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewAsyncRecorder starts workers goroutines delivering hits through sender.
func NewAsyncRecorder(sender HitSender, workers, buffer int, log *zap.Logger) *AsyncRecorder {
	if workers < 1 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	r := &AsyncRecorder{
		sender: sender,
		log:    log,
		hits:   make(chan EndpointHit, buffer),
	}
	r.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go r.work()
	}
	return r
}

// Record queues hit for delivery. The caller's context only scopes the call;
// delivery outlives the request that produced the hit.
func (r *AsyncRecorder) Record(_ context.Context, hit EndpointHit) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.log.Warn("hit dropped: recorder closed", zap.String("uri", hit.URI))
		return
	}
	select {
	case r.hits <- hit:
	default:
		r.log.Warn("hit dropped: buffer full", zap.String("uri", hit.URI))
	}
}

// Close stops accepting hits and waits until the buffered ones are delivered.
func (r *AsyncRecorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.hits)
	r.mu.Unlock()
	r.wg.Wait()
}

func (r *AsyncRecorder) work() {
	defer r.wg.Done()
	for hit := range r.hits {
		if err := r.sender.SaveHit(context.Background(), hit); err != nil {
			r.log.Warn("record hit failed", zap.String("uri", hit.URI), zap.Error(err))
		}
	}
}
