// Package activity records user actions without ever failing the mutation
// that triggered them.
package activity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/news-interactions-api/internal/metrics"
	"github.com/news-interactions-api/internal/models"
	"github.com/news-interactions-api/internal/repository"
	"github.com/rs/zerolog"
)

const (
	defaultBufferSize   = 1024
	defaultWorkers      = 2
	defaultWriteTimeout = 5 * time.Second
)

// Publisher fans stored entries out to live consumers
type Publisher interface {
	Publish(ctx context.Context, entry *models.Activity) error
}

// Recorder stores activity entries. Until Start is called writes happen
// inline on the caller's goroutine. After Start they are queued to a bounded
// buffer drained by a fixed worker pool, and a full buffer drops the entry.
type Recorder struct {
	repo         repository.ActivityRepository
	publisher    Publisher
	log          zerolog.Logger
	bufferSize   int
	workers      int
	writeTimeout time.Duration

	mu      sync.RWMutex
	running bool
	queue   chan *models.Activity
	wg      sync.WaitGroup
}

// Option configures a Recorder
type Option func(*Recorder)

// WithPublisher publishes every stored entry
func WithPublisher(p Publisher) Option {
	return func(r *Recorder) { r.publisher = p }
}

// WithBufferSize sets the deferred queue capacity
func WithBufferSize(n int) Option {
	return func(r *Recorder) {
		if n > 0 {
			r.bufferSize = n
		}
	}
}

// WithWorkers sets the number of deferred writers
func WithWorkers(n int) Option {
	return func(r *Recorder) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithWriteTimeout bounds each store and publish call
func WithWriteTimeout(d time.Duration) Option {
	return func(r *Recorder) {
		if d > 0 {
			r.writeTimeout = d
		}
	}
}

// NewRecorder creates a recorder in inline mode
func NewRecorder(repo repository.ActivityRepository, log zerolog.Logger, opts ...Option) *Recorder {
	r := &Recorder{
		repo:         repo,
		log:          log.With().Str("component", "activity").Logger(),
		bufferSize:   defaultBufferSize,
		workers:      defaultWorkers,
		writeTimeout: defaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches the deferred writers. Calling Start twice is a no-op.
func (r *Recorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return
	}
	r.queue = make(chan *models.Activity, r.bufferSize)
	r.running = true

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(r.queue)
	}

	r.log.Info().
		Int("workers", r.workers).
		Int("buffer_size", r.bufferSize).
		Msg("Activity writer started")
}

// Stop stops accepting deferred entries and waits for the queue to drain
func (r *Recorder) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	close(r.queue)
	r.mu.Unlock()

	r.wg.Wait()
	metrics.ActivityQueueDepth.Set(0)
	r.log.Info().Msg("Activity writer stopped")
}

// Record stores entry. It never returns an error and never blocks on a full
// queue. ID, timestamp and metadata are filled in when missing.
func (r *Recorder) Record(ctx context.Context, entry *models.Activity) {
	if entry == nil {
		return
	}
	if !models.ValidActions[entry.Action] {
		r.log.Warn().Str("action", string(entry.Action)).Msg("Ignoring activity with unknown action")
		return
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.Meta == nil {
		entry.Meta = map[string]any{}
	}

	r.mu.RLock()
	if r.running {
		select {
		case r.queue <- entry:
			metrics.ActivityQueueDepth.Inc()
		default:
			metrics.ActivityEntries.WithLabelValues(metrics.OutcomeDropped).Inc()
			r.log.Warn().
				Str("action", string(entry.Action)).
				Str("actor_id", entry.ActorID).
				Msg("Activity queue full, dropping entry")
		}
		r.mu.RUnlock()
		return
	}
	r.mu.RUnlock()

	r.write(context.WithoutCancel(ctx), entry)
}

func (r *Recorder) worker(queue <-chan *models.Activity) {
	defer r.wg.Done()
	for entry := range queue {
		metrics.ActivityQueueDepth.Dec()
		r.safeWrite(entry)
	}
}

func (r *Recorder) safeWrite(entry *models.Activity) {
	defer func() {
		if p := recover(); p != nil {
			metrics.ActivityEntries.WithLabelValues(metrics.OutcomeFailed).Inc()
			r.log.Error().
				Interface("panic", p).
				Str("activity_id", entry.ID).
				Msg("Activity write panicked - recovered")
		}
	}()
	r.write(context.Background(), entry)
}

func (r *Recorder) write(ctx context.Context, entry *models.Activity) {
	ctx, cancel := context.WithTimeout(ctx, r.writeTimeout)
	defer cancel()

	if err := r.repo.Create(ctx, entry); err != nil {
		metrics.ActivityEntries.WithLabelValues(metrics.OutcomeFailed).Inc()
		r.log.Error().
			Err(err).
			Str("action", string(entry.Action)).
			Str("actor_id", entry.ActorID).
			Msg("Failed to record activity")
		return
	}
	metrics.ActivityEntries.WithLabelValues(metrics.OutcomeOK).Inc()

	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(ctx, entry); err != nil {
		metrics.ActivityPublishFailures.Inc()
		r.log.Warn().Err(err).Str("activity_id", entry.ID).Msg("Failed to publish activity")
	}
}
