package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/learnquest/gamification-system/internal/api/metrics"
	"github.com/learnquest/gamification-system/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Deduper decides whether a completion attempt has already been settled.
// Backed by Redis in production; a nil Deduper disables deduplication.
type Deduper interface {
	Claim(ctx context.Context, userID, courseID string, ts time.Time) (bool, error)
	Release(ctx context.Context, userID, courseID string, ts time.Time) error
}

// Dispatcher routes completion attempts to a fixed set of workers using
// consistent hashing on the user ID, guaranteeing per-user settlement
// ordering.
type Dispatcher struct {
	workers []chan ports.CompletionInput
	ledger  ports.LedgerService
	dedup   Deduper
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, ledger ports.LedgerService, dedup Deduper, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.CompletionInput, numWorkers),
		ledger:  ledger,
		dedup:   dedup,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.CompletionInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a completion attempt to the worker responsible for its user.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(in ports.CompletionInput) {
	idx := d.shardIndex(in.UserID)
	d.workers[idx] <- in
	metrics.SettlementQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// EnqueueBatch enqueues multiple attempts preserving per-user ordering.
func (d *Dispatcher) EnqueueBatch(ins []ports.CompletionInput) {
	for _, in := range ins {
		d.Enqueue(in)
	}
}

// shardIndex maps a user ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.CompletionInput) {
	worker := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case in, ok := <-ch:
			if !ok {
				return
			}
			d.settle(ctx, id, in)
			metrics.SettlementQueueDepth.WithLabelValues(worker).Set(float64(len(ch)))
		}
	}
}

func (d *Dispatcher) settle(ctx context.Context, workerID int, in ports.CompletionInput) {
	if in.AttemptedAt.IsZero() {
		in.AttemptedAt = time.Now().UTC()
	}

	if d.dedup != nil {
		fresh, err := d.dedup.Claim(ctx, in.UserID, in.CourseID, in.AttemptedAt)
		if err != nil {
			// dedup store down: settle anyway, the ledger's own idempotency
			// still bounds the damage
			d.log.Warn().Err(err).
				Str("user_id", in.UserID).
				Str("course_id", in.CourseID).
				Msg("dedup claim failed, settling without it")
		} else if !fresh {
			metrics.SettlementsDedupTotal.WithLabelValues("hit").Inc()
			d.log.Debug().
				Str("user_id", in.UserID).
				Str("course_id", in.CourseID).
				Msg("duplicate completion dropped")
			return
		} else {
			metrics.SettlementsDedupTotal.WithLabelValues("miss").Inc()
		}
	}

	start := time.Now()
	_, err := d.ledger.SettleCompletion(ctx, in)
	status := "ok"
	if err != nil {
		status = "error"
		d.log.Error().Err(err).
			Str("user_id", in.UserID).
			Str("course_id", in.CourseID).
			Int("worker_id", workerID).
			Msg("completion settlement failed")
		if d.dedup != nil {
			// free the key so a redelivery can retry
			if relErr := d.dedup.Release(ctx, in.UserID, in.CourseID, in.AttemptedAt); relErr != nil {
				d.log.Warn().Err(relErr).Msg("dedup release failed")
			}
		}
	}
	metrics.SettlementDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
}
