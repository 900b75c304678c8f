package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Config tunes the outbox polling loop.
type Config struct {
	PollInterval time.Duration
	BatchSize    int
}

func DefaultConfig() Config {
	return Config{
		PollInterval: 2 * time.Second,
		BatchSize:    100,
	}
}

// WorkerRepository defines what the worker needs from outbox storage.
type WorkerRepository interface {
	FetchUnsentTx(ctx context.Context, tx *sql.Tx, limit int) ([]OutboxEvent, error)
	MarkSentTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, now time.Time) error
}

// Worker polls the outbox and relays committed events to the bus. Events
// stay unsent on publish failure and get retried on the next poll, so
// delivery is at-least-once; consumers dedupe on event ID.
type Worker struct {
	db        *sql.DB
	repo      WorkerRepository
	publisher EventPublisher
	config    Config
	clock     clockwork.Clock

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewWorker(db *sql.DB, repo WorkerRepository, publisher EventPublisher, cfg Config, clock clockwork.Clock) *Worker {
	return &Worker{
		db:        db,
		repo:      repo,
		publisher: publisher,
		config:    cfg,
		clock:     clock,
		stopChan:  make(chan struct{}),
	}
}

func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("outbox worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run(ctx)

	log.Info().
		Dur("poll_interval", w.config.PollInterval).
		Int("batch_size", w.config.BatchSize).
		Msg("outbox worker started")

	return nil
}

func (w *Worker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return fmt.Errorf("outbox worker not running")
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopChan)
	w.wg.Wait()

	log.Info().Msg("outbox worker stopped")
	return nil
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := w.clock.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	// Process immediately on start.
	w.processOutbox(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-ticker.Chan():
			w.processOutbox(ctx)
		}
	}
}

func (w *Worker) processOutbox(ctx context.Context) {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error().Err(err).Msg("outbox worker failed to begin transaction")
		return
	}
	defer tx.Rollback()

	batch, err := w.repo.FetchUnsentTx(ctx, tx, w.config.BatchSize)
	if err != nil {
		log.Error().Err(err).Msg("outbox worker failed to fetch batch")
		return
	}
	if len(batch) == 0 {
		_ = tx.Commit()
		return
	}

	published := 0
	for _, event := range batch {
		if err := w.publisher.Publish(ctx, event); err != nil {
			log.Error().
				Err(err).
				Str("event_id", event.ID.String()).
				Str("event_type", event.EventType).
				Msg("outbox worker failed to publish event")
			// Leave the rest of the batch for the next poll; publishing
			// out of order within a session would break commit-order
			// visibility.
			break
		}
		if err := w.repo.MarkSentTx(ctx, tx, event.ID, w.clock.Now()); err != nil {
			log.Error().Err(err).Str("event_id", event.ID.String()).Msg("outbox worker failed to mark event sent")
			return
		}
		published++
	}

	if err := tx.Commit(); err != nil {
		log.Error().Err(err).Msg("outbox worker failed to commit batch")
		return
	}

	if published > 0 {
		log.Debug().Int("published", published).Msg("outbox batch published")
	}
}
