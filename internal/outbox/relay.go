package outbox

import (
	"context"
	"strconv"
	"time"

	"github.com/diewo77/go-inventory/internal/kafka"
	"github.com/diewo77/go-inventory/internal/metrics"
	"github.com/diewo77/go-inventory/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultMaxAttempts is how many publish failures an event may accumulate
// before the relay marks it failed.
const DefaultMaxAttempts = 5

// Relay polls pending events in insertion order and publishes them.
type Relay struct {
	db          *gorm.DB
	producer    kafka.Producer
	topic       string
	interval    time.Duration
	batchSize   int
	maxAttempts int
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// RelayOption customises a Relay.
type RelayOption func(*Relay)

// WithMaxAttempts overrides DefaultMaxAttempts. Values below 1 are ignored.
func WithMaxAttempts(n int) RelayOption {
	return func(r *Relay) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

func NewRelay(db *gorm.DB, producer kafka.Producer, topic string, interval time.Duration, batchSize int, m *metrics.Metrics, logger *zap.Logger, opts ...RelayOption) *Relay {
	r := &Relay{
		db:          db,
		producer:    producer,
		topic:       topic,
		interval:    interval,
		batchSize:   batchSize,
		maxAttempts: DefaultMaxAttempts,
		metrics:     m,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	r.logger.Info("outbox relay started", zap.Duration("interval", r.interval), zap.String("topic", r.topic))
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopped")
			return
		case <-ticker.C:
			if _, err := r.Flush(ctx); err != nil {
				r.logger.Error("outbox poll failed", zap.Error(err))
			}
		}
	}
}

// Flush publishes one batch and returns how many events were sent. It stops
// at the first failure so that later events of the same invoice are not
// published ahead of it. An event whose attempts reach the limit is marked
// failed instead and the batch moves on past it.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	var events []models.OutboxEvent
	err := r.db.WithContext(ctx).
		Where("status = ?", models.OutboxPending).
		Order("id ASC").
		Limit(r.batchSize).
		Find(&events).Error
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range events {
		ev := &events[i]
		key := strconv.FormatUint(uint64(ev.AggregateID), 10)
		if err := r.producer.Produce(ctx, key, r.topic, []byte(ev.Payload)); err != nil {
			r.metrics.OutboxPublished(false)
			attempts := ev.Attempts + 1
			updates := map[string]any{
				"attempts":   gorm.Expr("attempts + 1"),
				"last_error": err.Error(),
			}
			exhausted := attempts >= r.maxAttempts
			if exhausted {
				updates["status"] = models.OutboxFailed
				r.logger.Error("outbox event failed permanently",
					zap.String("event_id", ev.EventID),
					zap.String("event_type", ev.EventType),
					zap.Int("attempts", attempts),
					zap.Error(err))
			} else {
				r.logger.Warn("outbox publish failed",
					zap.String("event_id", ev.EventID),
					zap.String("event_type", ev.EventType),
					zap.Int("attempts", attempts),
					zap.Error(err))
			}
			if uerr := r.db.WithContext(ctx).Model(ev).Updates(updates).Error; uerr != nil {
				return sent, uerr
			}
			if exhausted {
				continue
			}
			return sent, nil
		}
		now := time.Now().UTC()
		if err := r.db.WithContext(ctx).Model(ev).Updates(map[string]any{
			"status":  models.OutboxSent,
			"sent_at": now,
		}).Error; err != nil {
			return sent, err
		}
		r.metrics.OutboxPublished(true)
		sent++
	}
	if sent > 0 {
		r.logger.Debug("outbox batch relayed", zap.Int("count", sent))
	}
	return sent, nil
}
