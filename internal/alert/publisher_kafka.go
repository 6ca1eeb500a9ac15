package alert

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// alertRecord is the wire shape published to the audit topic.
type alertRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Type      string    `json:"type"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// KafkaPublisher drains a ring buffer of alerts into a Kafka topic in the
// background. Enqueue never blocks and never fails; the buffer drops oldest
// under sustained broker outage.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	buffer *ringBuffer
	logger *slog.Logger

	flushInterval time.Duration
	batchSize     int
	wake          chan struct{}
}

type KafkaPublisherOption func(*KafkaPublisher)

func WithPublisherLogger(logger *slog.Logger) KafkaPublisherOption {
	return func(p *KafkaPublisher) { p.logger = logger }
}

func WithBufferCapacity(capacity int) KafkaPublisherOption {
	return func(p *KafkaPublisher) { p.buffer = newRingBuffer(capacity) }
}

func WithFlushInterval(d time.Duration) KafkaPublisherOption {
	return func(p *KafkaPublisher) { p.flushInterval = d }
}

// NewKafkaPublisher builds a publisher over an existing franz-go client.
// The caller owns the client's lifecycle.
func NewKafkaPublisher(client *kgo.Client, topic string, opts ...KafkaPublisherOption) *KafkaPublisher {
	p := &KafkaPublisher{
		client:        client,
		topic:         topic,
		buffer:        newRingBuffer(4096),
		logger:        slog.Default(),
		flushInterval: 500 * time.Millisecond,
		batchSize:     256,
		wake:          make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Enqueue buffers an alert for publication. Safe for concurrent use and
// never blocks the caller.
func (p *KafkaPublisher) Enqueue(a *Alert) {
	p.buffer.enqueue(a)
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Run drains the buffer until ctx is cancelled, then flushes what remains.
func (p *KafkaPublisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Final best-effort flush with a short grace period.
			flushCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			p.flush(flushCtx)
			cancel()
			return ctx.Err()
		case <-p.wake:
			p.flush(ctx)
		case <-ticker.C:
			p.flush(ctx)
		}
	}
}

func (p *KafkaPublisher) flush(ctx context.Context) {
	for {
		batch := p.buffer.dequeueBatch(p.batchSize)
		if len(batch) == 0 {
			return
		}

		records := make([]*kgo.Record, 0, len(batch))
		for _, a := range batch {
			rec := alertRecord{
				ID:        a.ID.String(),
				Type:      string(a.Type),
				Severity:  string(a.Severity),
				Message:   a.Message,
				CreatedAt: a.CreatedAt,
			}
			if !a.UserID.IsZero() {
				rec.UserID = a.UserID.String()
			}
			payload, err := json.Marshal(rec)
			if err != nil {
				p.logger.Error("marshal alert record", "error", err)
				continue
			}
			records = append(records, &kgo.Record{
				Topic: p.topic,
				Key:   []byte(rec.UserID),
				Value: payload,
			})
		}
		if len(records) == 0 {
			continue
		}

		results := p.client.ProduceSync(ctx, records...)
		if err := results.FirstErr(); err != nil {
			// Re-queueing risks reordering and unbounded growth; log and
			// move on, the durable store still has the record.
			p.logger.Error("publish alert batch", "error", err, "batch", len(records))
		}
	}
}

// Depth reports buffered and dropped counts for health endpoints.
func (p *KafkaPublisher) Depth() (buffered int, dropped int64) {
	return p.buffer.len(), p.buffer.droppedCount()
}
