// Package events fans session lifecycle events out over watermill: an
// in-process GoChannel feeds the local journal and an optional Kafka
// publisher mirrors every message for analytics.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"github.com/abhisek/studyhall/internal/exam"
	"github.com/abhisek/studyhall/internal/logging"
)

// DefaultTopic carries every exam event.
const DefaultTopic = "studyhall.exam"

// Metadata keys set on every message.
const (
	MetaEventType = "event_type"
	MetaSessionID = "session_id"
	MetaUsername  = "username"
)

// Config configures a Bus.
type Config struct {
	Topic string

	// KafkaBrokers enables the Kafka mirror when non-empty.
	KafkaBrokers []string
	KafkaTopic   string

	// Mirror replaces the Kafka mirror with any watermill publisher.
	Mirror message.Publisher
}

// Bus publishes exam events. It implements exam.Publisher.
type Bus struct {
	pubsub *gochannel.GoChannel
	mirror message.Publisher

	topic       string
	mirrorTopic string
	logger      logging.Logger
}

var _ exam.Publisher = (*Bus)(nil)

// NewBus creates a bus. Publishing blocks until every local subscriber has
// acked, so subscribers see events in publish order.
func NewBus(cfg Config, logger logging.Logger) (*Bus, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	if cfg.KafkaTopic == "" {
		cfg.KafkaTopic = cfg.Topic
	}
	wmLogger := watermill.NewSlogLogger(logger.Slog())

	b := &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            64,
			BlockPublishUntilSubscriberAck: true,
		}, wmLogger),
		topic:       cfg.Topic,
		mirrorTopic: cfg.KafkaTopic,
		logger:      logger.With("component", "events"),
	}

	switch {
	case cfg.Mirror != nil:
		b.mirror = cfg.Mirror
	case len(cfg.KafkaBrokers) > 0:
		pub, err := kafka.NewPublisher(kafka.PublisherConfig{
			Brokers:   cfg.KafkaBrokers,
			Marshaler: kafka.DefaultMarshaler{},
		}, wmLogger)
		if err != nil {
			_ = b.pubsub.Close()
			return nil, fmt.Errorf("create Kafka publisher: %w", err)
		}
		b.mirror = pub
	}
	return b, nil
}

// Topic returns the local topic name.
func (b *Bus) Topic() string { return b.topic }

// Publish encodes e as JSON and delivers it to local subscribers, then to
// the mirror. Mirror failures are logged and never returned.
func (b *Bus) Publish(ctx context.Context, e exam.Event) error {
	msg, err := NewMessage(e)
	if err != nil {
		return err
	}
	msg.SetContext(ctx)

	if err := b.pubsub.Publish(b.topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}

	if b.mirror != nil {
		if err := b.mirror.Publish(b.mirrorTopic, msg.Copy()); err != nil {
			b.logger.LogError(err, "mirror publish failed", "event_type", string(e.Type), "session_id", e.SessionID)
		}
	}
	return nil
}

// Subscribe returns the local message stream. Each message must be acked.
// The stream closes when ctx is done or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, b.topic)
}

// Close shuts down the local pub/sub and the mirror.
func (b *Bus) Close() error {
	err := b.pubsub.Close()
	if b.mirror != nil {
		if mErr := b.mirror.Close(); mErr != nil && err == nil {
			err = mErr
		}
	}
	return err
}

// NewMessage wraps e in a watermill message with routing metadata.
func NewMessage(e exam.Event) (*message.Message, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal %s event: %w", e.Type, err)
	}
	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set(MetaEventType, string(e.Type))
	msg.Metadata.Set(MetaSessionID, e.SessionID)
	msg.Metadata.Set(MetaUsername, e.Username)
	return msg, nil
}

// DecodeMessage is the inverse of NewMessage.
func DecodeMessage(msg *message.Message) (exam.Event, error) {
	var e exam.Event
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		return exam.Event{}, fmt.Errorf("decode event %s: %w", msg.UUID, err)
	}
	return e, nil
}
