package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Config holds configuration for the create-announcement producer.
type Config struct {
	// Brokers is a comma-separated list of Kafka broker addresses.
	Brokers string `mapstructure:"brokers" default:"localhost:9092"`
	// Topic is the topic create announcements are published to.
	Topic string `mapstructure:"topic" default:"stac-stocktake-create"`
	// WriteTimeoutSeconds bounds a single publish.
	WriteTimeoutSeconds int `mapstructure:"write_timeout_seconds" default:"30"`
}

// createMessage is the wire format consumed by the asset materializer.
type createMessage struct {
	URI string `json:"uri"`
}

// Producer publishes create announcements. It implements
// reconcile.ActionSink.
type Producer struct {
	writer *kafka.Writer
	log    *zap.Logger
}

// NewProducer builds a producer from the configuration.
func NewProducer(cfg Config, log *zap.Logger) *Producer {
	brokers := strings.Split(cfg.Brokers, ",")
	for i := range brokers {
		brokers[i] = strings.TrimSpace(brokers[i])
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
	}

	return &Producer{writer: writer, log: log}
}

// AnnounceCreate publishes a create announcement for the given source key.
// The message key is the URI, so replays of the same key land on the same
// partition.
func (p *Producer) AnnounceCreate(ctx context.Context, key string) error {
	payload, err := json.Marshal(createMessage{URI: key})
	if err != nil {
		return fmt.Errorf("encode create announcement for %q: %w", key, err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish create announcement for %q: %w", key, err)
	}

	p.log.Debug("announced missing catalog entry", zap.String("uri", key))
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
