package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"seatmap/pkg/logger"
)

// KafkaPublisherConfig contains configuration for the Kafka seat event publisher
type KafkaPublisherConfig struct {
	Brokers          []string
	Topic            string
	RetryMax         int
	TimeoutMs        int
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
	MaxMessageBytes  int
}

// DefaultKafkaPublisherConfig returns a default producer configuration
func DefaultKafkaPublisherConfig() *KafkaPublisherConfig {
	return &KafkaPublisherConfig{
		Brokers:          []string{"localhost:9092"},
		Topic:            "seat-events",
		RetryMax:         3,
		TimeoutMs:        10000,             // 10 seconds
		RequiredAcks:     sarama.WaitForAll, // Wait for all in-sync replicas
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
		MaxMessageBytes:  1000000, // 1MB
	}
}

// KafkaPublisher publishes seat events to one topic, keyed by event id
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewKafkaPublisher creates a sync producer from config
func NewKafkaPublisher(config *KafkaPublisherConfig, log *logger.Logger) (*KafkaPublisher, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(config.TimeoutMs) * time.Millisecond
	saramaConfig.Producer.Idempotent = config.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = config.MaxMessageBytes
	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// Hash partitioner keeps one event's seat changes in order
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(producer, config.Topic, log), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, log *logger.Logger) *KafkaPublisher {
	if log == nil {
		log = logger.GetDefault()
	}
	return &KafkaPublisher{producer: producer, topic: topic, log: log.WithComponent("kafka-publisher")}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event *SeatEvent) error {
	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal seat event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.PartitionKey()),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.Type)},
			{Key: []byte("event_id"), Value: []byte(event.ID.String())},
		},
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send seat event to Kafka: %w", err)
	}

	p.log.DebugContext(ctx, "Seat event published",
		"topic", p.topic, "partition", partition, "offset", offset,
		"type", string(event.Type), "event_id", event.EventID)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
