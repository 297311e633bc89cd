// Package kafka contains Kafka repository implementations
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/mycodedstuff/pibot/config"
	"github.com/mycodedstuff/pibot/internal/domain/media/deps"
	"github.com/mycodedstuff/pibot/internal/domain/media/entities"
)

// Publisher implements deps.EventPublisher
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   zerolog.Logger
}

// NewPublisher creates a Kafka publisher, or a no-op one when no brokers are configured
func NewPublisher(cfg *config.KafkaConfig, logger zerolog.Logger) (deps.EventPublisher, error) {
	if !cfg.Enabled() {
		logger.Info().Msg("Kafka brokers not configured, download events are disabled")
		return NoopPublisher{}, nil
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Info().Strs("brokers", cfg.Brokers).Str("topic", cfg.DownloadsTopic).Msg("Kafka producer initialized successfully")

	return newPublisher(producer, cfg.DownloadsTopic, logger), nil
}

func newPublisher(producer sarama.SyncProducer, topic string, logger zerolog.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// PublishDownloadCompleted sends the event keyed by the origin message ID
func (p *Publisher) PublishDownloadCompleted(ctx context.Context, event *entities.DownloadCompletedEvent) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event to JSON: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.Itoa(event.MessageID)),
		Value: sarama.ByteEncoder(jsonData),
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		p.logger.Error().Err(err).Str("topic", p.topic).Msg("Failed to send Kafka message")
		return err
	}

	p.logger.Debug().
		Str("topic", p.topic).
		Int32("partition", partition).
		Int64("offset", offset).
		Str("file_name", event.FileName).
		Msg("Download event sent")

	return nil
}

// Close closes the Kafka producer
func (p *Publisher) Close() error {
	if err := p.producer.Close(); err != nil {
		p.logger.Error().Err(err).Msg("Failed to close Kafka producer")
		return err
	}
	p.logger.Info().Msg("Kafka producer closed successfully")
	return nil
}

// NoopPublisher drops every event
type NoopPublisher struct{}

func (NoopPublisher) PublishDownloadCompleted(context.Context, *entities.DownloadCompletedEvent) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }
