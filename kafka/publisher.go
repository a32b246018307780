// Package kafka publishes merged venue records to a Kafka topic for
// downstream consumers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/IBM/sarama"

	"platemap/types"
)

// PublisherConfig holds the broker and topic settings.
type PublisherConfig struct {
	Brokers []string
	Topic   string
}

// Publisher wraps a sarama synchronous producer.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewPublisher connects a synchronous producer that waits for full-ISR acks.
func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Retry.Max = 3

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &Publisher{producer: producer, topic: cfg.Topic}, nil
}

// Publish sends every record as one JSON message keyed by external ID so
// repeated merges of the same venue land in the same partition.
func (p *Publisher) Publish(ctx context.Context, records []types.NormalizedRecord) error {
	published := 0

	for i := range records {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("publish aborted after %d message(s): %w", published, err)
		}

		payload, err := json.Marshal(&records[i])
		if err != nil {
			return fmt.Errorf("encode record %s: %w", records[i].ExternalID, err)
		}

		_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
			Topic: p.topic,
			Key:   sarama.StringEncoder(records[i].ExternalID),
			Value: sarama.ByteEncoder(payload),
		})
		if err != nil {
			return fmt.Errorf("send record %s after %d message(s): %w", records[i].ExternalID, published, err)
		}
		published++
	}

	log.Printf("Published %d record(s) to %s", published, p.topic)
	return nil
}

// Close shuts the producer down.
func (p *Publisher) Close() error {
	return p.producer.Close()
}
