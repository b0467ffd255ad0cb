// Package events publishes item-ingested notifications to Kafka so
// downstream consumers can react to newly stored articles.
package events

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"insightbeam/types"

	"github.com/IBM/sarama"
)

// ItemIngested is the event payload emitted once per newly stored item.
type ItemIngested struct {
	ItemID     int64     `json:"item_id"`
	SourceID   int64     `json:"source_id"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	IngestedAt time.Time `json:"ingested_at"`
}

// Publisher sends ingest events through a Kafka sync producer.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewPublisher connects to the brokers and returns a ready publisher.
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V3_6_0_0
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &Publisher{producer: producer, topic: topic}, nil
}

// PublishItems emits one event per item. Publishing is best-effort relative
// to the ingest pipeline: a broker failure is logged and returned but the
// items themselves are already persisted.
func (p *Publisher) PublishItems(items []types.SourceItem) error {
	now := time.Now().UTC()
	for _, item := range items {
		payload, err := json.Marshal(ItemIngested{
			ItemID:     item.ID,
			SourceID:   item.SourceID,
			Title:      item.Title,
			URL:        item.URL,
			IngestedAt: now,
		})
		if err != nil {
			return fmt.Errorf("failed to encode event for item %d: %w", item.ID, err)
		}

		_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
			Topic: p.topic,
			Key:   sarama.StringEncoder(fmt.Sprintf("%d", item.ID)),
			Value: sarama.ByteEncoder(payload),
		})
		if err != nil {
			return fmt.Errorf("failed to publish event for item %d: %w", item.ID, err)
		}
	}

	log.Printf("Published %d ingest event(s) to %s", len(items), p.topic)
	return nil
}

// Close shuts down the producer.
func (p *Publisher) Close() error {
	return p.producer.Close()
}
