package kafka

import (
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/fwojciec/mangaingest"
)

// Publisher enqueues ingestion requests.
type Publisher struct {
	producer sarama.SyncProducer
}

// NewProducer creates a synchronous producer for brokers.
func NewProducer(brokers []string) (sarama.SyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_6_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Return.Successes = true
	return sarama.NewSyncProducer(brokers, cfg)
}

// NewPublisher creates a Publisher.
func NewPublisher(producer sarama.SyncProducer) *Publisher {
	return &Publisher{producer: producer}
}

// PublishSeries enqueues a series request keyed by its slug, so repeated
// requests for one title land on one partition.
func (p *Publisher) PublishSeries(req mangaingest.SeriesRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return p.send(TopicSeriesCreate, mangaingest.Slugify(req.Title), req)
}

// PublishChapters enqueues a chapters request keyed by series ID.
func (p *Publisher) PublishChapters(req mangaingest.ChaptersRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return p.send(TopicChapterCreate, req.SeriesID, req)
}

func (p *Publisher) send(topic, key string, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s message: %w", topic, err)
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}

// Close closes the underlying producer.
func (p *Publisher) Close() error {
	return p.producer.Close()
}
