// Package kafka carries ingestion requests over Kafka using sarama.
package kafka

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

// Topics carrying ingestion requests.
const (
	TopicSeriesCreate  = "scraper.series.create"
	TopicChapterCreate = "scraper.chapter.create"
)

// Topics returns every topic the consumer subscribes to.
func Topics() []string {
	return []string{TopicSeriesCreate, TopicChapterCreate}
}

// Waits between failed Consume calls. The wait doubles up to the maximum and
// resets after a successful session.
const (
	DefaultRetryBackoff = time.Second
	MaxRetryBackoff     = 30 * time.Second
)

// MessageHandler processes one consumed message. Messages are marked whether
// or not it fails; a returned error is only logged.
type MessageHandler interface {
	HandleMessage(ctx context.Context, topic string, value []byte) error
}

// ConsumerConfig holds Kafka consumer configuration.
type ConsumerConfig struct {
	Brokers []string
	Topics  []string
	GroupID string
	Handler MessageHandler
	Logger  *slog.Logger

	// RetryBackoff is the first wait after a failed Consume. Zero uses
	// DefaultRetryBackoff.
	RetryBackoff time.Duration
}

// Consumer runs a consumer group and hands every message to a handler.
type Consumer struct {
	group   sarama.ConsumerGroup
	handler *GroupHandler
	topics  []string
	groupID string
	backoff time.Duration
	logger  *slog.Logger
}

// NewConsumer creates a new Kafka consumer.
func NewConsumer(cfg ConsumerConfig) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaConfig)
	if err != nil {
		return nil, err
	}
	return NewConsumerWithGroup(group, cfg), nil
}

// NewConsumerWithGroup creates a Consumer over an existing consumer group.
// cfg.Brokers is ignored.
func NewConsumerWithGroup(group sarama.ConsumerGroup, cfg ConsumerConfig) *Consumer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	topics := cfg.Topics
	if len(topics) == 0 {
		topics = Topics()
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = DefaultRetryBackoff
	}
	return &Consumer{
		group:   group,
		handler: NewGroupHandler(cfg.Handler, logger),
		topics:  topics,
		groupID: cfg.GroupID,
		backoff: backoff,
		logger:  logger,
	}
}

// Run consumes until ctx is done. Consume returns on every rebalance, so it
// is called in a loop.
func (c *Consumer) Run(ctx context.Context) error {
	go func() {
		for err := range c.group.Errors() {
			c.logger.Error("kafka consumer error", "err", err)
		}
	}()

	c.logger.Info("kafka consumer started", "group", c.groupID, "topics", c.topics)
	backoff := c.backoff
	for {
		err := c.group.Consume(ctx, c.topics, c.handler)
		if errors.Is(err, sarama.ErrClosedConsumerGroup) || errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return nil
		}
		if err == nil {
			backoff = c.backoff
			continue
		}

		c.logger.Error("kafka consume failed", "err", err, "retry_in", backoff)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(2*backoff, MaxRetryBackoff)
	}
}

// Close shuts down the consumer group.
func (c *Consumer) Close() error {
	c.logger.Info("closing kafka consumer", "group", c.groupID)
	return c.group.Close()
}

// Ensure GroupHandler implements sarama.ConsumerGroupHandler at compile time.
var _ sarama.ConsumerGroupHandler = (*GroupHandler)(nil)

// GroupHandler adapts a MessageHandler to sarama's consumer group protocol.
type GroupHandler struct {
	handler MessageHandler
	logger  *slog.Logger
}

// NewGroupHandler creates a GroupHandler.
func NewGroupHandler(handler MessageHandler, logger *slog.Logger) *GroupHandler {
	return &GroupHandler{handler: handler, logger: logger}
}

// Setup is run at the beginning of a new session, before ConsumeClaim.
func (h *GroupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines
// have exited.
func (h *GroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim handles messages of one partition until the claim closes or
// the session ends.
func (h *GroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok || msg == nil {
				return nil
			}
			h.logger.Debug("kafka message",
				"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "key", string(msg.Key))

			if err := h.handler.HandleMessage(session.Context(), msg.Topic, msg.Value); err != nil {
				h.logger.Error("kafka message failed", "topic", msg.Topic, "offset", msg.Offset, "err", err)
			}
			session.MarkMessage(msg, "")

		case <-session.Context().Done():
			return nil
		}
	}
}
