package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/callsight-io/callsight/internal/domain/entities"
	"github.com/callsight-io/callsight/internal/usecase/ingest"
	"github.com/callsight-io/callsight/pkg/config"
)

// Consumer reads utterances from the telephony bus and feeds them to
// the ingestion service. Delivery is at-least-once: offsets are
// committed only after the utterance has been handled, and the
// idempotent aggregation path absorbs any redelivery.
type Consumer struct {
	reader *kafka.Reader
	svc    ingest.Service
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewConsumer creates a new Kafka utterance consumer
func NewConsumer(cfg *config.Config, svc ingest.Service, logger *zap.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		GroupID:  cfg.Kafka.ConsumerGroup,
		Topic:    cfg.Kafka.UtterancesTopic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Consumer{
		reader: reader,
		svc:    svc,
		logger: logger,
	}
}

// Start launches the consume loop. It returns immediately; the loop
// stops when ctx is cancelled or the reader is closed.
func (c *Consumer) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.run(ctx)
	}()
}

func (c *Consumer) run(ctx context.Context) {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return
			}
			if c.logger != nil {
				c.logger.Error("kafka fetch failed", zap.Error(err))
			}
			continue
		}

		var u entities.Utterance
		if err := json.Unmarshal(msg.Value, &u); err != nil {
			// Unparseable payloads are skipped, not retried; the
			// quality gate handles semantically bad but parseable ones.
			if c.logger != nil {
				c.logger.Warn("skipping unparseable utterance message",
					zap.String("topic", msg.Topic),
					zap.Int64("offset", msg.Offset),
					zap.Error(err),
				)
			}
		} else if _, _, err := c.svc.IngestUtterance(ctx, u); err != nil {
			// Store write failed: leave the offset uncommitted so the
			// message is redelivered.
			if c.logger != nil {
				c.logger.Error("utterance ingest failed, leaving offset uncommitted",
					zap.String("call_id", u.CallID),
					zap.Error(err),
				)
			}
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil && c.logger != nil {
			c.logger.Error("kafka commit failed", zap.Error(err))
		}
	}
}

// Close shuts the reader down and waits for the consume loop to exit.
func (c *Consumer) Close() error {
	err := c.reader.Close()
	c.wg.Wait()
	return err
}
