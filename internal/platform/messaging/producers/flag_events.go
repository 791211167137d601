// Package producers publishes reconciliation events to Kafka. The only
// producer today emits flag events for transactions the engine rejects, so
// downstream alerting can page the accounting team.
package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/pos-cash-recon/internal/config"
	"github.com/pos-cash-recon/internal/domain/transaction"
	"github.com/segmentio/kafka-go"
)

// FlagEvent is the wire payload for an invalid-transaction event.
type FlagEvent struct {
	CashID      string           `json:"cash_id"`
	StoreID     string           `json:"store_uid"`
	Amount      int64            `json:"amount"`
	Time        int64            `json:"time"`
	Note        string           `json:"note"`
	Flag        transaction.Flag `json:"flag"`
	SystemNote  string           `json:"system_note"`
	PublishedAt string           `json:"published_at"`
}

type FlagEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

// NewFlagEventProducer creates the producer, ensuring the topic exists.
// Returns nil producer if cfg.FlagEventTopic is empty (publishing disabled).
func NewFlagEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*FlagEventProducer, error) {
	if cfg.FlagEventTopic == "" {
		logger.Info("Flag event topic is not configured. FlagEventProducer will not be initialized.")
		return nil, nil
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for flag event producer: %w", err)
	}
	defer conn.Close()

	err = ensureTopic(conn, cfg.FlagEventTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure topic %s exists for flag event producer: %w", cfg.FlagEventTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.FlagEventTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.WriteTimeout,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write flag event messages", "topic", cfg.FlagEventTopic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Successfully wrote flag event messages", "topic", cfg.FlagEventTopic, "count", len(messages))
			}
		},
	}

	return &FlagEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.FlagEventTopic,
	}, nil
}

// PublishFlagEvent emits one event for a flagged transaction, keyed by cash
// ID so repeated crawls of the same record land on the same partition.
func (p *FlagEventProducer) PublishFlagEvent(ctx context.Context, tx *transaction.Transaction) error {
	if p == nil || p.writer == nil {
		return nil // Publishing disabled.
	}

	event := FlagEvent{
		CashID:      tx.CashID,
		StoreID:     tx.StoreID,
		Amount:      tx.Amount,
		Time:        tx.Time,
		Note:        tx.Note,
		Flag:        tx.Flag,
		SystemNote:  tx.SystemNote,
		PublishedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal flag event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(tx.CashID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "flag", Value: []byte(tx.Flag)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish flag event",
			"topic", p.topic,
			"cash_id", tx.CashID,
			"error", err,
		)
		return fmt.Errorf("failed to publish flag event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published flag event",
		"topic", p.topic,
		"cash_id", tx.CashID,
		"flag", tx.Flag,
	)
	return nil
}

func (p *FlagEventProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	p.logger.Info("Closing flag event Kafka producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
