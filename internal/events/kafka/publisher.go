// Package kafka publishes completed-transaction events. Publishing happens
// after commit and is best effort: the ledger never fails a request because
// the broker is down.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/b2bportal/ledger/internal/ledger"
)

const topic = "transaction_completed"

type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

type transactionCompletedEvent struct {
	TxnID           string          `json:"txn_id"`
	CustomerID      string          `json:"customer_id"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionType ledger.Kind     `json:"transaction_type"`
	OldBalance      decimal.Decimal `json:"old_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
	Timestamp       time.Time       `json:"timestamp"`
}

func (p *Publisher) TransactionCompleted(ctx context.Context, tx *ledger.Transaction, entry *ledger.AuditEntry) error {
	event := transactionCompletedEvent{
		TxnID:           tx.ID.String(),
		CustomerID:      tx.CustomerID,
		Amount:          tx.Amount,
		TransactionType: tx.Kind,
		OldBalance:      entry.OldBalance,
		NewBalance:      entry.NewBalance,
		Timestamp:       entry.Timestamp,
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(tx.CustomerID),
		Value: data,
	})
	if err != nil {
		return fmt.Errorf("writing message: %w", err)
	}

	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ ledger.Publisher = (*Publisher)(nil)
