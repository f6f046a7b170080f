package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind represents the direction of a transaction.
type Kind string

const (
	KindDebit  Kind = "debit"
	KindCredit Kind = "credit"
)

// Delta returns the signed balance change for a positive amount.
func (k Kind) Delta(amount decimal.Decimal) decimal.Decimal {
	if k == KindDebit {
		return amount.Neg()
	}

	return amount
}

// Status represents the persisted lifecycle state of a transaction.
// A transaction is inserted as PROCESSING and flipped to COMPLETED inside
// the same unit of work; a failed run rolls the row back entirely, so no
// other state is ever observable.
type Status string

const (
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
)

// Request is a validated, normalized transaction request.
type Request struct {
	CustomerID string
	Amount     decimal.Decimal
	Kind       Kind
}

// Transaction represents a single balance movement against a customer.
type Transaction struct {
	ID         uuid.UUID
	CustomerID string
	Amount     decimal.Decimal
	Kind       Kind
	Status     Status
	CreatedAt  time.Time
}

// AuditEntry records the balance before and after a completed transaction.
// Exactly one entry exists per completed transaction and it is immutable
// once written.
type AuditEntry struct {
	ID         uuid.UUID
	TxnID      uuid.UUID
	CustomerID string
	OldBalance decimal.Decimal
	NewBalance decimal.Decimal
	Timestamp  time.Time
}
