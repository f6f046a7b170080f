package ledger

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/b2bportal/ledger/internal/ledger"
)

type successResponse struct {
	TxnID            uuid.UUID   `json:"txn_id"`
	Status           string      `json:"status"`
	CustomerID       string      `json:"customer_id"`
	Amount           json.Number `json:"amount"`
	TransactionType  ledger.Kind `json:"transaction_type"`
	ProcessingTimeMs float64     `json:"processing_time_ms"`
	Timestamp        time.Time   `json:"timestamp"`
}

type errorResponse struct {
	TxnID            uuid.UUID `json:"txn_id"`
	Status           string    `json:"status"`
	Error            string    `json:"error"`
	ProcessingTimeMs float64   `json:"processing_time_ms"`
	Timestamp        time.Time `json:"timestamp"`
}

func toSuccessResponse(tx *ledger.Transaction, start time.Time) successResponse {
	return successResponse{
		TxnID:      tx.ID,
		Status:     "SUCCESS",
		CustomerID: tx.CustomerID,
		// Amounts go over the wire as JSON numbers, not quoted strings.
		Amount:           json.Number(tx.Amount.String()),
		TransactionType:  tx.Kind,
		ProcessingTimeMs: elapsedMs(start),
		Timestamp:        time.Now(),
	}
}

func toErrorResponse(txnID uuid.UUID, message string, start time.Time) errorResponse {
	return errorResponse{
		TxnID:            txnID,
		Status:           "ERROR",
		Error:            message,
		ProcessingTimeMs: elapsedMs(start),
		Timestamp:        time.Now(),
	}
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
