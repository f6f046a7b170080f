package ledger

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/b2bportal/ledger/internal/ledger"
)

type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	// The id is minted before validation so every response, including
	// rejections, carries a traceable transaction id.
	txnID := uuid.New()

	var data map[string]any

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	if err := dec.Decode(&data); err != nil {
		h.reject(w, txnID, "invalid JSON body", start)
		return
	}

	req, err := ledger.Validate(data)
	if err != nil {
		h.reject(w, txnID, err.Error(), start)
		return
	}

	tx, err := h.svc.Execute(r.Context(), txnID, req)
	if err != nil {
		if ledger.IsRejection(err) {
			writeJSON(w, http.StatusBadRequest, toErrorResponse(txnID, err.Error(), start))
			return
		}

		// Infrastructure failure: never leak internals to the client.
		writeJSON(w, http.StatusInternalServerError, toErrorResponse(txnID, "database operation failed", start))

		return
	}

	writeJSON(w, http.StatusOK, toSuccessResponse(tx, start))
}

// reject handles failures that never reach the engine. Rejected requests
// still get a terminal log record carrying the same fields as the engine's
// failure log.
func (h *Handler) reject(w http.ResponseWriter, txnID uuid.UUID, message string, start time.Time) {
	resp := toErrorResponse(txnID, message, start)

	slog.Error("transaction failed",
		"txn_id", txnID,
		"error", message,
		"processing_time_ms", resp.ProcessingTimeMs,
	)

	writeJSON(w, http.StatusBadRequest, resp)
}
