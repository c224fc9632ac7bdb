package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/skilllinkup/backend/internal/orders"
)

// SignatureHeader carries the provider's hex-encoded HMAC-SHA256 of the raw
// request body.
const SignatureHeader = "X-Payment-Signature"

const maxBodyBytes = 1 << 20

// EventDeduper records processed provider event IDs. Dedup inserts run inside
// a caller-owned transaction so the record and the reconcile job commit
// together. Implemented by repository.PaymentEventRepo.
type EventDeduper interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	MarkProcessedTx(ctx context.Context, tx pgx.Tx, providerEventID string) (bool, error)
}

// EnqueueReconcileTxFunc inserts a reconcile job within the given
// transaction. Provided by main using river.Client.InsertTx.
type EnqueueReconcileTxFunc func(ctx context.Context, tx pgx.Tx, args ReconcilePaymentArgs) error

// WebhookHandler accepts payment provider events, verifies their signature,
// and hands them to the reconcile queue. The handler never applies order
// changes inline: a provider retry storm must not hold request goroutines on
// database transactions.
type WebhookHandler struct {
	secret  []byte
	events  EventDeduper
	enqueue EnqueueReconcileTxFunc
	log     *slog.Logger
}

func NewWebhookHandler(secret string, events EventDeduper, enqueue EnqueueReconcileTxFunc, log *slog.Logger) *WebhookHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WebhookHandler{secret: []byte(secret), events: events, enqueue: enqueue, log: log}
}

// POST /api/payments/webhook
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, `{"error":"cannot read body"}`, http.StatusBadRequest)
		return
	}
	if !h.verifySignature(body, r.Header.Get(SignatureHeader)) {
		http.Error(w, `{"error":"invalid signature"}`, http.StatusUnauthorized)
		return
	}
	var ev orders.PaymentEvent
	if err := json.Unmarshal(body, &ev); err != nil || ev.ID == "" || ev.Type == "" {
		http.Error(w, `{"error":"invalid event payload"}`, http.StatusBadRequest)
		return
	}

	// Dedup record and reconcile job commit atomically: an event only counts
	// as processed once its job exists, so a failed enqueue leaves the
	// provider free to retry.
	tx, err := h.events.Begin(r.Context())
	if err != nil {
		h.log.Error("begin payment event tx failed", "event_id", ev.ID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	defer tx.Rollback(r.Context())

	fresh, err := h.events.MarkProcessedTx(r.Context(), tx, ev.ID)
	if err != nil {
		h.log.Error("record payment event failed", "event_id", ev.ID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if !fresh {
		// Provider replay: acknowledged but not reprocessed.
		w.WriteHeader(http.StatusAccepted)
		return
	}
	if err := h.enqueue(r.Context(), tx, ReconcilePaymentArgs{Event: ev}); err != nil {
		h.log.Error("enqueue reconcile failed", "event_id", ev.ID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(r.Context()); err != nil {
		h.log.Error("commit payment event failed", "event_id", ev.ID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *WebhookHandler) verifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, h.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
