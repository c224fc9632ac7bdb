package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/skilllinkup/backend/internal/orders"
)

const testSecret = "test-webhook-secret"

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

// --- noopTx satisfies pgx.Tx for test use; only Commit/Rollback are called. ---

type noopTx struct{}

func (noopTx) Begin(context.Context) (pgx.Tx, error) { return noopTx{}, nil }
func (noopTx) Commit(context.Context) error          { return nil }
func (noopTx) Rollback(context.Context) error        { return nil }
func (noopTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (noopTx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (noopTx) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }
func (noopTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (noopTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (noopTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (noopTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (noopTx) Conn() *pgx.Conn { return nil }

// --- EventDeduper mock ---

// mockDeduper keeps marks pending per transaction; only Commit makes them
// visible, mirroring the unique-insert semantics of the real repo.
type mockDeduper struct {
	committed map[string]bool
}

type dedupTx struct {
	noopTx
	deduper *mockDeduper
	pending []string
}

func (m *mockDeduper) Begin(context.Context) (pgx.Tx, error) {
	if m.committed == nil {
		m.committed = make(map[string]bool)
	}
	return &dedupTx{deduper: m}, nil
}

func (m *mockDeduper) MarkProcessedTx(_ context.Context, tx pgx.Tx, id string) (bool, error) {
	if m.committed[id] {
		return false, nil
	}
	dt := tx.(*dedupTx)
	dt.pending = append(dt.pending, id)
	return true, nil
}

func (t *dedupTx) Commit(context.Context) error {
	for _, id := range t.pending {
		t.deduper.committed[id] = true
	}
	t.pending = nil
	return nil
}

func (t *dedupTx) Rollback(context.Context) error {
	t.pending = nil
	return nil
}

func sign(body string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func newWebhookTest(t *testing.T) (*WebhookHandler, *mockDeduper, *[]ReconcilePaymentArgs) {
	t.Helper()
	dedup := &mockDeduper{}
	var enqueued []ReconcilePaymentArgs
	h := NewWebhookHandler(testSecret, dedup, func(_ context.Context, _ pgx.Tx, args ReconcilePaymentArgs) error {
		enqueued = append(enqueued, args)
		return nil
	}, nil)
	return h, dedup, &enqueued
}

func post(h *WebhookHandler, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", strings.NewReader(body))
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	h.Receive(rec, req)
	return rec
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestWebhook_ValidEventEnqueued(t *testing.T) {
	h, _, enqueued := newWebhookTest(t)

	orderID := uuid.New()
	body := `{"id":"evt_1","type":"payment.succeeded","order_id":"` + orderID.String() + `","amount_cents":10000}`

	rec := post(h, body, sign(body))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(*enqueued) != 1 {
		t.Fatalf("expected 1 enqueued job, got %d", len(*enqueued))
	}
	ev := (*enqueued)[0].Event
	if ev.ID != "evt_1" || ev.Type != orders.EventPaymentSucceeded || ev.OrderID != orderID {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestWebhook_MissingSignatureRejected(t *testing.T) {
	h, _, enqueued := newWebhookTest(t)

	rec := post(h, `{"id":"evt_1","type":"payment.succeeded"}`, "")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(*enqueued) != 0 {
		t.Error("nothing should be enqueued")
	}
}

func TestWebhook_BadSignatureRejected(t *testing.T) {
	h, _, enqueued := newWebhookTest(t)

	body := `{"id":"evt_1","type":"payment.succeeded"}`
	rec := post(h, body, sign(body+"tampered"))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(*enqueued) != 0 {
		t.Error("nothing should be enqueued")
	}
}

func TestWebhook_ReplayAcknowledgedOnce(t *testing.T) {
	h, _, enqueued := newWebhookTest(t)

	body := `{"id":"evt_dup","type":"payment.succeeded","order_id":"` + uuid.NewString() + `"}`
	sig := sign(body)

	if rec := post(h, body, sig); rec.Code != http.StatusAccepted {
		t.Fatalf("first delivery: expected 202, got %d", rec.Code)
	}
	if rec := post(h, body, sig); rec.Code != http.StatusAccepted {
		t.Fatalf("replay: expected 202, got %d", rec.Code)
	}
	if len(*enqueued) != 1 {
		t.Fatalf("replay must not enqueue again, got %d jobs", len(*enqueued))
	}
}

// A transient enqueue failure must not burn the event ID: the 500 leaves the
// dedup insert uncommitted, so the provider's retry is treated as a first
// delivery and the job still gets inserted.
func TestWebhook_EnqueueFailureKeepsEventRetryable(t *testing.T) {
	dedup := &mockDeduper{}
	var enqueued []ReconcilePaymentArgs
	calls := 0
	h := NewWebhookHandler(testSecret, dedup, func(_ context.Context, _ pgx.Tx, args ReconcilePaymentArgs) error {
		calls++
		if calls == 1 {
			return errors.New("river unavailable")
		}
		enqueued = append(enqueued, args)
		return nil
	}, nil)

	body := `{"id":"evt_retry","type":"payment.succeeded","order_id":"` + uuid.NewString() + `"}`
	sig := sign(body)

	if rec := post(h, body, sig); rec.Code != http.StatusInternalServerError {
		t.Fatalf("failed enqueue: expected 500, got %d: %s", rec.Code, rec.Body.String())
	}
	if dedup.committed["evt_retry"] {
		t.Fatal("event must not be marked processed when its job was not inserted")
	}

	if rec := post(h, body, sig); rec.Code != http.StatusAccepted {
		t.Fatalf("retry: expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(enqueued) != 1 {
		t.Fatalf("retry must insert the job, got %d", len(enqueued))
	}
	if enqueued[0].Event.ID != "evt_retry" {
		t.Errorf("unexpected event: %+v", enqueued[0].Event)
	}
}

func TestWebhook_MalformedPayloadRejected(t *testing.T) {
	h, _, _ := newWebhookTest(t)

	for _, body := range []string{
		`not json`,
		`{"type":"payment.succeeded"}`,
		`{"id":"evt_1"}`,
	} {
		rec := post(h, body, sign(body))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
}
