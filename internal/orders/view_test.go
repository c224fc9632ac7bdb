package orders

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/skilllinkup/backend/internal/models"
)

func TestNewOrderView_Defaults(t *testing.T) {
	// A nearly empty order must still render a fully populated view.
	v := NewOrderView(&models.Order{}, "", "")

	if v.OrderType != "gig" {
		t.Errorf("orderType: expected %q, got %q", "gig", v.OrderType)
	}
	if v.Currency != "EUR" {
		t.Errorf("currency: expected %q, got %q", "EUR", v.Currency)
	}
	if v.Status != "pending" {
		t.Errorf("status: expected %q, got %q", "pending", v.Status)
	}
	if v.EscrowStatus != "held" {
		t.Errorf("escrowStatus: expected %q, got %q", "held", v.EscrowStatus)
	}
	if v.DeliveryDeadline != nil {
		t.Errorf("deliveryDeadline: expected nil, got %v", *v.DeliveryDeadline)
	}
	if v.CompletedAt != nil {
		t.Errorf("completedAt: expected nil, got %v", *v.CompletedAt)
	}
	if v.CreatedAt != "" {
		t.Errorf("createdAt: expected empty for zero time, got %q", v.CreatedAt)
	}
	if v.Requirements != nil {
		t.Errorf("requirements: expected nil, got %v", *v.Requirements)
	}
	if v.Amount != 0 || v.PlatformFee != 0 || v.FreelancerEarnings != 0 {
		t.Errorf("money fields should be zero on an empty order")
	}
}

func TestNewOrderView_PopulatedOrder(t *testing.T) {
	deadline := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	completed := time.Date(2026, 3, 20, 9, 30, 0, 0, time.UTC)
	gigID := uuid.New()

	o := &models.Order{
		ID:                      uuid.New(),
		OrderNumber:             "SL-20260301-0042",
		OrderType:               models.OrderTypeGig,
		GigID:                   &gigID,
		Title:                   "Logo design",
		AmountCents:             10000,
		PlatformFeeCents:        1000,
		FreelancerEarningsCents: 9000,
		Currency:                "EUR",
		Status:                  models.OrderStatusCompleted,
		EscrowStatus:            models.EscrowStatusReleased,
		DeliveryDeadline:        &deadline,
		RevisionCount:           3,
		RevisionsUsed:           1,
		CreatedAt:               time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		CompletedAt:             &completed,
	}

	v := NewOrderView(o, "Anna", "Bram")

	if v.OrderNumber != "SL-20260301-0042" {
		t.Errorf("orderNumber: got %q", v.OrderNumber)
	}
	if v.ClientName != "Anna" || v.FreelancerName != "Bram" {
		t.Errorf("names: got %q / %q", v.ClientName, v.FreelancerName)
	}
	if v.Status != "completed" || v.EscrowStatus != "released" {
		t.Errorf("status: got %q / %q", v.Status, v.EscrowStatus)
	}
	if v.DeliveryDeadline == nil || *v.DeliveryDeadline != "2026-03-15T12:00:00Z" {
		t.Errorf("deliveryDeadline: got %v", v.DeliveryDeadline)
	}
	if v.CompletedAt == nil || *v.CompletedAt != "2026-03-20T09:30:00Z" {
		t.Errorf("completedAt: got %v", v.CompletedAt)
	}
	if v.CreatedAt != "2026-03-01T08:00:00Z" {
		t.Errorf("createdAt: got %q", v.CreatedAt)
	}
	if v.RevisionCount != 3 || v.RevisionsUsed != 1 {
		t.Errorf("revisions: got %d / %d", v.RevisionCount, v.RevisionsUsed)
	}
}

func TestOrderView_JSONShape(t *testing.T) {
	// The frontend reads camelCase keys; every key must be present even when
	// its value is a fallback or null.
	raw, err := json.Marshal(NewOrderView(&models.Order{}, "", ""))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(raw)

	for _, key := range []string{
		"orderNumber", "orderType", "title", "amount", "platformFee",
		"freelancerEarnings", "currency", "status", "escrowStatus",
		"deliveryDeadline", "clientName", "freelancerName", "createdAt",
		"completedAt", "revisionCount", "revisionsUsed", "requirements",
	} {
		if !strings.Contains(body, `"`+key+`"`) {
			t.Errorf("missing key %q in %s", key, body)
		}
	}
	if strings.Contains(body, "_") {
		t.Errorf("view must not leak snake_case keys: %s", body)
	}
}
