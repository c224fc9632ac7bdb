package payments

import (
	"context"
	"errors"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/skilllinkup/backend/internal/orders"
)

// ReconcilePaymentArgs is the queue payload for one provider event.
type ReconcilePaymentArgs struct {
	Event orders.PaymentEvent `json:"event"`
}

func (ReconcilePaymentArgs) Kind() string { return "reconcile_payment" }

// Reconciler applies a provider event to the order it concerns. Implemented
// by orders.Service.
type Reconciler interface {
	ApplyPaymentEvent(ctx context.Context, ev orders.PaymentEvent) error
}

type ReconcileWorker struct {
	river.WorkerDefaults[ReconcilePaymentArgs]
	reconciler Reconciler
	log        *slog.Logger
}

func NewReconcileWorker(reconciler Reconciler, log *slog.Logger) *ReconcileWorker {
	if log == nil {
		log = slog.Default()
	}
	return &ReconcileWorker{reconciler: reconciler, log: log}
}

func (w *ReconcileWorker) Work(ctx context.Context, job *river.Job[ReconcilePaymentArgs]) error {
	ev := job.Args.Event
	err := w.reconciler.ApplyPaymentEvent(ctx, ev)
	if errors.Is(err, orders.ErrUnknownEventType) {
		// Unknown kinds are dropped; retrying cannot make them known.
		w.log.Warn("dropping unknown payment event", "event_id", ev.ID, "type", ev.Type)
		return nil
	}
	if err != nil {
		return err
	}
	w.log.Info("payment event reconciled", "event_id", ev.ID, "type", ev.Type, "order_id", ev.OrderID)
	return nil
}
