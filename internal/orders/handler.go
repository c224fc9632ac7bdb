package orders

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/skilllinkup/backend/internal/middleware"
	"github.com/skilllinkup/backend/internal/models"
	"github.com/skilllinkup/backend/internal/repository"
)

type Handler struct {
	svc *Service
	log *slog.Logger
}

func NewHandler(svc *Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// orderListPath is where failed detail views are sent: the locale-prefixed
// account order list.
func orderListPath(locale string) string {
	if !models.IsSupportedLocale(locale) {
		locale = models.DefaultLocale
	}
	return fmt.Sprintf("/%s/account/orders", locale)
}

// POST /api/checkout
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var input CheckoutInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if input.GigID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "gig_id is required")
		return
	}
	order, err := h.svc.Checkout(r.Context(), sess.UserID, input)
	if err != nil {
		switch {
		case errors.Is(err, ErrGigNotAvailable):
			writeError(w, http.StatusNotFound, "gig not found")
		case errors.Is(err, ErrOwnGig):
			writeError(w, http.StatusBadRequest, "cannot order your own gig")
		case errors.Is(err, repository.ErrFeeMismatch):
			h.log.Error("checkout fee mismatch", "error", err)
			writeError(w, http.StatusInternalServerError, "checkout failed")
		default:
			h.log.Error("checkout failed", "error", err)
			writeError(w, http.StatusInternalServerError, "checkout failed")
		}
		return
	}
	writeJSON(w, http.StatusCreated, h.svc.View(r.Context(), order))
}

// GET /api/orders
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	list, err := h.svc.ListForUser(r.Context(), sess.UserID)
	if err != nil {
		h.log.Error("list orders failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load orders")
		return
	}
	views := make([]OrderView, 0, len(list))
	for _, o := range list {
		views = append(views, h.svc.View(r.Context(), o))
	}
	writeJSON(w, http.StatusOK, views)
}

// GET /api/orders/{id}
//
// Fails closed: a missing order, a repo error, a bad ID, or a requester who
// is not a participant all produce the same redirect to the order list.
// Nothing about the order's existence leaks to non-participants.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	locale := middleware.Locale(r)
	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Redirect(w, r, orderListPath(locale), http.StatusSeeOther)
		return
	}
	order, err := h.svc.GetForParticipant(r.Context(), orderID, sess.UserID)
	if err != nil {
		http.Redirect(w, r, orderListPath(locale), http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.View(r.Context(), order))
}

// POST /api/orders/{id}/{deliver|accept|cancel|revision}
func (h *Handler) Milestone(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.SessionFromCtx(r.Context())
		if sess == nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		orderID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid order id")
			return
		}
		switch action {
		case "deliver":
			err = h.svc.Deliver(r.Context(), orderID, sess.UserID)
		case "accept":
			err = h.svc.Accept(r.Context(), orderID, sess.UserID)
		case "cancel":
			err = h.svc.Cancel(r.Context(), orderID, sess.UserID)
		case "revision":
			err = h.svc.RequestRevision(r.Context(), orderID, sess.UserID)
		default:
			writeError(w, http.StatusNotFound, "unknown action")
			return
		}
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound), errors.Is(err, ErrNotParticipant):
				// Same policy as detail: don't reveal whether the order exists.
				writeError(w, http.StatusNotFound, "order not found")
			case errors.Is(err, ErrInvalidTransition):
				writeError(w, http.StatusConflict, "order is not in a state that allows this action")
			case errors.Is(err, ErrRevisionsExhausted):
				writeError(w, http.StatusConflict, "revision limit reached")
			default:
				h.log.Error("order action failed", "action", action, "order_id", orderID, "error", err)
				writeError(w, http.StatusInternalServerError, "order action failed")
			}
			return
		}
		order, err := h.svc.GetForParticipant(r.Context(), orderID, sess.UserID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "order action failed")
			return
		}
		writeJSON(w, http.StatusOK, h.svc.View(r.Context(), order))
	}
}
