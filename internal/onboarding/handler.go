package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/skilllinkup/backend/internal/middleware"
	"github.com/skilllinkup/backend/internal/models"
	"github.com/skilllinkup/backend/internal/notify"
)

// ProfileStore persists the completed wizard. Implemented by
// repository.ProfileRepo.
type ProfileStore interface {
	Upsert(ctx context.Context, p *models.Profile) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

// UserDirectory resolves the submitting user for the welcome email.
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// EnqueueEmailFunc inserts a send-email job. Provided by main using
// river.Client.Insert.
type EnqueueEmailFunc func(ctx context.Context, args notify.SendEmailArgs) error

type Handler struct {
	store     *Store
	validator *Validator
	profiles  ProfileStore
	users     UserDirectory
	enqueue   EnqueueEmailFunc
	log       *slog.Logger
}

func NewHandler(store *Store, validator *Validator, profiles ProfileStore, users UserDirectory, enqueue EnqueueEmailFunc, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{store: store, validator: validator, profiles: profiles, users: users, enqueue: enqueue, log: log}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type draftResponse struct {
	Role      string              `json:"role"`
	Step      int                 `json:"step"`
	StepCount int                 `json:"step_count"`
	Values    map[string]string   `json:"values"`
	Lists     map[string][]string `json:"lists"`
}

func toDraftResponse(d *Draft) draftResponse {
	return draftResponse{
		Role:      d.Role,
		Step:      d.Step,
		StepCount: d.StepCount(),
		Values:    d.Values,
		Lists:     d.Lists,
	}
}

// POST /api/onboarding/start
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if sess.Role != models.RoleClient && sess.Role != models.RoleFreelancer {
		writeError(w, http.StatusForbidden, "onboarding is for clients and freelancers")
		return
	}
	d := h.store.Start(sess.UserID, sess.Role)
	writeJSON(w, http.StatusCreated, toDraftResponse(d))
}

// GET /api/onboarding
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	d := h.store.Get(sess.UserID)
	if d == nil {
		writeError(w, http.StatusNotFound, "no onboarding in progress")
		return
	}
	writeJSON(w, http.StatusOK, toDraftResponse(d))
}

type setFieldRequest struct {
	Field string   `json:"field"`
	Value string   `json:"value"`
	List  []string `json:"list,omitempty"`
}

// PATCH /api/onboarding/fields
func (h *Handler) SetField(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req setFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Field == "" {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	var snapshot *Draft
	found, err := h.store.Update(sess.UserID, func(d *Draft) error {
		var err error
		if req.List != nil {
			err = d.SetListField(req.Field, req.List)
		} else {
			err = d.SetField(req.Field, req.Value)
		}
		if err != nil {
			return err
		}
		snapshot = d.Clone()
		return nil
	})
	if !found {
		writeError(w, http.StatusNotFound, "no onboarding in progress")
		return
	}
	if err != nil {
		if errors.Is(err, ErrUnknownField) {
			writeError(w, http.StatusBadRequest, "unknown field")
			return
		}
		h.log.Error("set onboarding field failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toDraftResponse(snapshot))
}

type stepResponse struct {
	draftResponse
	FieldErrors map[string]string `json:"field_errors,omitempty"`
}

// POST /api/onboarding/next
//
// Validation errors surface here (the showErrors moment) and block the
// advance; the step index does not move.
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var snapshot *Draft
	var fieldErrors map[string]string
	found, _ := h.store.Update(sess.UserID, func(d *Draft) error {
		_, fieldErrors = d.Next()
		snapshot = d.Clone()
		return nil
	})
	if !found {
		writeError(w, http.StatusNotFound, "no onboarding in progress")
		return
	}
	status := http.StatusOK
	if fieldErrors != nil {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, stepResponse{draftResponse: toDraftResponse(snapshot), FieldErrors: fieldErrors})
}

// POST /api/onboarding/back
func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var snapshot *Draft
	found, _ := h.store.Update(sess.UserID, func(d *Draft) error {
		d.Back()
		snapshot = d.Clone()
		return nil
	})
	if !found {
		writeError(w, http.StatusNotFound, "no onboarding in progress")
		return
	}
	writeJSON(w, http.StatusOK, toDraftResponse(snapshot))
}

// POST /api/onboarding/submit
//
// The only transition that persists anything. Validates every step, then the
// role schema, writes the profile, queues the welcome email, and resets the
// wizard by discarding the draft.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	d := h.store.Get(sess.UserID)
	if d == nil {
		writeError(w, http.StatusNotFound, "no onboarding in progress")
		return
	}
	if ok, fieldErrors := d.ValidateAll(); !ok {
		writeJSON(w, http.StatusUnprocessableEntity, stepResponse{draftResponse: toDraftResponse(d), FieldErrors: fieldErrors})
		return
	}
	if err := h.validator.ValidateSubmit(d.Role, d.Payload()); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "submitted profile is invalid")
		return
	}
	profile := draftToProfile(d)
	if err := h.profiles.Upsert(r.Context(), profile); err != nil {
		h.log.Error("persist profile failed", "user_id", sess.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save profile")
		return
	}
	h.store.Delete(sess.UserID)
	h.sendWelcome(r.Context(), sess.UserID)
	writeJSON(w, http.StatusCreated, profile)
}

// GET /api/me/profile
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	profile, err := h.profiles.GetByUserID(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, http.StatusNotFound, "no profile yet")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) sendWelcome(ctx context.Context, userID uuid.UUID) {
	if h.enqueue == nil {
		return
	}
	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		return
	}
	err = h.enqueue(ctx, notify.SendEmailArgs{
		To:      user.Email,
		Subject: "Welcome to SkillLinkup",
		Body:    "Your profile is live. Browse the marketplace to get started.",
	})
	if err != nil {
		h.log.Warn("enqueue welcome email failed", "user_id", userID, "error", err)
	}
}

func draftToProfile(d *Draft) *models.Profile {
	p := &models.Profile{
		ID:       uuid.New(),
		UserID:   d.UserID,
		Role:     d.Role,
		Country:  d.Values["country"],
		City:     d.Values["city"],
		Website:  d.Values["website"],
		Timezone: d.Values["timezone"],
	}
	switch d.Role {
	case models.RoleFreelancer:
		p.Headline = d.Values["headline"]
		p.Bio = d.Values["bio"]
		p.Skills = d.Lists["skills"]
		if rate, err := strconv.ParseInt(d.Values["hourly_rate"], 10, 64); err == nil {
			p.HourlyRateCents = rate * 100
		}
	case models.RoleClient:
		p.CompanyName = d.Values["company_name"]
		p.CompanySize = d.Values["company_size"]
		p.Industry = d.Values["industry"]
	}
	return p
}
