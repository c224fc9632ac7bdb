package catalog

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/skilllinkup/backend/internal/middleware"
	"github.com/skilllinkup/backend/internal/models"
	"github.com/skilllinkup/backend/internal/repository"
)

// ManageHandler owns the write side of the catalog: admin category CRUD and
// freelancer gig management. Every write invalidates the affected locale's
// cached tree.
type ManageHandler struct {
	categories *repository.CategoryRepo
	gigs       *repository.GigRepo
	svc        *Service
	log        *slog.Logger
}

func NewManageHandler(categories *repository.CategoryRepo, gigs *repository.GigRepo, svc *Service, log *slog.Logger) *ManageHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ManageHandler{categories: categories, gigs: gigs, svc: svc, log: log}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type categoryRequest struct {
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	ParentID  *uuid.UUID `json:"parent_id"`
	Locale    string     `json:"locale"`
	SortOrder int        `json:"sort_order"`
	Active    *bool      `json:"active"`
}

// POST /api/admin/categories
func (h *ManageHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.Slug == "" {
		writeError(w, http.StatusBadRequest, "name and slug are required")
		return
	}
	if !models.IsSupportedLocale(req.Locale) {
		writeError(w, http.StatusBadRequest, "unsupported locale")
		return
	}
	c := &models.Category{
		ID:        uuid.New(),
		Name:      req.Name,
		Slug:      req.Slug,
		ParentID:  req.ParentID,
		Locale:    req.Locale,
		SortOrder: req.SortOrder,
		Active:    true,
	}
	if req.Active != nil {
		c.Active = *req.Active
	}
	if err := h.categories.Create(r.Context(), c); err != nil {
		h.log.Error("create category failed", "slug", req.Slug, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create category")
		return
	}
	h.svc.Invalidate(r.Context(), c.Locale)
	writeJSON(w, http.StatusCreated, c)
}

// PUT /api/admin/categories/{id}
func (h *ManageHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}
	existing, err := h.categories.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.Slug == "" {
		writeError(w, http.StatusBadRequest, "name and slug are required")
		return
	}
	if !models.IsSupportedLocale(req.Locale) {
		writeError(w, http.StatusBadRequest, "unsupported locale")
		return
	}
	oldLocale := existing.Locale
	existing.Name = req.Name
	existing.Slug = req.Slug
	existing.ParentID = req.ParentID
	existing.Locale = req.Locale
	existing.SortOrder = req.SortOrder
	if req.Active != nil {
		existing.Active = *req.Active
	}
	if err := h.categories.Update(r.Context(), existing); err != nil {
		h.log.Error("update category failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update category")
		return
	}
	h.svc.Invalidate(r.Context(), oldLocale)
	if existing.Locale != oldLocale {
		h.svc.Invalidate(r.Context(), existing.Locale)
	}
	writeJSON(w, http.StatusOK, existing)
}

// DELETE /api/admin/categories/{id}
func (h *ManageHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}
	existing, err := h.categories.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	if err := h.categories.Delete(r.Context(), id); err != nil {
		h.log.Error("delete category failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}
	h.svc.Invalidate(r.Context(), existing.Locale)
	w.WriteHeader(http.StatusNoContent)
}

type gigRequest struct {
	CategoryID    uuid.UUID `json:"category_id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	PriceCents    int64     `json:"price_cents"`
	Currency      string    `json:"currency"`
	DeliveryDays  int       `json:"delivery_days"`
	RevisionLimit int       `json:"revision_limit"`
	Status        string    `json:"status"`
	Locale        string    `json:"locale"`
}

func validGigStatus(s string) bool {
	switch s {
	case models.GigStatusDraft, models.GigStatusActive, models.GigStatusPaused, models.GigStatusRemoved:
		return true
	}
	return false
}

// POST /api/gigs
func (h *ManageHandler) CreateGig(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req gigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Title == "" || req.Slug == "" || req.PriceCents <= 0 || req.DeliveryDays <= 0 || req.CategoryID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "title, slug, category_id, a positive price and delivery days are required")
		return
	}
	if !models.IsSupportedLocale(req.Locale) {
		writeError(w, http.StatusBadRequest, "unsupported locale")
		return
	}
	if req.Status == "" {
		req.Status = models.GigStatusDraft
	}
	if !validGigStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}
	if req.Currency == "" {
		req.Currency = models.DefaultCurrency
	}
	g := &models.Gig{
		ID:            uuid.New(),
		FreelancerID:  sess.UserID,
		CategoryID:    req.CategoryID,
		Title:         req.Title,
		Slug:          req.Slug,
		Description:   req.Description,
		PriceCents:    req.PriceCents,
		Currency:      req.Currency,
		DeliveryDays:  req.DeliveryDays,
		RevisionLimit: req.RevisionLimit,
		Status:        req.Status,
		Locale:        req.Locale,
	}
	if err := h.gigs.Create(r.Context(), g); err != nil {
		h.log.Error("create gig failed", "slug", req.Slug, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create gig")
		return
	}
	h.svc.Invalidate(r.Context(), g.Locale)
	writeJSON(w, http.StatusCreated, g)
}

// PUT /api/gigs/{id}
//
// Owner only; a non-owner gets the same 404 as a missing gig.
func (h *ManageHandler) UpdateGig(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid gig id")
		return
	}
	g, err := h.gigs.GetByID(r.Context(), id)
	if err != nil || g.FreelancerID != sess.UserID {
		writeError(w, http.StatusNotFound, "gig not found")
		return
	}
	var req gigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Title == "" || req.Slug == "" || req.PriceCents <= 0 || req.DeliveryDays <= 0 || req.CategoryID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "title, slug, category_id, a positive price and delivery days are required")
		return
	}
	if !models.IsSupportedLocale(req.Locale) || !validGigStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "invalid locale or status")
		return
	}
	oldLocale := g.Locale
	g.CategoryID = req.CategoryID
	g.Title = req.Title
	g.Slug = req.Slug
	g.Description = req.Description
	g.PriceCents = req.PriceCents
	g.Currency = req.Currency
	g.DeliveryDays = req.DeliveryDays
	g.RevisionLimit = req.RevisionLimit
	g.Status = req.Status
	g.Locale = req.Locale
	if g.Currency == "" {
		g.Currency = models.DefaultCurrency
	}
	if err := h.gigs.Update(r.Context(), g); err != nil {
		h.log.Error("update gig failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update gig")
		return
	}
	h.svc.Invalidate(r.Context(), oldLocale)
	if g.Locale != oldLocale {
		h.svc.Invalidate(r.Context(), g.Locale)
	}
	writeJSON(w, http.StatusOK, g)
}
