package catalog

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/skilllinkup/backend/internal/middleware"
	"github.com/skilllinkup/backend/internal/models"
	"github.com/skilllinkup/backend/internal/repository"
)

type Handler struct {
	svc  *Service
	gigs *repository.GigRepo
	log  *slog.Logger
}

func NewHandler(svc *Service, gigs *repository.GigRepo, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, gigs: gigs, log: log}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// GET /api/categories?locale=
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	locale := middleware.Locale(r)
	tree, err := h.svc.Tree(r.Context(), locale)
	if err != nil {
		h.log.Error("build category tree failed", "locale", locale, "error", err)
		if stale := h.svc.StaleTree(r.Context(), locale); stale != nil {
			writeJSON(w, http.StatusOK, stale)
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load categories"})
		return
	}
	if tree == nil {
		tree = []*models.CategoryNode{}
	}
	writeJSON(w, http.StatusOK, tree)
}

// GET /api/gigs?category=&locale=
func (h *Handler) ListGigs(w http.ResponseWriter, r *http.Request) {
	locale := middleware.Locale(r)
	list, err := h.gigs.ListActive(r.Context(), locale, r.URL.Query().Get("category"))
	if err != nil {
		h.log.Error("list gigs failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load gigs"})
		return
	}
	if list == nil {
		list = []*models.Gig{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GET /api/gigs/{slug}
func (h *Handler) GetGig(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	gig, err := h.gigs.GetBySlug(r.Context(), slug)
	if err != nil || gig.Status != models.GigStatusActive {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "gig not found"})
		return
	}
	writeJSON(w, http.StatusOK, gig)
}
