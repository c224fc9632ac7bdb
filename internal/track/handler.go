package track

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/skilllinkup/backend/internal/models"
	"github.com/skilllinkup/backend/internal/repository"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type Handler struct {
	clicks *repository.AffiliateRepo
	log    *slog.Logger
}

func NewHandler(clicks *repository.AffiliateRepo, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{clicks: clicks, log: log}
}

type clickRequest struct {
	PlatformSlug string `json:"platform_slug"`
	Source       string `json:"source"`
	RefURL       string `json:"ref_url"`
}

// POST /api/track/affiliate-click
//
// Public endpoint; the router rate-limits it per client IP.
func (h *Handler) AffiliateClick(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !slugPattern.MatchString(req.PlatformSlug) {
		writeError(w, http.StatusBadRequest, "invalid platform slug")
		return
	}
	click := &models.AffiliateClick{
		ID:           uuid.New(),
		PlatformSlug: req.PlatformSlug,
		Source:       req.Source,
		RefURL:       req.RefURL,
	}
	if err := h.clicks.CreateClick(r.Context(), click); err != nil {
		h.log.Error("record affiliate click failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to record click")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

// GET /api/track/stats?platform=
//
// Admin reporting; the router gates it behind the admin role.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("platform")
	if !slugPattern.MatchString(slug) {
		writeError(w, http.StatusBadRequest, "invalid platform slug")
		return
	}
	n, err := h.clicks.CountByPlatform(r.Context(), slug)
	if err != nil {
		h.log.Error("count affiliate clicks failed", "platform", slug, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{"platform_slug": slug, "clicks": n})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
