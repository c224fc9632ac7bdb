package reviews

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/skilllinkup/backend/internal/middleware"
	"github.com/skilllinkup/backend/internal/models"
	"github.com/skilllinkup/backend/internal/repository"
)

type Handler struct {
	reviews *repository.ReviewRepo
	log     *slog.Logger
}

func NewHandler(reviews *repository.ReviewRepo, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{reviews: reviews, log: log}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// GET /api/reviews?platform=
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	platform := r.URL.Query().Get("platform")
	if platform == "" {
		writeError(w, http.StatusBadRequest, "platform is required")
		return
	}
	list, err := h.reviews.ListApprovedByPlatform(r.Context(), platform)
	if err != nil {
		h.log.Error("list reviews failed", "platform", platform, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load reviews")
		return
	}
	if list == nil {
		list = []*models.PlatformReview{}
	}
	writeJSON(w, http.StatusOK, list)
}

type createReviewRequest struct {
	PlatformSlug string `json:"platform_slug"`
	Rating       int    `json:"rating"`
	Title        string `json:"title"`
	Body         string `json:"body"`
}

// POST /api/reviews
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.PlatformSlug == "" || req.Title == "" || req.Body == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}
	review := &models.PlatformReview{
		ID:           uuid.New(),
		PlatformSlug: req.PlatformSlug,
		AuthorID:     sess.UserID,
		Rating:       req.Rating,
		Title:        req.Title,
		Body:         req.Body,
		Status:       models.CommentStatusPending,
	}
	if err := h.reviews.Create(r.Context(), review); err != nil {
		h.log.Error("create review failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create review")
		return
	}
	writeJSON(w, http.StatusCreated, review)
}
