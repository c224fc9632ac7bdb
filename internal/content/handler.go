package content

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/skilllinkup/backend/internal/middleware"
	"github.com/skilllinkup/backend/internal/models"
	"github.com/skilllinkup/backend/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Handler serves the blog/CMS read surface and comment writes.
type Handler struct {
	posts *repository.PostRepo
	log   *slog.Logger
}

func NewHandler(posts *repository.PostRepo, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{posts: posts, log: log}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// GET /api/posts?locale=&page=
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	locale := middleware.Locale(r)
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if size < 1 || size > maxPageSize {
		size = defaultPageSize
	}
	list, err := h.posts.ListPublished(r.Context(), locale, size, (page-1)*size)
	if err != nil {
		h.log.Error("list posts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load posts")
		return
	}
	if list == nil {
		list = []*models.Post{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GET /api/posts/{slug}
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	locale := middleware.Locale(r)
	post, err := h.posts.GetBySlug(r.Context(), r.PathValue("slug"), locale)
	if err != nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	comments, err := h.posts.ListApprovedComments(r.Context(), post.ID)
	if err != nil {
		h.log.Error("list comments failed", "post_id", post.ID, "error", err)
		comments = nil
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"post": post, "comments": comments})
}

type createPostRequest struct {
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Excerpt string `json:"excerpt"`
	Body    string `json:"body"`
	Locale  string `json:"locale"`
	Status  string `json:"status"`
}

// POST /api/admin/posts
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" || req.Slug == "" || req.Body == "" {
		writeError(w, http.StatusBadRequest, "title, slug and body are required")
		return
	}
	if !models.IsSupportedLocale(req.Locale) {
		writeError(w, http.StatusBadRequest, "unsupported locale")
		return
	}
	if req.Status == "" {
		req.Status = models.PostStatusDraft
	}
	if req.Status != models.PostStatusDraft && req.Status != models.PostStatusPublished {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}
	post := &models.Post{
		ID:       uuid.New(),
		Title:    req.Title,
		Slug:     req.Slug,
		Excerpt:  req.Excerpt,
		Body:     req.Body,
		Locale:   req.Locale,
		Status:   req.Status,
		AuthorID: sess.UserID,
	}
	if post.Status == models.PostStatusPublished {
		now := time.Now()
		post.PublishedAt = &now
	}
	if err := h.posts.Create(r.Context(), post); err != nil {
		h.log.Error("create post failed", "slug", req.Slug, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create post")
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

type createCommentRequest struct {
	Body string `json:"body"`
}

// POST /api/posts/{slug}/comments
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	locale := middleware.Locale(r)
	post, err := h.posts.GetBySlug(r.Context(), r.PathValue("slug"), locale)
	if err != nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Body == "" {
		writeError(w, http.StatusBadRequest, "comment body is required")
		return
	}
	comment := &models.Comment{
		ID:       uuid.New(),
		PostID:   post.ID,
		AuthorID: sess.UserID,
		Body:     req.Body,
		Status:   models.CommentStatusPending,
	}
	if err := h.posts.CreateComment(r.Context(), comment); err != nil {
		h.log.Error("create comment failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create comment")
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

type patchCommentRequest struct {
	Body   *string `json:"body,omitempty"`
	Status *string `json:"status,omitempty"`
}

// PATCH /api/comments/{id}
//
// Authors may edit their own comment body; only admins may change status.
func (h *Handler) PatchComment(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	commentID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid comment id")
		return
	}
	comment, err := h.posts.GetCommentByID(r.Context(), commentID)
	if err != nil {
		writeError(w, http.StatusNotFound, "comment not found")
		return
	}
	isAdmin := sess.Role == models.RoleAdmin
	if comment.AuthorID != sess.UserID && !isAdmin {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	var req patchCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Body != nil {
		if *req.Body == "" {
			writeError(w, http.StatusBadRequest, "comment body cannot be empty")
			return
		}
		comment.Body = *req.Body
	}
	if req.Status != nil {
		if !isAdmin {
			writeError(w, http.StatusForbidden, "only admins can moderate comments")
			return
		}
		switch *req.Status {
		case models.CommentStatusPending, models.CommentStatusApproved, models.CommentStatusRejected:
			comment.Status = *req.Status
		default:
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
	}
	if err := h.posts.UpdateComment(r.Context(), comment); err != nil {
		h.log.Error("update comment failed", "comment_id", commentID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update comment")
		return
	}
	writeJSON(w, http.StatusOK, comment)
}
