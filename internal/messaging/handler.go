package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/skilllinkup/backend/internal/middleware"
	"github.com/skilllinkup/backend/internal/models"
	"github.com/skilllinkup/backend/internal/repository"
)

// UserLookup resolves the counterparty when starting a conversation.
// Implemented by auth.Service.
type UserLookup interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type Handler struct {
	messages *repository.MessageRepo
	users    UserLookup
	log      *slog.Logger
}

func NewHandler(messages *repository.MessageRepo, users UserLookup, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{messages: messages, users: users, log: log}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type startRequest struct {
	RecipientID uuid.UUID  `json:"recipient_id"`
	OrderID     *uuid.UUID `json:"order_id,omitempty"`
	Body        string     `json:"body"`
}

// POST /api/messages/start
//
// Creates (or finds) the conversation between the caller and the recipient
// and posts the opening message. Idempotent per (client, freelancer, order)
// tuple.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.RecipientID == uuid.Nil || req.Body == "" {
		writeError(w, http.StatusBadRequest, "recipient_id and body are required")
		return
	}
	if req.RecipientID == sess.UserID {
		writeError(w, http.StatusBadRequest, "cannot message yourself")
		return
	}
	recipient, err := h.users.GetUser(r.Context(), req.RecipientID)
	if err != nil {
		writeError(w, http.StatusNotFound, "recipient not found")
		return
	}

	// Conversations are stored client-side-first regardless of who starts.
	conv := &models.Conversation{ID: uuid.New(), OrderID: req.OrderID}
	switch {
	case sess.Role == models.RoleClient && recipient.Role == models.RoleFreelancer:
		conv.ClientID, conv.FreelancerID = sess.UserID, recipient.ID
	case sess.Role == models.RoleFreelancer && recipient.Role == models.RoleClient:
		conv.ClientID, conv.FreelancerID = recipient.ID, sess.UserID
	default:
		writeError(w, http.StatusBadRequest, "conversations connect a client with a freelancer")
		return
	}

	conv, err = h.messages.FindOrCreateConversation(r.Context(), conv)
	if err != nil {
		h.log.Error("start conversation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to start conversation")
		return
	}
	msg := &models.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		SenderID:       sess.UserID,
		Body:           req.Body,
	}
	if err := h.messages.CreateMessage(r.Context(), msg); err != nil {
		h.log.Error("create message failed", "conversation_id", conv.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to send message")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"conversation": conv, "message": msg})
}

// GET /api/conversations
func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	list, err := h.messages.ListConversationsByUser(r.Context(), sess.UserID)
	if err != nil {
		h.log.Error("list conversations failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load conversations")
		return
	}
	if list == nil {
		list = []*models.Conversation{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GET /api/conversations/{id}/messages
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	conv, ok := h.conversationForParticipant(w, r, sess.UserID)
	if !ok {
		return
	}
	list, err := h.messages.ListMessages(r.Context(), conv.ID)
	if err != nil {
		h.log.Error("list messages failed", "conversation_id", conv.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}
	if list == nil {
		list = []*models.Message{}
	}
	writeJSON(w, http.StatusOK, list)
}

type sendRequest struct {
	Body string `json:"body"`
}

// POST /api/conversations/{id}/messages
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	conv, ok := h.conversationForParticipant(w, r, sess.UserID)
	if !ok {
		return
	}
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Body == "" {
		writeError(w, http.StatusBadRequest, "message body is required")
		return
	}
	msg := &models.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		SenderID:       sess.UserID,
		Body:           req.Body,
	}
	if err := h.messages.CreateMessage(r.Context(), msg); err != nil {
		h.log.Error("create message failed", "conversation_id", conv.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to send message")
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// conversationForParticipant loads the conversation from the path and
// rejects callers who are not in it. Not-found and forbidden collapse into
// the same 404 so membership is not probeable.
func (h *Handler) conversationForParticipant(w http.ResponseWriter, r *http.Request, userID uuid.UUID) (*models.Conversation, bool) {
	convID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid conversation id")
		return nil, false
	}
	conv, err := h.messages.GetConversation(r.Context(), convID)
	if err != nil || !conv.HasParticipant(userID) {
		writeError(w, http.StatusNotFound, "conversation not found")
		return nil, false
	}
	return conv, true
}
