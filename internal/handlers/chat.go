package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chatcore-service/internal/repositories"
	"chatcore-service/internal/telemetry"
	"chatcore-service/internal/ws"
)

// ChatHandler serves the REST chat surface. The websocket gateway covers the
// same operations in realtime; REST sends broadcast through the same hub so
// live connections never miss a message.
type ChatHandler struct {
	rooms    repositories.RoomRepository
	messages repositories.MessageRepository
	hub      *ws.Hub
	audit    *telemetry.AuditEmitter
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(rooms repositories.RoomRepository, messages repositories.MessageRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *ChatHandler {
	return &ChatHandler{rooms: rooms, messages: messages, hub: hub, audit: audit}
}

// ListChats returns the caller's rooms ordered by join time descending.
func (h *ChatHandler) ListChats(c *gin.Context) {
	userID := c.GetInt("userID")

	chatList, err := h.rooms.ListRoomsForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error", "Failed to retrieve chat list")
		return
	}

	respondData(c, http.StatusOK, "Chat list retrieved successfully", chatList)
}

// CreateChatRoom creates or returns the direct room between the caller and
// the target user.
func (h *ChatHandler) CreateChatRoom(c *gin.Context) {
	userID := c.GetInt("userID")

	var req struct {
		UserID2 int `json:"userId2"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID2 == 0 {
		respondError(c, http.StatusBadRequest, "Bad request", "Target user ID is required")
		return
	}
	if userID == req.UserID2 {
		respondError(c, http.StatusBadRequest, "Bad request", "Cannot create chat room with yourself")
		return
	}

	room, err := h.rooms.CreateOrGetDirectRoom(c.Request.Context(), userID, req.UserID2)
	if err != nil {
		if errors.Is(err, repositories.ErrSelfRoom) {
			respondError(c, http.StatusBadRequest, "Bad request", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "Internal server error", "Failed to create chat room")
		return
	}

	h.audit.Emit(c.Request.Context(), "info",
		fmt.Sprintf("chat room %d ready for users %d and %d", room.ID, userID, req.UserID2),
		requestIDFromContext(c), &userID)

	respondData(c, http.StatusCreated, "Chat room created successfully", room)
}

// GetChatMessages returns one page of a room's history, oldest first.
func (h *ChatHandler) GetChatMessages(c *gin.Context) {
	userID := c.GetInt("userID")

	roomID, err := strconv.Atoi(c.Param("chat_id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Bad request", "Invalid chat room ID")
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	member, err := h.rooms.IsParticipant(c.Request.Context(), roomID, userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error", "Failed to verify membership")
		return
	}
	if !member {
		respondError(c, http.StatusForbidden, "Forbidden", repositories.ErrNotParticipant.Error())
		return
	}

	result, err := h.messages.PaginateMessages(c.Request.Context(), roomID, page, limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error", "Failed to retrieve messages")
		return
	}

	respondData(c, http.StatusOK, "Messages retrieved successfully", gin.H{
		"messages": result.Messages,
		"pagination": gin.H{
			"page":    result.Page,
			"limit":   result.Limit,
			"total":   result.Total,
			"hasMore": result.HasMore,
		},
	})
}

// SendMessage stores a message through the REST fallback path and broadcasts
// it to the room's live connections.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID := c.GetInt("userID")

	roomID, err := strconv.Atoi(c.Param("chat_id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Bad request", "Invalid chat room ID")
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Bad request", "Message content is required")
		return
	}

	member, err := h.rooms.IsParticipant(c.Request.Context(), roomID, userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error", "Failed to verify membership")
		return
	}
	if !member {
		respondError(c, http.StatusForbidden, "Forbidden", repositories.ErrNotParticipant.Error())
		return
	}

	msg, err := h.messages.CreateMessage(c.Request.Context(), roomID, userID, req.Content)
	if err != nil {
		if errors.Is(err, repositories.ErrEmptyContent) {
			respondError(c, http.StatusBadRequest, "Bad request", "Message content is required")
			return
		}
		respondError(c, http.StatusInternalServerError, "Internal server error", "Failed to send message")
		return
	}

	h.hub.Broadcast(roomID, ws.MessageReceivedEvent(msg))
	h.audit.Emit(c.Request.Context(), "info",
		fmt.Sprintf("message %d sent to chat room %d", msg.ID, roomID),
		requestIDFromContext(c), &userID)

	respondData(c, http.StatusCreated, "Message sent successfully", msg)
}

func respondData(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func respondError(c *gin.Context, status int, message, detail string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"error":   detail,
	})
}
