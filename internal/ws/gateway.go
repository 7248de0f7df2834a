package ws

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"chatcore-service/internal/auth"
	"chatcore-service/internal/observability"
	"chatcore-service/internal/repositories"
)

// Gateway accepts authenticated websocket connections and dispatches their
// events. One connection serves all of a user's rooms.
type Gateway struct {
	hub           *Hub
	authenticator *auth.Authenticator
	rooms         repositories.RoomRepository
	messages      repositories.MessageRepository
}

// NewGateway constructs a Gateway.
func NewGateway(hub *Hub, authenticator *auth.Authenticator, rooms repositories.RoomRepository, messages repositories.MessageRepository) *Gateway {
	return &Gateway{hub: hub, authenticator: authenticator, rooms: rooms, messages: messages}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle authenticates the handshake, upgrades the connection and starts the
// event loop. Authentication failures terminate the handshake before any
// event handling begins.
func (g *Gateway) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("chatcore-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	identity, err := g.authenticator.VerifyRequest(ctx, c.Request)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  http.StatusUnauthorized,
			"message": "Unauthorized",
			"error":   err.Error(),
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		ConnID:      uuid.NewString(),
		UserID:      identity.UserID,
		Username:    identity.Username,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	client := NewClient(conn, info)
	g.hub.Register(client)

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	g.publishLifecycleEvent(ctx, info, "ws_connect", "")

	log.Printf("user %s (%d) connected conn=%s", identity.Username, identity.UserID, info.ConnID)

	go client.WritePump()
	go g.readLoop(client, identity)
}

func (g *Gateway) readLoop(client *Client, identity auth.Identity) {
	conn := client.conn
	var closeReason string

	defer func() {
		g.disconnect(client, identity, closeReason)
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		evt, err := DecodeInbound(payload)
		if err != nil {
			client.Send(ErrorEvent("Unrecognized event"))
			continue
		}
		g.dispatch(client, identity, evt)
	}
}

// dispatch runs one inbound event to completion. Handler errors become a
// private error event on the offending connection only.
func (g *Gateway) dispatch(client *Client, identity auth.Identity, evt Inbound) {
	ctx := context.Background()

	switch e := evt.(type) {
	case JoinChat:
		observability.IncWSEvent("join_chat")
		g.handleJoin(ctx, client, identity, e.ChatRoomID)
	case LeaveChat:
		observability.IncWSEvent("leave_chat")
		g.handleLeave(client, identity, e.ChatRoomID)
	case SendMessage:
		observability.IncWSEvent("send_message")
		g.handleSend(ctx, client, identity, e)
	case TypingStart:
		observability.IncWSEvent("typing_start")
		g.hub.BroadcastExcept(e.ChatRoomID, client, UserTypingEvent(Presence{
			UserID: identity.UserID, Username: identity.Username, ChatRoomID: e.ChatRoomID,
		}))
	case TypingStop:
		observability.IncWSEvent("typing_stop")
		g.hub.BroadcastExcept(e.ChatRoomID, client, UserStoppedTypingEvent(Presence{
			UserID: identity.UserID, Username: identity.Username, ChatRoomID: e.ChatRoomID,
		}))
	case MarkAsRead:
		observability.IncWSEvent("mark_as_read")
		g.handleMarkAsRead(ctx, client, identity, e)
	}
}

func (g *Gateway) handleJoin(ctx context.Context, client *Client, identity auth.Identity, roomID int) {
	member, err := g.rooms.IsParticipant(ctx, roomID, identity.UserID)
	if err != nil {
		log.Printf("join chat room %d: %v", roomID, err)
		client.Send(ErrorEvent("Failed to join chat room"))
		return
	}
	if !member {
		client.Send(ErrorEvent("You are not a participant in this chat room"))
		return
	}

	g.hub.Join(roomID, client)
	g.hub.BroadcastExcept(roomID, client, UserJoinedEvent(Presence{
		UserID: identity.UserID, Username: identity.Username, ChatRoomID: roomID,
	}))
}

func (g *Gateway) handleLeave(client *Client, identity auth.Identity, roomID int) {
	// Leaving a room that was never joined is a no-op, not an error.
	if !g.hub.Leave(roomID, client) {
		return
	}
	g.hub.Broadcast(roomID, UserLeftEvent(Presence{
		UserID: identity.UserID, Username: identity.Username, ChatRoomID: roomID,
	}))
}

func (g *Gateway) handleSend(ctx context.Context, client *Client, identity auth.Identity, evt SendMessage) {
	if strings.TrimSpace(evt.Content) == "" {
		client.Send(ErrorEvent("Message content is required"))
		return
	}

	// Membership is re-read from storage on every send, never cached from
	// the join call.
	member, err := g.rooms.IsParticipant(ctx, evt.ChatRoomID, identity.UserID)
	if err != nil {
		log.Printf("send message membership check: %v", err)
		client.Send(ErrorEvent("Failed to send message"))
		return
	}
	if !member {
		client.Send(ErrorEvent("You are not a participant in this chat room"))
		return
	}

	msg, err := g.messages.CreateMessage(ctx, evt.ChatRoomID, identity.UserID, evt.Content)
	if err != nil {
		log.Printf("persist message: %v", err)
		client.Send(ErrorEvent("Failed to send message"))
		return
	}

	// Broadcast strictly follows successful persistence, and includes the
	// sender's own connections so multiple devices stay in sync.
	g.hub.Broadcast(evt.ChatRoomID, MessageReceivedEvent(msg))
}

func (g *Gateway) handleMarkAsRead(ctx context.Context, client *Client, identity auth.Identity, evt MarkAsRead) {
	member, err := g.rooms.IsParticipant(ctx, evt.ChatRoomID, identity.UserID)
	if err != nil {
		log.Printf("mark as read membership check: %v", err)
		client.Send(ErrorEvent("Failed to mark messages as read"))
		return
	}
	if !member {
		client.Send(ErrorEvent("You are not a participant in this chat room"))
		return
	}

	if _, err := g.messages.MarkMessagesRead(ctx, evt.ChatRoomID, evt.MessageIDs, identity.UserID); err != nil {
		log.Printf("mark messages read: %v", err)
		client.Send(ErrorEvent("Failed to mark messages as read"))
		return
	}

	g.hub.BroadcastExcept(evt.ChatRoomID, client, MessagesReadEvent(ReadReceipt{
		ChatRoomID:   evt.ChatRoomID,
		MessageIDs:   evt.MessageIDs,
		ReadByUserID: identity.UserID,
	}))
}

// disconnect removes the connection from every room and tells the remaining
// members the user left, so an abrupt transport loss looks the same to peers
// as an explicit leave.
func (g *Gateway) disconnect(client *Client, identity auth.Identity, reason string) {
	rooms := g.hub.Unregister(client)
	for _, roomID := range rooms {
		g.hub.Broadcast(roomID, UserLeftEvent(Presence{
			UserID: identity.UserID, Username: identity.Username, ChatRoomID: roomID,
		}))
	}
	client.conn.Close()

	observability.DecWSActive()
	observability.IncWSEvent("ws_disconnect")
	g.publishLifecycleEvent(context.Background(), client.Info(), "ws_disconnect", reason)

	log.Printf("user %s (%d) disconnected conn=%s", identity.Username, identity.UserID, client.Info().ConnID)
}

func (g *Gateway) publishLifecycleEvent(ctx context.Context, info ConnInfo, event, reason string) {
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"username":  info.Username,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(ctx, "ws_events.chats", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload:   payload,
	}, headers)
}
