package ws

import (
	"encoding/json"
	"fmt"

	"chatcore-service/internal/models"
)

// EventName identifies a wire event. The set is closed: anything else is
// rejected at the transport boundary.
type EventName string

const (
	// client -> server
	EventJoinChat    EventName = "join_chat"
	EventLeaveChat   EventName = "leave_chat"
	EventSendMessage EventName = "send_message"
	EventTypingStart EventName = "typing_start"
	EventTypingStop  EventName = "typing_stop"
	EventMarkAsRead  EventName = "mark_as_read"

	// server -> client
	EventMessageReceived   EventName = "message_received"
	EventUserJoined        EventName = "user_joined"
	EventUserLeft          EventName = "user_left"
	EventUserTyping        EventName = "user_typing"
	EventUserStoppedTyping EventName = "user_stopped_typing"
	EventMessagesRead      EventName = "messages_read"
	EventError             EventName = "error"
)

type frame struct {
	Event EventName       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound is a decoded client->server event.
type Inbound interface {
	inbound()
}

// JoinChat subscribes the connection to a room's broadcast group.
type JoinChat struct {
	ChatRoomID int
}

// LeaveChat unsubscribes the connection from a room.
type LeaveChat struct {
	ChatRoomID int
}

// SendMessage persists and fans out a message.
type SendMessage struct {
	ChatRoomID int    `json:"chatRoomId"`
	Content    string `json:"content"`
}

// TypingStart signals the user started typing in a room.
type TypingStart struct {
	ChatRoomID int
}

// TypingStop signals the user stopped typing in a room.
type TypingStop struct {
	ChatRoomID int
}

// MarkAsRead flags the given messages as read by the caller.
type MarkAsRead struct {
	ChatRoomID int   `json:"chatRoomId"`
	MessageIDs []int `json:"messageIds"`
}

func (JoinChat) inbound()    {}
func (LeaveChat) inbound()   {}
func (SendMessage) inbound() {}
func (TypingStart) inbound() {}
func (TypingStop) inbound()  {}
func (MarkAsRead) inbound()  {}

// DecodeInbound parses one wire frame into its typed variant.
func DecodeInbound(payload []byte) (Inbound, error) {
	var f frame
	if err := json.Unmarshal(payload, &f); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}

	switch f.Event {
	case EventJoinChat:
		roomID, err := decodeRoomID(f.Data)
		if err != nil {
			return nil, err
		}
		return JoinChat{ChatRoomID: roomID}, nil
	case EventLeaveChat:
		roomID, err := decodeRoomID(f.Data)
		if err != nil {
			return nil, err
		}
		return LeaveChat{ChatRoomID: roomID}, nil
	case EventSendMessage:
		var evt SendMessage
		if err := json.Unmarshal(f.Data, &evt); err != nil {
			return nil, fmt.Errorf("malformed send_message payload: %w", err)
		}
		return evt, nil
	case EventTypingStart:
		roomID, err := decodeRoomID(f.Data)
		if err != nil {
			return nil, err
		}
		return TypingStart{ChatRoomID: roomID}, nil
	case EventTypingStop:
		roomID, err := decodeRoomID(f.Data)
		if err != nil {
			return nil, err
		}
		return TypingStop{ChatRoomID: roomID}, nil
	case EventMarkAsRead:
		var evt MarkAsRead
		if err := json.Unmarshal(f.Data, &evt); err != nil {
			return nil, fmt.Errorf("malformed mark_as_read payload: %w", err)
		}
		return evt, nil
	default:
		return nil, fmt.Errorf("unknown event %q", f.Event)
	}
}

func decodeRoomID(data json.RawMessage) (int, error) {
	var roomID int
	if err := json.Unmarshal(data, &roomID); err != nil {
		return 0, fmt.Errorf("malformed room id: %w", err)
	}
	return roomID, nil
}

// Outbound is a server->client event ready for encoding.
type Outbound struct {
	Event EventName
	Data  interface{}
}

func (o Outbound) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Event EventName   `json:"event"`
		Data  interface{} `json:"data"`
	}{Event: o.Event, Data: o.Data})
}

// Presence is the payload of user_joined, user_left, user_typing and
// user_stopped_typing.
type Presence struct {
	UserID     int    `json:"userId"`
	Username   string `json:"username"`
	ChatRoomID int    `json:"chatRoomId"`
}

// ReadReceipt is the payload of messages_read.
type ReadReceipt struct {
	ChatRoomID   int   `json:"chatRoomId"`
	MessageIDs   []int `json:"messageIds"`
	ReadByUserID int   `json:"readByUserId"`
}

func MessageReceivedEvent(msg models.Message) Outbound {
	return Outbound{Event: EventMessageReceived, Data: msg}
}

func UserJoinedEvent(p Presence) Outbound {
	return Outbound{Event: EventUserJoined, Data: p}
}

func UserLeftEvent(p Presence) Outbound {
	return Outbound{Event: EventUserLeft, Data: p}
}

func UserTypingEvent(p Presence) Outbound {
	return Outbound{Event: EventUserTyping, Data: p}
}

func UserStoppedTypingEvent(p Presence) Outbound {
	return Outbound{Event: EventUserStoppedTyping, Data: p}
}

func MessagesReadEvent(r ReadReceipt) Outbound {
	return Outbound{Event: EventMessagesRead, Data: r}
}

func ErrorEvent(message string) Outbound {
	return Outbound{Event: EventError, Data: message}
}
