package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"chatcore-service/internal/models"
)

func TestDecodeInboundJoinChat(t *testing.T) {
	evt, err := DecodeInbound([]byte(`{"event":"join_chat","data":42}`))
	require.NoError(t, err)
	require.Equal(t, JoinChat{ChatRoomID: 42}, evt)
}

func TestDecodeInboundLeaveChat(t *testing.T) {
	evt, err := DecodeInbound([]byte(`{"event":"leave_chat","data":42}`))
	require.NoError(t, err)
	require.Equal(t, LeaveChat{ChatRoomID: 42}, evt)
}

func TestDecodeInboundSendMessage(t *testing.T) {
	evt, err := DecodeInbound([]byte(`{"event":"send_message","data":{"chatRoomId":5,"content":"hi"}}`))
	require.NoError(t, err)
	require.Equal(t, SendMessage{ChatRoomID: 5, Content: "hi"}, evt)
}

func TestDecodeInboundTyping(t *testing.T) {
	start, err := DecodeInbound([]byte(`{"event":"typing_start","data":3}`))
	require.NoError(t, err)
	require.Equal(t, TypingStart{ChatRoomID: 3}, start)

	stop, err := DecodeInbound([]byte(`{"event":"typing_stop","data":3}`))
	require.NoError(t, err)
	require.Equal(t, TypingStop{ChatRoomID: 3}, stop)
}

func TestDecodeInboundMarkAsRead(t *testing.T) {
	evt, err := DecodeInbound([]byte(`{"event":"mark_as_read","data":{"chatRoomId":5,"messageIds":[1,2,3]}}`))
	require.NoError(t, err)
	require.Equal(t, MarkAsRead{ChatRoomID: 5, MessageIDs: []int{1, 2, 3}}, evt)
}

func TestDecodeInboundUnknownEvent(t *testing.T) {
	_, err := DecodeInbound([]byte(`{"event":"shutdown","data":1}`))
	require.Error(t, err)
}

func TestDecodeInboundMalformedFrame(t *testing.T) {
	_, err := DecodeInbound([]byte(`not json`))
	require.Error(t, err)
}

func TestDecodeInboundMalformedPayload(t *testing.T) {
	_, err := DecodeInbound([]byte(`{"event":"join_chat","data":"abc"}`))
	require.Error(t, err)

	_, err = DecodeInbound([]byte(`{"event":"mark_as_read","data":7}`))
	require.Error(t, err)
}

func TestOutboundMarshal(t *testing.T) {
	payload, err := json.Marshal(MessageReceivedEvent(models.Message{ID: 1, ChatRoomID: 5, UserID: 2, Content: "hi"}))
	require.NoError(t, err)

	var f struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(payload, &f))
	require.Equal(t, "message_received", f.Event)

	var msg models.Message
	require.NoError(t, json.Unmarshal(f.Data, &msg))
	require.Equal(t, 5, msg.ChatRoomID)
	require.Equal(t, "hi", msg.Content)
}

func TestErrorEventMarshal(t *testing.T) {
	payload, err := json.Marshal(ErrorEvent("nope"))
	require.NoError(t, err)
	require.JSONEq(t, `{"event":"error","data":"nope"}`, string(payload))
}
