package clientstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"chatcore-service/internal/models"
)

func TestLoadHistoryReturnsUnreadPeerMessages(t *testing.T) {
	store := NewStore(1)

	msgs := []models.Message{
		{ID: 1, ChatRoomID: 5, UserID: 1, Content: "mine", IsRead: false},
		{ID: 2, ChatRoomID: 5, UserID: 2, Content: "unread", IsRead: false},
		{ID: 3, ChatRoomID: 5, UserID: 2, Content: "seen", IsRead: true},
	}

	toMark := store.LoadHistory(5, msgs)
	require.Equal(t, []int{2}, toMark)
	require.Len(t, store.Messages(5), 3)
	require.Zero(t, store.UnreadCount(5))
}

func TestLoadHistoryResetsUnreadCount(t *testing.T) {
	store := NewStore(1)
	store.ApplyMessageReceived(models.Message{ID: 1, ChatRoomID: 5, UserID: 2})
	require.Equal(t, 1, store.UnreadCount(5))

	store.LoadHistory(5, nil)
	require.Zero(t, store.UnreadCount(5))
}

func TestApplyMessageReceivedAppendsToLoadedRoom(t *testing.T) {
	store := NewStore(1)
	store.LoadHistory(5, nil)

	store.ApplyMessageReceived(models.Message{ID: 10, ChatRoomID: 5, UserID: 2, Content: "hi"})
	require.Len(t, store.Messages(5), 1)

	// unloaded room: nothing to append to
	store.ApplyMessageReceived(models.Message{ID: 11, ChatRoomID: 6, UserID: 2})
	require.Empty(t, store.Messages(6))
}

func TestApplyMessageReceivedUnreadCounting(t *testing.T) {
	store := NewStore(1)
	store.SetCurrentRoom(5)

	// focused room: no unread bump
	store.ApplyMessageReceived(models.Message{ID: 1, ChatRoomID: 5, UserID: 2})
	require.Zero(t, store.UnreadCount(5))

	// unfocused room, peer author: bump
	store.ApplyMessageReceived(models.Message{ID: 2, ChatRoomID: 6, UserID: 2})
	require.Equal(t, 1, store.UnreadCount(6))

	// unfocused room, local author: no bump
	store.ApplyMessageReceived(models.Message{ID: 3, ChatRoomID: 6, UserID: 1})
	require.Equal(t, 1, store.UnreadCount(6))
}

func TestApplyMessagesReadFlipsOnlyMatchingIDs(t *testing.T) {
	store := NewStore(1)
	store.LoadHistory(5, []models.Message{
		{ID: 1, ChatRoomID: 5, UserID: 1, Content: "a"},
		{ID: 2, ChatRoomID: 5, UserID: 1, Content: "b"},
	})

	store.ApplyMessagesRead(5, []int{2, 99})

	msgs := store.Messages(5)
	require.False(t, msgs[0].IsRead)
	require.True(t, msgs[1].IsRead)
	require.Equal(t, "b", msgs[1].Content)
}

func TestTypingSetSemantics(t *testing.T) {
	store := NewStore(1)

	bob := TypingUser{UserID: 2, Username: "bob", ChatRoomID: 5}
	store.ApplyTypingStart(bob)
	store.ApplyTypingStart(bob)
	require.Len(t, store.TypingUsers(5), 1)

	// same user typing in a different room is a distinct indicator
	store.ApplyTypingStart(TypingUser{UserID: 2, Username: "bob", ChatRoomID: 6})
	require.Len(t, store.TypingUsers(5), 1)
	require.Len(t, store.TypingUsers(6), 1)

	store.ApplyTypingStop(2, 5)
	require.Empty(t, store.TypingUsers(5))
	require.Len(t, store.TypingUsers(6), 1)
}

func TestApplyMessageReceivedRefreshesChatListLastMessage(t *testing.T) {
	store := NewStore(1)
	store.SetChatList([]models.ChatListItem{{ChatRoomID: 5}, {ChatRoomID: 6}})

	store.ApplyMessageReceived(models.Message{ID: 10, ChatRoomID: 6, UserID: 2, Content: "newest"})

	list := store.ChatList()
	require.Nil(t, list[0].LastMsg)
	require.NotNil(t, list[1].LastMsg)
	require.Equal(t, 10, list[1].LastMsg.ID)
	require.Equal(t, "newest", list[1].LastMsg.Content)

	// rooms not on the list are left alone
	store.ApplyMessageReceived(models.Message{ID: 11, ChatRoomID: 9, UserID: 2})
	require.Len(t, store.ChatList(), 2)
}

func TestOnlinePresenceSet(t *testing.T) {
	store := NewStore(1)

	store.SetOnlineUsers([]int{2, 3})
	require.True(t, store.IsOnline(2))
	require.False(t, store.IsOnline(4))

	store.ApplyUserOnline(4)
	store.ApplyUserOffline(2)
	require.True(t, store.IsOnline(4))
	require.False(t, store.IsOnline(2))

	// a fresh snapshot replaces incremental state
	store.SetOnlineUsers([]int{5})
	require.False(t, store.IsOnline(4))
	require.True(t, store.IsOnline(5))
}

func TestChatListReplace(t *testing.T) {
	store := NewStore(1)
	store.SetChatList([]models.ChatListItem{{ChatRoomID: 5}, {ChatRoomID: 6}})
	require.Len(t, store.ChatList(), 2)

	store.SetChatList([]models.ChatListItem{{ChatRoomID: 7}})
	list := store.ChatList()
	require.Len(t, list, 1)
	require.Equal(t, 7, list[0].ChatRoomID)
}
