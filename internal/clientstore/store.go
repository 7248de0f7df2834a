// Package clientstore reconciles a client's view of its chat rooms: paginated
// REST history, realtime-pushed messages, read receipts, typing indicators
// and online presence merge into one consistent per-room state.
package clientstore

import (
	"sync"

	"chatcore-service/internal/models"
)

// TypingUser is one (user, room) typing indicator. Purely event-driven: a
// peer that disconnects mid-typing leaves its indicator until an explicit
// stop arrives.
type TypingUser struct {
	UserID     int
	Username   string
	ChatRoomID int
}

// Store holds the reconciled chat state for one local user.
type Store struct {
	mu          sync.RWMutex
	localUserID int

	chatList      []models.ChatListItem
	currentRoomID int
	messages      map[int][]models.Message
	typing        []TypingUser
	unread        map[int]int
	online        map[int]bool
}

// NewStore creates an empty store for the given local user.
func NewStore(localUserID int) *Store {
	return &Store{
		localUserID: localUserID,
		messages:    make(map[int][]models.Message),
		unread:      make(map[int]int),
		online:      make(map[int]bool),
	}
}

// SetChatList replaces the room list.
func (s *Store) SetChatList(items []models.ChatListItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatList = append([]models.ChatListItem(nil), items...)
}

// ChatList returns the room list.
func (s *Store) ChatList() []models.ChatListItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ChatListItem(nil), s.chatList...)
}

// SetCurrentRoom marks the focused room. Zero means no room is focused.
func (s *Store) SetCurrentRoom(roomID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentRoomID = roomID
}

// CurrentRoom returns the focused room id.
func (s *Store) CurrentRoom() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentRoomID
}

// LoadHistory bulk-replaces a room's message sequence from paginated history
// and resets its unread counter. It returns the ids of fetched messages not
// authored locally and not yet read, which the caller should acknowledge
// with a mark_as_read.
func (s *Store) LoadHistory(roomID int, msgs []models.Message) []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages[roomID] = append([]models.Message(nil), msgs...)
	s.unread[roomID] = 0

	var toMark []int
	for _, m := range msgs {
		if m.UserID != s.localUserID && !m.IsRead {
			toMark = append(toMark, m.ID)
		}
	}
	return toMark
}

// ApplyMessageReceived appends a realtime message to its room's sequence when
// that room is loaded, and bumps the unread counter when the message is for
// an unfocused room and not authored locally. The room's chat-list entry,
// when present, gets the message as its new lastMessage.
func (s *Store) ApplyMessageReceived(msg models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, loaded := s.messages[msg.ChatRoomID]; loaded {
		s.messages[msg.ChatRoomID] = append(s.messages[msg.ChatRoomID], msg)
	}

	for i := range s.chatList {
		if s.chatList[i].ChatRoomID == msg.ChatRoomID {
			last := msg
			s.chatList[i].LastMsg = &last
			break
		}
	}

	if msg.ChatRoomID != s.currentRoomID && msg.UserID != s.localUserID {
		s.unread[msg.ChatRoomID]++
	}
}

// ApplyMessagesRead flips isRead on the matching local messages. No other
// field changes.
func (s *Store) ApplyMessagesRead(roomID int, messageIDs []int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make(map[int]bool, len(messageIDs))
	for _, id := range messageIDs {
		ids[id] = true
	}

	msgs := s.messages[roomID]
	for i := range msgs {
		if ids[msgs[i].ID] {
			msgs[i].IsRead = true
		}
	}
}

// ApplyTypingStart adds a typing indicator. Duplicate starts for the same
// (user, room) pair are a no-op.
func (s *Store) ApplyTypingStart(user TypingUser) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.typing {
		if t.UserID == user.UserID && t.ChatRoomID == user.ChatRoomID {
			return
		}
	}
	s.typing = append(s.typing, user)
}

// ApplyTypingStop removes a typing indicator.
func (s *Store) ApplyTypingStop(userID, roomID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := s.typing[:0]
	for _, t := range s.typing {
		if !(t.UserID == userID && t.ChatRoomID == roomID) {
			filtered = append(filtered, t)
		}
	}
	s.typing = filtered
}

// TypingUsers returns who is typing in the room.
func (s *Store) TypingUsers(roomID int) []TypingUser {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var users []TypingUser
	for _, t := range s.typing {
		if t.ChatRoomID == roomID {
			users = append(users, t)
		}
	}
	return users
}

// UnreadCount returns the room's unread counter.
func (s *Store) UnreadCount(roomID int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread[roomID]
}

// ResetUnreadCount zeroes the room's unread counter.
func (s *Store) ResetUnreadCount(roomID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unread[roomID] = 0
}

// SetOnlineUsers replaces the online-presence set from a server snapshot.
func (s *Store) SetOnlineUsers(userIDs []int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.online = make(map[int]bool, len(userIDs))
	for _, id := range userIDs {
		s.online[id] = true
	}
}

// ApplyUserOnline marks the user online.
func (s *Store) ApplyUserOnline(userID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.online[userID] = true
}

// ApplyUserOffline marks the user offline.
func (s *Store) ApplyUserOffline(userID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.online, userID)
}

// IsOnline reports whether the user is currently online.
func (s *Store) IsOnline(userID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.online[userID]
}

// Messages returns the room's message sequence in order.
func (s *Store) Messages(roomID int) []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Message(nil), s.messages[roomID]...)
}
