package models

import "time"

// ChatRoom is a two-party conversation channel. The participant set is fixed
// at creation time.
type ChatRoom struct {
	ID           int                   `db:"id" json:"id"`
	CreatedAt    time.Time             `db:"created_at" json:"createdAt"`
	Participants []ChatRoomParticipant `json:"participants,omitempty"`
}

// ChatRoomParticipant ties a user to a room. The (chatRoomId, userId) pair is
// unique; rows are created atomically with the room and never deleted.
type ChatRoomParticipant struct {
	ChatRoomID int       `db:"chat_room_id" json:"chatRoomId"`
	UserID     int       `db:"user_id" json:"userId"`
	JoinedAt   time.Time `db:"joined_at" json:"joinedAt"`
	User       *User     `json:"user,omitempty"`
}

// ChatListItem is the per-user view of a room returned by the chat list:
// the room with its roster plus the most recent message, if any.
type ChatListItem struct {
	ChatRoomID int       `json:"chatRoomId"`
	JoinedAt   time.Time `json:"joinedAt"`
	ChatRoom   ChatRoom  `json:"chatRoom"`
	LastMsg    *Message  `json:"lastMessage"`
}
