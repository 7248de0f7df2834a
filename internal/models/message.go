package models

import "time"

// Message is a chat message. Immutable once stored except for IsRead, which
// only recipients may flip through the read-receipt protocol.
type Message struct {
	ID         int       `db:"id" json:"id"`
	ChatRoomID int       `db:"chat_room_id" json:"chatRoomId"`
	UserID     int       `db:"user_id" json:"userId"`
	Content    string    `db:"content" json:"content"`
	IsRead     bool      `db:"is_read" json:"isRead"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	User       *User     `json:"user,omitempty"`
}
