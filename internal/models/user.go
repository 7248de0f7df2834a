package models

import "time"

// User is the profile attached to messages and room rosters. Accounts are
// owned by the auth subsystem; this service only reads them.
type User struct {
	ID             int       `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	Email          string    `db:"email" json:"email"`
	ProfilePicture *string   `db:"profile_picture" json:"profilePicture,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	LastActive     time.Time `db:"last_active" json:"lastActive"`
}
