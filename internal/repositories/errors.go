package repositories

import "errors"

var (
	ErrRoomNotFound    = errors.New("chat room not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrSelfRoom        = errors.New("cannot create chat room with yourself")
	ErrNotParticipant  = errors.New("user is not a participant in this chat room")
	ErrEmptyContent    = errors.New("message content is required")
)
