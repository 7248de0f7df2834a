package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"chatcore-service/internal/models"
)

// RoomRepository covers room lookup/creation and the membership guard.
type RoomRepository interface {
	IsParticipant(ctx context.Context, roomID int, userID int) (bool, error)
	CreateOrGetDirectRoom(ctx context.Context, userID int, otherID int) (models.ChatRoom, error)
	GetRoom(ctx context.Context, roomID int) (models.ChatRoom, error)
	ListRoomsForUser(ctx context.Context, userID int) ([]models.ChatListItem, error)
}

// RoomRepo is a sqlx implementation of RoomRepository.
type RoomRepo struct {
	db *sqlx.DB
}

// NewRoomRepo constructs a RoomRepo.
func NewRoomRepo(db *sqlx.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// IsParticipant reports whether the user belongs to the room. Absence of a
// participant row means deny.
func (r *RoomRepo) IsParticipant(ctx context.Context, roomID int, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM chat_room_participants WHERE chat_room_id=$1 AND user_id=$2)`,
		roomID, userID)
	return exists, err
}

// CreateOrGetDirectRoom returns the existing direct room between the two
// users, or atomically creates a room plus its two participant rows.
func (r *RoomRepo) CreateOrGetDirectRoom(ctx context.Context, userID int, otherID int) (models.ChatRoom, error) {
	if userID == otherID {
		return models.ChatRoom{}, ErrSelfRoom
	}

	var roomID int
	err := r.db.GetContext(ctx, &roomID,
		`SELECT p1.chat_room_id FROM chat_room_participants p1
         JOIN chat_room_participants p2 ON p1.chat_room_id = p2.chat_room_id
         WHERE p1.user_id=$1 AND p2.user_id=$2
         LIMIT 1`, userID, otherID)
	if err == nil {
		return r.GetRoom(ctx, roomID)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.ChatRoom{}, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.ChatRoom{}, err
	}
	defer tx.Rollback()

	if err := tx.QueryRowxContext(ctx,
		`INSERT INTO chat_rooms DEFAULT VALUES RETURNING id`).Scan(&roomID); err != nil {
		return models.ChatRoom{}, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO chat_room_participants (chat_room_id, user_id) VALUES ($1, $2), ($1, $3)`,
		roomID, userID, otherID); err != nil {
		return models.ChatRoom{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.ChatRoom{}, err
	}

	return r.GetRoom(ctx, roomID)
}

// GetRoom fetches a room with its participant roster and user profiles.
func (r *RoomRepo) GetRoom(ctx context.Context, roomID int) (models.ChatRoom, error) {
	var room models.ChatRoom
	err := r.db.GetContext(ctx, &room,
		`SELECT id, created_at FROM chat_rooms WHERE id=$1`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ChatRoom{}, ErrRoomNotFound
	}
	if err != nil {
		return models.ChatRoom{}, err
	}

	participants, err := r.roomParticipants(ctx, roomID)
	if err != nil {
		return models.ChatRoom{}, err
	}
	room.Participants = participants
	return room, nil
}

// ListRoomsForUser returns the user's rooms ordered by join time descending,
// each with its roster and most recent message.
func (r *RoomRepo) ListRoomsForUser(ctx context.Context, userID int) ([]models.ChatListItem, error) {
	var memberships []models.ChatRoomParticipant
	err := r.db.SelectContext(ctx, &memberships,
		`SELECT chat_room_id, user_id, joined_at FROM chat_room_participants
         WHERE user_id=$1 ORDER BY joined_at DESC`, userID)
	if err != nil {
		return nil, err
	}

	items := make([]models.ChatListItem, 0, len(memberships))
	for _, m := range memberships {
		room, err := r.GetRoom(ctx, m.ChatRoomID)
		if err != nil {
			return nil, err
		}

		last, err := r.lastMessage(ctx, m.ChatRoomID)
		if err != nil {
			return nil, err
		}

		items = append(items, models.ChatListItem{
			ChatRoomID: m.ChatRoomID,
			JoinedAt:   m.JoinedAt,
			ChatRoom:   room,
			LastMsg:    last,
		})
	}
	return items, nil
}

func (r *RoomRepo) roomParticipants(ctx context.Context, roomID int) ([]models.ChatRoomParticipant, error) {
	type participantRow struct {
		models.ChatRoomParticipant
		Profile models.User `db:"profile"`
	}

	var rows []participantRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT p.chat_room_id, p.user_id, p.joined_at,
                u.id AS "profile.id", u.username AS "profile.username", u.email AS "profile.email",
                u.profile_picture AS "profile.profile_picture",
                u.created_at AS "profile.created_at", u.last_active AS "profile.last_active"
         FROM chat_room_participants p
         JOIN users u ON u.id = p.user_id
         WHERE p.chat_room_id=$1
         ORDER BY p.user_id`, roomID)
	if err != nil {
		return nil, err
	}

	participants := make([]models.ChatRoomParticipant, 0, len(rows))
	for i := range rows {
		p := rows[i].ChatRoomParticipant
		profile := rows[i].Profile
		p.User = &profile
		participants = append(participants, p)
	}
	return participants, nil
}

func (r *RoomRepo) lastMessage(ctx context.Context, roomID int) (*models.Message, error) {
	var row messageRow
	err := r.db.GetContext(ctx, &row,
		`SELECT `+messageColumns+`
         FROM messages m
         JOIN users u ON u.id = m.user_id
         WHERE m.chat_room_id=$1
         ORDER BY m.created_at DESC
         LIMIT 1`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	msg := row.Message
	author := row.Author
	msg.User = &author
	return &msg, nil
}
