package repositories

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"chatcore-service/internal/models"
)

// MessagePage is one page of chat history in chronological order.
type MessagePage struct {
	Messages []models.Message
	Page     int
	Limit    int
	Total    int
	HasMore  bool
}

// MessageRepository defines interactions for chat messages.
type MessageRepository interface {
	PaginateMessages(ctx context.Context, roomID int, page int, limit int) (MessagePage, error)
	CreateMessage(ctx context.Context, roomID int, authorID int, content string) (models.Message, error)
	MarkMessagesRead(ctx context.Context, roomID int, messageIDs []int, excludeAuthorID int) (int64, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

type messageRow struct {
	models.Message
	Author models.User `db:"author"`
}

const messageColumns = `m.id, m.chat_room_id, m.user_id, m.content, m.is_read, m.created_at,
        u.id AS "author.id", u.username AS "author.username", u.email AS "author.email",
        u.profile_picture AS "author.profile_picture",
        u.created_at AS "author.created_at", u.last_active AS "author.last_active"`

// PaginateMessages returns one page of a room's history. The query walks the
// room newest-first for offset pagination; the payload is re-ordered oldest
// first so chat UIs render top to bottom.
func (r *MessageRepo) PaginateMessages(ctx context.Context, roomID int, page int, limit int) (MessagePage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	skip := (page - 1) * limit

	var rows []messageRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+messageColumns+`
         FROM messages m
         JOIN users u ON u.id = m.user_id
         WHERE m.chat_room_id=$1
         ORDER BY m.created_at DESC
         OFFSET $2 LIMIT $3`, roomID, skip, limit)
	if err != nil {
		return MessagePage{}, err
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM messages WHERE chat_room_id=$1`, roomID); err != nil {
		return MessagePage{}, err
	}

	return buildPage(rows, page, limit, total), nil
}

// buildPage turns one newest-first result window into a chronological page.
// There is more history exactly when skip plus the returned window still
// falls short of the room's total.
func buildPage(rows []messageRow, page, limit, total int) MessagePage {
	messages := make([]models.Message, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		msg := rows[i].Message
		author := rows[i].Author
		msg.User = &author
		messages = append(messages, msg)
	}

	skip := (page - 1) * limit
	return MessagePage{
		Messages: messages,
		Page:     page,
		Limit:    limit,
		Total:    total,
		HasMore:  skip+len(rows) < total,
	}
}

// CreateMessage persists one message and returns it with the author profile
// joined in. Content must be non-empty after trimming.
func (r *MessageRepo) CreateMessage(ctx context.Context, roomID int, authorID int, content string) (models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return models.Message{}, ErrEmptyContent
	}

	var id int
	if err := r.db.QueryRowxContext(ctx,
		`INSERT INTO messages (chat_room_id, user_id, content) VALUES ($1, $2, $3) RETURNING id`,
		roomID, authorID, strings.TrimSpace(content)).Scan(&id); err != nil {
		return models.Message{}, err
	}

	var row messageRow
	err := r.db.GetContext(ctx, &row,
		`SELECT `+messageColumns+`
         FROM messages m
         JOIN users u ON u.id = m.user_id
         WHERE m.id=$1`, id)
	if err != nil {
		return models.Message{}, err
	}

	msg := row.Message
	author := row.Author
	msg.User = &author
	return msg, nil
}

// MarkMessagesRead flips is_read for the given ids that belong to the room
// and were not authored by excludeAuthorID. Unmatched ids are skipped.
func (r *MessageRepo) MarkMessagesRead(ctx context.Context, roomID int, messageIDs []int, excludeAuthorID int) (int64, error) {
	if len(messageIDs) == 0 {
		return 0, nil
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE messages SET is_read = TRUE
         WHERE id = ANY($1) AND chat_room_id=$2 AND user_id<>$3`,
		pq.Array(messageIDs), roomID, excludeAuthorID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
