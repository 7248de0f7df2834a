package repositories

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"chatcore-service/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	return sqlx.NewDb(mockDB, "postgres"), mock
}

var messageRowColumns = []string{
	"id", "chat_room_id", "user_id", "content", "is_read", "created_at",
	"author.id", "author.username", "author.email", "author.profile_picture",
	"author.created_at", "author.last_active",
}

func rowWithID(id int) messageRow {
	var row messageRow
	row.ID = id
	row.ChatRoomID = 5
	row.UserID = 2
	row.Content = fmt.Sprintf("m%d", id)
	row.CreatedAt = time.Unix(int64(1700000000+id), 0)
	row.Author = models.User{ID: 2, Username: "bob"}
	return row
}

// descWindow returns the rows the newest-first query would yield for one
// page over a room holding messages 1..total in chronological order.
func descWindow(total, page, limit int) []messageRow {
	skip := (page - 1) * limit
	var rows []messageRow
	for id := total - skip; id > 0 && len(rows) < limit; id-- {
		rows = append(rows, rowWithID(id))
	}
	return rows
}

func TestBuildPageReversesToChronological(t *testing.T) {
	page := buildPage([]messageRow{rowWithID(3), rowWithID(2), rowWithID(1)}, 1, 3, 3)

	require.Len(t, page.Messages, 3)
	for i, msg := range page.Messages {
		require.Equal(t, i+1, msg.ID)
		require.NotNil(t, msg.User)
		require.Equal(t, "bob", msg.User.Username)
	}
	require.False(t, page.HasMore)
}

func TestBuildPageHasMoreBoundary(t *testing.T) {
	tests := []struct {
		name            string
		page, limit     int
		returned, total int
		hasMore         bool
	}{
		{"first of many", 1, 2, 2, 5, true},
		{"skip plus returned equals total", 3, 2, 1, 5, false},
		{"exact multiple last page", 2, 2, 2, 4, false},
		{"empty room", 1, 50, 0, 0, false},
		{"page past the end", 9, 2, 0, 5, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rows := make([]messageRow, tc.returned)
			for i := range rows {
				rows[i] = rowWithID(tc.total - (tc.page-1)*tc.limit - i)
			}
			page := buildPage(rows, tc.page, tc.limit, tc.total)
			require.Equal(t, tc.hasMore, page.HasMore)
			require.Equal(t, tc.total, page.Total)
		})
	}
}

func TestBuildPageConcatenationReproducesHistory(t *testing.T) {
	const total, limit = 7, 3

	// Fetch every page and prepend, the way a client walks history backwards.
	var history []int
	for page := 1; ; page++ {
		p := buildPage(descWindow(total, page, limit), page, limit, total)

		ids := make([]int, 0, len(p.Messages))
		for _, msg := range p.Messages {
			ids = append(ids, msg.ID)
		}
		history = append(ids, history...)

		if !p.HasMore {
			break
		}
	}

	require.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, history)
}

func TestPaginateMessagesDefaultsAndPageShape(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMessageRepo(db)
	now := time.Now()

	rows := sqlmock.NewRows(messageRowColumns).
		AddRow(9, 5, 2, "newer", false, now.Add(time.Second), 2, "bob", "bob@mail.io", nil, now, now).
		AddRow(8, 5, 2, "older", true, now, 2, "bob", "bob@mail.io", nil, now, now)

	mock.ExpectQuery(`ORDER BY m.created_at DESC`).
		WithArgs(5, 0, 50).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM messages WHERE chat_room_id=$1`)).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	// page 0 / limit 0 fall back to the first page of fifty
	page, err := repo.PaginateMessages(context.Background(), 5, 0, 0)
	require.NoError(t, err)
	require.Equal(t, 1, page.Page)
	require.Equal(t, 50, page.Limit)
	require.Equal(t, 3, page.Total)
	require.True(t, page.HasMore)

	require.Len(t, page.Messages, 2)
	require.Equal(t, 8, page.Messages[0].ID)
	require.Equal(t, 9, page.Messages[1].ID)
	require.Equal(t, "bob", page.Messages[0].User.Username)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkMessagesReadExcludesAuthor(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMessageRepo(db)

	mock.ExpectExec(`UPDATE messages SET is_read = TRUE\s+WHERE id = ANY\(\$1\) AND chat_room_id=\$2 AND user_id<>\$3`).
		WithArgs(pq.Array([]int{7, 8}), 5, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))

	updated, err := repo.MarkMessagesRead(context.Background(), 5, []int{7, 8}, 2)
	require.NoError(t, err)
	require.EqualValues(t, 1, updated)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkMessagesReadNoIDsSkipsQuery(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMessageRepo(db)

	updated, err := repo.MarkMessagesRead(context.Background(), 5, nil, 2)
	require.NoError(t, err)
	require.Zero(t, updated)
	require.NoError(t, mock.ExpectationsWereMet())
}
