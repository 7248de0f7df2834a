package repositories

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func expectGetRoom(mock sqlmock.Sqlmock, roomID int, now time.Time) {
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, created_at FROM chat_rooms WHERE id=$1`)).
		WithArgs(roomID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(roomID, now))
	mock.ExpectQuery(`JOIN users u ON u\.id = p\.user_id`).
		WithArgs(roomID).
		WillReturnRows(sqlmock.NewRows([]string{
			"chat_room_id", "user_id", "joined_at",
			"profile.id", "profile.username", "profile.email", "profile.profile_picture",
			"profile.created_at", "profile.last_active",
		}).
			AddRow(roomID, 1, now, 1, "alice", "alice@mail.io", nil, now, now).
			AddRow(roomID, 2, now, 2, "bob", "bob@mail.io", nil, now, now))
}

func TestCreateOrGetDirectRoomReusesExistingRoom(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRoomRepo(db)
	now := time.Now()

	// the pair lookup hits on both calls, so neither reaches an insert
	for i := 0; i < 2; i++ {
		mock.ExpectQuery(`SELECT p1\.chat_room_id FROM chat_room_participants p1`).
			WithArgs(1, 2).
			WillReturnRows(sqlmock.NewRows([]string{"chat_room_id"}).AddRow(7))
		expectGetRoom(mock, 7, now)
	}

	first, err := repo.CreateOrGetDirectRoom(context.Background(), 1, 2)
	require.NoError(t, err)
	second, err := repo.CreateOrGetDirectRoom(context.Background(), 1, 2)
	require.NoError(t, err)

	require.Equal(t, 7, first.ID)
	require.Equal(t, first.ID, second.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrGetDirectRoomCreatesRoomWithBothParticipants(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRoomRepo(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT p1\.chat_room_id FROM chat_room_participants p1`).
		WithArgs(1, 2).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO chat_rooms DEFAULT VALUES RETURNING id`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO chat_room_participants (chat_room_id, user_id) VALUES ($1, $2), ($1, $3)`)).
		WithArgs(7, 1, 2).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()
	expectGetRoom(mock, 7, now)

	room, err := repo.CreateOrGetDirectRoom(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Equal(t, 7, room.ID)
	require.Len(t, room.Participants, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrGetDirectRoomRejectsSelf(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewRoomRepo(db)

	_, err := repo.CreateOrGetDirectRoom(context.Background(), 3, 3)
	require.ErrorIs(t, err, ErrSelfRoom)
}
