package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"chatcore-service/internal/models"
	"chatcore-service/internal/repositories"
)

// RoomRepositoryMock mocks repositories.RoomRepository.
type RoomRepositoryMock struct {
	mock.Mock
}

func (m *RoomRepositoryMock) IsParticipant(ctx context.Context, roomID int, userID int) (bool, error) {
	args := m.Called(ctx, roomID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *RoomRepositoryMock) CreateOrGetDirectRoom(ctx context.Context, userID int, otherID int) (models.ChatRoom, error) {
	args := m.Called(ctx, userID, otherID)
	return args.Get(0).(models.ChatRoom), args.Error(1)
}

func (m *RoomRepositoryMock) GetRoom(ctx context.Context, roomID int) (models.ChatRoom, error) {
	args := m.Called(ctx, roomID)
	return args.Get(0).(models.ChatRoom), args.Error(1)
}

func (m *RoomRepositoryMock) ListRoomsForUser(ctx context.Context, userID int) ([]models.ChatListItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChatListItem), args.Error(1)
}

// MessageRepositoryMock mocks repositories.MessageRepository.
type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) PaginateMessages(ctx context.Context, roomID int, page int, limit int) (repositories.MessagePage, error) {
	args := m.Called(ctx, roomID, page, limit)
	return args.Get(0).(repositories.MessagePage), args.Error(1)
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, roomID int, authorID int, content string) (models.Message, error) {
	args := m.Called(ctx, roomID, authorID, content)
	return args.Get(0).(models.Message), args.Error(1)
}

func (m *MessageRepositoryMock) MarkMessagesRead(ctx context.Context, roomID int, messageIDs []int, excludeAuthorID int) (int64, error) {
	args := m.Called(ctx, roomID, messageIDs, excludeAuthorID)
	return args.Get(0).(int64), args.Error(1)
}

// UserRepositoryMock mocks repositories.UserRepository.
type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *UserRepositoryMock) GetUsersByIDs(ctx context.Context, userIDs []int) ([]models.User, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}
