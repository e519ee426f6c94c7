package storage

import (
	"context"
	"csv-drop/internal/core/domain"
	"io"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func NewMockStorage() *MockStorage {
	return &MockStorage{}
}

func (m *MockStorage) PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, key, body, size, contentType)
	return args.Error(0)
}

func (m *MockStorage) CreateMultipartSession(ctx context.Context, key string, contentType string) (string, error) {
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) UploadPart(ctx context.Context, key string, sessionID string, partNumber int, body io.Reader, size int64) (string, error) {
	args := m.Called(ctx, key, sessionID, partNumber, body, size)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) CompleteMultipartSession(ctx context.Context, key string, sessionID string, parts []domain.UploadPart) error {
	args := m.Called(ctx, key, sessionID, parts)
	return args.Error(0)
}

func (m *MockStorage) AbortMultipartSession(ctx context.Context, key string, sessionID string) error {
	args := m.Called(ctx, key, sessionID)
	return args.Error(0)
}

func (m *MockStorage) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorage) SignedReadURL(ctx context.Context, key string, ttl time.Duration) (string, *time.Time, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Get(1).(*time.Time), args.Error(2)
}
