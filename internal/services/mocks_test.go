package services_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"gorm.io/datatypes"

	"fitzty/internal/models"
	"fitzty/internal/progression"
	"fitzty/internal/repositories"
	"fitzty/pkg/llm"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) IncrementXP(ctx context.Context, id string, delta int) (int, error) {
	args := m.Called(ctx, id, delta)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepository) ApplyActivity(ctx context.Context, update repositories.ActivityUpdate) (*models.User, error) {
	args := m.Called(ctx, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateAvatarConfig(ctx context.Context, id string, config datatypes.JSON) error {
	args := m.Called(ctx, id, config)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateStyleSignature(ctx context.Context, id, signature string) error {
	args := m.Called(ctx, id, signature)
	return args.Error(0)
}

// MockAvatarItemRepository is a mock implementation of repositories.AvatarItemRepository
type MockAvatarItemRepository struct {
	mock.Mock
}

func (m *MockAvatarItemRepository) ListByUser(ctx context.Context, userID string) ([]models.AvatarItem, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.AvatarItem), args.Error(1)
}

func (m *MockAvatarItemRepository) Upsert(ctx context.Context, item *models.AvatarItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockAvatarItemRepository) GrantUnlocks(ctx context.Context, userID string, unlocks []progression.Unlock) (int, error) {
	args := m.Called(ctx, userID, unlocks)
	return args.Int(0), args.Error(1)
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	keys   []string
	events []any
}

func (p *recordingPublisher) PublishEvent(routingKey string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	p.events = append(p.events, v)
	return nil
}

func (p *recordingPublisher) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

// fakeLLM answers by system prompt, so the two generator calls can differ.
type fakeLLM struct {
	mu        sync.Mutex
	recommend func() (string, error)
	signature func() (string, error)
	calls     []llm.CompletionRequest
}

func (f *fakeLLM) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if req.MaxTokens <= 100 {
		return f.signature()
	}
	return f.recommend()
}

func answer(s string) func() (string, error) {
	return func() (string, error) { return s, nil }
}

func fail(err error) func() (string, error) {
	return func() (string, error) { return "", err }
}
