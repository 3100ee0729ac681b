package impl

import (
	"context"
	"time"

	"bountyhub/internal/domain/entity"
	"bountyhub/internal/domain/repository"
	"bountyhub/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// --- repository mocks ---

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*entity.User); ok {
		return user, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if user, ok := args.Get(0).(*entity.User); ok {
		return user, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockUserRepo) Create(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) Update(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *mockUserRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func (m *mockUserRepo) ListByRole(ctx context.Context, role entity.Role) ([]*entity.User, error) {
	args := m.Called(ctx, role)
	if users, ok := args.Get(0).([]*entity.User); ok {
		return users, args.Error(1)
	}

	return nil, args.Error(1)
}

type mockSessionRepo struct {
	mock.Mock
}

func (m *mockSessionRepo) Create(ctx context.Context, session *entity.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	args := m.Called(ctx, id)
	if session, ok := args.Get(0).(*entity.Session); ok {
		return session, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockSessionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Session, error) {
	args := m.Called(ctx, userID)
	if sessions, ok := args.Get(0).([]*entity.Session); ok {
		return sessions, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockSessionRepo) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *mockSessionRepo) RotateTokenHash(ctx context.Context, id uuid.UUID, oldHash, newHash string, newExpiry time.Time) error {
	return m.Called(ctx, id, oldHash, newHash, newExpiry).Error(0)
}

func (m *mockSessionRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockSessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)

	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSessionRepo) CountLiveByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)

	return args.Int(0), args.Error(1)
}

type mockAuditRepo struct {
	mock.Mock
}

func (m *mockAuditRepo) Record(ctx context.Context, event *entity.AuditEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockAuditRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.AuditEvent, error) {
	args := m.Called(ctx, userID, limit)
	if events, ok := args.Get(0).([]*entity.AuditEvent); ok {
		return events, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockAuditRepo) CountByAction(ctx context.Context, userID uuid.UUID, action entity.AuditAction) (int, error) {
	args := m.Called(ctx, userID, action)

	return args.Int(0), args.Error(1)
}

// recordedActions lists the audit actions recorded through the mock, in order.
func (m *mockAuditRepo) recordedActions() []entity.AuditAction {
	var actions []entity.AuditAction
	for _, call := range m.Calls {
		if call.Method != "Record" {
			continue
		}
		if event, ok := call.Arguments.Get(1).(*entity.AuditEvent); ok {
			actions = append(actions, event.Action)
		}
	}

	return actions
}

// --- transaction fakes ---

// fakeRepoFactory hands the test's mocks to transactional code.
type fakeRepoFactory struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	auditRepo   repository.AuditRepository
}

func (f *fakeRepoFactory) UserRepo() repository.UserRepository       { return f.userRepo }
func (f *fakeRepoFactory) SessionRepo() repository.SessionRepository { return f.sessionRepo }
func (f *fakeRepoFactory) AuditRepo() repository.AuditRepository     { return f.auditRepo }

// fakeTxManager executes the function directly; transactional semantics are
// the persistence layer's concern, not the use case's.
type fakeTxManager struct {
	factory repository.RepositoryFactory
}

func (f *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(f.factory)
}

// --- service mocks ---

type mockPasswordHasher struct {
	mock.Mock
}

func (m *mockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)

	return args.String(0), args.Error(1)
}

func (m *mockPasswordHasher) Check(password, hash string) bool {
	return m.Called(password, hash).Bool(0)
}

func (m *mockPasswordHasher) ValidatePasswordStrength(password string) error {
	return m.Called(password).Error(0)
}

type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) IssueAccessToken(userID uuid.UUID, role entity.Role, sessionID uuid.UUID) (string, error) {
	args := m.Called(userID, role, sessionID)

	return args.String(0), args.Error(1)
}

func (m *mockTokenService) IssueRefreshToken(userID, sessionID uuid.UUID) (string, time.Time, error) {
	args := m.Called(userID, sessionID)

	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *mockTokenService) VerifyAccessToken(token string) (*service.Claims, error) {
	args := m.Called(token)
	if claims, ok := args.Get(0).(*service.Claims); ok {
		return claims, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockTokenService) VerifyRefreshToken(token string) (*service.Claims, error) {
	args := m.Called(token)
	if claims, ok := args.Get(0).(*service.Claims); ok {
		return claims, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockTokenService) HashToken(token string) string {
	return m.Called(token).String(0)
}

func (m *mockTokenService) RefreshTokenTTL() time.Duration {
	return m.Called().Get(0).(time.Duration)
}

// stubDeviceParser returns fixed metadata; parsing quality is covered by the
// parser's own tests.
type stubDeviceParser struct{}

func (stubDeviceParser) Parse(string) service.DeviceInfo {
	return service.DeviceInfo{OS: "Linux", Browser: "Firefox", Class: "desktop"}
}
