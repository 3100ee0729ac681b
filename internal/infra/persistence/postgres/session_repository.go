package postgres

import (
	"context"
	"time"

	"bountyhub/internal/domain/entity"
	domainerrors "bountyhub/internal/domain/errors"
	"bountyhub/internal/domain/repository"
	"bountyhub/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// sessionRepository implements the domain.SessionRepository interface using GORM.
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository is the constructor for sessionRepository.
func NewSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

// Create persists a new session, representing one device login.
func (repo *sessionRepository) Create(ctx context.Context, session *entity.Session) error {
	sessionM := fromSessionDomain(session)

	if err := repo.db.WithContext(ctx).Create(sessionM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrConflict.WrapMessage("session token hash already exists")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("invalid user reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create session")
	}

	// Update the entity with generated values
	session.ID = sessionM.ID
	session.CreatedAt = sessionM.CreatedAt

	return nil
}

// FindByID retrieves a session record by its unique ID.
func (repo *sessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	var sessionM model.SessionModel
	err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&sessionM).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSessionNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toSessionDomain(&sessionM), nil
}

// ListByUser retrieves all sessions for a user, newest first.
func (repo *sessionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Session, error) {
	var sessionModels []*model.SessionModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&sessionModels).Error

	if err != nil {
		return nil, errors.WithStack(err)
	}

	sessions := make([]*entity.Session, 0, len(sessionModels))
	for _, sessionM := range sessionModels {
		sessions = append(sessions, toSessionDomain(sessionM))
	}

	return sessions, nil
}

// Touch updates only last_seen_at. The absolute expiry is deliberately left
// untouched; a session never outlives the lifetime fixed at login.
func (repo *sessionRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.SessionModel{}).
		Where("id = ?", id).
		Update("last_seen_at", at)

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to touch session")
	}
	if result.RowsAffected == 0 {
		return repository.ErrSessionNotFound
	}

	return nil
}

// RotateTokenHash performs the single-use swap at the heart of refresh token
// rotation. The WHERE clause matches both the session ID and the previous
// hash, so when several concurrent refreshes carry the same token exactly one
// UPDATE matches a row. The losers get ErrSessionRotated, which also covers
// replay of an already-rotated token.
func (repo *sessionRepository) RotateTokenHash(ctx context.Context, id uuid.UUID, oldHash, newHash string, newExpiry time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.SessionModel{}).
		Where("id = ? AND token_hash = ?", id, oldHash).
		Updates(map[string]any{
			"token_hash":       newHash,
			"token_expires_at": newExpiry,
			"last_seen_at":     time.Now(),
		})

	if result.Error != nil {
		if isUniqueConstraintViolation(result.Error) {
			return domainerrors.ErrConflict.WrapMessage("session token hash already exists")
		}

		return errors.Wrap(result.Error, "failed to rotate session token")
	}
	if result.RowsAffected == 0 {
		return repository.ErrSessionRotated
	}

	return nil
}

// Deactivate marks the session dead and clears the stored refresh hash so any
// in-flight refresh carrying the old token can no longer match.
func (repo *sessionRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Model(&model.SessionModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"active":           false,
			"token_hash":       "",
			"token_expires_at": nil,
			"expires_at":       time.Now(),
		})

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to deactivate session")
	}
	if result.RowsAffected == 0 {
		return repository.ErrSessionNotFound
	}

	return nil
}

// Delete removes a session row outright.
func (repo *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.SessionModel{})

	if result.Error != nil {
		return errors.WithStack(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrSessionNotFound
	}

	return nil
}

// DeleteExpired removes all sessions whose absolute expiry has passed and
// reports how many rows were removed.
func (repo *sessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&model.SessionModel{})

	if result.Error != nil {
		return 0, errors.WithStack(result.Error)
	}

	return result.RowsAffected, nil
}

// CountLiveByUser returns the number of live (active, non-expired) sessions for a user.
func (repo *sessionRepository) CountLiveByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&model.SessionModel{}).
		Where("user_id = ? AND active = ? AND expires_at > ?", userID, true, time.Now()).
		Count(&count).Error

	if err != nil {
		return 0, errors.WithStack(err)
	}

	return int(count), nil
}

// --- Mapper Functions ---

// toSessionDomain converts a GORM SessionModel to a domain Session entity.
func toSessionDomain(data *model.SessionModel) *entity.Session {
	if data == nil {
		return nil
	}

	return &entity.Session{
		ID:             data.ID,
		UserID:         data.UserID,
		UserAgent:      data.UserAgent,
		DeviceOS:       data.DeviceOS,
		DeviceBrowser:  data.DeviceBrowser,
		DeviceClass:    data.DeviceClass,
		IP:             data.IP,
		Location:       data.Location,
		TokenHash:      data.TokenHash,
		TokenExpiresAt: data.TokenExpiresAt,
		Active:         data.Active,
		CreatedAt:      data.CreatedAt,
		LastSeenAt:     data.LastSeenAt,
		ExpiresAt:      data.ExpiresAt,
	}
}

// fromSessionDomain converts a domain Session entity to a GORM SessionModel.
func fromSessionDomain(data *entity.Session) *model.SessionModel {
	if data == nil {
		return nil
	}

	return &model.SessionModel{
		ID:             data.ID,
		UserID:         data.UserID,
		UserAgent:      data.UserAgent,
		DeviceOS:       data.DeviceOS,
		DeviceBrowser:  data.DeviceBrowser,
		DeviceClass:    data.DeviceClass,
		IP:             data.IP,
		Location:       data.Location,
		TokenHash:      data.TokenHash,
		TokenExpiresAt: data.TokenExpiresAt,
		Active:         data.Active,
		CreatedAt:      data.CreatedAt,
		LastSeenAt:     data.LastSeenAt,
		ExpiresAt:      data.ExpiresAt,
	}
}
