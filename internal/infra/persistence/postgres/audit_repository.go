package postgres

import (
	"context"

	"bountyhub/internal/domain/entity"
	domainerrors "bountyhub/internal/domain/errors"
	"bountyhub/internal/domain/repository"
	"bountyhub/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// auditRepository implements the domain.AuditRepository interface using GORM.
type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository is the constructor for auditRepository.
func NewAuditRepository(db *gorm.DB) repository.AuditRepository {
	return &auditRepository{db: db}
}

// Record appends one audit event. The table is append-only; there is no update path.
func (repo *auditRepository) Record(ctx context.Context, event *entity.AuditEvent) error {
	eventM := fromAuditDomain(event)

	if err := repo.db.WithContext(ctx).Create(eventM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to record audit event")
	}

	event.ID = eventM.ID
	event.CreatedAt = eventM.CreatedAt

	return nil
}

// ListByUser retrieves the most recent events for a user, newest first.
func (repo *auditRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.AuditEvent, error) {
	var eventModels []*model.AuditModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&eventModels).Error

	if err != nil {
		return nil, errors.WithStack(err)
	}

	events := make([]*entity.AuditEvent, 0, len(eventModels))
	for _, eventM := range eventModels {
		events = append(events, toAuditDomain(eventM))
	}

	return events, nil
}

// CountByAction returns how many events of the given action exist for a user.
func (repo *auditRepository) CountByAction(ctx context.Context, userID uuid.UUID, action entity.AuditAction) (int, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&model.AuditModel{}).
		Where("user_id = ? AND action = ?", userID, string(action)).
		Count(&count).Error

	if err != nil {
		return 0, errors.WithStack(err)
	}

	return int(count), nil
}

// --- Mapper Functions ---

// toAuditDomain converts a GORM AuditModel to a domain AuditEvent entity.
func toAuditDomain(data *model.AuditModel) *entity.AuditEvent {
	if data == nil {
		return nil
	}

	return &entity.AuditEvent{
		ID:        data.ID,
		Action:    entity.AuditAction(data.Action),
		UserID:    data.UserID,
		EntityID:  data.EntityID,
		Details:   data.Details,
		CreatedAt: data.CreatedAt,
	}
}

// fromAuditDomain converts a domain AuditEvent entity to a GORM AuditModel.
func fromAuditDomain(data *entity.AuditEvent) *model.AuditModel {
	if data == nil {
		return nil
	}

	return &model.AuditModel{
		ID:        data.ID,
		Action:    string(data.Action),
		UserID:    data.UserID,
		EntityID:  data.EntityID,
		Details:   data.Details,
		CreatedAt: data.CreatedAt,
	}
}
