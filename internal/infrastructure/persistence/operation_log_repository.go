package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/imobia/backend/internal/domain/boleto"
	"github.com/imobia/backend/internal/infrastructure/persistence/models"
)

// GormOperationLogRepository implements boleto.OperationLogRepository using
// GORM. The table is append-only; there is no update or delete path.
type GormOperationLogRepository struct {
	db *gorm.DB
}

// NewGormOperationLogRepository creates a new GormOperationLogRepository
func NewGormOperationLogRepository(db *gorm.DB) *GormOperationLogRepository {
	return &GormOperationLogRepository{db: db}
}

// Append inserts an audit row
func (r *GormOperationLogRepository) Append(ctx context.Context, log *boleto.OperationLog) error {
	model := &models.BoletoOperationLogModel{}
	model.FromDomain(log)
	return r.db.WithContext(ctx).Create(model).Error
}

// ListByBoleto returns all audit rows of one boleto, newest first
func (r *GormOperationLogRepository) ListByBoleto(ctx context.Context, boletoID uuid.UUID) ([]*boleto.OperationLog, error) {
	var logModels []models.BoletoOperationLogModel
	if err := r.db.WithContext(ctx).
		Where("boleto_id = ?", boletoID).
		Order("created_at DESC").
		Find(&logModels).Error; err != nil {
		return nil, err
	}
	logs := make([]*boleto.OperationLog, len(logModels))
	for i := range logModels {
		logs[i] = logModels[i].ToDomain()
	}
	return logs, nil
}

// Ensure GormOperationLogRepository implements boleto.OperationLogRepository
var _ boleto.OperationLogRepository = (*GormOperationLogRepository)(nil)
