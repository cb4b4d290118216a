package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/imobia/backend/internal/domain/boleto"
	"github.com/imobia/backend/internal/domain/shared"
	"github.com/imobia/backend/internal/infrastructure/persistence/models"
)

// GormBoletoRepository implements boleto.Repository using GORM
type GormBoletoRepository struct {
	db *gorm.DB
}

// NewGormBoletoRepository creates a new GormBoletoRepository
func NewGormBoletoRepository(db *gorm.DB) *GormBoletoRepository {
	return &GormBoletoRepository{db: db}
}

// Create inserts a new boleto
func (r *GormBoletoRepository) Create(ctx context.Context, b *boleto.Boleto) error {
	model := models.BoletoModelFromDomain(b)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Save updates an existing boleto
func (r *GormBoletoRepository) Save(ctx context.Context, b *boleto.Boleto) error {
	model := models.BoletoModelFromDomain(b)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a boleto by its ID
func (r *GormBoletoRepository) FindByID(ctx context.Context, id uuid.UUID) (*boleto.Boleto, error) {
	var model models.BoletoModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds boletos by a set of IDs. Missing ids are silently skipped.
func (r *GormBoletoRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*boleto.Boleto, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var boletoModels []models.BoletoModel
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&boletoModels).Error; err != nil {
		return nil, err
	}
	boletos := make([]*boleto.Boleto, len(boletoModels))
	for i := range boletoModels {
		boletos[i] = boletoModels[i].ToDomain()
	}
	return boletos, nil
}

// FindAll finds boletos with filtering and pagination
func (r *GormBoletoRepository) FindAll(ctx context.Context, filter boleto.Filter) ([]*boleto.Boleto, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.BoletoModel{})
	query = applyBoletoFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var boletoModels []models.BoletoModel
	if err := query.Order("created_at DESC").Find(&boletoModels).Error; err != nil {
		return nil, 0, err
	}

	boletos := make([]*boleto.Boleto, len(boletoModels))
	for i := range boletoModels {
		boletos[i] = boletoModels[i].ToDomain()
	}
	return boletos, total, nil
}

// LastNossoNumero returns the highest nosso número issued for a credential,
// or empty when the credential has not issued any yet. Nosso números are
// fixed-width zero-padded so lexicographic order is numeric order.
func (r *GormBoletoRepository) LastNossoNumero(ctx context.Context, credentialID uuid.UUID) (string, error) {
	var nossoNumero string
	err := r.db.WithContext(ctx).
		Model(&models.BoletoModel{}).
		Select("nosso_numero").
		Where("credential_id = ?", credentialID).
		Order("nosso_numero DESC").
		Limit(1).
		Pluck("nosso_numero", &nossoNumero).Error
	if err != nil {
		return "", err
	}
	return nossoNumero, nil
}

// FindRegisteredForStatusUpdate returns REGISTERED boletos eligible for a
// periodic status query pass, oldest registration first.
func (r *GormBoletoRepository) FindRegisteredForStatusUpdate(ctx context.Context, limit int) ([]*boleto.Boleto, error) {
	var boletoModels []models.BoletoModel
	query := r.db.WithContext(ctx).
		Where("status = ?", boleto.StatusRegistered).
		Order("registered_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&boletoModels).Error; err != nil {
		return nil, err
	}
	boletos := make([]*boleto.Boleto, len(boletoModels))
	for i := range boletoModels {
		boletos[i] = boletoModels[i].ToDomain()
	}
	return boletos, nil
}

// Delete removes a boleto row
func (r *GormBoletoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.BoletoModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Statistics aggregates boleto counts and values, optionally per credential
func (r *GormBoletoRepository) Statistics(ctx context.Context, credentialID *uuid.UUID) (boleto.Statistics, error) {
	base := r.db.WithContext(ctx).Model(&models.BoletoModel{})
	if credentialID != nil {
		base = base.Where("credential_id = ?", *credentialID)
	}

	var rows []struct {
		Status boleto.Status
		Count  int64
		Face   float64
		Paid   float64
	}
	if err := base.
		Select("status, COUNT(*) as count, COALESCE(SUM(face_value), 0) as face, COALESCE(SUM(paid_value), 0) as paid").
		Group("status").
		Scan(&rows).Error; err != nil {
		return boleto.Statistics{}, err
	}

	var stats boleto.Statistics
	for _, row := range rows {
		stats.Total += row.Count
		switch row.Status {
		case boleto.StatusPending:
			stats.Pending = row.Count
			stats.OpenValue += row.Face
		case boleto.StatusRegistered:
			stats.Registered = row.Count
			stats.OpenValue += row.Face
		case boleto.StatusOverdue:
			stats.Overdue = row.Count
			stats.OpenValue += row.Face
		case boleto.StatusPaid:
			stats.Paid = row.Count
			stats.PaidValue += row.Paid
		case boleto.StatusSettled:
			stats.Settled = row.Count
		case boleto.StatusError:
			stats.Errors = row.Count
		}
	}
	return stats, nil
}

func applyBoletoFilter(query *gorm.DB, filter boleto.Filter) *gorm.DB {
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.CredentialID != nil {
		query = query.Where("credential_id = ?", *filter.CredentialID)
	}
	if filter.PayerID != nil {
		query = query.Where("payer_id = ?", *filter.PayerID)
	}
	if filter.PropertyID != nil {
		query = query.Where("property_id = ?", *filter.PropertyID)
	}
	if filter.NossoNumero != "" {
		query = query.Where("nosso_numero = ?", filter.NossoNumero)
	}
	if filter.SeuNumero != "" {
		query = query.Where("seu_numero = ?", filter.SeuNumero)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", *filter.DueTo)
	}
	return query
}

// Ensure GormBoletoRepository implements boleto.Repository
var _ boleto.Repository = (*GormBoletoRepository)(nil)
