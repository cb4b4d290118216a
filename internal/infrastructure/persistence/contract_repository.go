package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/imobia/backend/internal/domain/contract"
	"github.com/imobia/backend/internal/domain/shared"
	"github.com/imobia/backend/internal/infrastructure/persistence/models"
)

// GormContractRepository implements contract.Repository using GORM
type GormContractRepository struct {
	db *gorm.DB
}

// NewGormContractRepository creates a new GormContractRepository
func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

// FindByID finds a contract by its ID, with billing items loaded
func (r *GormContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	var model models.ContractModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindForAutoBilling finds every contract the automatic billing pass should
// visit: active, opted into auto billing and with a payer assigned.
func (r *GormContractRepository) FindForAutoBilling(ctx context.Context) ([]*contract.Contract, error) {
	var contractModels []models.ContractModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("active = ? AND auto_billing = ? AND payer_id IS NOT NULL", true, true).
		Order("code ASC").
		Find(&contractModels).Error; err != nil {
		return nil, err
	}
	contracts := make([]*contract.Contract, len(contractModels))
	for i := range contractModels {
		contracts[i] = contractModels[i].ToDomain()
	}
	return contracts, nil
}

// Ensure GormContractRepository implements contract.Repository
var _ contract.Repository = (*GormContractRepository)(nil)

// GormPayerRepository implements contract.PayerRepository using GORM
type GormPayerRepository struct {
	db *gorm.DB
}

// NewGormPayerRepository creates a new GormPayerRepository
func NewGormPayerRepository(db *gorm.DB) *GormPayerRepository {
	return &GormPayerRepository{db: db}
}

// FindByID finds a payer by ID with documents and addresses loaded. Addresses
// come back in sequence order so the first is the primary one.
func (r *GormPayerRepository) FindByID(ctx context.Context, id uuid.UUID) (*contract.Payer, error) {
	var model models.PayerModel
	if err := r.db.WithContext(ctx).
		Preload("Documents").
		Preload("Addresses", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC")
		}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure GormPayerRepository implements contract.PayerRepository
var _ contract.PayerRepository = (*GormPayerRepository)(nil)
