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

// GormCredentialRepository implements boleto.CredentialRepository using GORM
type GormCredentialRepository struct {
	db *gorm.DB
}

// NewGormCredentialRepository creates a new GormCredentialRepository
func NewGormCredentialRepository(db *gorm.DB) *GormCredentialRepository {
	return &GormCredentialRepository{db: db}
}

// FindByID finds a credential by its ID
func (r *GormCredentialRepository) FindByID(ctx context.Context, id uuid.UUID) (*boleto.Credential, error) {
	var model models.BankCredentialModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindDefault returns the oldest active credential, the one used when a
// caller does not pin a specific bank account.
func (r *GormCredentialRepository) FindDefault(ctx context.Context) (*boleto.Credential, error) {
	var model models.BankCredentialModel
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at ASC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllActive returns every active credential
func (r *GormCredentialRepository) FindAllActive(ctx context.Context) ([]*boleto.Credential, error) {
	var credModels []models.BankCredentialModel
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at ASC").
		Find(&credModels).Error; err != nil {
		return nil, err
	}
	creds := make([]*boleto.Credential, len(credModels))
	for i := range credModels {
		creds[i] = credModels[i].ToDomain()
	}
	return creds, nil
}

// Save creates or updates a credential. The token refresh path goes through
// here to persist the cached access token.
func (r *GormCredentialRepository) Save(ctx context.Context, cred *boleto.Credential) error {
	model := &models.BankCredentialModel{}
	model.FromDomain(cred)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormCredentialRepository implements boleto.CredentialRepository
var _ boleto.CredentialRepository = (*GormCredentialRepository)(nil)
