package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/imobia/backend/internal/domain/billing"
	"github.com/imobia/backend/internal/domain/shared"
	"github.com/imobia/backend/internal/infrastructure/persistence/models"
)

// GormInvoiceRepository implements billing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// Create inserts a new invoice. A uniqueness violation on
// (contract, competência) surfaces as shared.ErrAlreadyExists so concurrent
// billing passes can reuse the winning row.
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Save updates an existing invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByContractAndCompetencia finds the single invoice of a contract month
func (r *GormInvoiceRepository) FindByContractAndCompetencia(ctx context.Context, contractID uuid.UUID, competencia billing.Competencia) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("contract_id = ? AND competencia = ?", contractID, competencia.String()).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds invoices with filtering and pagination
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter billing.InvoiceFilter) ([]*billing.Invoice, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{})
	query = applyInvoiceFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var invoiceModels []models.InvoiceModel
	if err := query.Order("due_date DESC, created_at DESC").Find(&invoiceModels).Error; err != nil {
		return nil, 0, err
	}

	invoices := make([]*billing.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		invoices[i] = invoiceModels[i].ToDomain()
	}
	return invoices, total, nil
}

// Statistics aggregates invoice counts, optionally restricted to one due date
func (r *GormInvoiceRepository) Statistics(ctx context.Context, dueDate *time.Time) (billing.InvoiceStatistics, error) {
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{})
	if dueDate != nil {
		day := time.Date(dueDate.Year(), dueDate.Month(), dueDate.Day(), 0, 0, 0, 0, dueDate.Location())
		query = query.Where("due_date >= ? AND due_date < ?", day, day.AddDate(0, 0, 1))
	}

	var rows []struct {
		Status billing.InvoiceStatus
		Count  int64
	}
	if err := query.Select("status, COUNT(*) as count").Group("status").Scan(&rows).Error; err != nil {
		return billing.InvoiceStatistics{}, err
	}

	var stats billing.InvoiceStatistics
	for _, row := range rows {
		stats.Total += row.Count
		switch row.Status {
		case billing.InvoiceStatusPending:
			stats.Pending = row.Count
		case billing.InvoiceStatusSlipIssued:
			stats.Issued = row.Count
		case billing.InvoiceStatusDelivered:
			stats.Delivered = row.Count
		case billing.InvoiceStatusPaid:
			stats.Paid = row.Count
		case billing.InvoiceStatusCancelled:
			stats.Cancelled = row.Count
		}
	}
	return stats, nil
}

func applyInvoiceFilter(query *gorm.DB, filter billing.InvoiceFilter) *gorm.DB {
	if filter.ContractID != nil {
		query = query.Where("contract_id = ?", *filter.ContractID)
	}
	if filter.Competencia != nil {
		query = query.Where("competencia = ?", filter.Competencia.String())
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	return query
}

// isUniqueViolation recognizes unique-constraint errors from the drivers in
// use (postgres in production, sqlite in tests).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint")
}

// Ensure GormInvoiceRepository implements billing.InvoiceRepository
var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
