package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// InvoiceFilter defines filtering options for invoice listings.
type InvoiceFilter struct {
	ContractID  *uuid.UUID
	Competencia *Competencia
	Statuses    []InvoiceStatus
	Page        int
	PageSize    int
}

// InvoiceStatistics aggregates invoice counts and open value per status.
type InvoiceStatistics struct {
	Total     int64
	Pending   int64
	Issued    int64
	Delivered int64
	Paid      int64
	Cancelled int64
}

// InvoiceRepository persists invoices. Create must surface the storage-level
// uniqueness violation on (contract, competência) as shared.ErrAlreadyExists
// so callers can treat it as a benign "already exists, reuse it" signal.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *Invoice) error
	Save(ctx context.Context, invoice *Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByContractAndCompetencia(ctx context.Context, contractID uuid.UUID, competencia Competencia) (*Invoice, error)
	FindAll(ctx context.Context, filter InvoiceFilter) ([]*Invoice, int64, error)

	// Statistics aggregates invoices, optionally restricted to one due date.
	Statistics(ctx context.Context, dueDate *time.Time) (InvoiceStatistics, error)
}
