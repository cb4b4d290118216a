package boleto

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter defines filtering options for boleto listings.
type Filter struct {
	Statuses     []Status
	CredentialID *uuid.UUID
	PayerID      *uuid.UUID
	PropertyID   *uuid.UUID
	NossoNumero  string
	SeuNumero    string
	DueFrom      *time.Time
	DueTo        *time.Time
	Page         int
	PageSize     int
}

// Statistics aggregates boleto counts and values per status.
type Statistics struct {
	Total      int64
	Pending    int64
	Registered int64
	Paid       int64
	Overdue    int64
	Settled    int64
	Errors     int64
	OpenValue  float64
	PaidValue  float64
}

// Repository persists boletos.
type Repository interface {
	Create(ctx context.Context, b *Boleto) error
	Save(ctx context.Context, b *Boleto) error
	FindByID(ctx context.Context, id uuid.UUID) (*Boleto, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Boleto, error)
	FindAll(ctx context.Context, filter Filter) ([]*Boleto, int64, error)

	// LastNossoNumero returns the highest nosso número issued for a
	// credential, or empty when none exists yet.
	LastNossoNumero(ctx context.Context, credentialID uuid.UUID) (string, error)

	// FindRegisteredForStatusUpdate returns REGISTERED boletos eligible for
	// a periodic status query pass.
	FindRegisteredForStatusUpdate(ctx context.Context, limit int) ([]*Boleto, error)

	// Delete removes a boleto row. Callers must only delete PENDING ones.
	Delete(ctx context.Context, id uuid.UUID) error

	Statistics(ctx context.Context, credentialID *uuid.UUID) (Statistics, error)
}

// OperationLogRepository is append-only: the audit trail is never updated
// or deleted.
type OperationLogRepository interface {
	Append(ctx context.Context, log *OperationLog) error
	ListByBoleto(ctx context.Context, boletoID uuid.UUID) ([]*OperationLog, error)
}

// CredentialRepository persists bank API credentials.
type CredentialRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Credential, error)
	// FindDefault returns the first active credential (lowest creation
	// time), used when a contract does not pin one.
	FindDefault(ctx context.Context) (*Credential, error)
	FindAllActive(ctx context.Context) ([]*Credential, error)
	Save(ctx context.Context, cred *Credential) error
}
