package contract

import (
	"context"

	"github.com/google/uuid"
)

// Repository reads lease contract projections. The billing subsystem never
// writes contracts.
type Repository interface {
	// FindByID retrieves a contract with its billing items.
	FindByID(ctx context.Context, id uuid.UUID) (*Contract, error)

	// FindForAutoBilling retrieves every active contract with automatic
	// billing enabled and a payer assigned.
	FindForAutoBilling(ctx context.Context) ([]*Contract, error)
}

// PayerRepository reads payer projections. Addresses are returned ordered by
// sequence ascending so PrimaryAddress is deterministic.
type PayerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payer, error)
}
