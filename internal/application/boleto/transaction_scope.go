package boleto

import (
	"context"

	"github.com/imobia/backend/internal/domain/boleto"
)

// TransactionalRepositories exposes the repositories bound to one database
// transaction. The slip mutation and its audit log row must commit together.
type TransactionalRepositories interface {
	BoletoRepo() boleto.Repository
	LogRepo() boleto.OperationLogRepository
}

// TransactionScope provides atomic execution of repository operations.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}
