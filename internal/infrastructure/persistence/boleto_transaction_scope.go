package persistence

import (
	"context"

	"gorm.io/gorm"

	appboleto "github.com/imobia/backend/internal/application/boleto"
	"github.com/imobia/backend/internal/domain/boleto"
)

// GormBoletoTransactionScope implements the boleto service's TransactionScope
// using GORM transactions. The audit log append and the state mutation of one
// bank call commit or roll back together.
type GormBoletoTransactionScope struct {
	db *gorm.DB
}

// NewGormBoletoTransactionScope creates a new GormBoletoTransactionScope.
func NewGormBoletoTransactionScope(db *gorm.DB) *GormBoletoTransactionScope {
	return &GormBoletoTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormBoletoTransactionScope) Execute(ctx context.Context, fn func(repos appboleto.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormBoletoTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormBoletoTransactionalRepositories provides transaction-bound repositories.
type gormBoletoTransactionalRepositories struct {
	tx *gorm.DB
}

// BoletoRepo returns the boleto repository scoped to the current transaction.
func (r *gormBoletoTransactionalRepositories) BoletoRepo() boleto.Repository {
	return NewGormBoletoRepository(r.tx)
}

// LogRepo returns the operation log repository scoped to the current transaction.
func (r *gormBoletoTransactionalRepositories) LogRepo() boleto.OperationLogRepository {
	return NewGormOperationLogRepository(r.tx)
}

// Ensure GormBoletoTransactionScope implements TransactionScope
var _ appboleto.TransactionScope = (*GormBoletoTransactionScope)(nil)

// Ensure gormBoletoTransactionalRepositories implements TransactionalRepositories
var _ appboleto.TransactionalRepositories = (*gormBoletoTransactionalRepositories)(nil)
