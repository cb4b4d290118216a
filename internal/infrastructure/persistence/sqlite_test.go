package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/imobia/backend/internal/infrastructure/persistence/models"
)

// setupTestDB creates an in-memory SQLite database with the billing schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.ContractModel{},
		&models.BillingItemModel{},
		&models.PayerModel{},
		&models.PayerDocumentModel{},
		&models.PayerAddressModel{},
		&models.InvoiceModel{},
		&models.BoletoModel{},
		&models.BoletoOperationLogModel{},
		&models.BankCredentialModel{},
	)
	require.NoError(t, err)

	return db
}
