package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInvoice(t *testing.T) *Invoice {
	t.Helper()
	period, err := ComputePeriod(10, "2026-04")
	require.NoError(t, err)
	return NewInvoice(uuid.New(), "2026-04", period, Amounts{
		Rent:  decimal.NewFromInt(2000),
		Total: decimal.NewFromInt(2000),
	})
}

func TestInvoiceLifecycle(t *testing.T) {
	inv := testInvoice(t)
	assert.Equal(t, InvoiceStatusPending, inv.Status)
	assert.False(t, inv.SkippedByAutoRoutine())

	boletoID := uuid.New()
	inv.AttachBoleto(boletoID)
	assert.Equal(t, InvoiceStatusSlipIssued, inv.Status)
	assert.Equal(t, &boletoID, inv.BoletoID)
	assert.False(t, inv.SkippedByAutoRoutine(), "slip issued but not delivered yet")

	inv.MarkDelivered(DeliveryKindAutomatic, "payer@example.com", time.Now())
	assert.True(t, inv.IsDelivered())
	assert.True(t, inv.SkippedByAutoRoutine())
	assert.False(t, inv.ManualHold)
}

func TestInvoiceManualDeliveryHold(t *testing.T) {
	inv := testInvoice(t)
	inv.MarkDelivered(DeliveryKindManual, "balcão", time.Now())
	assert.True(t, inv.ManualHold)
	assert.True(t, inv.SkippedByAutoRoutine())
}

func TestInvoiceCancel(t *testing.T) {
	inv := testInvoice(t)
	require.NoError(t, inv.Cancel())
	assert.Equal(t, InvoiceStatusCancelled, inv.Status)
	assert.True(t, inv.SkippedByAutoRoutine())
	assert.Error(t, inv.Cancel(), "already cancelled")

	paid := testInvoice(t)
	paid.Status = InvoiceStatusPaid
	assert.Error(t, paid.Cancel(), "paid invoices cannot be cancelled")
}
