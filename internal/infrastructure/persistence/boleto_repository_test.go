package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imobia/backend/internal/domain/boleto"
	"github.com/imobia/backend/internal/domain/shared"
)

func testBoleto(credentialID uuid.UUID, sequence int64) *boleto.Boleto {
	nosso := boleto.FormatNossoNumero("1234567", sequence)
	return boleto.New(
		credentialID,
		uuid.New(),
		nosso,
		decimal.NewFromFloat(1500.50),
		time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	)
}

func TestGormBoletoRepository_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBoletoRepository(db)
	ctx := context.Background()

	credID := uuid.New()
	b := testBoleto(credID, 1)
	require.NoError(t, repo.Create(ctx, b))

	found, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.NossoNumero, found.NossoNumero)
	assert.Equal(t, boleto.StatusPending, found.Status)
	assert.True(t, found.FaceValue.Equal(decimal.NewFromFloat(1500.50)))

	t.Run("not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("duplicate nosso número on same credential rejected", func(t *testing.T) {
		err := repo.Create(ctx, testBoleto(credID, 1))
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})
}

func TestGormBoletoRepository_LastNossoNumero(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBoletoRepository(db)
	ctx := context.Background()

	credID := uuid.New()

	t.Run("empty when credential has no boletos", func(t *testing.T) {
		last, err := repo.LastNossoNumero(ctx, credID)
		require.NoError(t, err)
		assert.Empty(t, last)
	})

	for _, seq := range []int64{1, 3, 2} {
		require.NoError(t, repo.Create(ctx, testBoleto(credID, seq)))
	}
	// Another credential's sequence must not leak in.
	require.NoError(t, repo.Create(ctx, testBoleto(uuid.New(), 99)))

	last, err := repo.LastNossoNumero(ctx, credID)
	require.NoError(t, err)
	assert.Equal(t, boleto.FormatNossoNumero("1234567", 3), last)
	assert.EqualValues(t, 3, boleto.SequenceFromNossoNumero(last))
}

func TestGormBoletoRepository_FindRegisteredForStatusUpdate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBoletoRepository(db)
	ctx := context.Background()

	credID := uuid.New()

	older := testBoleto(credID, 1)
	older.RecordRegistration(boleto.RegistrationData{BankSlipID: "bank-1"}, "1234567",
		time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Create(ctx, older))

	newer := testBoleto(credID, 2)
	newer.RecordRegistration(boleto.RegistrationData{BankSlipID: "bank-2"}, "1234567",
		time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Create(ctx, newer))

	require.NoError(t, repo.Create(ctx, testBoleto(credID, 3))) // still pending

	eligible, err := repo.FindRegisteredForStatusUpdate(ctx, 10)
	require.NoError(t, err)
	require.Len(t, eligible, 2)
	assert.Equal(t, older.ID, eligible[0].ID, "oldest registration first")

	limited, err := repo.FindRegisteredForStatusUpdate(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestGormBoletoRepository_FindAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBoletoRepository(db)
	ctx := context.Background()

	credID := uuid.New()
	paid := testBoleto(credID, 1)
	paid.RecordRegistration(boleto.RegistrationData{BankSlipID: "bank-1"}, "1234567", time.Now())
	paidValue := decimal.NewFromFloat(1500.50)
	paidAt := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	paid.ApplyBankStatus("PAGO", &paidAt, &paidValue, time.Now())
	require.NoError(t, repo.Create(ctx, paid))

	require.NoError(t, repo.Create(ctx, testBoleto(credID, 2)))

	t.Run("filters by status", func(t *testing.T) {
		found, total, err := repo.FindAll(ctx, boleto.Filter{
			Statuses: []boleto.Status{boleto.StatusPaid},
		})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, found, 1)
		assert.Equal(t, paid.ID, found[0].ID)
		require.NotNil(t, found[0].PaidValue)
		assert.True(t, found[0].PaidValue.Equal(paidValue))
	})

	t.Run("filters by nosso número", func(t *testing.T) {
		found, _, err := repo.FindAll(ctx, boleto.Filter{
			NossoNumero: boleto.FormatNossoNumero("1234567", 2),
		})
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})

	t.Run("filters by credential", func(t *testing.T) {
		other := uuid.New()
		found, total, err := repo.FindAll(ctx, boleto.Filter{CredentialID: &other})
		require.NoError(t, err)
		assert.EqualValues(t, 0, total)
		assert.Empty(t, found)
	})
}

func TestGormBoletoRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBoletoRepository(db)
	ctx := context.Background()

	b := testBoleto(uuid.New(), 1)
	require.NoError(t, repo.Create(ctx, b))
	require.NoError(t, repo.Delete(ctx, b.ID))

	_, err := repo.FindByID(ctx, b.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, b.ID), shared.ErrNotFound)
}

func TestGormBoletoRepository_Statistics(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBoletoRepository(db)
	ctx := context.Background()

	credID := uuid.New()

	registered := testBoleto(credID, 1)
	registered.RecordRegistration(boleto.RegistrationData{BankSlipID: "bank-1"}, "1234567", time.Now())
	require.NoError(t, repo.Create(ctx, registered))

	paid := testBoleto(credID, 2)
	paid.RecordRegistration(boleto.RegistrationData{BankSlipID: "bank-2"}, "1234567", time.Now())
	paidValue := decimal.NewFromFloat(1500.50)
	paid.ApplyBankStatus("LIQUIDADO", nil, &paidValue, time.Now())
	require.NoError(t, repo.Create(ctx, paid))

	require.NoError(t, repo.Create(ctx, testBoleto(credID, 3)))

	stats, err := repo.Statistics(ctx, &credID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Total)
	assert.EqualValues(t, 1, stats.Pending)
	assert.EqualValues(t, 1, stats.Registered)
	assert.EqualValues(t, 1, stats.Paid)
	assert.InDelta(t, 3001.0, stats.OpenValue, 0.01, "pending and registered face values")
	assert.InDelta(t, 1500.50, stats.PaidValue, 0.01)
}
