package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imobia/backend/internal/domain/boleto"
	"github.com/imobia/backend/internal/domain/shared"
)

func testCredential(description string, active bool, createdAt time.Time) *boleto.Credential {
	cred := &boleto.Credential{
		BaseEntity:   shared.NewBaseEntity(),
		Description:  description,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Covenant:     "1234567",
		BankNumber:   "033",
		Environment:  boleto.EnvironmentSandbox,
		Active:       active,
	}
	cred.CreatedAt = createdAt
	cred.UpdatedAt = createdAt
	return cred
}

func TestGormCredentialRepository_FindDefault(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCredentialRepository(db)
	ctx := context.Background()

	t.Run("not found when no active credential exists", func(t *testing.T) {
		_, err := repo.FindDefault(ctx)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	newer := testCredential("newer", true, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	older := testCredential("older", true, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	inactive := testCredential("inactive", false, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, newer))
	require.NoError(t, repo.Save(ctx, older))
	require.NoError(t, repo.Save(ctx, inactive))

	got, err := repo.FindDefault(ctx)
	require.NoError(t, err)
	assert.Equal(t, older.ID, got.ID, "oldest active credential wins, inactive ones never do")
}

func TestGormCredentialRepository_FindAllActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCredentialRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, testCredential("a", true, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))))
	require.NoError(t, repo.Save(ctx, testCredential("b", true, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))))
	require.NoError(t, repo.Save(ctx, testCredential("off", false, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))))

	creds, err := repo.FindAllActive(ctx)
	require.NoError(t, err)
	require.Len(t, creds, 2)
	assert.Equal(t, "a", creds[0].Description)
}

func TestGormCredentialRepository_SavePersistsToken(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCredentialRepository(db)
	ctx := context.Background()

	cred := testCredential("main", true, time.Now())
	require.NoError(t, repo.Save(ctx, cred))

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	cred.SetToken("fresh-token", 3600, now)
	require.NoError(t, repo.Save(ctx, cred))

	found, err := repo.FindByID(ctx, cred.ID)
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", found.AccessToken)
	require.NotNil(t, found.TokenExpiresAt)
	assert.True(t, found.TokenValid(now))
	assert.False(t, found.TokenValid(now.Add(56*time.Minute)), "inside the safety margin")
}
