package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeCompetencia(t *testing.T) {
	tests := []struct {
		name     string
		dueDay   int
		ref      time.Time
		expected Competencia
	}{
		{"before due day stays in month", 10, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), "2026-03"},
		{"on due day rolls forward", 10, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), "2026-04"},
		{"after due day rolls forward", 10, time.Date(2026, 3, 25, 0, 0, 0, 0, time.UTC), "2026-04"},
		{"december rolls into next year", 10, time.Date(2026, 12, 15, 0, 0, 0, 0, time.UTC), "2027-01"},
		{"due day 1 always rolls", 1, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "2026-04"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ComputeCompetencia(tt.dueDay, tt.ref))
		})
	}
}

func TestComputePeriod(t *testing.T) {
	t.Run("regular month", func(t *testing.T) {
		p, err := ComputePeriod(10, "2026-04")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), p.Start)
		assert.Equal(t, time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC), p.DueDate)
		assert.Equal(t, p.DueDate, p.End)
	})

	t.Run("due day clamped in short month", func(t *testing.T) {
		p, err := ComputePeriod(31, "2026-04")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC), p.DueDate)
		// previous month March has 31 days, so start is April 1st
		assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), p.Start)
	})

	t.Run("february clamp", func(t *testing.T) {
		p, err := ComputePeriod(30, "2026-02")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), p.DueDate)
		assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), p.Start)
	})

	t.Run("january reaches back into previous year", func(t *testing.T) {
		p, err := ComputePeriod(10, "2026-01")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 12, 11, 0, 0, 0, 0, time.UTC), p.Start)
		assert.Equal(t, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), p.DueDate)
	})

	t.Run("malformed competencia", func(t *testing.T) {
		_, err := ComputePeriod(10, "not-a-month")
		assert.Error(t, err)
		_, err = ComputePeriod(10, "2026-13")
		assert.Error(t, err)
	})
}

func TestCompetenciaParse(t *testing.T) {
	year, month, err := Competencia("2026-07").Parse()
	require.NoError(t, err)
	assert.Equal(t, 2026, year)
	assert.Equal(t, time.July, month)

	assert.Equal(t, Competencia("2026-07"), NewCompetencia(2026, time.July))
}

func TestCompetenciaDisplayPtBR(t *testing.T) {
	assert.Equal(t, "Março/2026", Competencia("2026-03").DisplayPtBR())
	assert.Equal(t, "Janeiro/2027", Competencia("2027-01").DisplayPtBR())
	assert.Equal(t, "garbage", Competencia("garbage").DisplayPtBR())
}
