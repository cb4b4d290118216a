package contract

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBillingDocument(t *testing.T) {
	t.Run("cpf stripped to digits", func(t *testing.T) {
		p := &Payer{ID: uuid.New(), Documents: []Document{
			{Kind: DocumentKindCPF, Number: "123.456.789-09"},
		}}
		number, kind := p.BillingDocument()
		assert.Equal(t, "12345678909", number)
		assert.Equal(t, DocumentKindCPF, kind)
	})

	t.Run("cnpj stripped to digits", func(t *testing.T) {
		p := &Payer{ID: uuid.New(), Documents: []Document{
			{Kind: DocumentKindCNPJ, Number: "12.345.678/0001-95"},
		}}
		number, kind := p.BillingDocument()
		assert.Equal(t, "12345678000195", number)
		assert.Equal(t, DocumentKindCNPJ, kind)
	})

	t.Run("no document falls back to zeroed cpf", func(t *testing.T) {
		p := &Payer{ID: uuid.New()}
		number, kind := p.BillingDocument()
		assert.Equal(t, "00000000000", number)
		assert.Equal(t, DocumentKindCPF, kind)
	})
}

func TestPrimaryAddress(t *testing.T) {
	p := &Payer{ID: uuid.New(), Addresses: []Address{
		{Seq: 5, Street: "Rua B"},
		{Seq: 2, Street: "Rua A"},
		{Seq: 9, Street: "Rua C"},
	}}
	addr := p.PrimaryAddress()
	require.NotNil(t, addr)
	assert.Equal(t, "Rua A", addr.Street)

	empty := &Payer{ID: uuid.New()}
	assert.Nil(t, empty.PrimaryAddress())
}

func TestContractBillable(t *testing.T) {
	payerID := uuid.New()
	c := &Contract{Active: true, AutoBilling: true, PayerID: &payerID}
	assert.True(t, c.Billable())

	c.PayerID = nil
	assert.False(t, c.Billable(), "no payer configured")

	c.PayerID = &payerID
	c.AutoBilling = false
	assert.False(t, c.Billable())

	c.AutoBilling = true
	c.Active = false
	assert.False(t, c.Billable())
}

func TestEffectiveDueDay(t *testing.T) {
	assert.Equal(t, 10, (&Contract{}).EffectiveDueDay())
	assert.Equal(t, 10, (&Contract{DueDay: 40}).EffectiveDueDay())
	assert.Equal(t, 5, (&Contract{DueDay: 5}).EffectiveDueDay())
}
