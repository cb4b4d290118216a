package contract

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/imobia/backend/internal/domain/shared"
)

// ItemKind classifies a billing line item configured on a lease contract.
type ItemKind string

const (
	ItemKindRent     ItemKind = "ALUGUEL"
	ItemKindTax      ItemKind = "IPTU"
	ItemKindCondoFee ItemKind = "CONDOMINIO"
	ItemKindAdminFee ItemKind = "TAXA_ADMINISTRACAO"
	ItemKindOther    ItemKind = "OUTROS"
)

// AmountKind tells whether a billing item carries a fixed amount or a
// percentage of the contract base rent.
type AmountKind string

const (
	AmountKindFixed   AmountKind = "FIXO"
	AmountKindPercent AmountKind = "PERCENTUAL"
)

// BillingItem is one configured charge on a contract (rent, property tax,
// condo fee, administration fee or anything else the agency bills monthly).
type BillingItem struct {
	ID          uuid.UUID
	ContractID  uuid.UUID
	Kind        ItemKind
	Description string
	Amount      decimal.Decimal
	AmountKind  AmountKind
	Active      bool
}

// EffectiveValue resolves the item against the contract base rent.
// Percentage items are computed over the base; fixed items are returned as-is.
func (i BillingItem) EffectiveValue(baseRent decimal.Decimal) decimal.Decimal {
	if i.AmountKind == AmountKindPercent {
		return baseRent.Mul(i.Amount).Div(decimal.NewFromInt(100))
	}
	return i.Amount
}

// Contract is a read-only projection of a lease contract, carrying only what
// the billing subsystem needs. The contract CRUD lives elsewhere.
type Contract struct {
	shared.BaseEntity
	Code        string
	PropertyID  uuid.UUID
	PayerID     *uuid.UUID // the renter who pays the monthly invoice
	BaseValue   decimal.Decimal
	DueDay      int // day-of-month the rent is due
	LeadDays    int // how many days before due date auto billing may run
	AutoBilling bool
	Active      bool
	StartDate   time.Time
	EndDate     *time.Time
	Items       []BillingItem
}

// ActiveItems returns the billing items currently enabled on the contract.
func (c *Contract) ActiveItems() []BillingItem {
	items := make([]BillingItem, 0, len(c.Items))
	for _, it := range c.Items {
		if it.Active {
			items = append(items, it)
		}
	}
	return items
}

// Billable reports whether the automatic billing pass should consider this
// contract at all.
func (c *Contract) Billable() bool {
	return c.Active && c.AutoBilling && c.PayerID != nil
}

// EffectiveDueDay returns the configured due day, defaulting to 10 when the
// contract was saved without one (legacy rows).
func (c *Contract) EffectiveDueDay() int {
	if c.DueDay < 1 || c.DueDay > 31 {
		return 10
	}
	return c.DueDay
}
