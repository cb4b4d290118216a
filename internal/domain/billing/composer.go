package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/imobia/backend/internal/domain/contract"
)

// ItemDetail is one resolved billing line, preserved verbatim on the invoice
// for audit and display.
type ItemDetail struct {
	Kind        contract.ItemKind `json:"kind"`
	Description string            `json:"description"`
	Value       decimal.Decimal   `json:"value"`
}

// ItemDetails is a slice of ItemDetail that implements GORM Scanner/Valuer
// for JSONB storage.
type ItemDetails []ItemDetail

// Value implements driver.Valuer for JSONB storage
func (d ItemDetails) Value() (driver.Value, error) {
	if d == nil {
		return "[]", nil
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner for JSONB reads
func (d *ItemDetails) Scan(value interface{}) error {
	if value == nil {
		*d = ItemDetails{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan ItemDetails: unsupported type")
	}

	if len(bytes) == 0 {
		*d = ItemDetails{}
		return nil
	}

	return json.Unmarshal(bytes, d)
}

// Amounts is the composed invoice value, bucketed into the five reporting
// categories plus the itemized breakdown that produced them.
type Amounts struct {
	Rent     decimal.Decimal
	Tax      decimal.Decimal
	CondoFee decimal.Decimal
	AdminFee decimal.Decimal
	Other    decimal.Decimal
	Total    decimal.Decimal
	Items    ItemDetails
}

// ComposeAmounts resolves a contract's active billing items into bucketed
// invoice amounts. A contract with no configured items is still billable: it
// falls back to a single rent item worth the contract base value.
func ComposeAmounts(c *contract.Contract) Amounts {
	base := c.BaseValue
	items := c.ActiveItems()

	if len(items) == 0 {
		return Amounts{
			Rent:  base,
			Total: base,
			Items: []ItemDetail{{
				Kind:        contract.ItemKindRent,
				Description: "Aluguel",
				Value:       base,
			}},
		}
	}

	var a Amounts
	a.Items = make([]ItemDetail, 0, len(items))
	for _, item := range items {
		value := item.EffectiveValue(base)

		switch item.Kind {
		case contract.ItemKindRent:
			a.Rent = a.Rent.Add(value)
		case contract.ItemKindTax:
			a.Tax = a.Tax.Add(value)
		case contract.ItemKindCondoFee:
			a.CondoFee = a.CondoFee.Add(value)
		case contract.ItemKindAdminFee:
			a.AdminFee = a.AdminFee.Add(value)
		default:
			a.Other = a.Other.Add(value)
		}

		a.Items = append(a.Items, ItemDetail{
			Kind:        item.Kind,
			Description: item.Description,
			Value:       value,
		})
	}

	a.Total = a.Rent.Add(a.Tax).Add(a.CondoFee).Add(a.AdminFee).Add(a.Other)
	return a
}
