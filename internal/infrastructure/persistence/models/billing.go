package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/imobia/backend/internal/domain/billing"
)

// InvoiceModel is the persistence model for the monthly invoice. The unique
// index on (contract_id, competencia) is the storage-level guarantee behind
// the one-invoice-per-month rule.
type InvoiceModel struct {
	BaseModel
	ContractID  uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_invoice_contract_competencia,priority:1"`
	Competencia string              `gorm:"type:varchar(7);not null;uniqueIndex:idx_invoice_contract_competencia,priority:2"`
	PeriodStart time.Time           `gorm:"not null"`
	PeriodEnd   time.Time           `gorm:"not null"`
	DueDate     time.Time           `gorm:"not null;index"`
	Rent        decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	Tax         decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	CondoFee    decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	AdminFee    decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	Other       decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	Total       decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	Items       billing.ItemDetails `gorm:"type:jsonb;default:'[]'"`

	Status   billing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	BoletoID *uuid.UUID            `gorm:"type:uuid;index"`

	DeliveryKind    *billing.DeliveryKind `gorm:"type:varchar(20)"`
	DeliveredAt     *time.Time
	DeliveryAddress string `gorm:"type:varchar(200)"`
	ManualHold      bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	return &billing.Invoice{
		BaseEntity:      m.BaseModel.ToDomain(),
		ContractID:      m.ContractID,
		Competencia:     billing.Competencia(m.Competencia),
		PeriodStart:     m.PeriodStart,
		PeriodEnd:       m.PeriodEnd,
		DueDate:         m.DueDate,
		Rent:            m.Rent,
		Tax:             m.Tax,
		CondoFee:        m.CondoFee,
		AdminFee:        m.AdminFee,
		Other:           m.Other,
		Total:           m.Total,
		Items:           m.Items,
		Status:          m.Status,
		BoletoID:        m.BoletoID,
		DeliveryKind:    m.DeliveryKind,
		DeliveredAt:     m.DeliveredAt,
		DeliveryAddress: m.DeliveryAddress,
		ManualHold:      m.ManualHold,
	}
}

// FromDomain populates the persistence model from a domain Invoice.
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainBaseEntity(inv.BaseEntity)
	m.ContractID = inv.ContractID
	m.Competencia = inv.Competencia.String()
	m.PeriodStart = inv.PeriodStart
	m.PeriodEnd = inv.PeriodEnd
	m.DueDate = inv.DueDate
	m.Rent = inv.Rent
	m.Tax = inv.Tax
	m.CondoFee = inv.CondoFee
	m.AdminFee = inv.AdminFee
	m.Other = inv.Other
	m.Total = inv.Total
	m.Items = inv.Items
	m.Status = inv.Status
	m.BoletoID = inv.BoletoID
	m.DeliveryKind = inv.DeliveryKind
	m.DeliveredAt = inv.DeliveredAt
	m.DeliveryAddress = inv.DeliveryAddress
	m.ManualHold = inv.ManualHold
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}
