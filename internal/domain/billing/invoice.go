package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/imobia/backend/internal/domain/shared"
)

// InvoiceStatus is the lifecycle state of a monthly invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending    InvoiceStatus = "PENDING"
	InvoiceStatusSlipIssued InvoiceStatus = "SLIP_ISSUED"
	InvoiceStatusDelivered  InvoiceStatus = "DELIVERED"
	InvoiceStatusPaid       InvoiceStatus = "PAID"
	InvoiceStatusCancelled  InvoiceStatus = "CANCELLED"
)

// DeliveryKind records how an invoice reached the payer.
type DeliveryKind string

const (
	DeliveryKindAutomatic DeliveryKind = "AUTOMATIC"
	DeliveryKindManual    DeliveryKind = "MANUAL"
)

// Invoice is one month's charge for a contract. At most one invoice may
// exist per (contract, competência); the storage layer enforces it.
type Invoice struct {
	shared.BaseEntity
	ContractID  uuid.UUID
	Competencia Competencia
	PeriodStart time.Time
	PeriodEnd   time.Time
	DueDate     time.Time

	Rent     decimal.Decimal
	Tax      decimal.Decimal
	CondoFee decimal.Decimal
	AdminFee decimal.Decimal
	Other    decimal.Decimal
	Total    decimal.Decimal
	Items    ItemDetails

	Status   InvoiceStatus
	BoletoID *uuid.UUID

	DeliveryKind    *DeliveryKind
	DeliveredAt     *time.Time
	DeliveryAddress string

	// ManualHold suppresses future automatic passes once a human has
	// intervened on this invoice.
	ManualHold bool
}

// NewInvoice builds a pending invoice for a contract and competência.
func NewInvoice(contractID uuid.UUID, competencia Competencia, period Period, amounts Amounts) *Invoice {
	return &Invoice{
		BaseEntity:  shared.NewBaseEntity(),
		ContractID:  contractID,
		Competencia: competencia,
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
		DueDate:     period.DueDate,
		Rent:        amounts.Rent,
		Tax:         amounts.Tax,
		CondoFee:    amounts.CondoFee,
		AdminFee:    amounts.AdminFee,
		Other:       amounts.Other,
		Total:       amounts.Total,
		Items:       amounts.Items,
		Status:      InvoiceStatusPending,
	}
}

// AttachBoleto links the registered settlement instrument to the invoice.
func (i *Invoice) AttachBoleto(boletoID uuid.UUID) {
	i.BoletoID = &boletoID
	i.Status = InvoiceStatusSlipIssued
}

// MarkDelivered records a successful delivery. Manual deliveries put the
// invoice on hold so the automatic routine leaves it alone afterwards.
func (i *Invoice) MarkDelivered(kind DeliveryKind, destination string, at time.Time) {
	i.Status = InvoiceStatusDelivered
	i.DeliveryKind = &kind
	i.DeliveredAt = &at
	i.DeliveryAddress = destination
	if kind == DeliveryKindManual {
		i.ManualHold = true
	}
}

// IsDelivered reports whether the invoice already reached the payer.
func (i *Invoice) IsDelivered() bool {
	return i.Status == InvoiceStatusDelivered || i.Status == InvoiceStatusPaid
}

// SkippedByAutoRoutine reports whether the automatic pass must ignore this
// invoice: already delivered, paid, cancelled, or held by a human.
func (i *Invoice) SkippedByAutoRoutine() bool {
	return i.IsDelivered() || i.Status == InvoiceStatusCancelled || i.ManualHold
}

// CanCancel limits cancellation to invoices that were not paid yet.
func (i *Invoice) CanCancel() bool {
	return i.Status != InvoiceStatusPaid && i.Status != InvoiceStatusCancelled
}

// Cancel moves the invoice to CANCELLED.
func (i *Invoice) Cancel() error {
	if !i.CanCancel() {
		return shared.ErrInvalidState
	}
	i.Status = InvoiceStatusCancelled
	return nil
}
