package boleto

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/imobia/backend/internal/domain/shared"
)

// Status is the local lifecycle state of a bank slip.
//
// PENDING and ERROR are the only states a registration may be attempted
// from. REGISTERED is terminal with respect to creation; PAID and SETTLED
// are terminal outright.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusRegistered Status = "REGISTERED"
	StatusPaid       Status = "PAID"
	StatusSettled    Status = "SETTLED"
	StatusProtested  Status = "PROTESTED"
	StatusOverdue    Status = "OVERDUE"
	StatusError      Status = "ERROR"
)

// Discount, interest and penalty kinds use the bank's wire vocabulary since
// they are sent verbatim in the registration payload.
type DiscountKind string

const (
	DiscountExempt       DiscountKind = "ISENTO"
	DiscountValueFixed   DiscountKind = "VALOR_DATA_FIXA"
	DiscountPercentFixed DiscountKind = "PERCENTUAL_DATA_FIXA"
)

type InterestKind string

const (
	InterestExempt       InterestKind = "ISENTO"
	InterestValuePerDay  InterestKind = "VALOR_DIA"
	InterestPercentMonth InterestKind = "PERCENTUAL_MES"
)

type PenaltyKind string

const (
	PenaltyExempt  PenaltyKind = "ISENTO"
	PenaltyFixed   PenaltyKind = "VALOR_FIXO"
	PenaltyPercent PenaltyKind = "PERCENTUAL"
)

// Boleto is a bank-registered payment instrument. One row per registration
// attempt sequence; re-registration reuses the row and bumps Attempts.
type Boleto struct {
	shared.BaseEntity
	CredentialID uuid.UUID
	PayerID      uuid.UUID
	InvoiceID    *uuid.UUID
	PropertyID   *uuid.UUID

	NossoNumero string // our 20-digit instrument number (covenant + sequence)
	SeuNumero   string // free reference, usually the invoice id

	FaceValue     decimal.Decimal
	DiscountValue decimal.Decimal
	PenaltyValue  decimal.Decimal
	InterestValue decimal.Decimal

	DiscountKind DiscountKind
	PenaltyKind  PenaltyKind
	InterestKind InterestKind

	IssueDate        time.Time
	DueDate          time.Time
	PaymentLimitDate *time.Time
	DiscountDate     *time.Time
	PenaltyDate      *time.Time

	PayerMessage string

	Status        Status
	BankSlipID    string // id assigned by the bank on registration
	BarCode       string
	DigitableLine string
	PixTxID       string
	PixEmv        string
	Covenant      string

	Attempts  int
	LastError string

	RegisteredAt *time.Time
	PaidAt       *time.Time
	PaidValue    *decimal.Decimal
	SettledAt    *time.Time
	SettleReason string
}

// New builds a PENDING boleto ready for registration.
func New(credentialID, payerID uuid.UUID, nossoNumero string, faceValue decimal.Decimal, issueDate, dueDate time.Time) *Boleto {
	return &Boleto{
		BaseEntity:   shared.NewBaseEntity(),
		CredentialID: credentialID,
		PayerID:      payerID,
		NossoNumero:  nossoNumero,
		FaceValue:    faceValue,
		IssueDate:    issueDate,
		DueDate:      dueDate,
		DiscountKind: DiscountExempt,
		PenaltyKind:  PenaltyExempt,
		InterestKind: InterestExempt,
		Status:       StatusPending,
	}
}

// IsRegistered reports whether the instrument ever reached the bank:
// everything except PENDING and ERROR.
func (b *Boleto) IsRegistered() bool {
	return b.Status != StatusPending && b.Status != StatusError
}

// CanRegister gates the register operation to PENDING and ERROR.
func (b *Boleto) CanRegister() bool {
	return b.Status == StatusPending || b.Status == StatusError
}

// IsPaid reports a terminal paid state.
func (b *Boleto) IsPaid() bool {
	return b.Status == StatusPaid
}

// IsOverdue does the local due-date check, used both for reporting and as
// the guard on the bank's VENCIDO signal.
func (b *Boleto) IsOverdue(now time.Time) bool {
	if b.Status == StatusPaid || b.Status == StatusSettled {
		return false
	}
	due := time.Date(b.DueDate.Year(), b.DueDate.Month(), b.DueDate.Day(), 23, 59, 59, 0, b.DueDate.Location())
	return now.After(due)
}

// RegistrationData carries the fields the bank returns on a successful
// registration.
type RegistrationData struct {
	BankSlipID    string
	BarCode       string
	DigitableLine string
	PixTxID       string
	PixEmv        string
}

// RecordRegistration applies a successful registration response.
func (b *Boleto) RecordRegistration(data RegistrationData, covenant string, at time.Time) {
	b.Status = StatusRegistered
	b.BankSlipID = data.BankSlipID
	b.BarCode = data.BarCode
	b.DigitableLine = data.DigitableLine
	b.PixTxID = data.PixTxID
	b.PixEmv = data.PixEmv
	b.Covenant = covenant
	b.RegisteredAt = &at
	b.LastError = ""
	b.Attempts++
}

// RecordRegistrationFailure applies a rejected or failed registration.
func (b *Boleto) RecordRegistrationFailure(message string) {
	b.Status = StatusError
	b.LastError = message
	b.Attempts++
}

// ApplyBankStatus maps the bank's query vocabulary onto the local state.
// VENCIDO is accepted only when the local due-date check agrees; the bank
// status may be computed against a skewed clock and must not move a current
// instrument to OVERDUE.
func (b *Boleto) ApplyBankStatus(bankStatus string, paymentDate *time.Time, paidValue *decimal.Decimal, now time.Time) {
	switch bankStatus {
	case "PAGO", "LIQUIDADO":
		b.Status = StatusPaid
		if paymentDate != nil {
			b.PaidAt = paymentDate
		}
		if paidValue != nil {
			b.PaidValue = paidValue
		}
	case "BAIXADO":
		b.Status = StatusSettled
		if b.SettledAt == nil {
			b.SettledAt = &now
		}
	case "PROTESTADO":
		b.Status = StatusProtested
	case "VENCIDO":
		if b.IsOverdue(now) {
			b.Status = StatusOverdue
		}
	}
}

// BackfillPaymentCodes fills bar code and digitable line returned by a query
// when the local copy is missing them. Existing values are never overwritten.
func (b *Boleto) BackfillPaymentCodes(barCode, digitableLine string) {
	if b.BarCode == "" && barCode != "" {
		b.BarCode = barCode
	}
	if b.DigitableLine == "" && digitableLine != "" {
		b.DigitableLine = digitableLine
	}
}

// CanSettle gates the settle (baixa) operation: a paid instrument cannot be
// cancelled and an unregistered one has nothing to cancel at the bank.
func (b *Boleto) CanSettle() error {
	if b.BankSlipID == "" {
		return shared.NewDomainError("NOT_REGISTERED", "Boleto has no bank id to settle")
	}
	if b.IsPaid() {
		return shared.NewDomainError("ALREADY_PAID", "A paid boleto cannot be settled")
	}
	return nil
}

// RecordSettlement applies a successful settle response.
func (b *Boleto) RecordSettlement(reason string, at time.Time) {
	b.Status = StatusSettled
	b.SettledAt = &at
	b.SettleReason = reason
}

const (
	covenantWidth = 7
	sequenceWidth = 13
)

// FormatNossoNumero builds the bank-mandated instrument number: 7-digit
// zero-padded covenant followed by a 13-digit zero-padded sequence.
func FormatNossoNumero(covenant string, sequence int64) string {
	if len(covenant) > covenantWidth {
		covenant = covenant[:covenantWidth]
	}
	return fmt.Sprintf("%0*s%0*d", covenantWidth, covenant, sequenceWidth, sequence)
}

// SequenceFromNossoNumero extracts the numeric sequence from a previously
// issued nosso número. Returns 0 for an empty or malformed value so the next
// sequence starts at 1.
func SequenceFromNossoNumero(nossoNumero string) int64 {
	if len(nossoNumero) <= covenantWidth {
		return 0
	}
	seq, err := strconv.ParseInt(nossoNumero[covenantWidth:], 10, 64)
	if err != nil {
		return 0
	}
	return seq
}
