package boleto

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/imobia/backend/internal/domain/contract"
)

// CallTrace carries the wire-level record of one gateway call, persisted
// verbatim into the operation log.
type CallTrace struct {
	RequestPayload  string
	ResponsePayload string
	HTTPStatus      int
}

// RegisterResult is the outcome of a registration call. Success is false for
// a bank rejection (structured error body); transport and configuration
// failures are returned as errors instead and carry no trace payloads.
type RegisterResult struct {
	CallTrace
	Success      bool
	Data         RegistrationData
	ErrorMessage string
}

// QueryResult is the outcome of a status query.
type QueryResult struct {
	CallTrace
	Success       bool
	BankStatus    string
	PaymentDate   *time.Time
	PaidValue     *decimal.Decimal
	BarCode       string
	DigitableLine string
	ErrorMessage  string
}

// SettleResult is the outcome of a settlement (baixa) request.
type SettleResult struct {
	CallTrace
	Success      bool
	ErrorMessage string
}

// Gateway is the bank-side collaborator for the boleto lifecycle. The
// implementation owns authentication, the mTLS channel, payload building and
// error-envelope parsing; callers own the state machine and the audit log.
type Gateway interface {
	Register(ctx context.Context, cred *Credential, b *Boleto, payer *contract.Payer) (*RegisterResult, error)
	Query(ctx context.Context, cred *Credential, b *Boleto) (*QueryResult, error)
	Settle(ctx context.Context, cred *Credential, b *Boleto, reason string) (*SettleResult, error)
}
