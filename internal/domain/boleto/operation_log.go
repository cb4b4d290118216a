package boleto

import (
	"github.com/google/uuid"

	"github.com/imobia/backend/internal/domain/shared"
)

// Operation is the kind of bank call a log entry records.
type Operation string

const (
	OperationRegister Operation = "REGISTER"
	OperationQuery    Operation = "QUERY"
	OperationSettle   Operation = "SETTLE"
)

// OperationLog is one immutable audit row per bank call attempt. Entries are
// appended for every register, query and settle attempt regardless of
// outcome, and never mutated or deleted. Purely local rejections that never
// reach the bank do not produce an entry.
type OperationLog struct {
	shared.BaseEntity
	BoletoID        uuid.UUID
	Operation       Operation
	RequestPayload  string
	ResponsePayload string
	HTTPStatus      int
	Success         bool
	ErrorMessage    string
}

// NewOperationLog builds an audit entry for one bank call.
func NewOperationLog(boletoID uuid.UUID, op Operation) *OperationLog {
	return &OperationLog{
		BaseEntity: shared.NewBaseEntity(),
		BoletoID:   boletoID,
		Operation:  op,
	}
}
