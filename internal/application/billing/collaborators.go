package billing

import (
	"context"

	"github.com/google/uuid"

	appboleto "github.com/imobia/backend/internal/application/boleto"
	"github.com/imobia/backend/internal/domain/billing"
	"github.com/imobia/backend/internal/domain/boleto"
	"github.com/imobia/backend/internal/domain/contract"
)

// SlipIssuer is the slice of the boleto service the billing flow needs:
// issue a slip and push it to the bank.
type SlipIssuer interface {
	Create(ctx context.Context, input appboleto.CreateBoletoInput) (*boleto.Boleto, error)
	Register(ctx context.Context, id uuid.UUID) (*appboleto.OperationOutcome, error)
}

// SlipRenderer produces the printable slip document. The returned path is a
// temporary file the caller removes after use.
type SlipRenderer interface {
	Render(ctx context.Context, b *boleto.Boleto, payer *contract.Payer, invoice *billing.Invoice) (string, error)
}

// Notifier delivers the invoice with its slip attached and reports the
// destination address actually used.
type Notifier interface {
	SendInvoice(ctx context.Context, invoice *billing.Invoice, payer *contract.Payer, attachmentPath string) (string, error)
}
