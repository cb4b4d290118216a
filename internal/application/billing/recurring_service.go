package billing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appboleto "github.com/imobia/backend/internal/application/boleto"
	"github.com/imobia/backend/internal/domain/billing"
	"github.com/imobia/backend/internal/domain/boleto"
	"github.com/imobia/backend/internal/domain/contract"
	"github.com/imobia/backend/internal/domain/shared"
)

// RunStatus classifies one contract's outcome inside an automatic pass.
type RunStatus string

const (
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
	RunStatusIgnored   RunStatus = "ignored"
)

// RunDetail is one contract's line in the run summary.
type RunDetail struct {
	ContractID uuid.UUID  `json:"contract_id"`
	InvoiceID  *uuid.UUID `json:"invoice_id,omitempty"`
	Status     RunStatus  `json:"status"`
	Message    string     `json:"message"`
}

// RunSummary aggregates an automatic billing pass. Failures are isolated per
// contract: one contract blowing up never stops the others.
type RunSummary struct {
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Ignored   int         `json:"ignored"`
	Details   []RunDetail `json:"details"`
}

// HasFailures reports whether any contract failed during the pass.
func (s *RunSummary) HasFailures() bool {
	return s.Failed > 0
}

// DeliveryOutcome is the result of sending one invoice.
type DeliveryOutcome struct {
	Success bool             `json:"success"`
	Invoice *billing.Invoice `json:"invoice"`
	Message string           `json:"message"`
}

// RecurringService drives the monthly billing cycle: it derives the
// competência coming due per contract, creates the invoice if needed, issues
// and registers the slip, renders the document and delivers it to the payer.
type RecurringService struct {
	contracts contract.Repository
	payers    contract.PayerRepository
	invoices  billing.InvoiceRepository
	issuer    SlipIssuer
	renderer  SlipRenderer
	notifier  Notifier
	logger    *zap.Logger
	now       func() time.Time
}

// NewRecurringService creates the recurring billing service.
func NewRecurringService(
	contracts contract.Repository,
	payers contract.PayerRepository,
	invoices billing.InvoiceRepository,
	issuer SlipIssuer,
	renderer SlipRenderer,
	notifier Notifier,
	logger *zap.Logger,
) *RecurringService {
	return &RecurringService{
		contracts: contracts,
		payers:    payers,
		invoices:  invoices,
		issuer:    issuer,
		renderer:  renderer,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// ProcessAutomaticBilling runs one automatic pass over every contract
// enabled for auto billing.
func (s *RecurringService) ProcessAutomaticBilling(ctx context.Context) (*RunSummary, error) {
	contracts, err := s.contracts.FindForAutoBilling(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("automatic billing pass started", zap.Int("contracts", len(contracts)))

	summary := &RunSummary{}
	today := s.now()

	for _, c := range contracts {
		detail := s.processContract(ctx, c, today)
		switch detail.Status {
		case RunStatusSucceeded:
			summary.Succeeded++
		case RunStatusIgnored:
			summary.Ignored++
		default:
			summary.Failed++
		}
		summary.Details = append(summary.Details, detail)
	}

	s.logger.Info("automatic billing pass finished",
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("ignored", summary.Ignored))

	return summary, nil
}

func (s *RecurringService) processContract(ctx context.Context, c *contract.Contract, today time.Time) RunDetail {
	detail := RunDetail{ContractID: c.ID}

	if !c.Billable() {
		detail.Status = RunStatusIgnored
		detail.Message = "Contract is not billable"
		return detail
	}

	dueDay := c.EffectiveDueDay()
	competencia := billing.ComputeCompetencia(dueDay, today)
	period, err := billing.ComputePeriod(dueDay, competencia)
	if err != nil {
		detail.Status = RunStatusFailed
		detail.Message = err.Error()
		return detail
	}

	days := daysUntil(today, period.DueDate)
	if days > c.LeadDays || days < 0 {
		detail.Status = RunStatusIgnored
		detail.Message = fmt.Sprintf("Outside the lead window (%d days to due date)", days)
		return detail
	}

	invoice, err := s.findOrCreateInvoice(ctx, c, competencia, period)
	if err != nil {
		detail.Status = RunStatusFailed
		detail.Message = err.Error()
		s.logger.Error("automatic billing failed for contract",
			zap.String("contract_id", c.ID.String()),
			zap.String("competencia", competencia.String()),
			zap.Error(err))
		return detail
	}
	detail.InvoiceID = &invoice.ID

	if invoice.SkippedByAutoRoutine() {
		detail.Status = RunStatusIgnored
		detail.Message = "Invoice already delivered or held"
		return detail
	}

	outcome := s.deliver(ctx, c, invoice, billing.DeliveryKindAutomatic)
	if outcome.Success {
		detail.Status = RunStatusSucceeded
	} else {
		detail.Status = RunStatusFailed
		s.logger.Error("automatic billing failed for contract",
			zap.String("contract_id", c.ID.String()),
			zap.String("invoice_id", invoice.ID.String()),
			zap.String("reason", outcome.Message))
	}
	detail.Message = outcome.Message
	return detail
}

// findOrCreateInvoice is race-tolerant: a concurrent pass creating the same
// (contract, competência) invoice surfaces as a unique violation, and the
// existing row is reused.
func (s *RecurringService) findOrCreateInvoice(ctx context.Context, c *contract.Contract, competencia billing.Competencia, period billing.Period) (*billing.Invoice, error) {
	invoice, err := s.invoices.FindByContractAndCompetencia(ctx, c.ID, competencia)
	if err == nil {
		return invoice, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	amounts := billing.ComposeAmounts(c)
	invoice = billing.NewInvoice(c.ID, competencia, period, amounts)

	if err := s.invoices.Create(ctx, invoice); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return s.invoices.FindByContractAndCompetencia(ctx, c.ID, competencia)
		}
		return nil, err
	}

	s.logger.Info("invoice created",
		zap.String("contract_id", c.ID.String()),
		zap.String("competencia", competencia.String()),
		zap.String("total", invoice.Total.String()))

	return invoice, nil
}

// SendInvoice issues, registers and delivers the slip for one invoice. The
// manual kind puts the invoice on hold against future automatic passes.
func (s *RecurringService) SendInvoice(ctx context.Context, invoiceID uuid.UUID, kind billing.DeliveryKind) (*DeliveryOutcome, error) {
	invoice, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	c, err := s.contracts.FindByID(ctx, invoice.ContractID)
	if err != nil {
		return nil, err
	}
	return s.deliver(ctx, c, invoice, kind), nil
}

func (s *RecurringService) deliver(ctx context.Context, c *contract.Contract, invoice *billing.Invoice, kind billing.DeliveryKind) *DeliveryOutcome {
	if c.PayerID == nil {
		return &DeliveryOutcome{Invoice: invoice, Message: "Contract has no payer"}
	}

	payer, err := s.payers.FindByID(ctx, *c.PayerID)
	if err != nil {
		return &DeliveryOutcome{Invoice: invoice, Message: err.Error()}
	}

	slip, err := s.ensureSlip(ctx, c, invoice, payer)
	if err != nil {
		return &DeliveryOutcome{Invoice: invoice, Message: err.Error()}
	}

	pdfPath, err := s.renderer.Render(ctx, slip, payer, invoice)
	if err != nil {
		return &DeliveryOutcome{Invoice: invoice, Message: "Failed to render slip: " + err.Error()}
	}
	defer os.Remove(pdfPath)

	destination, err := s.notifier.SendInvoice(ctx, invoice, payer, pdfPath)
	if err != nil {
		// The slip exists and is registered; only delivery failed.
		if saveErr := s.invoices.Save(ctx, invoice); saveErr != nil {
			s.logger.Error("failed to persist invoice after delivery failure",
				zap.String("invoice_id", invoice.ID.String()),
				zap.Error(saveErr))
		}
		return &DeliveryOutcome{Invoice: invoice, Message: "Slip issued, but delivery failed: " + err.Error()}
	}

	invoice.MarkDelivered(kind, destination, s.now())
	if err := s.invoices.Save(ctx, invoice); err != nil {
		return &DeliveryOutcome{Invoice: invoice, Message: err.Error()}
	}

	s.logger.Info("invoice delivered",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("kind", string(kind)),
		zap.String("destination", destination))

	return &DeliveryOutcome{Success: true, Invoice: invoice, Message: "Slip issued and delivered"}
}

// ensureSlip creates and registers the invoice's boleto, reusing one already
// attached.
func (s *RecurringService) ensureSlip(ctx context.Context, c *contract.Contract, invoice *billing.Invoice, payer *contract.Payer) (*boleto.Boleto, error) {
	var slipID uuid.UUID

	if invoice.BoletoID != nil {
		slipID = *invoice.BoletoID
	} else {
		slip, err := s.issuer.Create(ctx, appboleto.CreateBoletoInput{
			PayerID:      payer.ID,
			PropertyID:   &c.PropertyID,
			InvoiceID:    &invoice.ID,
			FaceValue:    invoice.Total,
			DueDate:      invoice.DueDate,
			SeuNumero:    invoice.ID.String(),
			PayerMessage: payerMessage(c, invoice),
		})
		if err != nil {
			return nil, err
		}
		slipID = slip.ID
	}

	outcome, err := s.issuer.Register(ctx, slipID)
	if err != nil {
		return nil, err
	}
	if !outcome.Success && !outcome.Boleto.IsRegistered() {
		return nil, fmt.Errorf("failed to register boleto: %s", outcome.Message)
	}

	if invoice.BoletoID == nil {
		invoice.AttachBoleto(slipID)
	}
	return outcome.Boleto, nil
}

// CreateInvoice creates an invoice for an explicit competência. Duplicates
// are an error here, unlike the automatic pass which reuses them.
func (s *RecurringService) CreateInvoice(ctx context.Context, contractID uuid.UUID, competencia billing.Competencia) (*billing.Invoice, error) {
	c, err := s.contracts.FindByID(ctx, contractID)
	if err != nil {
		return nil, err
	}

	period, err := billing.ComputePeriod(c.EffectiveDueDay(), competencia)
	if err != nil {
		return nil, err
	}

	amounts := billing.ComposeAmounts(c)
	invoice := billing.NewInvoice(c.ID, competencia, period, amounts)
	if err := s.invoices.Create(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// CancelInvoice cancels an invoice that was not paid yet.
func (s *RecurringService) CancelInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	invoice, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return err
	}
	if err := invoice.Cancel(); err != nil {
		return shared.NewDomainError("INVALID_STATE", "Invoice cannot be cancelled in its current status")
	}
	return s.invoices.Save(ctx, invoice)
}

// ListInvoices returns invoices matching the filter with the total count.
func (s *RecurringService) ListInvoices(ctx context.Context, filter billing.InvoiceFilter) ([]*billing.Invoice, int64, error) {
	return s.invoices.FindAll(ctx, filter)
}

// GetInvoice returns one invoice.
func (s *RecurringService) GetInvoice(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	return s.invoices.FindByID(ctx, id)
}

// Statistics aggregates invoice counts and values.
func (s *RecurringService) Statistics(ctx context.Context, dueDate *time.Time) (billing.InvoiceStatistics, error) {
	return s.invoices.Statistics(ctx, dueDate)
}

// payerMessage builds the slip's payer-facing message.
func payerMessage(c *contract.Contract, invoice *billing.Invoice) string {
	year, month, err := invoice.Competencia.Parse()
	ref := invoice.Competencia.String()
	if err == nil {
		ref = fmt.Sprintf("%02d/%04d", int(month), year)
	}
	return fmt.Sprintf("Aluguel ref. %s Imovel: %s Periodo: %s a %s",
		ref,
		c.Code,
		invoice.PeriodStart.Format("02/01/2006"),
		invoice.PeriodEnd.Format("02/01/2006"))
}

// daysUntil counts whole calendar days from today to the due date, negative
// when the due date already passed.
func daysUntil(today, due time.Time) int {
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	d := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Sub(t).Hours() / 24)
}
