package boleto

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/imobia/backend/internal/domain/boleto"
	"github.com/imobia/backend/internal/domain/contract"
	"github.com/imobia/backend/internal/domain/shared"
)

// DefaultSettleReason is sent when the caller does not name one.
const DefaultSettleReason = "SOLICITACAO_BENEFICIARIO"

// TokenProvider acquires an access token for a credential. Used by the
// connection test; regular calls authenticate inside the gateway.
type TokenProvider interface {
	Token(ctx context.Context, cred *boleto.Credential) (string, error)
}

// CreateBoletoInput carries the data to issue a new slip.
type CreateBoletoInput struct {
	CredentialID *uuid.UUID
	PayerID      uuid.UUID
	InvoiceID    *uuid.UUID
	PropertyID   *uuid.UUID

	FaceValue    decimal.Decimal
	IssueDate    time.Time
	DueDate      time.Time
	SeuNumero    string
	PayerMessage string

	DiscountKind  boleto.DiscountKind
	DiscountValue decimal.Decimal
	DiscountDate  *time.Time
	PenaltyKind   boleto.PenaltyKind
	PenaltyValue  decimal.Decimal
	PenaltyDate   *time.Time
	InterestKind  boleto.InterestKind
	InterestValue decimal.Decimal
}

// OperationOutcome is the caller-facing result of a register, query or settle
// attempt. A bank rejection is a failed outcome, not an error.
type OperationOutcome struct {
	Success bool           `json:"success"`
	Boleto  *boleto.Boleto `json:"boleto"`
	Message string         `json:"message"`
}

// BatchItemOutcome is one boleto's result inside a batch run.
type BatchItemOutcome struct {
	BoletoID    uuid.UUID `json:"boleto_id"`
	NossoNumero string    `json:"nosso_numero"`
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
}

// BatchOutcome aggregates a batch register or query run.
type BatchOutcome struct {
	Total     int                `json:"total"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
	Details   []BatchItemOutcome `json:"details"`
}

// StatusUpdateOutcome reports a periodic status refresh pass.
type StatusUpdateOutcome struct {
	Total   int `json:"total"`
	Updated int `json:"updated"`
	Errors  int `json:"errors"`
}

// BoletoWithLogs bundles a slip with its full audit trail.
type BoletoWithLogs struct {
	Boleto *boleto.Boleto         `json:"boleto"`
	Logs   []*boleto.OperationLog `json:"logs"`
}

// Service drives the boleto lifecycle: creation with nosso número
// assignment, registration, status queries and settlement. Every bank call
// leaves exactly one audit log row, committed atomically with the slip
// mutation it caused.
type Service struct {
	boletos   boleto.Repository
	logs      boleto.OperationLogRepository
	creds     boleto.CredentialRepository
	payers    contract.PayerRepository
	gateway   boleto.Gateway
	tokens    TokenProvider
	scope     TransactionScope
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates the boleto service.
func NewService(
	boletos boleto.Repository,
	logs boleto.OperationLogRepository,
	creds boleto.CredentialRepository,
	payers contract.PayerRepository,
	gateway boleto.Gateway,
	tokens TokenProvider,
	scope TransactionScope,
	logger *zap.Logger,
) *Service {
	return &Service{
		boletos: boletos,
		logs:    logs,
		creds:   creds,
		payers:  payers,
		gateway: gateway,
		tokens:  tokens,
		scope:   scope,
		logger:  logger,
		now:     time.Now,
	}
}

// Create issues a new PENDING boleto, assigning the next nosso número in the
// credential's sequence.
func (s *Service) Create(ctx context.Context, input CreateBoletoInput) (*boleto.Boleto, error) {
	if input.PayerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payer is required")
	}
	if !input.FaceValue.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Face value must be positive")
	}
	if input.DueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Due date is required")
	}

	cred, err := s.resolveCredential(ctx, input.CredentialID)
	if err != nil {
		return nil, err
	}

	nossoNumero, err := s.nextNossoNumero(ctx, cred)
	if err != nil {
		return nil, err
	}

	issueDate := input.IssueDate
	if issueDate.IsZero() {
		issueDate = s.now()
	}

	b := boleto.New(cred.ID, input.PayerID, nossoNumero, input.FaceValue, issueDate, input.DueDate)
	b.InvoiceID = input.InvoiceID
	b.PropertyID = input.PropertyID
	b.SeuNumero = input.SeuNumero
	b.PayerMessage = input.PayerMessage

	if input.DiscountKind != "" {
		b.DiscountKind = input.DiscountKind
		b.DiscountValue = input.DiscountValue
		b.DiscountDate = input.DiscountDate
	}
	if input.PenaltyKind != "" {
		b.PenaltyKind = input.PenaltyKind
		b.PenaltyValue = input.PenaltyValue
		b.PenaltyDate = input.PenaltyDate
	}
	if input.InterestKind != "" {
		b.InterestKind = input.InterestKind
		b.InterestValue = input.InterestValue
	}

	if err := s.boletos.Create(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("boleto created",
		zap.String("boleto_id", b.ID.String()),
		zap.String("nosso_numero", b.NossoNumero),
		zap.String("face_value", b.FaceValue.String()))

	return b, nil
}

// Register submits a boleto to the bank. An already registered slip is a
// no-op failure: no bank call is made and no log row is written.
func (s *Service) Register(ctx context.Context, id uuid.UUID) (*OperationOutcome, error) {
	b, err := s.boletos.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.register(ctx, b)
}

func (s *Service) register(ctx context.Context, b *boleto.Boleto) (*OperationOutcome, error) {
	if b.IsRegistered() {
		return &OperationOutcome{Boleto: b, Message: "Boleto is already registered"}, nil
	}

	cred, err := s.creds.FindByID(ctx, b.CredentialID)
	if err != nil {
		return nil, err
	}
	payer, err := s.payers.FindByID(ctx, b.PayerID)
	if err != nil {
		return nil, err
	}

	log := boleto.NewOperationLog(b.ID, boleto.OperationRegister)

	result, err := s.gateway.Register(ctx, cred, b, payer)
	if err != nil {
		log.ErrorMessage = err.Error()
		b.RecordRegistrationFailure(err.Error())
		s.logger.Error("boleto registration failed",
			zap.String("boleto_id", b.ID.String()),
			zap.Error(err))
	} else {
		log.RequestPayload = result.RequestPayload
		log.ResponsePayload = result.ResponsePayload
		log.HTTPStatus = result.HTTPStatus
		log.Success = result.Success
		if result.Success {
			b.RecordRegistration(result.Data, cred.Covenant, s.now())
		} else {
			log.ErrorMessage = result.ErrorMessage
			b.RecordRegistrationFailure(result.ErrorMessage)
		}
	}

	if err := s.commit(ctx, b, log); err != nil {
		return nil, err
	}

	if log.Success {
		s.logger.Info("boleto registered",
			zap.String("boleto_id", b.ID.String()),
			zap.String("bank_slip_id", b.BankSlipID))
		return &OperationOutcome{Success: true, Boleto: b, Message: "Boleto registered successfully"}, nil
	}
	return &OperationOutcome{Boleto: b, Message: log.ErrorMessage}, nil
}

// Query refreshes a boleto from the bank's view of it.
func (s *Service) Query(ctx context.Context, id uuid.UUID) (*OperationOutcome, error) {
	b, err := s.boletos.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.query(ctx, b)
}

func (s *Service) query(ctx context.Context, b *boleto.Boleto) (*OperationOutcome, error) {
	if b.BankSlipID == "" {
		return &OperationOutcome{Boleto: b, Message: "Boleto has no bank id to query"}, nil
	}

	cred, err := s.creds.FindByID(ctx, b.CredentialID)
	if err != nil {
		return nil, err
	}

	log := boleto.NewOperationLog(b.ID, boleto.OperationQuery)

	result, err := s.gateway.Query(ctx, cred, b)
	if err != nil {
		log.ErrorMessage = err.Error()
		s.logger.Error("boleto query failed",
			zap.String("boleto_id", b.ID.String()),
			zap.Error(err))
	} else {
		log.ResponsePayload = result.ResponsePayload
		log.HTTPStatus = result.HTTPStatus
		log.Success = result.Success
		if result.Success {
			b.ApplyBankStatus(result.BankStatus, result.PaymentDate, result.PaidValue, s.now())
			b.BackfillPaymentCodes(result.BarCode, result.DigitableLine)
		} else {
			log.ErrorMessage = result.ErrorMessage
		}
	}

	if err := s.commit(ctx, b, log); err != nil {
		return nil, err
	}

	if log.Success {
		return &OperationOutcome{Success: true, Boleto: b, Message: "Query completed successfully"}, nil
	}
	return &OperationOutcome{Boleto: b, Message: log.ErrorMessage}, nil
}

// Settle requests a baixa. Guards run locally first: a slip that is paid or
// was never registered is rejected without touching the bank.
func (s *Service) Settle(ctx context.Context, id uuid.UUID, reason string) (*OperationOutcome, error) {
	b, err := s.boletos.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := b.CanSettle(); err != nil {
		return &OperationOutcome{Boleto: b, Message: err.Error()}, nil
	}

	if reason == "" {
		reason = DefaultSettleReason
	}

	cred, err := s.creds.FindByID(ctx, b.CredentialID)
	if err != nil {
		return nil, err
	}

	log := boleto.NewOperationLog(b.ID, boleto.OperationSettle)

	result, err := s.gateway.Settle(ctx, cred, b, reason)
	if err != nil {
		log.ErrorMessage = err.Error()
		s.logger.Error("boleto settlement failed",
			zap.String("boleto_id", b.ID.String()),
			zap.Error(err))
	} else {
		log.RequestPayload = result.RequestPayload
		log.ResponsePayload = result.ResponsePayload
		log.HTTPStatus = result.HTTPStatus
		log.Success = result.Success
		if result.Success {
			b.RecordSettlement(reason, s.now())
		} else {
			log.ErrorMessage = result.ErrorMessage
		}
	}

	if err := s.commit(ctx, b, log); err != nil {
		return nil, err
	}

	if log.Success {
		return &OperationOutcome{Success: true, Boleto: b, Message: "Boleto settled successfully"}, nil
	}
	return &OperationOutcome{Boleto: b, Message: log.ErrorMessage}, nil
}

// RegisterBatch registers a set of boletos, isolating failures per item.
func (s *Service) RegisterBatch(ctx context.Context, ids []uuid.UUID) (*BatchOutcome, error) {
	boletos, err := s.boletos.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	outcome := &BatchOutcome{Total: len(boletos)}
	for _, b := range boletos {
		item := BatchItemOutcome{BoletoID: b.ID, NossoNumero: b.NossoNumero}

		if !b.CanRegister() {
			item.Message = "Boleto is not pending registration"
			outcome.Failed++
			outcome.Details = append(outcome.Details, item)
			continue
		}

		res, err := s.register(ctx, b)
		if err != nil {
			item.Message = err.Error()
			outcome.Failed++
		} else {
			item.Success = res.Success
			item.Message = res.Message
			if res.Success {
				outcome.Succeeded++
			} else {
				outcome.Failed++
			}
		}
		outcome.Details = append(outcome.Details, item)
	}
	return outcome, nil
}

// QueryBatch refreshes a set of boletos from the bank.
func (s *Service) QueryBatch(ctx context.Context, ids []uuid.UUID) (*BatchOutcome, error) {
	boletos, err := s.boletos.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	outcome := &BatchOutcome{Total: len(boletos)}
	for _, b := range boletos {
		item := BatchItemOutcome{BoletoID: b.ID, NossoNumero: b.NossoNumero}

		if b.BankSlipID == "" {
			item.Message = "Boleto is not registered at the bank"
			outcome.Failed++
			outcome.Details = append(outcome.Details, item)
			continue
		}

		res, err := s.query(ctx, b)
		if err != nil {
			item.Message = err.Error()
			outcome.Failed++
		} else {
			item.Success = res.Success
			item.Message = res.Message
			if res.Success {
				outcome.Succeeded++
			} else {
				outcome.Failed++
			}
		}
		outcome.Details = append(outcome.Details, item)
	}
	return outcome, nil
}

// UpdateRegisteredStatuses queries the bank for a window of REGISTERED slips
// and applies status changes. Used by the periodic refresh job.
func (s *Service) UpdateRegisteredStatuses(ctx context.Context, limit int) (*StatusUpdateOutcome, error) {
	boletos, err := s.boletos.FindRegisteredForStatusUpdate(ctx, limit)
	if err != nil {
		return nil, err
	}

	outcome := &StatusUpdateOutcome{Total: len(boletos)}
	for _, b := range boletos {
		res, err := s.query(ctx, b)
		if err != nil || !res.Success {
			outcome.Errors++
			continue
		}
		outcome.Updated++
	}

	s.logger.Info("registered boleto statuses refreshed",
		zap.Int("total", outcome.Total),
		zap.Int("updated", outcome.Updated),
		zap.Int("errors", outcome.Errors))

	return outcome, nil
}

// List returns boletos matching the filter with the total count.
func (s *Service) List(ctx context.Context, filter boleto.Filter) ([]*boleto.Boleto, int64, error) {
	return s.boletos.FindAll(ctx, filter)
}

// GetWithLogs returns a boleto with its audit trail.
func (s *Service) GetWithLogs(ctx context.Context, id uuid.UUID) (*BoletoWithLogs, error) {
	b, err := s.boletos.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	logs, err := s.logs.ListByBoleto(ctx, id)
	if err != nil {
		return nil, err
	}
	return &BoletoWithLogs{Boleto: b, Logs: logs}, nil
}

// Delete removes a boleto that never reached the bank. Anything past PENDING
// must be settled through the bank instead.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	b, err := s.boletos.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if b.Status != boleto.StatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending boletos can be deleted")
	}
	return s.boletos.Delete(ctx, id)
}

// Statistics aggregates boleto counts, optionally per credential.
func (s *Service) Statistics(ctx context.Context, credentialID *uuid.UUID) (boleto.Statistics, error) {
	return s.boletos.Statistics(ctx, credentialID)
}

// TestConnection validates a credential end to end by acquiring a token.
func (s *Service) TestConnection(ctx context.Context, credentialID uuid.UUID) error {
	cred, err := s.creds.FindByID(ctx, credentialID)
	if err != nil {
		return err
	}
	_, err = s.tokens.Token(ctx, cred)
	return err
}

func (s *Service) resolveCredential(ctx context.Context, credentialID *uuid.UUID) (*boleto.Credential, error) {
	if credentialID != nil {
		return s.creds.FindByID(ctx, *credentialID)
	}
	return s.creds.FindDefault(ctx)
}

// nextNossoNumero continues the credential's sequence: covenant prefix plus
// the last issued sequence incremented by one, starting at 1.
func (s *Service) nextNossoNumero(ctx context.Context, cred *boleto.Credential) (string, error) {
	last, err := s.boletos.LastNossoNumero(ctx, cred.ID)
	if err != nil {
		return "", err
	}
	next := boleto.SequenceFromNossoNumero(last) + 1
	return boleto.FormatNossoNumero(cred.Covenant, next), nil
}

// commit persists the slip and its audit row in one transaction.
func (s *Service) commit(ctx context.Context, b *boleto.Boleto, log *boleto.OperationLog) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.LogRepo().Append(ctx, log); err != nil {
			return err
		}
		return repos.BoletoRepo().Save(ctx, b)
	})
}
