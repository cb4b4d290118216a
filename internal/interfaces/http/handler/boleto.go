package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appboleto "github.com/imobia/backend/internal/application/boleto"
	"github.com/imobia/backend/internal/domain/boleto"
	"github.com/imobia/backend/internal/interfaces/http/dto"
)

// BoletoHandler handles bank slip API endpoints
type BoletoHandler struct {
	BaseHandler
	service *appboleto.Service
}

// NewBoletoHandler creates a new BoletoHandler
func NewBoletoHandler(service *appboleto.Service) *BoletoHandler {
	return &BoletoHandler{service: service}
}

// ===================== Request/Response DTOs =====================

// BoletoResponse represents a bank slip in API responses
type BoletoResponse struct {
	ID           string  `json:"id"`
	CredentialID string  `json:"credential_id"`
	PayerID      string  `json:"payer_id"`
	InvoiceID    *string `json:"invoice_id,omitempty"`
	PropertyID   *string `json:"property_id,omitempty"`

	NossoNumero string `json:"nosso_numero"`
	SeuNumero   string `json:"seu_numero,omitempty"`

	FaceValue string `json:"face_value"`
	IssueDate string `json:"issue_date"`
	DueDate   string `json:"due_date"`

	Status        string `json:"status"`
	BankSlipID    string `json:"bank_slip_id,omitempty"`
	BarCode       string `json:"bar_code,omitempty"`
	DigitableLine string `json:"digitable_line,omitempty"`
	PixTxID       string `json:"pix_tx_id,omitempty"`
	PixEmv        string `json:"pix_emv,omitempty"`

	Attempts  int    `json:"attempts"`
	LastError string `json:"last_error,omitempty"`

	RegisteredAt *time.Time `json:"registered_at,omitempty"`
	PaidAt       *time.Time `json:"paid_at,omitempty"`
	PaidValue    *string    `json:"paid_value,omitempty"`
	SettledAt    *time.Time `json:"settled_at,omitempty"`
	SettleReason string     `json:"settle_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OperationLogResponse represents one audit trail row
type OperationLogResponse struct {
	ID              string    `json:"id"`
	Operation       string    `json:"operation"`
	HTTPStatus      int       `json:"http_status,omitempty"`
	Success         bool      `json:"success"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	RequestPayload  string    `json:"request_payload,omitempty"`
	ResponsePayload string    `json:"response_payload,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// BoletoWithLogsResponse bundles a slip with its audit trail
type BoletoWithLogsResponse struct {
	Boleto BoletoResponse         `json:"boleto"`
	Logs   []OperationLogResponse `json:"logs"`
}

// CreateBoletoRequest is the request body for issuing a new slip
type CreateBoletoRequest struct {
	CredentialID  string  `json:"credential_id" binding:"omitempty,uuid"`
	PayerID       string  `json:"payer_id" binding:"required,uuid"`
	InvoiceID     string  `json:"invoice_id" binding:"omitempty,uuid"`
	PropertyID    string  `json:"property_id" binding:"omitempty,uuid"`
	FaceValue     float64 `json:"face_value" binding:"required,gt=0"`
	IssueDate     string  `json:"issue_date" binding:"omitempty,datetime=2006-01-02"`
	DueDate       string  `json:"due_date" binding:"required,datetime=2006-01-02"`
	SeuNumero     string  `json:"seu_numero" binding:"omitempty,max=15"`
	PayerMessage  string  `json:"payer_message" binding:"omitempty,max=160"`
	DiscountKind  string  `json:"discount_kind" binding:"omitempty,oneof=ISENTO VALOR_DATA_FIXA PERCENTUAL_DATA_FIXA"`
	DiscountValue float64 `json:"discount_value"`
	DiscountDate  string  `json:"discount_date" binding:"omitempty,datetime=2006-01-02"`
	PenaltyKind   string  `json:"penalty_kind" binding:"omitempty,oneof=ISENTO VALOR_FIXO PERCENTUAL"`
	PenaltyValue  float64 `json:"penalty_value"`
	PenaltyDate   string  `json:"penalty_date" binding:"omitempty,datetime=2006-01-02"`
	InterestKind  string  `json:"interest_kind" binding:"omitempty,oneof=ISENTO VALOR_DIA PERCENTUAL_MES"`
	InterestValue float64 `json:"interest_value"`
}

// SettleBoletoRequest is the request body for a baixa
type SettleBoletoRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=100"`
}

// BatchRequest names the boletos a batch operation acts on
type BatchRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,max=100,dive,uuid"`
}

// BoletoListFilter carries the list query parameters
type BoletoListFilter struct {
	dto.ListRequest
	Status       string `form:"status" binding:"omitempty,oneof=PENDING REGISTERED PAID SETTLED PROTESTED OVERDUE ERROR"`
	CredentialID string `form:"credential_id" binding:"omitempty,uuid"`
	PayerID      string `form:"payer_id" binding:"omitempty,uuid"`
	PropertyID   string `form:"property_id" binding:"omitempty,uuid"`
	NossoNumero  string `form:"nosso_numero"`
	SeuNumero    string `form:"seu_numero"`
	DueFrom      string `form:"due_from" binding:"omitempty,datetime=2006-01-02"`
	DueTo        string `form:"due_to" binding:"omitempty,datetime=2006-01-02"`
}

// BoletoStatisticsResponse aggregates slip counts and values per status
type BoletoStatisticsResponse struct {
	Total      int64   `json:"total"`
	Pending    int64   `json:"pending"`
	Registered int64   `json:"registered"`
	Paid       int64   `json:"paid"`
	Overdue    int64   `json:"overdue"`
	Settled    int64   `json:"settled"`
	Errors     int64   `json:"errors"`
	OpenValue  float64 `json:"open_value"`
	PaidValue  float64 `json:"paid_value"`
}

// ===================== Handlers =====================

// Create issues a new PENDING boleto
func (h *BoletoHandler) Create(c *gin.Context) {
	var req CreateBoletoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	b, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toBoletoResponse(b))
}

// List returns boletos matching the query filters
func (h *BoletoHandler) List(c *gin.Context) {
	var req BoletoListFilter
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Normalize()

	filter := boleto.Filter{
		NossoNumero: req.NossoNumero,
		SeuNumero:   req.SeuNumero,
		Page:        req.Page,
		PageSize:    req.PageSize,
	}
	if req.Status != "" {
		filter.Statuses = []boleto.Status{boleto.Status(req.Status)}
	}
	filter.CredentialID = parseOptionalUUID(req.CredentialID)
	filter.PayerID = parseOptionalUUID(req.PayerID)
	filter.PropertyID = parseOptionalUUID(req.PropertyID)
	filter.DueFrom = parseOptionalDate(req.DueFrom)
	filter.DueTo = parseOptionalDate(req.DueTo)

	boletos, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]BoletoResponse, 0, len(boletos))
	for _, b := range boletos {
		responses = append(responses, toBoletoResponse(b))
	}
	h.SuccessWithMeta(c, responses, total, req.Page, req.PageSize)
}

// GetByID returns one boleto with its audit trail
func (h *BoletoHandler) GetByID(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	result, err := h.service.GetWithLogs(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := BoletoWithLogsResponse{
		Boleto: toBoletoResponse(result.Boleto),
		Logs:   make([]OperationLogResponse, 0, len(result.Logs)),
	}
	for _, log := range result.Logs {
		resp.Logs = append(resp.Logs, OperationLogResponse{
			ID:              log.ID.String(),
			Operation:       string(log.Operation),
			HTTPStatus:      log.HTTPStatus,
			Success:         log.Success,
			ErrorMessage:    log.ErrorMessage,
			RequestPayload:  log.RequestPayload,
			ResponsePayload: log.ResponsePayload,
			CreatedAt:       log.CreatedAt,
		})
	}
	h.Success(c, resp)
}

// Register submits the boleto to the bank
func (h *BoletoHandler) Register(c *gin.Context) {
	h.operation(c, h.service.Register)
}

// Query refreshes the boleto from the bank's view of it
func (h *BoletoHandler) Query(c *gin.Context) {
	h.operation(c, h.service.Query)
}

// Settle requests a baixa for the boleto
func (h *BoletoHandler) Settle(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req SettleBoletoRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.BadRequest(c, err.Error())
		return
	}

	outcome, err := h.service.Settle(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOutcomeResponse(outcome))
}

// RegisterBatch registers a set of boletos, isolating failures per item
func (h *BoletoHandler) RegisterBatch(c *gin.Context) {
	h.batch(c, h.service.RegisterBatch)
}

// QueryBatch refreshes a set of boletos from the bank
func (h *BoletoHandler) QueryBatch(c *gin.Context) {
	h.batch(c, h.service.QueryBatch)
}

// Delete removes a boleto that never reached the bank
func (h *BoletoHandler) Delete(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Statistics aggregates boleto counts, optionally per credential
func (h *BoletoHandler) Statistics(c *gin.Context) {
	var credentialID *uuid.UUID
	if raw := c.Query("credential_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid credential ID")
			return
		}
		credentialID = &id
	}

	stats, err := h.service.Statistics(c.Request.Context(), credentialID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, BoletoStatisticsResponse(stats))
}

// TestConnection validates a credential end to end by acquiring a token
func (h *BoletoHandler) TestConnection(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	if err := h.service.TestConnection(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Connection established successfully"})
}

// ===================== Helpers =====================

func (h *BoletoHandler) bindID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid boleto ID")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid boleto ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *BoletoHandler) operation(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*appboleto.OperationOutcome, error)) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	outcome, err := op(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOutcomeResponse(outcome))
}

func (h *BoletoHandler) batch(c *gin.Context, op func(ctx context.Context, ids []uuid.UUID) (*appboleto.BatchOutcome, error)) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid boleto ID: "+raw)
			return
		}
		ids = append(ids, id)
	}

	outcome, err := op(c.Request.Context(), ids)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, outcome)
}

// OperationOutcomeResponse is the caller-facing result of a bank operation
type OperationOutcomeResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Boleto  BoletoResponse `json:"boleto"`
}

func toOutcomeResponse(o *appboleto.OperationOutcome) OperationOutcomeResponse {
	return OperationOutcomeResponse{
		Success: o.Success,
		Message: o.Message,
		Boleto:  toBoletoResponse(o.Boleto),
	}
}

func toBoletoResponse(b *boleto.Boleto) BoletoResponse {
	resp := BoletoResponse{
		ID:            b.ID.String(),
		CredentialID:  b.CredentialID.String(),
		PayerID:       b.PayerID.String(),
		NossoNumero:   b.NossoNumero,
		SeuNumero:     b.SeuNumero,
		FaceValue:     b.FaceValue.StringFixed(2),
		IssueDate:     b.IssueDate.Format("2006-01-02"),
		DueDate:       b.DueDate.Format("2006-01-02"),
		Status:        string(b.Status),
		BankSlipID:    b.BankSlipID,
		BarCode:       b.BarCode,
		DigitableLine: b.DigitableLine,
		PixTxID:       b.PixTxID,
		PixEmv:        b.PixEmv,
		Attempts:      b.Attempts,
		LastError:     b.LastError,
		RegisteredAt:  b.RegisteredAt,
		PaidAt:        b.PaidAt,
		SettledAt:     b.SettledAt,
		SettleReason:  b.SettleReason,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
	if b.InvoiceID != nil {
		s := b.InvoiceID.String()
		resp.InvoiceID = &s
	}
	if b.PropertyID != nil {
		s := b.PropertyID.String()
		resp.PropertyID = &s
	}
	if b.PaidValue != nil {
		s := b.PaidValue.StringFixed(2)
		resp.PaidValue = &s
	}
	return resp
}

func (req CreateBoletoRequest) toInput() (appboleto.CreateBoletoInput, error) {
	input := appboleto.CreateBoletoInput{
		FaceValue:    decimal.NewFromFloat(req.FaceValue),
		SeuNumero:    req.SeuNumero,
		PayerMessage: req.PayerMessage,
	}

	payerID, err := uuid.Parse(req.PayerID)
	if err != nil {
		return input, err
	}
	input.PayerID = payerID

	input.CredentialID = parseOptionalUUID(req.CredentialID)
	input.InvoiceID = parseOptionalUUID(req.InvoiceID)
	input.PropertyID = parseOptionalUUID(req.PropertyID)

	if d := parseOptionalDate(req.IssueDate); d != nil {
		input.IssueDate = *d
	}
	if d := parseOptionalDate(req.DueDate); d != nil {
		input.DueDate = *d
	}

	if req.DiscountKind != "" {
		input.DiscountKind = boleto.DiscountKind(req.DiscountKind)
		input.DiscountValue = decimal.NewFromFloat(req.DiscountValue)
		input.DiscountDate = parseOptionalDate(req.DiscountDate)
	}
	if req.PenaltyKind != "" {
		input.PenaltyKind = boleto.PenaltyKind(req.PenaltyKind)
		input.PenaltyValue = decimal.NewFromFloat(req.PenaltyValue)
		input.PenaltyDate = parseOptionalDate(req.PenaltyDate)
	}
	if req.InterestKind != "" {
		input.InterestKind = boleto.InterestKind(req.InterestKind)
		input.InterestValue = decimal.NewFromFloat(req.InterestValue)
	}
	return input, nil
}

// parseOptionalUUID returns nil for empty or malformed values; binding
// validation already rejected malformed input upstream.
func parseOptionalUUID(raw string) *uuid.UUID {
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

func parseOptionalDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &t
}
