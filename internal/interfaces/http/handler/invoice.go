package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appbilling "github.com/imobia/backend/internal/application/billing"
	"github.com/imobia/backend/internal/domain/billing"
	"github.com/imobia/backend/internal/interfaces/http/dto"
)

// InvoiceHandler handles recurring billing API endpoints
type InvoiceHandler struct {
	BaseHandler
	service *appbilling.RecurringService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(service *appbilling.RecurringService) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

// ===================== Request/Response DTOs =====================

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID          string `json:"id"`
	ContractID  string `json:"contract_id"`
	Competencia string `json:"competencia"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	DueDate     string `json:"due_date"`

	Rent        string              `json:"rent"`
	PropertyTax string              `json:"property_tax"`
	CondoFee    string              `json:"condo_fee"`
	AdminFee    string              `json:"admin_fee"`
	Other       string              `json:"other"`
	Total       string              `json:"total"`
	Items       billing.ItemDetails `json:"items"`

	Status          string     `json:"status"`
	BoletoID        *string    `json:"boleto_id,omitempty"`
	DeliveryKind    string     `json:"delivery_kind,omitempty"`
	DeliveredAt     *time.Time `json:"delivered_at,omitempty"`
	DeliveryAddress string     `json:"delivery_address,omitempty"`
	ManualHold      bool       `json:"manual_hold"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateInvoiceRequest is the request body for creating an invoice
type CreateInvoiceRequest struct {
	ContractID  string `json:"contract_id" binding:"required,uuid"`
	Competencia string `json:"competencia" binding:"required,len=7"`
}

// SendInvoiceRequest is the request body for delivering an invoice
type SendInvoiceRequest struct {
	Kind string `json:"kind" binding:"omitempty,oneof=AUTOMATIC MANUAL"`
}

// InvoiceListFilter carries the invoice list query parameters
type InvoiceListFilter struct {
	dto.ListRequest
	ContractID  string `form:"contract_id" binding:"omitempty,uuid"`
	Competencia string `form:"competencia" binding:"omitempty,len=7"`
	Status      string `form:"status" binding:"omitempty,oneof=PENDING SLIP_ISSUED DELIVERED PAID CANCELLED"`
}

// InvoiceStatisticsResponse aggregates invoice counts per status
type InvoiceStatisticsResponse struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Issued    int64 `json:"issued"`
	Delivered int64 `json:"delivered"`
	Paid      int64 `json:"paid"`
	Cancelled int64 `json:"cancelled"`
}

// ===================== Handlers =====================

// Create creates an invoice for an explicit competência
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	contractID, err := uuid.Parse(req.ContractID)
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}
	competencia := billing.Competencia(req.Competencia)
	if _, _, err := competencia.Parse(); err != nil {
		h.HandleError(c, err)
		return
	}

	invoice, err := h.service.CreateInvoice(c.Request.Context(), contractID, competencia)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toInvoiceResponse(invoice))
}

// List returns invoices matching the query filters
func (h *InvoiceHandler) List(c *gin.Context) {
	var req InvoiceListFilter
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Normalize()

	filter := billing.InvoiceFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	filter.ContractID = parseOptionalUUID(req.ContractID)
	if req.Competencia != "" {
		competencia := billing.Competencia(req.Competencia)
		if _, _, err := competencia.Parse(); err != nil {
			h.HandleError(c, err)
			return
		}
		filter.Competencia = &competencia
	}
	if req.Status != "" {
		filter.Statuses = []billing.InvoiceStatus{billing.InvoiceStatus(req.Status)}
	}

	invoices, total, err := h.service.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]InvoiceResponse, 0, len(invoices))
	for _, invoice := range invoices {
		responses = append(responses, toInvoiceResponse(invoice))
	}
	h.SuccessWithMeta(c, responses, total, req.Page, req.PageSize)
}

// GetByID returns one invoice
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	invoice, err := h.service.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toInvoiceResponse(invoice))
}

// Send issues, registers and delivers the slip for one invoice. Defaults to
// the MANUAL kind, which also holds the invoice against automatic passes.
func (h *InvoiceHandler) Send(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req SendInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.BadRequest(c, err.Error())
		return
	}

	kind := billing.DeliveryKindManual
	if req.Kind != "" {
		kind = billing.DeliveryKind(req.Kind)
	}

	outcome, err := h.service.SendInvoice(c.Request.Context(), id, kind)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{
		"success": outcome.Success,
		"message": outcome.Message,
		"invoice": toInvoiceResponse(outcome.Invoice),
	})
}

// Cancel cancels an invoice that was not paid yet
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	if err := h.service.CancelInvoice(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Statistics aggregates invoice counts, optionally restricted to a due date
func (h *InvoiceHandler) Statistics(c *gin.Context) {
	var dueDate *time.Time
	if raw := c.Query("due_date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.BadRequest(c, "Invalid due date, expected YYYY-MM-DD")
			return
		}
		dueDate = &t
	}

	stats, err := h.service.Statistics(c.Request.Context(), dueDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, InvoiceStatisticsResponse(stats))
}

// RunBilling triggers one automatic billing pass on demand
func (h *InvoiceHandler) RunBilling(c *gin.Context) {
	summary, err := h.service.ProcessAutomaticBilling(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// ===================== Helpers =====================

func (h *InvoiceHandler) bindID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return uuid.Nil, false
	}
	return id, true
}

func toInvoiceResponse(invoice *billing.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:              invoice.ID.String(),
		ContractID:      invoice.ContractID.String(),
		Competencia:     invoice.Competencia.String(),
		PeriodStart:     invoice.PeriodStart.Format("2006-01-02"),
		PeriodEnd:       invoice.PeriodEnd.Format("2006-01-02"),
		DueDate:         invoice.DueDate.Format("2006-01-02"),
		Rent:            invoice.Rent.StringFixed(2),
		PropertyTax:     invoice.Tax.StringFixed(2),
		CondoFee:        invoice.CondoFee.StringFixed(2),
		AdminFee:        invoice.AdminFee.StringFixed(2),
		Other:           invoice.Other.StringFixed(2),
		Total:           invoice.Total.StringFixed(2),
		Items:           invoice.Items,
		Status:          string(invoice.Status),
		DeliveredAt:     invoice.DeliveredAt,
		DeliveryAddress: invoice.DeliveryAddress,
		ManualHold:      invoice.ManualHold,
		CreatedAt:       invoice.CreatedAt,
		UpdatedAt:       invoice.UpdatedAt,
	}
	if invoice.BoletoID != nil {
		s := invoice.BoletoID.String()
		resp.BoletoID = &s
	}
	if invoice.DeliveryKind != nil {
		resp.DeliveryKind = string(*invoice.DeliveryKind)
	}
	return resp
}
