package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/imobia/backend/internal/domain/boleto"
)

// BoletoModel is the persistence model for a bank slip.
type BoletoModel struct {
	BaseModel
	CredentialID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_boleto_credential_nosso,priority:1"`
	PayerID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	InvoiceID    *uuid.UUID `gorm:"type:uuid;index"`
	PropertyID   *uuid.UUID `gorm:"type:uuid;index"`

	NossoNumero string `gorm:"type:varchar(20);not null;uniqueIndex:idx_boleto_credential_nosso,priority:2"`
	SeuNumero   string `gorm:"type:varchar(50);index"`

	FaceValue     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	PenaltyValue  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	InterestValue decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`

	DiscountKind boleto.DiscountKind `gorm:"type:varchar(30);not null;default:'ISENTO'"`
	PenaltyKind  boleto.PenaltyKind  `gorm:"type:varchar(30);not null;default:'ISENTO'"`
	InterestKind boleto.InterestKind `gorm:"type:varchar(30);not null;default:'ISENTO'"`

	IssueDate        time.Time `gorm:"not null"`
	DueDate          time.Time `gorm:"not null;index"`
	PaymentLimitDate *time.Time
	DiscountDate     *time.Time
	PenaltyDate      *time.Time

	PayerMessage string `gorm:"type:varchar(500)"`

	Status        boleto.Status `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	BankSlipID    string        `gorm:"type:varchar(100);index"`
	BarCode       string        `gorm:"type:varchar(60)"`
	DigitableLine string        `gorm:"type:varchar(60)"`
	PixTxID       string        `gorm:"type:varchar(100)"`
	PixEmv        string        `gorm:"type:text"`
	Covenant      string        `gorm:"type:varchar(10)"`

	Attempts  int    `gorm:"not null;default:0"`
	LastError string `gorm:"type:text"`

	RegisteredAt *time.Time
	PaidAt       *time.Time
	PaidValue    *decimal.Decimal `gorm:"type:decimal(18,2)"`
	SettledAt    *time.Time
	SettleReason string `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (BoletoModel) TableName() string {
	return "boletos"
}

// ToDomain converts the persistence model to a domain Boleto.
func (m *BoletoModel) ToDomain() *boleto.Boleto {
	return &boleto.Boleto{
		BaseEntity:       m.BaseModel.ToDomain(),
		CredentialID:     m.CredentialID,
		PayerID:          m.PayerID,
		InvoiceID:        m.InvoiceID,
		PropertyID:       m.PropertyID,
		NossoNumero:      m.NossoNumero,
		SeuNumero:        m.SeuNumero,
		FaceValue:        m.FaceValue,
		DiscountValue:    m.DiscountValue,
		PenaltyValue:     m.PenaltyValue,
		InterestValue:    m.InterestValue,
		DiscountKind:     m.DiscountKind,
		PenaltyKind:      m.PenaltyKind,
		InterestKind:     m.InterestKind,
		IssueDate:        m.IssueDate,
		DueDate:          m.DueDate,
		PaymentLimitDate: m.PaymentLimitDate,
		DiscountDate:     m.DiscountDate,
		PenaltyDate:      m.PenaltyDate,
		PayerMessage:     m.PayerMessage,
		Status:           m.Status,
		BankSlipID:       m.BankSlipID,
		BarCode:          m.BarCode,
		DigitableLine:    m.DigitableLine,
		PixTxID:          m.PixTxID,
		PixEmv:           m.PixEmv,
		Covenant:         m.Covenant,
		Attempts:         m.Attempts,
		LastError:        m.LastError,
		RegisteredAt:     m.RegisteredAt,
		PaidAt:           m.PaidAt,
		PaidValue:        m.PaidValue,
		SettledAt:        m.SettledAt,
		SettleReason:     m.SettleReason,
	}
}

// FromDomain populates the persistence model from a domain Boleto.
func (m *BoletoModel) FromDomain(b *boleto.Boleto) {
	m.FromDomainBaseEntity(b.BaseEntity)
	m.CredentialID = b.CredentialID
	m.PayerID = b.PayerID
	m.InvoiceID = b.InvoiceID
	m.PropertyID = b.PropertyID
	m.NossoNumero = b.NossoNumero
	m.SeuNumero = b.SeuNumero
	m.FaceValue = b.FaceValue
	m.DiscountValue = b.DiscountValue
	m.PenaltyValue = b.PenaltyValue
	m.InterestValue = b.InterestValue
	m.DiscountKind = b.DiscountKind
	m.PenaltyKind = b.PenaltyKind
	m.InterestKind = b.InterestKind
	m.IssueDate = b.IssueDate
	m.DueDate = b.DueDate
	m.PaymentLimitDate = b.PaymentLimitDate
	m.DiscountDate = b.DiscountDate
	m.PenaltyDate = b.PenaltyDate
	m.PayerMessage = b.PayerMessage
	m.Status = b.Status
	m.BankSlipID = b.BankSlipID
	m.BarCode = b.BarCode
	m.DigitableLine = b.DigitableLine
	m.PixTxID = b.PixTxID
	m.PixEmv = b.PixEmv
	m.Covenant = b.Covenant
	m.Attempts = b.Attempts
	m.LastError = b.LastError
	m.RegisteredAt = b.RegisteredAt
	m.PaidAt = b.PaidAt
	m.PaidValue = b.PaidValue
	m.SettledAt = b.SettledAt
	m.SettleReason = b.SettleReason
}

// BoletoModelFromDomain creates a new persistence model from a domain Boleto.
func BoletoModelFromDomain(b *boleto.Boleto) *BoletoModel {
	m := &BoletoModel{}
	m.FromDomain(b)
	return m
}

// BoletoOperationLogModel is the persistence model for the per-call audit
// trail. Rows are append-only.
type BoletoOperationLogModel struct {
	BaseModel
	BoletoID        uuid.UUID        `gorm:"type:uuid;not null;index"`
	Operation       boleto.Operation `gorm:"type:varchar(20);not null"`
	RequestPayload  string           `gorm:"type:text"`
	ResponsePayload string           `gorm:"type:text"`
	HTTPStatus      int              `gorm:"not null;default:0"`
	Success         bool             `gorm:"not null;default:false"`
	ErrorMessage    string           `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (BoletoOperationLogModel) TableName() string {
	return "boleto_operation_logs"
}

// ToDomain converts the persistence model to a domain OperationLog.
func (m *BoletoOperationLogModel) ToDomain() *boleto.OperationLog {
	return &boleto.OperationLog{
		BaseEntity:      m.BaseModel.ToDomain(),
		BoletoID:        m.BoletoID,
		Operation:       m.Operation,
		RequestPayload:  m.RequestPayload,
		ResponsePayload: m.ResponsePayload,
		HTTPStatus:      m.HTTPStatus,
		Success:         m.Success,
		ErrorMessage:    m.ErrorMessage,
	}
}

// FromDomain populates the persistence model from a domain OperationLog.
func (m *BoletoOperationLogModel) FromDomain(l *boleto.OperationLog) {
	m.FromDomainBaseEntity(l.BaseEntity)
	m.BoletoID = l.BoletoID
	m.Operation = l.Operation
	m.RequestPayload = l.RequestPayload
	m.ResponsePayload = l.ResponsePayload
	m.HTTPStatus = l.HTTPStatus
	m.Success = l.Success
	m.ErrorMessage = l.ErrorMessage
}

// BankCredentialModel is the persistence model for a bank API credential.
type BankCredentialModel struct {
	BaseModel
	Description string `gorm:"type:varchar(200)"`

	ClientID     string `gorm:"type:varchar(100);not null"`
	ClientSecret string `gorm:"type:varchar(200);not null"`
	WorkspaceID  string `gorm:"type:varchar(100)"`

	CertPath      string `gorm:"type:varchar(300)"`
	CertPassword  string `gorm:"type:varchar(200)"`
	CertExpiresAt *time.Time

	Covenant     string `gorm:"type:varchar(10);not null"`
	Wallet       string `gorm:"type:varchar(10)"`
	BankNumber   string `gorm:"type:varchar(5)"`
	ClientNumber string `gorm:"type:varchar(20)"`

	Environment boleto.Environment `gorm:"type:varchar(20);not null;default:'sandbox'"`
	AuthURL     string             `gorm:"type:varchar(300)"`
	APIURL      string             `gorm:"type:varchar(300)"`

	Active bool `gorm:"not null;default:true;index"`

	AccessToken    string `gorm:"type:text"`
	TokenExpiresAt *time.Time
}

// TableName returns the table name for GORM
func (BankCredentialModel) TableName() string {
	return "bank_credentials"
}

// ToDomain converts the persistence model to a domain Credential.
func (m *BankCredentialModel) ToDomain() *boleto.Credential {
	return &boleto.Credential{
		BaseEntity:     m.BaseModel.ToDomain(),
		Description:    m.Description,
		ClientID:       m.ClientID,
		ClientSecret:   m.ClientSecret,
		WorkspaceID:    m.WorkspaceID,
		CertPath:       m.CertPath,
		CertPassword:   m.CertPassword,
		CertExpiresAt:  m.CertExpiresAt,
		Covenant:       m.Covenant,
		Wallet:         m.Wallet,
		BankNumber:     m.BankNumber,
		ClientNumber:   m.ClientNumber,
		Environment:    m.Environment,
		AuthURL:        m.AuthURL,
		APIURL:         m.APIURL,
		Active:         m.Active,
		AccessToken:    m.AccessToken,
		TokenExpiresAt: m.TokenExpiresAt,
	}
}

// FromDomain populates the persistence model from a domain Credential.
func (m *BankCredentialModel) FromDomain(c *boleto.Credential) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.Description = c.Description
	m.ClientID = c.ClientID
	m.ClientSecret = c.ClientSecret
	m.WorkspaceID = c.WorkspaceID
	m.CertPath = c.CertPath
	m.CertPassword = c.CertPassword
	m.CertExpiresAt = c.CertExpiresAt
	m.Covenant = c.Covenant
	m.Wallet = c.Wallet
	m.BankNumber = c.BankNumber
	m.ClientNumber = c.ClientNumber
	m.Environment = c.Environment
	m.AuthURL = c.AuthURL
	m.APIURL = c.APIURL
	m.Active = c.Active
	m.AccessToken = c.AccessToken
	m.TokenExpiresAt = c.TokenExpiresAt
}
