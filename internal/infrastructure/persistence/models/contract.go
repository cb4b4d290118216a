package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/imobia/backend/internal/domain/contract"
)

// ContractModel is the persistence model for the lease contract projection.
type ContractModel struct {
	BaseModel
	Code        string             `gorm:"type:varchar(50);not null;uniqueIndex"`
	PropertyID  uuid.UUID          `gorm:"type:uuid;not null;index"`
	PayerID     *uuid.UUID         `gorm:"type:uuid;index"`
	BaseValue   decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	DueDay      int                `gorm:"not null;default:10"`
	LeadDays    int                `gorm:"not null;default:5"`
	AutoBilling bool               `gorm:"not null;default:false;index"`
	Active      bool               `gorm:"not null;default:true;index"`
	StartDate   time.Time          `gorm:"not null"`
	EndDate     *time.Time
	Items       []BillingItemModel `gorm:"foreignKey:ContractID;references:ID"`
}

// TableName returns the table name for GORM
func (ContractModel) TableName() string {
	return "contracts"
}

// ToDomain converts the persistence model to a domain Contract.
func (m *ContractModel) ToDomain() *contract.Contract {
	c := &contract.Contract{
		BaseEntity:  m.BaseModel.ToDomain(),
		Code:        m.Code,
		PropertyID:  m.PropertyID,
		PayerID:     m.PayerID,
		BaseValue:   m.BaseValue,
		DueDay:      m.DueDay,
		LeadDays:    m.LeadDays,
		AutoBilling: m.AutoBilling,
		Active:      m.Active,
		StartDate:   m.StartDate,
		EndDate:     m.EndDate,
		Items:       make([]contract.BillingItem, len(m.Items)),
	}
	for i, it := range m.Items {
		c.Items[i] = it.ToDomain()
	}
	return c
}

// FromDomain populates the persistence model from a domain Contract.
func (m *ContractModel) FromDomain(c *contract.Contract) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.Code = c.Code
	m.PropertyID = c.PropertyID
	m.PayerID = c.PayerID
	m.BaseValue = c.BaseValue
	m.DueDay = c.DueDay
	m.LeadDays = c.LeadDays
	m.AutoBilling = c.AutoBilling
	m.Active = c.Active
	m.StartDate = c.StartDate
	m.EndDate = c.EndDate
	m.Items = make([]BillingItemModel, len(c.Items))
	for i, it := range c.Items {
		m.Items[i].FromDomain(it)
	}
}

// BillingItemModel is the persistence model for a contract billing item.
type BillingItemModel struct {
	ID          uuid.UUID           `gorm:"type:uuid;primary_key"`
	ContractID  uuid.UUID           `gorm:"type:uuid;not null;index"`
	Kind        contract.ItemKind   `gorm:"type:varchar(30);not null"`
	Description string              `gorm:"type:varchar(200);not null"`
	Amount      decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	AmountKind  contract.AmountKind `gorm:"type:varchar(20);not null;default:'FIXO'"`
	Active      bool                `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (BillingItemModel) TableName() string {
	return "contract_billing_items"
}

// ToDomain converts the persistence model to a domain BillingItem.
func (m *BillingItemModel) ToDomain() contract.BillingItem {
	return contract.BillingItem{
		ID:          m.ID,
		ContractID:  m.ContractID,
		Kind:        m.Kind,
		Description: m.Description,
		Amount:      m.Amount,
		AmountKind:  m.AmountKind,
		Active:      m.Active,
	}
}

// FromDomain populates the persistence model from a domain BillingItem.
func (m *BillingItemModel) FromDomain(it contract.BillingItem) {
	m.ID = it.ID
	m.ContractID = it.ContractID
	m.Kind = it.Kind
	m.Description = it.Description
	m.Amount = it.Amount
	m.AmountKind = it.AmountKind
	m.Active = it.Active
}

// PayerModel is the persistence model for the payer projection.
type PayerModel struct {
	ID        uuid.UUID            `gorm:"type:uuid;primary_key"`
	Name      string               `gorm:"type:varchar(200);not null"`
	Email     string               `gorm:"type:varchar(200)"`
	Documents []PayerDocumentModel `gorm:"foreignKey:PayerID;references:ID"`
	Addresses []PayerAddressModel  `gorm:"foreignKey:PayerID;references:ID"`
}

// TableName returns the table name for GORM
func (PayerModel) TableName() string {
	return "payers"
}

// ToDomain converts the persistence model to a domain Payer.
func (m *PayerModel) ToDomain() *contract.Payer {
	p := &contract.Payer{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Documents: make([]contract.Document, len(m.Documents)),
		Addresses: make([]contract.Address, len(m.Addresses)),
	}
	for i, d := range m.Documents {
		p.Documents[i] = contract.Document{Kind: d.Kind, Number: d.Number}
	}
	for i, a := range m.Addresses {
		p.Addresses[i] = contract.Address{
			Seq:        a.Seq,
			Street:     a.Street,
			Number:     a.Number,
			Complement: a.Complement,
			City:       a.City,
			State:      a.State,
			ZipCode:    a.ZipCode,
		}
	}
	return p
}

// FromDomain populates the persistence model from a domain Payer.
func (m *PayerModel) FromDomain(p *contract.Payer) {
	m.ID = p.ID
	m.Name = p.Name
	m.Email = p.Email
	m.Documents = make([]PayerDocumentModel, len(p.Documents))
	for i, d := range p.Documents {
		m.Documents[i] = PayerDocumentModel{
			ID:      uuid.New(),
			PayerID: p.ID,
			Kind:    d.Kind,
			Number:  d.Number,
		}
	}
	m.Addresses = make([]PayerAddressModel, len(p.Addresses))
	for i, a := range p.Addresses {
		m.Addresses[i] = PayerAddressModel{
			ID:         uuid.New(),
			PayerID:    p.ID,
			Seq:        a.Seq,
			Street:     a.Street,
			Number:     a.Number,
			Complement: a.Complement,
			City:       a.City,
			State:      a.State,
			ZipCode:    a.ZipCode,
		}
	}
}

// PayerDocumentModel is the persistence model for a payer identity document.
type PayerDocumentModel struct {
	ID      uuid.UUID             `gorm:"type:uuid;primary_key"`
	PayerID uuid.UUID             `gorm:"type:uuid;not null;index"`
	Kind    contract.DocumentKind `gorm:"type:varchar(10);not null"`
	Number  string                `gorm:"type:varchar(30);not null"`
}

// TableName returns the table name for GORM
func (PayerDocumentModel) TableName() string {
	return "payer_documents"
}

// PayerAddressModel is the persistence model for a payer address. Seq orders
// the addresses; the lowest is the primary one.
type PayerAddressModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	PayerID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Seq        int64     `gorm:"not null;default:0;index"`
	Street     string    `gorm:"type:varchar(200)"`
	Number     string    `gorm:"type:varchar(20)"`
	Complement string    `gorm:"type:varchar(100)"`
	City       string    `gorm:"type:varchar(100)"`
	State      string    `gorm:"type:varchar(2)"`
	ZipCode    string    `gorm:"type:varchar(10)"`
}

// TableName returns the table name for GORM
func (PayerAddressModel) TableName() string {
	return "payer_addresses"
}
