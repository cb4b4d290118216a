package contract

import (
	"strings"

	"github.com/google/uuid"
)

// DocumentKind is the kind of identity document registered for a person.
type DocumentKind string

const (
	DocumentKindCPF  DocumentKind = "CPF"
	DocumentKindCNPJ DocumentKind = "CNPJ"
)

// Document is an identity document attached to a payer.
type Document struct {
	Kind   DocumentKind
	Number string
}

// Address is a registered address of a payer. Seq is the storage-assigned
// sequence; the lowest Seq is the primary address (documented policy, the
// bank payload depends on it being stable).
type Address struct {
	Seq        int64
	Street     string
	Number     string
	Complement string
	City       string
	State      string
	ZipCode    string
}

// Payer is a read-only projection of the person who pays a contract's
// invoices. Person CRUD lives elsewhere.
type Payer struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Documents []Document
	Addresses []Address
}

// BillingDocument returns the payer's CPF or CNPJ with non-digits stripped.
// Payers without a usable document fall back to a zeroed CPF, matching how
// the bank treats unidentified payers.
func (p *Payer) BillingDocument() (string, DocumentKind) {
	for _, d := range p.Documents {
		if d.Kind == DocumentKindCPF || d.Kind == DocumentKindCNPJ {
			return digitsOnly(d.Number), d.Kind
		}
	}
	return "00000000000", DocumentKindCPF
}

// PrimaryAddress returns the address with the lowest sequence, or nil when
// the payer has no registered address.
func (p *Payer) PrimaryAddress() *Address {
	var primary *Address
	for i := range p.Addresses {
		if primary == nil || p.Addresses[i].Seq < primary.Seq {
			primary = &p.Addresses[i]
		}
	}
	return primary
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
