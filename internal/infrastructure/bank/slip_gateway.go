package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/imobia/backend/internal/domain/boleto"
	"github.com/imobia/backend/internal/domain/contract"
)

const (
	defaultBankNumber = "033" // Santander

	documentKindTrade = "DUPLICATA_MERCANTIL"

	payerNameMaxLen    = 40
	payerAddressMaxLen = 40
	payerCityMaxLen    = 30

	fallbackAddress = "Endereco nao informado"
	fallbackCity    = "Nao informada"
	fallbackState   = "SP"
	fallbackZip     = "00000000"
)

const dateLayout = "2006-01-02"

// SlipGateway talks to the bank's collection (cobrança) API. It translates
// between the local boleto model and the bank's bank_slips resource; all
// state decisions stay with the caller.
type SlipGateway struct {
	client *AuthClient
	logger *zap.Logger
	now    func() time.Time
}

// NewSlipGateway creates the bank slip gateway.
func NewSlipGateway(client *AuthClient, logger *zap.Logger) *SlipGateway {
	return &SlipGateway{client: client, logger: logger, now: time.Now}
}

// Register submits the boleto for registration. HTTP 200 and 201 are both
// accepted as success; any other status is a bank rejection reported through
// the result, not an error.
func (g *SlipGateway) Register(ctx context.Context, cred *boleto.Credential, b *boleto.Boleto, payer *contract.Payer) (*boleto.RegisterResult, error) {
	payload := g.buildRegisterPayload(cred, b, payer)
	requestJSON, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("bank: failed to marshal registration payload: %w", err)
	}

	path := "/workspaces/" + cred.WorkspaceOrDefault() + "/bank_slips"
	resp, err := g.client.Request(ctx, cred, http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}

	result := &boleto.RegisterResult{
		CallTrace: boleto.CallTrace{
			RequestPayload:  string(requestJSON),
			ResponsePayload: resp.Body,
			HTTPStatus:      resp.StatusCode,
		},
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		result.ErrorMessage = ExtractErrorMessage(resp.Data)
		g.logger.Warn("bank rejected slip registration",
			zap.String("nosso_numero", b.NossoNumero),
			zap.Int("http_status", resp.StatusCode),
			zap.String("error", result.ErrorMessage))
		return result, nil
	}

	result.Success = true
	result.Data = boleto.RegistrationData{
		BankSlipID:    stringField(resp.Data, "id"),
		BarCode:       stringField(resp.Data, "barCode"),
		DigitableLine: stringField(resp.Data, "digitableLine"),
	}
	if qr, ok := resp.Data["qrCode"].(map[string]interface{}); ok {
		result.Data.PixTxID = stringField(qr, "txId")
		result.Data.PixEmv = stringField(qr, "emv")
	}
	return result, nil
}

// Query fetches the bank-side view of a registered slip.
func (g *SlipGateway) Query(ctx context.Context, cred *boleto.Credential, b *boleto.Boleto) (*boleto.QueryResult, error) {
	path := "/workspaces/" + cred.WorkspaceOrDefault() + "/bank_slips/" + b.BankSlipID
	resp, err := g.client.Request(ctx, cred, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	result := &boleto.QueryResult{
		CallTrace: boleto.CallTrace{
			ResponsePayload: resp.Body,
			HTTPStatus:      resp.StatusCode,
		},
	}

	if resp.StatusCode != http.StatusOK {
		result.ErrorMessage = ExtractErrorMessage(resp.Data)
		return result, nil
	}

	result.Success = true
	result.BankStatus = stringField(resp.Data, "status")
	result.BarCode = stringField(resp.Data, "barCode")
	result.DigitableLine = stringField(resp.Data, "digitableLine")

	if raw := stringField(resp.Data, "paymentDate"); raw != "" {
		if t, err := parseBankDate(raw); err == nil {
			result.PaymentDate = &t
		}
	}
	if v, ok := decimalField(resp.Data, "paidValue"); ok {
		result.PaidValue = &v
	}
	return result, nil
}

// Settle requests a baixa for a registered slip. The bank answers 200 or 204
// on success.
func (g *SlipGateway) Settle(ctx context.Context, cred *boleto.Credential, b *boleto.Boleto, reason string) (*boleto.SettleResult, error) {
	payload := map[string]string{
		"status": "BAIXADO",
		"reason": reason,
	}
	requestJSON, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("bank: failed to marshal settle payload: %w", err)
	}

	path := "/workspaces/" + cred.WorkspaceOrDefault() + "/bank_slips/" + b.BankSlipID
	resp, err := g.client.Request(ctx, cred, http.MethodPatch, path, payload)
	if err != nil {
		return nil, err
	}

	result := &boleto.SettleResult{
		CallTrace: boleto.CallTrace{
			RequestPayload:  string(requestJSON),
			ResponsePayload: resp.Body,
			HTTPStatus:      resp.StatusCode,
		},
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		result.ErrorMessage = ExtractErrorMessage(resp.Data)
		return result, nil
	}

	result.Success = true
	return result, nil
}

// buildRegisterPayload assembles the bank_slips registration body.
func (g *SlipGateway) buildRegisterPayload(cred *boleto.Credential, b *boleto.Boleto, payer *contract.Payer) map[string]interface{} {
	document, _ := payer.BillingDocument()
	documentType := "CNPJ"
	if len(document) == 11 {
		documentType = "CPF"
	}

	environment := "SANDBOX"
	if cred.Environment == boleto.EnvironmentProduction {
		environment = "PRODUCAO"
	}

	bankNumber := cred.BankNumber
	if bankNumber == "" {
		bankNumber = defaultBankNumber
	}

	faceValue, _ := b.FaceValue.Float64()

	payload := map[string]interface{}{
		"environment":  map[string]string{"type": environment},
		"covenantCode": cred.Covenant,
		"bankNumber":   bankNumber,
		"clientNumber": cred.ClientNumber,
		"nsuCode":      b.NossoNumero,
		"nsuDate":      g.now().Format(dateLayout),
		"documentKind": documentKindTrade,
		"issueDate":    b.IssueDate.Format(dateLayout),
		"dueDate":      b.DueDate.Format(dateLayout),
		"nominalValue": faceValue,
		"payer": map[string]interface{}{
			"name":           truncateRunes(payer.Name, payerNameMaxLen),
			"documentType":   documentType,
			"documentNumber": document,
			"address":        payerAddressLine(payer),
			"city":           payerCity(payer),
			"state":          payerState(payer),
			"zipCode":        payerZip(payer),
		},
	}

	if b.DiscountKind != boleto.DiscountExempt {
		payload["discountType"] = string(b.DiscountKind)
		discount, _ := b.DiscountValue.Float64()
		payload["discountValue"] = discount
		if b.DiscountDate != nil {
			payload["discountLimitDate"] = b.DiscountDate.Format(dateLayout)
		}
	} else {
		payload["discountType"] = string(boleto.DiscountExempt)
	}

	if b.PenaltyKind != boleto.PenaltyExempt {
		payload["fineType"] = string(b.PenaltyKind)
		penalty, _ := b.PenaltyValue.Float64()
		payload["fineValue"] = penalty
		if b.PenaltyDate != nil {
			payload["fineDate"] = b.PenaltyDate.Format(dateLayout)
		}
	} else {
		payload["fineType"] = string(boleto.PenaltyExempt)
	}

	if b.InterestKind != boleto.InterestExempt {
		payload["interestType"] = string(b.InterestKind)
		interest, _ := b.InterestValue.Float64()
		payload["interestValue"] = interest
	} else {
		payload["interestType"] = string(boleto.InterestExempt)
	}

	if b.PayerMessage != "" {
		payload["messages"] = SplitPayerMessage(b.PayerMessage)
	}
	if b.SeuNumero != "" {
		payload["documentNumber"] = b.SeuNumero
	}

	return payload
}

func payerAddressLine(payer *contract.Payer) string {
	addr := payer.PrimaryAddress()
	if addr == nil {
		return fallbackAddress
	}
	line := addr.Street + ", " + addr.Number
	if addr.Complement != "" {
		line += " - " + addr.Complement
	}
	return truncateRunes(line, payerAddressMaxLen)
}

func payerCity(payer *contract.Payer) string {
	addr := payer.PrimaryAddress()
	if addr == nil || addr.City == "" {
		return fallbackCity
	}
	return truncateRunes(addr.City, payerCityMaxLen)
}

func payerState(payer *contract.Payer) string {
	addr := payer.PrimaryAddress()
	if addr == nil || addr.State == "" {
		return fallbackState
	}
	return addr.State
}

func payerZip(payer *contract.Payer) string {
	addr := payer.PrimaryAddress()
	if addr == nil {
		return fallbackZip
	}
	zip := digitsOnly(addr.ZipCode)
	if zip == "" {
		return fallbackZip
	}
	return zip
}

func digitsOnly(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			out = append(out, r)
		}
	}
	return string(out)
}

func stringField(data map[string]interface{}, key string) string {
	if data == nil {
		return ""
	}
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

func decimalField(data map[string]interface{}, key string) (decimal.Decimal, bool) {
	if data == nil {
		return decimal.Decimal{}, false
	}
	switch v := data[key].(type) {
	case float64:
		return decimal.NewFromFloat(v), true
	case string:
		if v == "" {
			return decimal.Decimal{}, false
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	}
	return decimal.Decimal{}, false
}

// parseBankDate accepts the formats the bank is known to emit.
func parseBankDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(dateLayout, raw)
}

var _ boleto.Gateway = (*SlipGateway)(nil)
