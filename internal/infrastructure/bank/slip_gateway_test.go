package bank

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/imobia/backend/internal/domain/boleto"
	"github.com/imobia/backend/internal/domain/contract"
)

func testGatewayServer(t *testing.T, handler http.HandlerFunc) (*SlipGateway, *boleto.Credential, func()) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "tok-1", "expires_in": 900})
	})
	mux.HandleFunc("/api/", handler)
	server := httptest.NewServer(mux)

	client := testAuthClient(t, &fakeCredentialRepo{})
	cred := testCredential(server.URL+"/token", server.URL+"/api")
	gateway := NewSlipGateway(client, zap.NewNop())
	gateway.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }
	return gateway, cred, server.Close
}

func gatewayTestBoleto() *boleto.Boleto {
	b := boleto.New(
		uuid.New(),
		uuid.New(),
		boleto.FormatNossoNumero("1234567", 7),
		decimal.NewFromFloat(1500.50),
		time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	)
	b.SeuNumero = "INV-2026-03"
	b.PayerMessage = "Pagamento referente ao aluguel de marco"
	return b
}

func gatewayTestPayer() *contract.Payer {
	return &contract.Payer{
		ID:   uuid.New(),
		Name: "Maria Aparecida dos Santos Oliveira e Silva Junior",
		Documents: []contract.Document{
			{Kind: contract.DocumentKindCPF, Number: "123.456.789-09"},
		},
		Addresses: []contract.Address{
			{Seq: 1, Street: "Rua das Flores", Number: "100", Complement: "Ap 12", City: "Campinas", State: "SP", ZipCode: "13010-000"},
		},
	}
}

func TestRegisterSuccess(t *testing.T) {
	var captured map[string]interface{}
	gateway, cred, closeFn := testGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/workspaces/default/bank_slips", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":            "slip-abc",
			"barCode":       "03391234500001500500000000000000000000000000",
			"digitableLine": "03399.12345 67890.101112 13141.516171 8 12340000150050",
			"qrCode": map[string]interface{}{
				"txId": "tx-1",
				"emv":  "0002012658...",
			},
		})
	})
	defer closeFn()

	result, err := gateway.Register(context.Background(), cred, gatewayTestBoleto(), gatewayTestPayer())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "slip-abc", result.Data.BankSlipID)
	assert.Equal(t, "tx-1", result.Data.PixTxID)
	assert.Equal(t, http.StatusCreated, result.HTTPStatus)
	assert.NotEmpty(t, result.RequestPayload)
	assert.NotEmpty(t, result.ResponsePayload)

	// Payload shape
	assert.Equal(t, "1234567", captured["covenantCode"])
	assert.Equal(t, "033", captured["bankNumber"])
	assert.Equal(t, "12345670000000000007", captured["nsuCode"])
	assert.Equal(t, "2026-03-02", captured["nsuDate"])
	assert.Equal(t, "DUPLICATA_MERCANTIL", captured["documentKind"])
	assert.Equal(t, "2026-03-10", captured["dueDate"])
	assert.Equal(t, 1500.50, captured["nominalValue"])
	assert.Equal(t, "ISENTO", captured["discountType"])
	assert.Equal(t, "ISENTO", captured["fineType"])
	assert.Equal(t, "ISENTO", captured["interestType"])
	assert.Equal(t, "INV-2026-03", captured["documentNumber"])

	env := captured["environment"].(map[string]interface{})
	assert.Equal(t, "SANDBOX", env["type"])

	payer := captured["payer"].(map[string]interface{})
	assert.Equal(t, "CPF", payer["documentType"])
	assert.Equal(t, "12345678909", payer["documentNumber"])
	assert.LessOrEqual(t, len(payer["name"].(string)), 40)
	assert.Equal(t, "Rua das Flores, 100 - Ap 12", payer["address"])
	assert.Equal(t, "Campinas", payer["city"])
	assert.Equal(t, "13010000", payer["zipCode"])

	messages := captured["messages"].([]interface{})
	assert.NotEmpty(t, messages)
}

func TestRegisterPayerFallbacks(t *testing.T) {
	var captured map[string]interface{}
	gateway, cred, closeFn := testGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "slip-1"})
	})
	defer closeFn()

	payer := &contract.Payer{ID: uuid.New(), Name: "Sem Endereco"}
	_, err := gateway.Register(context.Background(), cred, gatewayTestBoleto(), payer)
	require.NoError(t, err)

	p := captured["payer"].(map[string]interface{})
	assert.Equal(t, "CPF", p["documentType"])
	assert.Equal(t, "00000000000", p["documentNumber"])
	assert.Equal(t, "Endereco nao informado", p["address"])
	assert.Equal(t, "Nao informada", p["city"])
	assert.Equal(t, "SP", p["state"])
	assert.Equal(t, "00000000", p["zipCode"])
}

func TestRegisterRejection(t *testing.T) {
	gateway, cred, closeFn := testGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]interface{}{"message": "convenio invalido"})
	})
	defer closeFn()

	result, err := gateway.Register(context.Background(), cred, gatewayTestBoleto(), gatewayTestPayer())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "convenio invalido", result.ErrorMessage)
	assert.Equal(t, http.StatusUnprocessableEntity, result.HTTPStatus)
}

func TestQueryMapsBankFields(t *testing.T) {
	gateway, cred, closeFn := testGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/workspaces/default/bank_slips/slip-abc", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":        "PAGO",
			"paymentDate":   "2026-03-09",
			"paidValue":     1500.50,
			"barCode":       "0339",
			"digitableLine": "03399",
		})
	})
	defer closeFn()

	b := gatewayTestBoleto()
	b.BankSlipID = "slip-abc"

	result, err := gateway.Query(context.Background(), cred, b)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "PAGO", result.BankStatus)
	require.NotNil(t, result.PaymentDate)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), *result.PaymentDate)
	require.NotNil(t, result.PaidValue)
	assert.True(t, result.PaidValue.Equal(decimal.NewFromFloat(1500.50)))
	assert.Equal(t, "0339", result.BarCode)
}

func TestSettle(t *testing.T) {
	t.Run("204 is success", func(t *testing.T) {
		gateway, cred, closeFn := testGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPatch, r.Method)
			var payload map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "BAIXADO", payload["status"])
			assert.Equal(t, "CANCELAMENTO_CONTRATO", payload["reason"])
			w.WriteHeader(http.StatusNoContent)
		})
		defer closeFn()

		b := gatewayTestBoleto()
		b.BankSlipID = "slip-abc"
		result, err := gateway.Settle(context.Background(), cred, b, "CANCELAMENTO_CONTRATO")
		require.NoError(t, err)
		assert.True(t, result.Success)
	})

	t.Run("rejection carries message", func(t *testing.T) {
		gateway, cred, closeFn := testGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]interface{}{"message": "titulo liquidado"})
		})
		defer closeFn()

		b := gatewayTestBoleto()
		b.BankSlipID = "slip-abc"
		result, err := gateway.Settle(context.Background(), cred, b, "SOLICITACAO_BENEFICIARIO")
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, "titulo liquidado", result.ErrorMessage)
	})
}
