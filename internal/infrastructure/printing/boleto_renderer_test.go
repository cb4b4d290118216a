package printing

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/imobia/backend/internal/domain/billing"
	"github.com/imobia/backend/internal/domain/boleto"
	"github.com/imobia/backend/internal/domain/contract"
	"github.com/imobia/backend/internal/infrastructure/config"
)

func registeredBoleto() *boleto.Boleto {
	b := boleto.New(
		uuid.New(),
		uuid.New(),
		boleto.FormatNossoNumero("1234567", 42),
		decimal.NewFromFloat(1500.50),
		time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	)
	b.SeuNumero = "inv-001"
	b.PayerMessage = "Aluguel ref. 03/2026"
	b.RecordRegistration(boleto.RegistrationData{
		BankSlipID:    "bank-1",
		BarCode:       "03391234500000150501234567000000000000000000",
		DigitableLine: "03399.12345 67000.000000 00000.000000 1 95010000150050",
		PixEmv:        "00020101021226830014br.gov.bcb.pix",
	}, "1234567", time.Now())
	return b
}

func testRenderer(t *testing.T) *BoletoRenderer {
	t.Helper()
	r, err := NewBoletoRenderer(config.PrintingConfig{
		WkhtmltopdfPath: "wkhtmltopdf",
		TempDir:         t.TempDir(),
	}, zap.NewNop())
	require.NoError(t, err)
	return r
}

func TestBoletoRenderer_RenderHTML(t *testing.T) {
	r := testRenderer(t)

	payer := &contract.Payer{
		ID:        uuid.New(),
		Name:      "Maria Souza",
		Documents: []contract.Document{{Kind: contract.DocumentKindCPF, Number: "123.456.789-09"}},
	}

	period := billing.Period{
		Start:   time.Date(2026, 2, 11, 0, 0, 0, 0, time.UTC),
		End:     time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		DueDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	}
	invoice := billing.NewInvoice(uuid.New(), billing.NewCompetencia(2026, time.March), period, billing.Amounts{
		Rent:  decimal.NewFromInt(2000),
		Total: decimal.NewFromInt(2000),
		Items: billing.ItemDetails{{
			Kind:        contract.ItemKindRent,
			Description: "Aluguel",
			Value:       decimal.NewFromInt(2000),
		}},
	})

	html, err := r.renderHTML(registeredBoleto(), payer, invoice)
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, "Maria Souza - 12345678909")
	assert.Contains(t, out, "10/03/2026")
	assert.Contains(t, out, "R$ 1500.50")
	assert.Contains(t, out, "12345670000000000042")
	assert.Contains(t, out, "03399.12345 67000.000000")
	assert.Contains(t, out, "Aluguel")
	assert.Contains(t, out, "Março/2026")
	assert.Contains(t, out, "PIX copia e cola")
}

func TestBoletoRenderer_Render(t *testing.T) {
	payer := &contract.Payer{ID: uuid.New(), Name: "Maria Souza"}

	t.Run("produces pdf via converter", func(t *testing.T) {
		r := testRenderer(t)
		r.convert = func(ctx context.Context, htmlPath, pdfPath string) error {
			return os.WriteFile(pdfPath, []byte("%PDF-1.4 fake"), 0644)
		}

		path, err := r.Render(context.Background(), registeredBoleto(), payer, nil)
		require.NoError(t, err)
		defer os.Remove(path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "%PDF")
	})

	t.Run("rejects unregistered slip", func(t *testing.T) {
		r := testRenderer(t)
		b := boleto.New(uuid.New(), uuid.New(), "123", decimal.NewFromInt(100), time.Now(), time.Now())

		_, err := r.Render(context.Background(), b, payer, nil)
		assert.Error(t, err)
	})
}
