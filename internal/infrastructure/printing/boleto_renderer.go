package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"

	appbilling "github.com/imobia/backend/internal/application/billing"
	"github.com/imobia/backend/internal/domain/billing"
	"github.com/imobia/backend/internal/domain/boleto"
	"github.com/imobia/backend/internal/domain/contract"
	"github.com/imobia/backend/internal/infrastructure/config"
)

const defaultRenderTimeout = 30 * time.Second

// BoletoRenderer produces the printable slip PDF using the wkhtmltopdf
// command-line tool. The returned file is temporary; the caller removes it
// after delivery.
type BoletoRenderer struct {
	cfg     config.PrintingConfig
	timeout time.Duration
	logger  *zap.Logger
	tmpl    *template.Template

	// convert is swappable for tests; defaults to running wkhtmltopdf.
	convert func(ctx context.Context, htmlPath, pdfPath string) error
}

// NewBoletoRenderer creates a new BoletoRenderer.
func NewBoletoRenderer(cfg config.PrintingConfig, logger *zap.Logger) (*BoletoRenderer, error) {
	tmpl, err := template.New("boleto").Parse(slipTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse slip template: %w", err)
	}

	r := &BoletoRenderer{
		cfg:     cfg,
		timeout: defaultRenderTimeout,
		logger:  logger.Named("printing"),
		tmpl:    tmpl,
	}
	r.convert = r.runWkhtmltopdf
	return r, nil
}

type slipTemplateData struct {
	PayerName     string
	PayerDocument string
	NossoNumero   string
	SeuNumero     string
	DueDate       string
	FaceValue     string
	DigitableLine string
	BarCode       string
	PixEmv        string
	Competencia   string
	PeriodStart   string
	PeriodEnd     string
	Items         []slipItemData
	Message       string
}

type slipItemData struct {
	Description string
	Value       string
}

// Render produces a PDF for a registered slip and returns its path.
func (r *BoletoRenderer) Render(ctx context.Context, b *boleto.Boleto, payer *contract.Payer, invoice *billing.Invoice) (string, error) {
	if b.DigitableLine == "" {
		return "", errors.New("boleto has no digitable line to print")
	}

	html, err := r.renderHTML(b, payer, invoice)
	if err != nil {
		return "", err
	}

	htmlFile, err := os.CreateTemp(r.cfg.TempDir, "boleto-*.html")
	if err != nil {
		return "", fmt.Errorf("failed to create temp HTML file: %w", err)
	}
	htmlPath := htmlFile.Name()
	defer os.Remove(htmlPath)

	if _, err := htmlFile.Write(html); err != nil {
		htmlFile.Close()
		return "", fmt.Errorf("failed to write temp HTML file: %w", err)
	}
	htmlFile.Close()

	pdfFile, err := os.CreateTemp(r.cfg.TempDir, "boleto-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp PDF file: %w", err)
	}
	pdfPath := pdfFile.Name()
	pdfFile.Close()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.convert(ctx, htmlPath, pdfPath); err != nil {
		os.Remove(pdfPath)
		return "", err
	}

	r.logger.Debug("Slip PDF rendered",
		zap.String("boleto_id", b.ID.String()),
		zap.String("path", pdfPath),
	)
	return pdfPath, nil
}

func (r *BoletoRenderer) renderHTML(b *boleto.Boleto, payer *contract.Payer, invoice *billing.Invoice) ([]byte, error) {
	document, _ := payer.BillingDocument()

	data := slipTemplateData{
		PayerName:     payer.Name,
		PayerDocument: document,
		NossoNumero:   b.NossoNumero,
		SeuNumero:     b.SeuNumero,
		DueDate:       b.DueDate.Format("02/01/2006"),
		FaceValue:     b.FaceValue.StringFixed(2),
		DigitableLine: b.DigitableLine,
		BarCode:       b.BarCode,
		PixEmv:        b.PixEmv,
		Message:       b.PayerMessage,
	}
	if invoice != nil {
		data.Competencia = invoice.Competencia.DisplayPtBR()
		data.PeriodStart = invoice.PeriodStart.Format("02/01/2006")
		data.PeriodEnd = invoice.PeriodEnd.Format("02/01/2006")
		for _, item := range invoice.Items {
			data.Items = append(data.Items, slipItemData{
				Description: item.Description,
				Value:       item.Value.StringFixed(2),
			})
		}
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render slip template: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *BoletoRenderer) runWkhtmltopdf(ctx context.Context, htmlPath, pdfPath string) error {
	args := []string{
		"--quiet",
		"--encoding", "UTF-8",
		"--page-size", "A4",
		htmlPath,
		pdfPath,
	}

	cmd := exec.CommandContext(ctx, r.cfg.WkhtmltopdfPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("PDF rendering timed out after %v: %w", r.timeout, err)
		}
		r.logger.Error("wkhtmltopdf failed",
			zap.Error(err),
			zap.String("stderr", stderr.String()),
		)
		return fmt.Errorf("wkhtmltopdf execution failed: %s: %w", stderr.String(), err)
	}
	return nil
}

// Ensure BoletoRenderer implements the billing SlipRenderer
var _ appbilling.SlipRenderer = (*BoletoRenderer)(nil)

const slipTemplate = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>Boleto</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; color: #222; }
.header { border-bottom: 2px solid #cc0000; padding-bottom: 8px; margin-bottom: 12px; }
.bank { font-size: 18px; font-weight: bold; color: #cc0000; }
.line { font-family: "Courier New", monospace; font-size: 14px; letter-spacing: 1px; }
table { width: 100%; border-collapse: collapse; margin-top: 12px; }
td, th { border: 1px solid #999; padding: 4px 6px; text-align: left; }
th { background: #eee; }
.label { font-size: 9px; color: #666; text-transform: uppercase; display: block; }
.value { font-size: 12px; }
.pix { margin-top: 16px; font-size: 10px; word-break: break-all; }
</style>
</head>
<body>
<div class="header">
  <span class="bank">Santander | 033-7</span>
  <span class="line">{{.DigitableLine}}</span>
</div>

<table>
  <tr>
    <td><span class="label">Pagador</span><span class="value">{{.PayerName}} - {{.PayerDocument}}</span></td>
    <td><span class="label">Vencimento</span><span class="value">{{.DueDate}}</span></td>
  </tr>
  <tr>
    <td><span class="label">Nosso Número</span><span class="value">{{.NossoNumero}}</span></td>
    <td><span class="label">Valor do Documento</span><span class="value">R$ {{.FaceValue}}</span></td>
  </tr>
  <tr>
    <td><span class="label">Seu Número</span><span class="value">{{.SeuNumero}}</span></td>
    <td><span class="label">Competência</span><span class="value">{{.Competencia}}</span></td>
  </tr>
</table>

{{if .Items}}
<table>
  <tr><th>Descrição</th><th>Valor</th></tr>
  {{range .Items}}<tr><td>{{.Description}}</td><td>R$ {{.Value}}</td></tr>
  {{end}}
</table>
{{end}}

{{if .Message}}<p>{{.Message}}</p>{{end}}

{{if .BarCode}}<p class="line">{{.BarCode}}</p>{{end}}
{{if .PixEmv}}<div class="pix"><strong>PIX copia e cola:</strong> {{.PixEmv}}</div>{{end}}
</body>
</html>`
