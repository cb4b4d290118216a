package notification

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	appbilling "github.com/imobia/backend/internal/application/billing"
	"github.com/imobia/backend/internal/domain/billing"
	"github.com/imobia/backend/internal/domain/contract"
	"github.com/imobia/backend/internal/domain/shared"
	"github.com/imobia/backend/internal/infrastructure/config"
)

// SMTPNotifier delivers invoices by email with the slip PDF attached.
type SMTPNotifier struct {
	cfg    config.SMTPConfig
	logger *zap.Logger

	// send is swappable for tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPNotifier creates a new SMTPNotifier.
func NewSMTPNotifier(cfg config.SMTPConfig, logger *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		cfg:    cfg,
		logger: logger.Named("smtp"),
		send:   smtp.SendMail,
	}
}

// SendInvoice emails the invoice to the payer and returns the address used.
func (n *SMTPNotifier) SendInvoice(ctx context.Context, invoice *billing.Invoice, payer *contract.Payer, attachmentPath string) (string, error) {
	if payer.Email == "" {
		return "", shared.NewDomainError("NO_EMAIL", "Payer has no email address")
	}

	msg, err := n.buildMessage(invoice, payer, attachmentPath)
	if err != nil {
		return "", err
	}

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	var auth smtp.Auth
	if n.cfg.User != "" {
		auth = smtp.PlainAuth("", n.cfg.User, n.cfg.Password, n.cfg.Host)
	}

	if err := n.send(addr, auth, n.cfg.From, []string{payer.Email}, msg); err != nil {
		n.logger.Error("Failed to send invoice email",
			zap.String("invoice_id", invoice.ID.String()),
			zap.String("to", payer.Email),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to send invoice email: %w", err)
	}

	n.logger.Info("Invoice email sent",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("competencia", invoice.Competencia.String()),
		zap.String("to", payer.Email),
	)
	return payer.Email, nil
}

func (n *SMTPNotifier) buildMessage(invoice *billing.Invoice, payer *contract.Payer, attachmentPath string) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	subject := fmt.Sprintf("Boleto de aluguel - competência %s", invoice.Competencia.String())

	fmt.Fprintf(&buf, "From: %s <%s>\r\n", n.cfg.FromName, n.cfg.From)
	fmt.Fprintf(&buf, "To: %s\r\n", payer.Email)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", writer.Boundary())

	// The writer appends after the headers written above.
	bodyHeader := textproto.MIMEHeader{}
	bodyHeader.Set("Content-Type", "text/plain; charset=utf-8")
	body, err := writer.CreatePart(bodyHeader)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(body, "Olá %s,\n\n", payer.Name)
	fmt.Fprintf(body, "Segue em anexo o boleto referente à competência %s, com vencimento em %s.\n\n",
		invoice.Competencia.DisplayPtBR(), invoice.DueDate.Format("02/01/2006"))
	fmt.Fprintf(body, "Valor total: R$ %s\n", invoice.Total.StringFixed(2))

	if attachmentPath != "" {
		if err := attachFile(writer, attachmentPath); err != nil {
			return nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func attachFile(writer *multipart.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read attachment: %w", err)
	}

	name := filepath.Base(path)
	header := textproto.MIMEHeader{}
	header.Set("Content-Type", "application/pdf")
	header.Set("Content-Transfer-Encoding", "base64")
	header.Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, name))

	part, err := writer.CreatePart(header)
	if err != nil {
		return err
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	// RFC 2045 line length limit.
	for len(encoded) > 76 {
		if _, err := part.Write([]byte(encoded[:76] + "\r\n")); err != nil {
			return err
		}
		encoded = encoded[76:]
	}
	_, err = part.Write([]byte(encoded))
	return err
}

// Ensure SMTPNotifier implements the billing Notifier
var _ appbilling.Notifier = (*SMTPNotifier)(nil)

// LogNotifier records deliveries to the log instead of sending email. Used
// in development environments without an SMTP relay.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a new LogNotifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notifier")}
}

// SendInvoice logs the delivery and reports the payer email as destination.
func (n *LogNotifier) SendInvoice(ctx context.Context, invoice *billing.Invoice, payer *contract.Payer, attachmentPath string) (string, error) {
	if payer.Email == "" {
		return "", shared.NewDomainError("NO_EMAIL", "Payer has no email address")
	}
	n.logger.Info("Invoice delivery (log only)",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("to", payer.Email),
		zap.String("attachment", attachmentPath),
		zap.Time("at", time.Now()),
	)
	return payer.Email, nil
}

// Ensure LogNotifier implements the billing Notifier
var _ appbilling.Notifier = (*LogNotifier)(nil)
