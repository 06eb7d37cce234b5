package notifier

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
	"link-pago.backend/internal/config"
	"link-pago.backend/pkg/logger"
	"link-pago.backend/pkg/utils"
)

// Receipt carries the payer-visible fields of a successful payment
type Receipt struct {
	RecipientEmail    string
	Description       string
	Amount            int
	AuthorizationCode string
}

// PaymentNotifier delivers a best-effort payment notification.
// Failures must never surface to the payer or roll back payment state.
type PaymentNotifier interface {
	Notify(ctx context.Context, receipt Receipt) error
}

// EmailNotifier sends receipt mails over SMTP
type EmailNotifier struct {
	cfg config.SMTPConfig
}

// NewEmailNotifier creates an SMTP notifier
func NewEmailNotifier(cfg config.SMTPConfig) *EmailNotifier {
	return &EmailNotifier{cfg: cfg}
}

// Notify sends the receipt mail. With SMTP unconfigured the receipt is logged
// instead, which keeps local development working without a mail account.
func (n *EmailNotifier) Notify(ctx context.Context, receipt Receipt) error {
	if n.cfg.User == "" || n.cfg.Password == "" {
		logger.Info(ctx, "payment notification (SMTP not configured)",
			zap.String("recipient", receipt.RecipientEmail),
			zap.String("description", receipt.Description),
			zap.Int("amount", receipt.Amount),
			zap.String("authorization_code", receipt.AuthorizationCode),
		)
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", receipt.RecipientEmail)
	m.SetHeader("Subject", fmt.Sprintf("Pago recibido: %s", receipt.Description))
	m.SetBody("text/html", receiptHTML(receipt))

	d := gomail.NewDialer(n.cfg.Host, n.cfg.Port, n.cfg.User, n.cfg.Password)
	return d.DialAndSend(m)
}

func receiptHTML(receipt Receipt) string {
	formattedAmount := utils.FormatCLP(receipt.Amount)
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: #10B981; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
    .content { background: #f9fafb; padding: 20px; border-radius: 0 0 8px 8px; }
    .amount { font-size: 32px; font-weight: bold; color: #10B981; }
    .detail { margin: 10px 0; padding: 10px; background: white; border-radius: 4px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header"><h1>Pago Recibido</h1></div>
    <div class="content">
      <p class="amount">%s CLP</p>
      <div class="detail"><strong>Descripci&oacute;n:</strong> %s</div>
      <div class="detail"><strong>C&oacute;digo de autorizaci&oacute;n:</strong> %s</div>
      <p>El pago ha sido procesado exitosamente.</p>
    </div>
  </div>
</body>
</html>`, formattedAmount, receipt.Description, receipt.AuthorizationCode)
}
