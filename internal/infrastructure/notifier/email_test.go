package notifier

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"link-pago.backend/internal/config"
	"link-pago.backend/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init("test")
	os.Exit(m.Run())
}

func TestNotify_UnconfiguredSMTPLogsOnly(t *testing.T) {
	n := NewEmailNotifier(config.SMTPConfig{})

	err := n.Notify(context.Background(), Receipt{
		RecipientEmail:    "owner@tienda.cl",
		Description:       "Pedido #1042",
		Amount:            15000,
		AuthorizationCode: "1213",
	})
	require.NoError(t, err)
}

func TestReceiptHTML(t *testing.T) {
	html := receiptHTML(Receipt{
		RecipientEmail:    "owner@tienda.cl",
		Description:       "Arriendo cabaña",
		Amount:            1500000,
		AuthorizationCode: "1213",
	})
	require.Contains(t, html, "$1.500.000")
	require.Contains(t, html, "Arriendo cabaña")
	require.Contains(t, html, "1213")
}
