package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"link-pago.backend/internal/config"
	domainerrors "link-pago.backend/internal/domain/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*WebpayClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewWebpayClient(config.WebpayConfig{
		Environment:  "integration",
		CommerceCode: "597055555532",
		APIKey:       "test-api-key",
		Timeout:      5 * time.Second,
	})
	c.baseURL = srv.URL
	return c, srv
}

func TestWebpayClient_Create(t *testing.T) {
	var gotAuthHeader, gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuthHeader = r.Header.Get("Tbk-Api-Key-Id")
		gotPath = r.URL.Path
		require.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{"token":"e9d555262db0f989e49d724b4db0b0af367cc415cde41f500a776550fc5fddd3","url":"https://webpay3gint.transbank.cl/webpayserver/initTransaction"}`))
	})

	res, err := client.Create(context.Background(), "20240101120000abcd1234", "session_0123456789abcdef", 15000, "https://pagos.cl/pay/return")
	require.NoError(t, err)
	require.Equal(t, "597055555532", gotAuthHeader)
	require.Equal(t, "/rswebpaytransaction/api/webpay/v1.2/transactions", gotPath)
	require.NotEmpty(t, res.Token)
	require.Contains(t, res.URL, "initTransaction")
}

func TestWebpayClient_Create_MissingToken(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"url":"https://example.com"}`))
	})

	_, err := client.Create(context.Background(), "bo", "sid", 1000, "https://pagos.cl/pay/return")
	require.ErrorIs(t, err, domainerrors.ErrGatewayUnavailable)
}

func TestWebpayClient_Create_ServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error_message":"Internally it all went wrong"}`, http.StatusInternalServerError)
	})

	_, err := client.Create(context.Background(), "bo", "sid", 1000, "https://pagos.cl/pay/return")
	require.ErrorIs(t, err, domainerrors.ErrGatewayUnavailable)
}

func TestWebpayClient_Commit(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/rswebpaytransaction/api/webpay/v1.2/transactions/tok_abc", r.URL.Path)
		w.Write([]byte(`{
			"vci":"TSY","amount":15000,"status":"AUTHORIZED",
			"buy_order":"20240101120000abcd1234","session_id":"session_0123456789abcdef",
			"card_detail":{"card_number":"XXXXXXXXXXXX6623"},
			"accounting_date":"0101","transaction_date":"2024-01-01T12:03:05.000Z",
			"authorization_code":"1213","payment_type_code":"VN",
			"response_code":0,"installments_number":0
		}`))
	})

	res, err := client.Commit(context.Background(), "tok_abc")
	require.NoError(t, err)
	require.Equal(t, "AUTHORIZED", res.Status)
	require.Equal(t, "6623", res.CardLastFour)
	require.Equal(t, "1213", res.AuthorizationCode)
	require.NotNil(t, res.ResponseCode)
	require.Equal(t, 0, *res.ResponseCode)
	require.NotEmpty(t, res.Raw)
	require.True(t, IsApproved(res))
}

func TestWebpayClient_Commit_NoCardDetail(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"FAILED","response_code":-1}`))
	})

	res, err := client.Commit(context.Background(), "tok_abc")
	require.NoError(t, err)
	require.Empty(t, res.CardLastFour)
	require.False(t, IsApproved(res))
}

func TestIsApproved(t *testing.T) {
	zero := 0
	minusOne := -1

	cases := []struct {
		name string
		res  *CommitResult
		want bool
	}{
		{"nil result", nil, false},
		{"authorized and zero code", &CommitResult{Status: "AUTHORIZED", ResponseCode: &zero}, true},
		{"authorized but nonzero code", &CommitResult{Status: "AUTHORIZED", ResponseCode: &minusOne}, false},
		{"zero code but failed status", &CommitResult{Status: "FAILED", ResponseCode: &zero}, false},
		{"missing response code", &CommitResult{Status: "AUTHORIZED"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, IsApproved(tc.res))
		})
	}
}

func TestWebpayClient_BaseURLSelection(t *testing.T) {
	integration := NewWebpayClient(config.WebpayConfig{Environment: "integration", Timeout: time.Second})
	require.Equal(t, integrationBaseURL, integration.baseURL)

	production := NewWebpayClient(config.WebpayConfig{Environment: "production", Timeout: time.Second})
	require.Equal(t, productionBaseURL, production.baseURL)
}

func TestLastFour(t *testing.T) {
	require.Equal(t, "6623", lastFour("XXXXXXXXXXXX6623"))
	require.Equal(t, "6623", lastFour("6623"))
	require.Equal(t, "23", lastFour("23"))
}
