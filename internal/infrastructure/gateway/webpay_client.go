package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"link-pago.backend/internal/config"
	domainerrors "link-pago.backend/internal/domain/errors"
)

const (
	integrationBaseURL = "https://webpay3gint.transbank.cl"
	productionBaseURL  = "https://webpay3g.transbank.cl"

	transactionsPath = "/rswebpaytransaction/api/webpay/v1.2/transactions"

	headerAPIKeyID     = "Tbk-Api-Key-Id"
	headerAPIKeySecret = "Tbk-Api-Key-Secret"
)

// CreateResult is the gateway response to a transaction create
type CreateResult struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// CommitResult is the normalized gateway commit response. The wire payload is
// kept verbatim in Raw for audit; CardLastFour is flattened out of the nested
// card_detail object, which may be absent.
type CommitResult struct {
	VCI                string          `json:"vci"`
	Amount             int             `json:"amount"`
	Status             string          `json:"status"`
	BuyOrder           string          `json:"buyOrder"`
	SessionID          string          `json:"sessionId"`
	CardLastFour       string          `json:"cardLastFour,omitempty"`
	AccountingDate     string          `json:"accountingDate"`
	TransactionDate    string          `json:"transactionDate"`
	AuthorizationCode  string          `json:"authorizationCode"`
	PaymentTypeCode    string          `json:"paymentTypeCode"`
	ResponseCode       *int            `json:"responseCode"`
	InstallmentsNumber *int            `json:"installmentsNumber"`
	Raw                json.RawMessage `json:"-"`
}

// WebpayClient is a stateless wrapper around the Webpay Plus REST API
type WebpayClient struct {
	baseURL      string
	commerceCode string
	apiKey       string
	httpClient   *http.Client
}

// NewWebpayClient creates a Webpay client for the configured environment
func NewWebpayClient(cfg config.WebpayConfig) *WebpayClient {
	baseURL := integrationBaseURL
	if cfg.Environment == "production" {
		baseURL = productionBaseURL
	}

	return &WebpayClient{
		baseURL:      baseURL,
		commerceCode: cfg.CommerceCode,
		apiKey:       cfg.APIKey,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
	}
}

type createRequest struct {
	BuyOrder  string `json:"buy_order"`
	SessionID string `json:"session_id"`
	Amount    int    `json:"amount"`
	ReturnURL string `json:"return_url"`
}

type createResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// Create initiates a transaction and returns the redirect token and URL
func (c *WebpayClient) Create(ctx context.Context, buyOrder, sessionID string, amount int, returnURL string) (*CreateResult, error) {
	body, err := json.Marshal(createRequest{
		BuyOrder:  buyOrder,
		SessionID: sessionID,
		Amount:    amount,
		ReturnURL: returnURL,
	})
	if err != nil {
		return nil, err
	}

	data, err := c.do(ctx, http.MethodPost, c.baseURL+transactionsPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var resp createResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: malformed create response: %v", domainerrors.ErrGatewayUnavailable, err)
	}
	if resp.Token == "" || resp.URL == "" {
		return nil, fmt.Errorf("%w: create response missing token or url", domainerrors.ErrGatewayUnavailable)
	}

	return &CreateResult{Token: resp.Token, URL: resp.URL}, nil
}

type commitResponse struct {
	VCI                string `json:"vci"`
	Amount             int    `json:"amount"`
	Status             string `json:"status"`
	BuyOrder           string `json:"buy_order"`
	SessionID          string `json:"session_id"`
	CardDetail         *struct {
		CardNumber string `json:"card_number"`
	} `json:"card_detail"`
	AccountingDate     string `json:"accounting_date"`
	TransactionDate    string `json:"transaction_date"`
	AuthorizationCode  string `json:"authorization_code"`
	PaymentTypeCode    string `json:"payment_type_code"`
	ResponseCode       *int   `json:"response_code"`
	InstallmentsNumber *int   `json:"installments_number"`
}

// Commit finalizes a previously created transaction and returns its outcome
func (c *WebpayClient) Commit(ctx context.Context, token string) (*CommitResult, error) {
	data, err := c.do(ctx, http.MethodPut, c.baseURL+transactionsPath+"/"+token, nil)
	if err != nil {
		return nil, err
	}

	var resp commitResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: malformed commit response: %v", domainerrors.ErrGatewayUnavailable, err)
	}

	result := &CommitResult{
		VCI:                resp.VCI,
		Amount:             resp.Amount,
		Status:             resp.Status,
		BuyOrder:           resp.BuyOrder,
		SessionID:          resp.SessionID,
		AccountingDate:     resp.AccountingDate,
		TransactionDate:    resp.TransactionDate,
		AuthorizationCode:  resp.AuthorizationCode,
		PaymentTypeCode:    resp.PaymentTypeCode,
		ResponseCode:       resp.ResponseCode,
		InstallmentsNumber: resp.InstallmentsNumber,
		Raw:                json.RawMessage(data),
	}
	if resp.CardDetail != nil {
		result.CardLastFour = lastFour(resp.CardDetail.CardNumber)
	}

	return result, nil
}

// IsApproved reports whether a commit result is an approval. Both conditions
// are required; either alone is not an approval.
func IsApproved(res *CommitResult) bool {
	return res != nil &&
		res.ResponseCode != nil && *res.ResponseCode == 0 &&
		res.Status == "AUTHORIZED"
}

func (c *WebpayClient) do(ctx context.Context, method, url string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerAPIKeyID, c.commerceCode)
	req.Header.Set(headerAPIKeySecret, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrGatewayUnavailable, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: gateway returned %d: %s", domainerrors.ErrGatewayUnavailable, resp.StatusCode, data)
	}

	return data, nil
}

// lastFour returns the trailing four digits of a masked card number
func lastFour(cardNumber string) string {
	if len(cardNumber) <= 4 {
		return cardNumber
	}
	return cardNumber[len(cardNumber)-4:]
}
