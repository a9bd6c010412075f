package infra

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// WalletClient debits the customer's e-wallet. The wallet service answers
// 200 when the balance was debited, anything else is a decline.
type WalletClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewWalletClient(baseURL string, timeout time.Duration) *WalletClient {
	return &WalletClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *WalletClient) Pay(ctx context.Context, token, username string, nominal float64) error {
	form := url.Values{}
	form.Set("username", username)
	form.Set("nominal", strconv.FormatFloat(nominal, 'f', -1, 64))

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/e-wallet/bayar", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: wallet service: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: wallet returned status %d", ErrPaymentDeclined, resp.StatusCode)
	}
	return nil
}
