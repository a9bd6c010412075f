package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"order-service/internal/domain"
)

type SummaryRequest struct {
	OrderID         string             `json:"orderId"`
	CustomerName    string             `json:"customerName"`
	CustomerAddress string             `json:"customerAddress"`
	DeliveryService string             `json:"deliveryService"`
	OrderItems      []domain.OrderItem `json:"orderItems"`
}

// SummaryClient talks to the order-summary document service, which renders
// an order into a downloadable document and returns the link.
type SummaryClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewSummaryClient(baseURL string, timeout time.Duration) *SummaryClient {
	return &SummaryClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *SummaryClient) GenerateSummary(ctx context.Context, sr SummaryRequest) (string, error) {
	body, err := json.Marshal(sr)
	if err != nil {
		return "", err
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/orderSummary", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	return c.doSummary(req)
}

func (c *SummaryClient) GetSummary(ctx context.Context, orderID string) (string, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/orderSummary/"+orderID, nil)
	req.Header.Set("Content-Type", "application/json")

	return c.doSummary(req)
}

func (c *SummaryClient) doSummary(req *http.Request) (string, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: summary service: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: summary service returned status %d", ErrRemoteUnavailable, resp.StatusCode)
	}

	var body struct {
		Data struct {
			DownloadLink string `json:"downloadLink"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: summary service: %v", ErrRemoteUnavailable, err)
	}
	return body.Data.DownloadLink, nil
}
