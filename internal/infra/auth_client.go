package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"order-service/internal/domain"
)

// AuthClient delegates token validation to the remote introspection endpoint.
type AuthClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAuthClient(baseURL string, timeout time.Duration) *AuthClient {
	return &AuthClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *AuthClient) ResolveToken(ctx context.Context, token string) (*domain.Identity, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/token/resource", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: auth service: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrInvalidToken
	}

	var body struct {
		Data domain.Identity `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, ErrInvalidToken
	}
	if body.Data.Username == "" {
		return nil, ErrInvalidToken
	}

	return &body.Data, nil
}
