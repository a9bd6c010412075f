package infra

import (
	"context"
	"errors"

	"order-service/internal/domain"
)

// Failures reported by the remote collaborators. "The service said no" and
// "the service is unreachable" map to different HTTP responses.
var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrPaymentDeclined   = errors.New("payment declined")
	ErrRemoteUnavailable = errors.New("remote service unavailable")
)

type AuthClientInterface interface {
	ResolveToken(ctx context.Context, token string) (*domain.Identity, error)
}

type WalletClientInterface interface {
	Pay(ctx context.Context, token, username string, nominal float64) error
}

type SummaryClientInterface interface {
	GenerateSummary(ctx context.Context, req SummaryRequest) (string, error)
	GetSummary(ctx context.Context, orderID string) (string, error)
}

var _ AuthClientInterface = (*AuthClient)(nil)
var _ WalletClientInterface = (*WalletClient)(nil)
var _ SummaryClientInterface = (*SummaryClient)(nil)
