package user

import (
	"context"

	domain "user-view/internal/domain/user"
)

// Source defines the interface for reading the user record from upstream.
// It abstracts the transport, allowing an HTTP client or a test double
// to be used interchangeably.
//
// FetchUser returns (nil, nil) when the upstream payload is null or absent.
type Source interface {
	FetchUser(ctx context.Context) (*domain.User, error)
}
