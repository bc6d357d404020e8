package resolver

import (
	"context"
	"errors"

	"signin-service/internal/auth"
)

// ErrConflict reports that a concurrent login claimed the identity or email first.
var ErrConflict = errors.New("resolver: concurrent identity change")

// Resolver determines which internal user an external identity belongs to.
// It is the only place where identity-to-user mapping logic lives.
type Resolver interface {
	Resolve(
		ctx context.Context,
		identity *auth.Identity,
	) (userID string, err error)
}
