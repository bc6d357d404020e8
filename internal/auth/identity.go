package auth

import (
	"context"
	"net/mail"
	"strings"

	apperrors "signin-service/internal/errors"
)

// Identity represents a normalized external authentication identity
// returned by an OAuth provider. It contains facts only, no decisions.
type Identity struct {
	Provider       string `json:"provider"`        // e.g. "google"; filled in at login when empty
	ProviderUserID string `json:"id"`              // provider-scoped unique user identifier (sub)
	Name           string `json:"name"`            // display name
	Email          string `json:"email,omitempty"` // optional
	EmailVerified  bool   `json:"email_verified"`  // whether provider asserts email ownership
}

// Validate reports the first missing or malformed field as a validation error.
// An identity needs an id and something to display: a name or an email.
func (i *Identity) Validate() error {
	if i == nil {
		return apperrors.ValidationError("identity is required")
	}
	if strings.TrimSpace(i.ProviderUserID) == "" {
		return apperrors.ValidationError("identity is missing id").WithField("field", "id")
	}
	if i.DisplayName() == "" {
		return apperrors.ValidationError("identity is missing name").WithField("field", "name")
	}
	if i.Email != "" {
		if _, err := mail.ParseAddress(i.Email); err != nil {
			return apperrors.ValidationError("identity email is malformed").WithField("field", "email")
		}
	}
	return nil
}

// DisplayName falls back to the email when the provider sent no name.
func (i *Identity) DisplayName() string {
	if name := strings.TrimSpace(i.Name); name != "" {
		return name
	}
	return strings.TrimSpace(i.Email)
}

// unexported, collision-proof context key
type identityContextKeyType struct{}

var identityKey = identityContextKeyType{}

// WithIdentity returns a copy of ctx carrying the verified identity.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext extracts the identity placed by the OAuth guard.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*Identity)
	return identity, ok && identity != nil
}
