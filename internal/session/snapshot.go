package session

import "signin-service/internal/auth"

// Status is the authentication state of the current browsing context.
type Status string

const (
	StatusLoading         Status = "loading"
	StatusAuthenticated   Status = "authenticated"
	StatusUnauthenticated Status = "unauthenticated"
)

// Snapshot is the answer to "who is signed in right now".
type Snapshot struct {
	Status   Status         `json:"status"`
	Identity *auth.Identity `json:"identity,omitempty"`
}

func Authenticated(identity *auth.Identity) Snapshot {
	return Snapshot{Status: StatusAuthenticated, Identity: identity}
}

func Unauthenticated() Snapshot {
	return Snapshot{Status: StatusUnauthenticated}
}

// IsAuthenticated is true only for an authenticated snapshot that carries an identity.
func (s Snapshot) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated && s.Identity != nil
}
