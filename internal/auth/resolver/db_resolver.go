package resolver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"signin-service/internal/auth"
	"signin-service/internal/db"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// DBResolver resolves identities using Postgres.
type DBResolver struct {
	db *db.DB
}

func NewDBResolver(db *db.DB) *DBResolver {
	return &DBResolver{db: db}
}

func (r *DBResolver) Resolve(
	ctx context.Context,
	identity *auth.Identity,
) (string, error) {

	if identity == nil {
		return "", errors.New("identity is nil")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("resolver: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	userID, err := resolveTx(ctx, tx, identity)
	if err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("resolver: commit: %w", err)
	}
	return userID.String(), nil
}

func resolveTx(ctx context.Context, tx *sql.Tx, identity *auth.Identity) (uuid.UUID, error) {
	// 1. Known identity: refresh the profile facts and return its user.
	var userID uuid.UUID
	err := tx.QueryRowContext(ctx, `
		SELECT user_id
		FROM identities
		WHERE provider = $1
		  AND provider_user_id = $2
	`,
		identity.Provider,
		identity.ProviderUserID,
	).Scan(&userID)

	if err == nil {
		_, err = tx.ExecContext(ctx, `
			UPDATE users
			SET display_name = $2, updated_at = NOW()
			WHERE id = $1
		`, userID, identity.DisplayName())
		if err != nil {
			return uuid.Nil, fmt.Errorf("resolver: refresh user: %w", err)
		}
		return userID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("resolver: lookup identity: %w", err)
	}

	// 2. Link to an existing user only through a provider-verified email.
	found := false
	if identity.Email != "" && identity.EmailVerified {
		err = tx.QueryRowContext(ctx, `
			SELECT id
			FROM users
			WHERE LOWER(email) = LOWER($1)
		`, identity.Email).Scan(&userID)

		switch {
		case err == nil:
			found = true
		case !errors.Is(err, sql.ErrNoRows):
			return uuid.Nil, fmt.Errorf("resolver: lookup email: %w", err)
		}
	}

	// 3. Create new user. Only verified emails are stored, so the unique
	// email index never collides with an account the caller does not own.
	if !found {
		email := sql.NullString{String: identity.Email, Valid: identity.Email != "" && identity.EmailVerified}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO users (email, email_verified, display_name)
			VALUES ($1, $2, $3)
			RETURNING id
		`,
			email,
			email.Valid,
			identity.DisplayName(),
		).Scan(&userID)
		if isUniqueViolation(err) {
			return uuid.Nil, fmt.Errorf("%w: create user: %v", ErrConflict, err)
		}
		if err != nil {
			return uuid.Nil, fmt.Errorf("resolver: create user: %w", err)
		}
	}

	// 4. Create identity mapping
	_, err = tx.ExecContext(ctx, `
		INSERT INTO identities (user_id, provider, provider_user_id)
		VALUES ($1, $2, $3)
	`,
		userID,
		identity.Provider,
		identity.ProviderUserID,
	)
	if isUniqueViolation(err) {
		return uuid.Nil, fmt.Errorf("%w: link identity: %v", ErrConflict, err)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolver: link identity: %w", err)
	}

	return userID, nil
}
