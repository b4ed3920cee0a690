package auth

import (
	"context"
	"time"

	"github.com/kumarbhakta81/Garment-platform/internal/apperr"
	"github.com/kumarbhakta81/Garment-platform/internal/db"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/user"
)

// SessionRepo is the authority on whether an issued token is still live.
type SessionRepo struct {
	db db.DB
}

func NewSessionRepo(d db.DB) *SessionRepo {
	return &SessionRepo{db: d}
}

func (r *SessionRepo) Store(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sessions (user_id, token_hash, expires_at)
		VALUES ($1,$2,$3)
	`, userID, tokenHash, expiresAt)
	return db.Classify(err)
}

// Lookup resolves a live session to its (active) owner.
func (r *SessionRepo) Lookup(ctx context.Context, tokenHash string) (user.Actor, error) {
	var a user.Actor
	err := r.db.QueryRow(ctx, `
		SELECT u.id, u.email, u.role
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token_hash=$1 AND s.expires_at > now() AND u.is_active = true
	`, tokenHash).Scan(&a.ID, &a.Email, &a.Role)
	if db.IsNoRows(err) {
		return user.Actor{}, apperr.Unauthenticated("session expired or invalid")
	}
	return a, db.Classify(err)
}

// Revoke deletes the session row; revoking an unknown token is not an error.
func (r *SessionRepo) Revoke(ctx context.Context, tokenHash string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE token_hash=$1`, tokenHash)
	return db.Classify(err)
}
