package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kumarbhakta81/Garment-platform/internal/apperr"
	"github.com/kumarbhakta81/Garment-platform/internal/db"
)

// ResetRepo stores one pending password-reset code per user.
type ResetRepo struct {
	db db.DB
}

func NewResetRepo(d db.DB) *ResetRepo {
	return &ResetRepo{db: d}
}

// maxResetAttempts is how many wrong guesses a code survives.
const maxResetAttempts = 5

var errResetCode = apperr.Validation("invalid or expired otp")

// Upsert inserts or overwrites the code for that user with a fresh attempt budget.
func (r *ResetRepo) Upsert(ctx context.Context, userID int64, otpHash string, expiresAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO password_resets (user_id, otp_hash, expires_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (user_id)
		DO UPDATE SET otp_hash=EXCLUDED.otp_hash, expires_at=EXCLUDED.expires_at, attempts=0
	`, userID, otpHash, expiresAt)
	return db.Classify(err)
}

// CountFailure spends one attempt of the user's pending code.
func (r *ResetRepo) CountFailure(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, `UPDATE password_resets SET attempts = attempts + 1 WHERE user_id=$1`, userID)
	return db.Classify(err)
}

// consumeReset deletes the user's live code if otpHash matches it. Two
// concurrent resets with the same code cannot both see the row.
func consumeReset(ctx context.Context, tx pgx.Tx, userID int64, otpHash string) error {
	var id int64
	err := tx.QueryRow(ctx, `
		DELETE FROM password_resets
		WHERE user_id=$1 AND otp_hash=$2 AND expires_at > now() AND attempts < $3
		RETURNING user_id
	`, userID, otpHash, maxResetAttempts).Scan(&id)
	if db.IsNoRows(err) {
		return errResetCode
	}
	return db.Classify(err)
}
