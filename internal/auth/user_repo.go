package auth

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/kumarbhakta81/Garment-platform/internal/apperr"
	"github.com/kumarbhakta81/Garment-platform/internal/db"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/user"
)

type UserRepo struct {
	db db.DB
}

func NewUserRepo(d db.DB) *UserRepo {
	return &UserRepo{db: d}
}

const userColumns = `id, username, email, password_hash, role, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if db.IsNoRows(err) {
		return user.User{}, apperr.NotFound("user not found")
	}
	return u, db.Classify(err)
}

func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash string, role user.Role) (user.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, role)
		VALUES ($1,$2,$3,$4)
		RETURNING `+userColumns, username, email, passwordHash, role))
	if apperr.KindOf(err) == apperr.KindConflict {
		return user.User{}, apperr.Conflict("email already exists")
	}
	return u, err
}

func (r *UserRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	var taken bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email=$1)`, email).Scan(&taken)
	return taken, db.Classify(err)
}

func (r *UserRepo) ByEmail(ctx context.Context, email string) (user.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email))
}

func (r *UserRepo) ByID(ctx context.Context, id int64) (user.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
}

func (r *UserRepo) List(ctx context.Context, role *user.Role) ([]user.User, error) {
	q := `SELECT ` + userColumns + ` FROM users`
	args := []any{}
	if role != nil {
		q += ` WHERE role=$1`
		args = append(args, *role)
	}
	q += ` ORDER BY id ASC`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	out := []user.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type UserUpdate struct {
	Username *string
	Email    *string
	Role     *user.Role
	IsActive *bool
}

func (r *UserRepo) Update(ctx context.Context, id int64, in UserUpdate) (user.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `
		UPDATE users
		SET
		  username = COALESCE($2, username),
		  email = COALESCE($3, email),
		  role = COALESCE($4, role),
		  is_active = COALESCE($5, is_active),
		  updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns, id, in.Username, in.Email, in.Role, in.IsActive))
	if apperr.KindOf(err) == apperr.KindConflict {
		return user.User{}, apperr.Conflict("email already exists")
	}
	return u, err
}

func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if db.IsForeignKeyViolation(err) {
		return apperr.Conflict("user still owns products or orders")
	}
	if err != nil {
		return db.Classify(err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

// ResetPassword consumes the reset code, swaps the hash and ends every
// session, all or nothing.
func (r *UserRepo) ResetPassword(ctx context.Context, userID int64, otpHash, newHash string) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := consumeReset(ctx, tx, userID, otpHash); err != nil {
			return err
		}
		ct, err := tx.Exec(ctx, `UPDATE users SET password_hash=$1, updated_at=now() WHERE id=$2`, newHash, userID)
		if err != nil {
			return db.Classify(err)
		}
		if ct.RowsAffected() == 0 {
			return apperr.NotFound("user not found")
		}
		if _, err := tx.Exec(ctx, `DELETE FROM sessions WHERE user_id=$1`, userID); err != nil {
			return db.Classify(err)
		}
		return nil
	})
}
