package samples

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/kumarbhakta81/Garment-platform/internal/apperr"
	"github.com/kumarbhakta81/Garment-platform/internal/db"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/notification"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/sample"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/user"
	"github.com/kumarbhakta81/Garment-platform/internal/notifications"
	"github.com/kumarbhakta81/Garment-platform/internal/policy"
)

type Repo struct {
	db db.DB
}

func NewRepo(d db.DB) *Repo {
	return &Repo{db: d}
}

const columns = `
	s.id, s.product_id, p.name, p.wholesaler_id, u.username,
	s.title, s.description, s.file_url, s.status, s.created_at, s.updated_at`

// joins expects the samples relation to be aliased s.
const joins = `
	JOIN products p ON p.id = s.product_id
	JOIN users u ON u.id = p.wholesaler_id`

func scanSample(row pgx.Row) (sample.Sample, error) {
	var s sample.Sample
	err := row.Scan(&s.ID, &s.ProductID, &s.ProductName, &s.WholesalerID, &s.WholesalerName,
		&s.Title, &s.Description, &s.FileURL, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if db.IsNoRows(err) {
		return sample.Sample{}, apperr.NotFound("sample not found")
	}
	return s, db.Classify(err)
}

type Filter struct {
	ProductID    *int64
	Status       *sample.Status
	WholesalerID *int64
}

func (r *Repo) List(ctx context.Context, f Filter) ([]sample.Sample, error) {
	var args db.Args
	q := `SELECT ` + columns + ` FROM samples s` + joins + ` WHERE true`
	if f.ProductID != nil {
		q += ` AND s.product_id = ` + args.Add(*f.ProductID)
	}
	if f.Status != nil {
		q += ` AND s.status = ` + args.Add(*f.Status)
	}
	if f.WholesalerID != nil {
		q += ` AND p.wholesaler_id = ` + args.Add(*f.WholesalerID)
	}
	q += ` ORDER BY s.created_at DESC, s.id DESC`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	out := []sample.Sample{}
	for rows.Next() {
		s, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type CreateInput struct {
	ProductID   int64
	Title       string
	Description string
	FileURL     string
}

// Create attaches a pending sample to a product owned by actor and tells every admin.
func (r *Repo) Create(ctx context.Context, actor user.Actor, in CreateInput) (sample.Sample, error) {
	var s sample.Sample
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var owner int64
		var productName string
		err := tx.QueryRow(ctx, `
			SELECT wholesaler_id, name FROM products WHERE id = $1 AND is_active = true FOR SHARE
		`, in.ProductID).Scan(&owner, &productName)
		if db.IsNoRows(err) {
			return apperr.NotFound("product not found")
		}
		if err != nil {
			return db.Classify(err)
		}
		if err := policy.RequireOwner(actor, owner, "you can only create samples for your own products"); err != nil {
			return err
		}

		s, err = scanSample(tx.QueryRow(ctx, `
			WITH s AS (
				INSERT INTO samples (product_id, title, description, file_url, status)
				VALUES ($1,$2,$3,$4,'pending')
				RETURNING *
			)
			SELECT `+columns+` FROM s`+joins,
			in.ProductID, in.Title, in.Description, in.FileURL))
		if err != nil {
			return err
		}
		return notifications.NotifyAdmins(ctx, tx, notifications.Draft{
			Type:      notification.TypeSampleUpload,
			Title:     "New Sample Upload",
			Message:   "New sample uploaded for product: " + productName,
			RelatedID: &s.ID,
		})
	})
	return s, err
}

// lock holds the sample row and returns it with its product owner.
func lock(ctx context.Context, tx pgx.Tx, id int64) (sample.Sample, error) {
	return scanSample(tx.QueryRow(ctx, `
		SELECT `+columns+` FROM samples s`+joins+`
		WHERE s.id = $1
		FOR UPDATE OF s
	`, id))
}

type UpdateInput struct {
	Title       *string
	Description *string
	FileURL     *string
}

// Update changes a sample owned by actor. It also returns the file it replaced, if any.
func (r *Repo) Update(ctx context.Context, actor user.Actor, id int64, in UpdateInput) (sample.Sample, string, error) {
	var (
		s        sample.Sample
		replaced string
	)
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		cur, err := lock(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := policy.RequireOwner(actor, cur.WholesalerID, "you can only edit your own samples"); err != nil {
			return err
		}
		if in.FileURL != nil && cur.FileURL != "" {
			replaced = cur.FileURL
		}
		s, err = scanSample(tx.QueryRow(ctx, `
			WITH s AS (
				UPDATE samples SET
				  title = COALESCE($2, title),
				  description = COALESCE($3, description),
				  file_url = COALESCE($4, file_url),
				  updated_at = now()
				WHERE id = $1
				RETURNING *
			)
			SELECT `+columns+` FROM s`+joins,
			id, in.Title, in.Description, in.FileURL))
		return err
	})
	if err != nil {
		return sample.Sample{}, "", err
	}
	return s, replaced, nil
}

// Delete removes a sample owned by actor and returns its file path.
func (r *Repo) Delete(ctx context.Context, actor user.Actor, id int64) (string, error) {
	var fileURL string
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		cur, err := lock(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := policy.RequireOwner(actor, cur.WholesalerID, "you can only delete your own samples"); err != nil {
			return err
		}
		fileURL = cur.FileURL
		_, err = tx.Exec(ctx, `DELETE FROM samples WHERE id = $1`, id)
		return db.Classify(err)
	})
	return fileURL, err
}

// SetStatus records an admin decision and notifies the wholesaler.
func (r *Repo) SetStatus(ctx context.Context, id int64, status sample.Status) error {
	if status != sample.StatusApproved && status != sample.StatusRejected {
		return apperr.Validation("Invalid status. Must be approved or rejected")
	}
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		cur, err := lock(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE samples SET status = $2, updated_at = now() WHERE id = $1`, id, status); err != nil {
			return db.Classify(err)
		}

		d := notifications.Draft{
			Type:      notification.TypeSampleApproved,
			Title:     "Sample Approved",
			RelatedID: &id,
		}
		if status == sample.StatusRejected {
			d.Type = notification.TypeSampleRejected
			d.Title = "Sample Rejected"
		}
		d.Message = "Your sample \"" + cur.Title + "\" for product \"" + cur.ProductName + "\" has been " + string(status)
		return notifications.Notify(ctx, tx, cur.WholesalerID, d)
	})
}
