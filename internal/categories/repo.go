package categories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/kumarbhakta81/Garment-platform/internal/apperr"
	"github.com/kumarbhakta81/Garment-platform/internal/db"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/category"
	"github.com/kumarbhakta81/Garment-platform/internal/util"
)

type Repo struct {
	db db.DB
}

func NewRepo(d db.DB) *Repo {
	return &Repo{db: d}
}

const columns = `id, name, slug, is_active, sort_order, created_at, updated_at`

func scanCategory(row pgx.Row, extra ...any) (category.Category, error) {
	var c category.Category
	dest := []any{&c.ID, &c.Name, &c.Slug, &c.IsActive, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt}
	err := row.Scan(append(dest, extra...)...)
	if db.IsNoRows(err) {
		return category.Category{}, apperr.NotFound("category not found")
	}
	if apperr.KindOf(db.Classify(err)) == apperr.KindConflict {
		return category.Category{}, apperr.Conflict("category already exists")
	}
	return c, db.Classify(err)
}

func (r *Repo) list(ctx context.Context, q string) ([]category.Category, error) {
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	out := []category.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) ListActive(ctx context.Context) ([]category.Category, error) {
	return r.list(ctx, `
		SELECT `+columns+`
		FROM categories
		WHERE is_active = true
		ORDER BY sort_order ASC, name ASC
	`)
}

// AdminListAll includes inactive categories and how many products use each.
func (r *Repo) AdminListAll(ctx context.Context) ([]category.Category, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+columns+`,
		  (SELECT COUNT(*) FROM products p WHERE p.category_id = categories.id)
		FROM categories
		ORDER BY sort_order ASC, name ASC
	`)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	out := []category.Category{}
	for rows.Next() {
		var n int
		c, err := scanCategory(rows, &n)
		if err != nil {
			return nil, err
		}
		c.ProductCount = &n
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) Create(ctx context.Context, name string, sortOrder int) (category.Category, error) {
	return scanCategory(r.db.QueryRow(ctx, `
		INSERT INTO categories (name, slug, sort_order, is_active)
		VALUES ($1, $2, $3, true)
		RETURNING `+columns, name, util.Slugify(name), sortOrder))
}

// Update keeps the slug in sync whenever the name changes.
func (r *Repo) Update(ctx context.Context, id int64, name *string, sortOrder *int, isActive *bool) (category.Category, error) {
	var slug *string
	if name != nil {
		s := util.Slugify(*name)
		slug = &s
	}
	return scanCategory(r.db.QueryRow(ctx, `
		UPDATE categories
		SET
		  name = COALESCE($2, name),
		  slug = COALESCE($5, slug),
		  sort_order = COALESCE($3, sort_order),
		  is_active = COALESCE($4, is_active),
		  updated_at = now()
		WHERE id = $1
		RETURNING `+columns, id, name, sortOrder, isActive, slug))
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if db.IsForeignKeyViolation(err) {
		return apperr.Conflict("category still has products")
	}
	if err != nil {
		return db.Classify(err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("category not found")
	}
	return nil
}
