package wishlist

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/kumarbhakta81/Garment-platform/internal/apperr"
	cartrepo "github.com/kumarbhakta81/Garment-platform/internal/cart"
	"github.com/kumarbhakta81/Garment-platform/internal/db"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/cart"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/wishlist"
)

const DefaultRecommendations = 10

type Repo struct {
	db db.DB
}

func NewRepo(d db.DB) *Repo {
	return &Repo{db: d}
}

const productColumns = `
	p.id, p.name, p.brand, p.gender, p.price,
	COALESCE(MIN(v.price), p.price), COALESCE(MAX(v.price), p.price), COUNT(v.id)`

func scanItems(rows pgx.Rows, withAdded bool) ([]wishlist.Item, error) {
	defer rows.Close()
	out := []wishlist.Item{}
	for rows.Next() {
		var it wishlist.Item
		dest := []any{&it.ID, &it.ProductID, &it.Name, &it.Brand, &it.Gender, &it.Price,
			&it.MinPrice, &it.MaxPrice, &it.VariantCount}
		if withAdded {
			dest = append(dest, &it.AddedAt)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Repo) Items(ctx context.Context, userID int64) ([]wishlist.Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT w.id,`+productColumns+`, w.added_at
		FROM wishlist_items w
		JOIN products p ON p.id = w.product_id
		LEFT JOIN product_variants v ON v.product_id = p.id AND v.is_active = true
		WHERE w.user_id = $1 AND p.is_active = true
		GROUP BY w.id, p.id
		ORDER BY w.added_at DESC, w.id DESC
	`, userID)
	if err != nil {
		return nil, db.Classify(err)
	}
	return scanItems(rows, true)
}

// Add is idempotent: an existing pair is returned with Exists set.
func (r *Repo) Add(ctx context.Context, userID, productID int64) (wishlist.Entry, error) {
	e := wishlist.Entry{UserID: userID, ProductID: productID}

	var ok bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
		  SELECT 1 FROM products WHERE id = $1 AND is_active = true AND status = 'approved'
		)
	`, productID).Scan(&ok)
	if err != nil {
		return e, db.Classify(err)
	}
	if !ok {
		return e, apperr.NotFound("product not found")
	}

	err = r.db.QueryRow(ctx, `
		INSERT INTO wishlist_items (user_id, product_id)
		VALUES ($1,$2)
		ON CONFLICT (user_id, product_id) DO NOTHING
		RETURNING id
	`, userID, productID).Scan(&e.ID)
	if err == nil {
		return e, nil
	}
	if !db.IsNoRows(err) {
		if db.IsForeignKeyViolation(err) {
			return e, apperr.NotFound("product not found")
		}
		return e, db.Classify(err)
	}

	err = r.db.QueryRow(ctx, `
		SELECT id FROM wishlist_items WHERE user_id = $1 AND product_id = $2
	`, userID, productID).Scan(&e.ID)
	if err != nil {
		return e, db.Classify(err)
	}
	e.Exists = true
	return e, nil
}

func (r *Repo) Remove(ctx context.Context, userID, productID int64) (bool, error) {
	ct, err := r.db.Exec(ctx, `DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return false, db.Classify(err)
	}
	return ct.RowsAffected() > 0, nil
}

func (r *Repo) Clear(ctx context.Context, userID int64) (int64, error) {
	ct, err := r.db.Exec(ctx, `DELETE FROM wishlist_items WHERE user_id = $1`, userID)
	if err != nil {
		return 0, db.Classify(err)
	}
	return ct.RowsAffected(), nil
}

func (r *Repo) Count(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM wishlist_items w
		JOIN products p ON p.id = w.product_id
		WHERE w.user_id = $1 AND p.is_active = true
	`, userID).Scan(&n)
	return n, db.Classify(err)
}

// Recommendations returns approved products sharing a category or brand with
// the user's wishlist that are not on it yet.
func (r *Repo) Recommendations(ctx context.Context, userID int64, limit int) ([]wishlist.Item, error) {
	if limit <= 0 {
		limit = DefaultRecommendations
	}
	rows, err := r.db.Query(ctx, `
		SELECT 0::bigint,`+productColumns+`
		FROM products p
		LEFT JOIN product_variants v ON v.product_id = p.id AND v.is_active = true
		WHERE p.is_active = true AND p.status = 'approved'
		  AND p.id NOT IN (SELECT product_id FROM wishlist_items WHERE user_id = $1)
		  AND (
		    p.category_id IN (
		      SELECT p2.category_id FROM wishlist_items w2
		      JOIN products p2 ON p2.id = w2.product_id
		      WHERE w2.user_id = $1 AND p2.category_id IS NOT NULL
		    )
		    OR p.brand IN (
		      SELECT p2.brand FROM wishlist_items w2
		      JOIN products p2 ON p2.id = w2.product_id
		      WHERE w2.user_id = $1 AND p2.brand <> ''
		    )
		  )
		GROUP BY p.id
		ORDER BY random()
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, db.Classify(err)
	}
	return scanItems(rows, false)
}

// MoveToCart takes productID off the wishlist and adds qty of variantID to the
// cart in one transaction. The variant must belong to the wishlisted product.
func (r *Repo) MoveToCart(ctx context.Context, userID, productID, variantID int64, qty int) (cart.Line, error) {
	var line cart.Line
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var id int64
		err := tx.QueryRow(ctx, `
			DELETE FROM wishlist_items w
			USING product_variants v
			WHERE w.user_id = $1 AND w.product_id = $2 AND v.id = $3 AND v.product_id = w.product_id
			RETURNING w.id
		`, userID, productID, variantID).Scan(&id)
		if db.IsNoRows(err) {
			return apperr.NotFound("wishlist item not found for this variant")
		}
		if err != nil {
			return db.Classify(err)
		}
		line, err = cartrepo.AddLine(ctx, tx, userID, variantID, qty)
		return err
	})
	return line, err
}
