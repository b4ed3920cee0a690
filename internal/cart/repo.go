package cart

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/kumarbhakta81/Garment-platform/internal/apperr"
	"github.com/kumarbhakta81/Garment-platform/internal/db"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/cart"
)

type Repo struct {
	db db.DB
}

func NewRepo(d db.DB) *Repo {
	return &Repo{db: d}
}

var errQtyRange = apperr.Validation("quantity must be between " + strconv.Itoa(cart.MinQty) + " and " + strconv.Itoa(cart.MaxQty))

// lockStock holds a purchasable variant row and returns its stock.
func lockStock(ctx context.Context, tx pgx.Tx, variantID int64) (int, error) {
	var stock int
	err := tx.QueryRow(ctx, `
		SELECT v.stock_quantity
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.id = $1 AND v.is_active = true AND p.is_active = true AND p.status = 'approved'
		FOR UPDATE OF v
	`, variantID).Scan(&stock)
	if db.IsNoRows(err) {
		return 0, apperr.NotFound("product variant not found")
	}
	return stock, db.Classify(err)
}

// currentQty returns the quantity already in the cart, 0 when the line does not exist.
func currentQty(ctx context.Context, tx pgx.Tx, userID, variantID int64) (int, bool, error) {
	var qty int
	err := tx.QueryRow(ctx, `
		SELECT quantity FROM cart_items WHERE user_id = $1 AND variant_id = $2 FOR UPDATE
	`, userID, variantID).Scan(&qty)
	if db.IsNoRows(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, db.Classify(err)
	}
	return qty, true, nil
}

func putLine(ctx context.Context, tx pgx.Tx, userID, variantID int64, qty int) (cart.Line, error) {
	var l cart.Line
	err := tx.QueryRow(ctx, `
		INSERT INTO cart_items (user_id, variant_id, quantity)
		VALUES ($1,$2,$3)
		ON CONFLICT (user_id, variant_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()
		RETURNING id, user_id, variant_id, quantity
	`, userID, variantID, qty).Scan(&l.ID, &l.UserID, &l.VariantID, &l.Quantity)
	return l, db.Classify(err)
}

// AddLine merges qty into the user's line for variantID inside tx. The merged
// quantity must stay within the per-line bound and the variant's stock; stock
// itself is never reserved.
func AddLine(ctx context.Context, tx pgx.Tx, userID, variantID int64, qty int) (cart.Line, error) {
	if qty < cart.MinQty || qty > cart.MaxQty {
		return cart.Line{}, errQtyRange
	}
	stock, err := lockStock(ctx, tx, variantID)
	if err != nil {
		return cart.Line{}, err
	}
	existing, _, err := currentQty(ctx, tx, userID, variantID)
	if err != nil {
		return cart.Line{}, err
	}
	total := existing + qty
	if total > cart.MaxQty {
		return cart.Line{}, apperr.Validation("a cart line cannot hold more than " + strconv.Itoa(cart.MaxQty) + " items")
	}
	if total > stock {
		return cart.Line{}, apperr.InsufficientStock("Insufficient stock for this product variant")
	}
	return putLine(ctx, tx, userID, variantID, total)
}

func (r *Repo) AddItem(ctx context.Context, userID, variantID int64, qty int) (cart.Line, error) {
	var l cart.Line
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		l, err = AddLine(ctx, tx, userID, variantID, qty)
		return err
	})
	return l, err
}

// UpdateQuantity sets the line to qty; qty <= 0 removes it instead.
func (r *Repo) UpdateQuantity(ctx context.Context, userID, variantID int64, qty int) (cart.Line, bool, error) {
	if qty <= 0 {
		removed, err := r.RemoveItem(ctx, userID, variantID)
		if err == nil && !removed {
			err = apperr.NotFound("cart item not found")
		}
		return cart.Line{}, true, err
	}
	if qty > cart.MaxQty {
		return cart.Line{}, false, errQtyRange
	}

	var l cart.Line
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		stock, err := lockStock(ctx, tx, variantID)
		if err != nil {
			return err
		}
		_, ok, err := currentQty(ctx, tx, userID, variantID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("cart item not found")
		}
		if qty > stock {
			return apperr.InsufficientStock("Insufficient stock for this product variant")
		}
		l, err = putLine(ctx, tx, userID, variantID, qty)
		return err
	})
	return l, false, err
}

func (r *Repo) RemoveItem(ctx context.Context, userID, variantID int64) (bool, error) {
	ct, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND variant_id = $2`, userID, variantID)
	if err != nil {
		return false, db.Classify(err)
	}
	return ct.RowsAffected() > 0, nil
}

func (r *Repo) Clear(ctx context.Context, userID int64) (int64, error) {
	ct, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return 0, db.Classify(err)
	}
	return ct.RowsAffected(), nil
}

func (r *Repo) Items(ctx context.Context, userID int64) ([]cart.Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT
		  ci.id, ci.variant_id, ci.quantity,
		  p.id, p.name, p.brand,
		  v.size, v.color, v.sku, v.price, v.stock_quantity,
		  ci.added_at
		FROM cart_items ci
		JOIN product_variants v ON v.id = ci.variant_id
		JOIN products p ON p.id = v.product_id
		WHERE ci.user_id = $1 AND v.is_active = true AND p.is_active = true
		ORDER BY ci.added_at DESC, ci.id DESC
	`, userID)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	out := []cart.Item{}
	for rows.Next() {
		var it cart.Item
		if err := rows.Scan(
			&it.ID, &it.VariantID, &it.Quantity,
			&it.ProductID, &it.ProductName, &it.Brand,
			&it.Size, &it.Color, &it.SKU, &it.Price, &it.StockQuantity,
			&it.AddedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Summary is computed from the current rows on every call.
func (r *Repo) Summary(ctx context.Context, userID int64) (cart.Summary, error) {
	var s cart.Summary
	err := r.db.QueryRow(ctx, `
		SELECT
		  COUNT(ci.id),
		  COALESCE(SUM(ci.quantity), 0),
		  COALESCE(SUM(ci.quantity * v.price), 0)
		FROM cart_items ci
		JOIN product_variants v ON v.id = ci.variant_id
		JOIN products p ON p.id = v.product_id
		WHERE ci.user_id = $1 AND v.is_active = true AND p.is_active = true
	`, userID).Scan(&s.TotalItems, &s.TotalQuantity, &s.TotalAmount)
	return s, db.Classify(err)
}

// Validate lists the lines that can no longer be checked out as they are.
func (r *Repo) Validate(ctx context.Context, userID int64) ([]cart.InvalidItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT
		  ci.id, ci.variant_id, ci.quantity, v.stock_quantity, p.name, v.size, v.color,
		  CASE
		    WHEN v.is_active = false THEN 'variant_unavailable'
		    WHEN p.is_active = false THEN 'product_unavailable'
		    ELSE 'insufficient_stock'
		  END
		FROM cart_items ci
		JOIN product_variants v ON v.id = ci.variant_id
		JOIN products p ON p.id = v.product_id
		WHERE ci.user_id = $1
		  AND (v.is_active = false OR p.is_active = false OR v.stock_quantity < ci.quantity)
		ORDER BY ci.id
	`, userID)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	out := []cart.InvalidItem{}
	for rows.Next() {
		var it cart.InvalidItem
		if err := rows.Scan(&it.ID, &it.VariantID, &it.Quantity, &it.StockQuantity,
			&it.ProductName, &it.Size, &it.Color, &it.Reason); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// MoveToWishlist takes the line out of the cart and puts its product on the
// wishlist in one transaction. A product already on the wishlist is kept as is.
func (r *Repo) MoveToWishlist(ctx context.Context, userID, variantID int64) (int64, error) {
	var productID int64
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			DELETE FROM cart_items ci
			USING product_variants v
			WHERE ci.user_id = $1 AND ci.variant_id = $2 AND v.id = ci.variant_id
			RETURNING v.product_id
		`, userID, variantID).Scan(&productID)
		if db.IsNoRows(err) {
			return apperr.NotFound("cart item not found")
		}
		if err != nil {
			return db.Classify(err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO wishlist_items (user_id, product_id)
			VALUES ($1,$2)
			ON CONFLICT (user_id, product_id) DO NOTHING
		`, userID, productID)
		return db.Classify(err)
	})
	return productID, err
}
