package products

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/kumarbhakta81/Garment-platform/internal/apperr"
	"github.com/kumarbhakta81/Garment-platform/internal/db"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/product"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/user"
	"github.com/kumarbhakta81/Garment-platform/internal/policy"
	"github.com/kumarbhakta81/Garment-platform/internal/util"
)

const variantColumns = `id, product_id, size, color, price, stock_quantity, sku, is_active, created_at, updated_at`

func scanVariant(row pgx.Row) (product.Variant, error) {
	var v product.Variant
	err := row.Scan(&v.ID, &v.ProductID, &v.Size, &v.Color, &v.Price, &v.StockQuantity, &v.SKU, &v.IsActive, &v.CreatedAt, &v.UpdatedAt)
	if db.IsNoRows(err) {
		return product.Variant{}, apperr.NotFound("variant not found")
	}
	if apperr.KindOf(db.Classify(err)) == apperr.KindConflict {
		return product.Variant{}, apperr.Conflict("sku already exists")
	}
	return v, db.Classify(err)
}

func (r *Repo) ListVariants(ctx context.Context, productID int64) ([]product.Variant, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+variantColumns+`
		FROM product_variants
		WHERE product_id = $1 AND is_active = true
		ORDER BY size, color, id
	`, productID)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	out := []product.Variant{}
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func insertVariant(ctx context.Context, q db.Querier, productID int64, in VariantInput) (product.Variant, error) {
	sku := cleanSKU(in.SKU)
	if sku == "" {
		suffix, err := util.RandomHex(3)
		if err != nil {
			return product.Variant{}, err
		}
		sku = cleanSKU(util.Slugify(fmt.Sprintf("%d %s %s", productID, in.Size, in.Color)) + "-" + suffix)
	}
	return scanVariant(q.QueryRow(ctx, `
		INSERT INTO product_variants (product_id, size, color, price, stock_quantity, sku)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING `+variantColumns, productID, in.Size, in.Color, in.Price, in.StockQuantity, sku))
}

// CreateVariant adds a variant to a product owned by actor. A zero price
// inherits the product price.
func (r *Repo) CreateVariant(ctx context.Context, actor user.Actor, productID int64, in VariantInput) (product.Variant, error) {
	var v product.Variant
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		owner, _, _, err := lock(ctx, tx, productID)
		if err != nil {
			return err
		}
		if err := policy.RequireOwner(actor, owner, "you can only add variants to your own products"); err != nil {
			return err
		}
		if in.Price.IsZero() {
			if err := tx.QueryRow(ctx, `SELECT price FROM products WHERE id = $1`, productID).Scan(&in.Price); err != nil {
				return db.Classify(err)
			}
		}
		v, err = insertVariant(ctx, tx, productID, in)
		return err
	})
	return v, err
}

// lockVariant holds the variant row and reports the owner of its product.
func lockVariant(ctx context.Context, tx pgx.Tx, id int64) (int64, error) {
	var owner int64
	err := tx.QueryRow(ctx, `
		SELECT p.wholesaler_id
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.id = $1 AND v.is_active = true
		FOR UPDATE OF v
	`, id).Scan(&owner)
	if db.IsNoRows(err) {
		return 0, apperr.NotFound("variant not found")
	}
	return owner, db.Classify(err)
}

type VariantUpdate struct {
	Size          *string
	Color         *string
	Price         *decimal.Decimal
	StockQuantity *int
	SKU           *string
}

func (r *Repo) UpdateVariant(ctx context.Context, actor user.Actor, id int64, in VariantUpdate) (product.Variant, error) {
	if in.SKU != nil {
		s := cleanSKU(*in.SKU)
		in.SKU = &s
	}
	var v product.Variant
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		owner, err := lockVariant(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := policy.RequireOwner(actor, owner, "you can only update your own variants"); err != nil {
			return err
		}
		v, err = scanVariant(tx.QueryRow(ctx, `
			UPDATE product_variants SET
			  size = COALESCE($2, size),
			  color = COALESCE($3, color),
			  price = COALESCE($4, price),
			  stock_quantity = COALESCE($5, stock_quantity),
			  sku = COALESCE($6, sku),
			  updated_at = now()
			WHERE id = $1
			RETURNING `+variantColumns, id, in.Size, in.Color, in.Price, in.StockQuantity, in.SKU))
		return err
	})
	return v, err
}

func (r *Repo) DeleteVariant(ctx context.Context, actor user.Actor, id int64) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		owner, err := lockVariant(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := policy.RequireOwner(actor, owner, "you can only delete your own variants"); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `UPDATE product_variants SET is_active = false, updated_at = now() WHERE id = $1`, id)
		return db.Classify(err)
	})
}
