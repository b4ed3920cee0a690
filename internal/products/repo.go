package products

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/kumarbhakta81/Garment-platform/internal/apperr"
	"github.com/kumarbhakta81/Garment-platform/internal/db"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/notification"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/product"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/user"
	"github.com/kumarbhakta81/Garment-platform/internal/notifications"
	"github.com/kumarbhakta81/Garment-platform/internal/policy"
	"github.com/kumarbhakta81/Garment-platform/internal/upload"
	"github.com/kumarbhakta81/Garment-platform/internal/util"
)

type Repo struct {
	db db.DB
}

func NewRepo(d db.DB) *Repo {
	return &Repo{db: d}
}

const productColumns = `
	p.id, p.wholesaler_id, p.category_id, COALESCE(c.name, ''), p.name, p.slug, p.description,
	p.brand, p.material, p.season, p.gender, p.price, p.quantity, p.images, p.status, p.is_active,
	p.created_at, p.updated_at`

const (
	productFrom = ` FROM products p LEFT JOIN categories c ON c.id = p.category_id`
	// selects from a data-modifying CTE named p
	cteFrom = ` FROM p LEFT JOIN categories c ON c.id = p.category_id`
)

func scanProduct(row pgx.Row) (product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID, &p.WholesalerID, &p.CategoryID, &p.Category, &p.Name, &p.Slug, &p.Description,
		&p.Brand, &p.Material, &p.Season, &p.Gender, &p.Price, &p.Quantity, &p.Images, &p.Status, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if db.IsNoRows(err) {
		return product.Product{}, apperr.NotFound("product not found")
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return p, db.Classify(err)
}

type Filter struct {
	// Public restricts the listing to approved, active products.
	Public       bool
	WholesalerID *int64
	Status       *product.Status
	CategoryID   *int64
	Brand        string
	Gender       string
	Season       string
	Search       string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Limit        int
	Offset       int
}

func (f Filter) where(args *db.Args) string {
	w := ` WHERE true`
	if f.Public {
		w += ` AND p.is_active = true AND p.status = 'approved'`
	}
	if f.WholesalerID != nil {
		w += ` AND p.wholesaler_id = ` + args.Add(*f.WholesalerID)
	}
	if f.Status != nil {
		w += ` AND p.status = ` + args.Add(*f.Status)
	}
	if f.CategoryID != nil {
		w += ` AND p.category_id = ` + args.Add(*f.CategoryID)
	}
	if f.Brand != "" {
		w += ` AND p.brand = ` + args.Add(f.Brand)
	}
	if f.Gender != "" {
		w += ` AND p.gender = ` + args.Add(f.Gender)
	}
	if f.Season != "" {
		w += ` AND p.season = ` + args.Add(f.Season)
	}
	if f.Search != "" {
		ph := args.Add("%" + f.Search + "%")
		w += ` AND (p.name ILIKE ` + ph + ` OR p.description ILIKE ` + ph + ` OR p.brand ILIKE ` + ph + `)`
	}
	if f.MinPrice != nil {
		w += ` AND p.price >= ` + args.Add(*f.MinPrice)
	}
	if f.MaxPrice != nil {
		w += ` AND p.price <= ` + args.Add(*f.MaxPrice)
	}
	return w
}

// List returns one page of products and the total matching f.
func (r *Repo) List(ctx context.Context, f Filter) ([]product.Product, int, error) {
	var countArgs db.Args
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products p`+f.where(&countArgs), countArgs...).Scan(&total); err != nil {
		return nil, 0, db.Classify(err)
	}

	var args db.Args
	q := `SELECT ` + productColumns + productFrom + f.where(&args) +
		` ORDER BY p.created_at DESC, p.id DESC LIMIT ` + args.Add(f.Limit) + ` OFFSET ` + args.Add(f.Offset)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, db.Classify(err)
	}
	defer rows.Close()

	out := []product.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// Get loads a product with its active variants. Public callers only see approved, active products.
func (r *Repo) Get(ctx context.Context, id int64, public bool) (product.Product, error) {
	q := `SELECT ` + productColumns + productFrom + ` WHERE p.id = $1`
	if public {
		q += ` AND p.is_active = true AND p.status = 'approved'`
	}
	p, err := scanProduct(r.db.QueryRow(ctx, q, id))
	if err != nil {
		return product.Product{}, err
	}
	p.Variants, err = r.ListVariants(ctx, id)
	if err != nil {
		return product.Product{}, err
	}
	return p, nil
}

func (r *Repo) Brands(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT brand FROM products
		WHERE is_active = true AND status = 'approved' AND brand <> ''
		ORDER BY brand
	`)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Analytics counts products per status; wholesalerID narrows it to one seller.
func (r *Repo) Analytics(ctx context.Context, wholesalerID *int64) (product.Analytics, error) {
	var a product.Analytics
	err := r.db.QueryRow(ctx, `
		SELECT
		  COUNT(*),
		  COUNT(*) FILTER (WHERE status = 'pending'),
		  COUNT(*) FILTER (WHERE status = 'approved'),
		  COUNT(*) FILTER (WHERE status = 'rejected'),
		  COALESCE(SUM(quantity), 0)
		FROM products
		WHERE is_active = true AND ($1::bigint IS NULL OR wholesaler_id = $1)
	`, wholesalerID).Scan(&a.TotalProducts, &a.Pending, &a.Approved, &a.Rejected, &a.TotalStock)
	return a, db.Classify(err)
}

type VariantInput struct {
	Size          string
	Color         string
	Price         decimal.Decimal
	StockQuantity int
	SKU           string
}

type CreateInput struct {
	CategoryID  *int64
	Name        string
	Description string
	Brand       string
	Material    string
	Season      string
	Gender      string
	Price       decimal.Decimal
	Quantity    int
	Images      []string
	Variants    []VariantInput
}

// Create inserts the product and its variants in one transaction. Products
// from wholesalers wait for moderation and every admin is told about them.
func (r *Repo) Create(ctx context.Context, actor user.Actor, in CreateInput) (product.Product, error) {
	slug, err := util.UniqueSlug(in.Name)
	if err != nil {
		return product.Product{}, err
	}
	status := product.StatusPending
	if actor.IsAdmin() {
		status = product.StatusApproved
	}
	if in.Images == nil {
		in.Images = []string{}
	}

	var p product.Product
	err = db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		p, err = scanProduct(tx.QueryRow(ctx, `
			WITH p AS (
				INSERT INTO products
				  (wholesaler_id, category_id, name, slug, description, brand, material, season, gender,
				   price, quantity, images, status)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
				RETURNING *
			)
			SELECT `+productColumns+cteFrom,
			actor.ID, in.CategoryID, in.Name, slug, in.Description, in.Brand, in.Material, in.Season, in.Gender,
			in.Price, in.Quantity, in.Images, status))
		if err != nil {
			return err
		}

		for _, v := range in.Variants {
			created, err := insertVariant(ctx, tx, p.ID, v)
			if err != nil {
				return err
			}
			p.Variants = append(p.Variants, created)
		}

		if status == product.StatusPending {
			return notifications.NotifyAdmins(ctx, tx, notifications.Draft{
				Type:      notification.TypeProductUpload,
				Title:     "New Product Uploaded",
				Message:   "A new product \"" + p.Name + "\" is waiting for approval.",
				RelatedID: &p.ID,
			})
		}
		return nil
	})
	if err != nil {
		return product.Product{}, err
	}
	return p, nil
}

// lock reads the owner and status of a product and holds its row until the tx ends.
func lock(ctx context.Context, tx pgx.Tx, id int64) (ownerID int64, status product.Status, name string, err error) {
	err = tx.QueryRow(ctx, `
		SELECT wholesaler_id, status, name FROM products WHERE id = $1 AND is_active = true FOR UPDATE
	`, id).Scan(&ownerID, &status, &name)
	if db.IsNoRows(err) {
		return 0, "", "", apperr.NotFound("product not found")
	}
	return ownerID, status, name, db.Classify(err)
}

type UpdateInput struct {
	CategoryID  *int64
	Name        *string
	Description *string
	Brand       *string
	Material    *string
	Season      *string
	Gender      *string
	Price       *decimal.Decimal
	Quantity    *int
	Images      *[]string
}

// Update changes a product owned by actor (or any product for an admin).
func (r *Repo) Update(ctx context.Context, actor user.Actor, id int64, in UpdateInput) (product.Product, error) {
	var p product.Product
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		owner, _, _, err := lock(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := policy.RequireOwner(actor, owner, "you can only update your own products"); err != nil {
			return err
		}

		var images any
		if in.Images != nil {
			images = *in.Images
		}
		p, err = scanProduct(tx.QueryRow(ctx, `
			WITH p AS (
				UPDATE products SET
				  category_id = COALESCE($2, category_id),
				  name = COALESCE($3, name),
				  description = COALESCE($4, description),
				  brand = COALESCE($5, brand),
				  material = COALESCE($6, material),
				  season = COALESCE($7, season),
				  gender = COALESCE($8, gender),
				  price = COALESCE($9, price),
				  quantity = COALESCE($10, quantity),
				  images = COALESCE($11, images),
				  updated_at = now()
				WHERE id = $1
				RETURNING *
			)
			SELECT `+productColumns+cteFrom,
			id, in.CategoryID, in.Name, in.Description, in.Brand, in.Material, in.Season, in.Gender,
			in.Price, in.Quantity, images))
		return err
	})
	if err != nil {
		return product.Product{}, err
	}
	return p, nil
}

// SoftDelete hides a product; its rows stay for order history.
func (r *Repo) SoftDelete(ctx context.Context, actor user.Actor, id int64) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		owner, _, _, err := lock(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := policy.RequireOwner(actor, owner, "you can only delete your own products"); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `UPDATE products SET is_active = false, updated_at = now() WHERE id = $1`, id)
		return db.Classify(err)
	})
}

// SetStatus moderates a pending product and tells its owner the outcome.
func (r *Repo) SetStatus(ctx context.Context, id int64, next product.Status) error {
	if next != product.StatusApproved && next != product.StatusRejected {
		return apperr.Validation("status must be approved or rejected")
	}
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		owner, current, name, err := lock(ctx, tx, id)
		if err != nil {
			return err
		}
		if current != product.StatusPending {
			return apperr.Validation("invalid status transition")
		}
		if _, err := tx.Exec(ctx, `UPDATE products SET status = $2, updated_at = now() WHERE id = $1`, id, next); err != nil {
			return db.Classify(err)
		}

		d := notifications.Draft{
			Type:      notification.TypeProductApproved,
			Title:     "Product Approved",
			Message:   "Your product \"" + name + "\" has been approved.",
			RelatedID: &id,
		}
		if next == product.StatusRejected {
			d.Type = notification.TypeProductRejected
			d.Title = "Product Rejected"
			d.Message = "Your product \"" + name + "\" has been rejected."
		}
		return notifications.Notify(ctx, tx, owner, d)
	})
}

var errTooManyImages = apperr.Validation("a product can have at most " + strconv.Itoa(upload.MaxFiles) + " images")

// AppendImages adds uploaded image paths to a product owned by actor. The
// product never holds more than upload.MaxFiles images in total.
func (r *Repo) AppendImages(ctx context.Context, actor user.Actor, id int64, paths []string) ([]string, error) {
	var images []string
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		owner, _, _, err := lock(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := policy.RequireOwner(actor, owner, "you can only update your own products"); err != nil {
			return err
		}
		err = tx.QueryRow(ctx, `
			UPDATE products SET images = images || $2::jsonb, updated_at = now()
			WHERE id = $1 AND jsonb_array_length(images) + $3 <= $4
			RETURNING images
		`, id, paths, len(paths), upload.MaxFiles).Scan(&images)
		if db.IsNoRows(err) {
			return errTooManyImages
		}
		return db.Classify(err)
	})
	return images, err
}

func cleanSKU(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
