package orders

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/kumarbhakta81/Garment-platform/internal/apperr"
	"github.com/kumarbhakta81/Garment-platform/internal/db"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/notification"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/order"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/user"
	"github.com/kumarbhakta81/Garment-platform/internal/notifications"
)

type Repo struct {
	db db.DB
}

func NewRepo(d db.DB) *Repo {
	return &Repo{db: d}
}

const columns = `
	o.id, o.retailer_id, o.wholesaler_id, o.product_id, p.name, o.quantity,
	o.unit_price, o.total_price, o.status, o.shipping_address, o.order_notes,
	r.username, w.username, o.created_at, o.updated_at`

const joins = `
	FROM orders o
	JOIN products p ON p.id = o.product_id
	JOIN users r ON r.id = o.retailer_id
	JOIN users w ON w.id = o.wholesaler_id`

func scanOrder(row pgx.Row) (order.Order, error) {
	var o order.Order
	err := row.Scan(
		&o.ID, &o.RetailerID, &o.WholesalerID, &o.ProductID, &o.ProductName, &o.Quantity,
		&o.UnitPrice, &o.TotalPrice, &o.Status, &o.ShippingAddress, &o.OrderNotes,
		&o.RetailerName, &o.WholesalerName, &o.CreatedAt, &o.UpdatedAt,
	)
	if db.IsNoRows(err) {
		return order.Order{}, apperr.NotFound("Order not found")
	}
	return o, db.Classify(err)
}

// scope limits a query to the orders actor may see.
func scope(actor user.Actor, q string, args *db.Args) string {
	switch actor.Role {
	case user.RoleRetailer:
		q += ` AND o.retailer_id = ` + args.Add(actor.ID)
	case user.RoleWholesaler:
		q += ` AND o.wholesaler_id = ` + args.Add(actor.ID)
	}
	return q
}

func canSee(actor user.Actor, o order.Order) bool {
	switch actor.Role {
	case user.RoleAdmin:
		return true
	case user.RoleWholesaler:
		return o.WholesalerID == actor.ID
	default:
		return o.RetailerID == actor.ID
	}
}

type Filter struct {
	Status    *order.Status
	ProductID *int64
	// honoured for admins only
	RetailerID   *int64
	WholesalerID *int64
}

func (r *Repo) List(ctx context.Context, actor user.Actor, f Filter) ([]order.Order, error) {
	var args db.Args
	q := scope(actor, `SELECT `+columns+joins+` WHERE true`, &args)
	if actor.IsAdmin() {
		if f.RetailerID != nil {
			q += ` AND o.retailer_id = ` + args.Add(*f.RetailerID)
		}
		if f.WholesalerID != nil {
			q += ` AND o.wholesaler_id = ` + args.Add(*f.WholesalerID)
		}
	}
	if f.Status != nil {
		q += ` AND o.status = ` + args.Add(*f.Status)
	}
	if f.ProductID != nil {
		q += ` AND o.product_id = ` + args.Add(*f.ProductID)
	}
	q += ` ORDER BY o.created_at DESC, o.id DESC`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	out := []order.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, actor user.Actor, id int64) (order.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+columns+joins+` WHERE o.id = $1`, id))
	if err != nil {
		return order.Order{}, err
	}
	if !canSee(actor, o) {
		return order.Order{}, apperr.Forbidden("Access denied")
	}
	return o, nil
}

type CreateInput struct {
	ProductID       int64
	Quantity        int
	ShippingAddress string
	Notes           string
}

// Create places a pending order for an approved product. The stock decrement,
// the order row and the notifications to the wholesaler and admins commit together.
func (r *Repo) Create(ctx context.Context, actor user.Actor, in CreateInput) (order.Order, error) {
	o := order.Order{
		RetailerID:      actor.ID,
		ProductID:       in.ProductID,
		Quantity:        in.Quantity,
		Status:          order.StatusPending,
		ShippingAddress: in.ShippingAddress,
		OrderNotes:      in.Notes,
	}
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var stock int
		err := tx.QueryRow(ctx, `
			SELECT wholesaler_id, name, price, quantity
			FROM products
			WHERE id = $1 AND status = 'approved' AND is_active = true
			FOR UPDATE
		`, in.ProductID).Scan(&o.WholesalerID, &o.ProductName, &o.UnitPrice, &stock)
		if db.IsNoRows(err) {
			return apperr.NotFound("Product not found or not approved")
		}
		if err != nil {
			return db.Classify(err)
		}
		if stock < in.Quantity {
			return apperr.InsufficientStock("Insufficient product quantity")
		}
		o.TotalPrice = o.UnitPrice.Mul(decimal.NewFromInt(int64(in.Quantity)))

		err = tx.QueryRow(ctx, `
			INSERT INTO orders
			  (retailer_id, wholesaler_id, product_id, quantity, unit_price, total_price, status, shipping_address, order_notes)
			VALUES ($1,$2,$3,$4,$5,$6,'pending',$7,$8)
			RETURNING id, created_at, updated_at
		`, o.RetailerID, o.WholesalerID, o.ProductID, o.Quantity, o.UnitPrice, o.TotalPrice,
			o.ShippingAddress, o.OrderNotes).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return db.Classify(err)
		}

		if _, err := tx.Exec(ctx, `
			UPDATE products SET quantity = quantity - $1, updated_at = now() WHERE id = $2
		`, o.Quantity, o.ProductID); err != nil {
			return db.Classify(err)
		}

		msg := "New order placed for product: " + o.ProductName + " (Quantity: " + strconv.Itoa(o.Quantity) + ")"
		if err := notifications.Notify(ctx, tx, o.WholesalerID, notifications.Draft{
			Type: notification.TypeOrderPlaced, Title: "New Order Received", Message: msg, RelatedID: &o.ID,
		}); err != nil {
			return err
		}
		return notifications.NotifyAdmins(ctx, tx, notifications.Draft{
			Type: notification.TypeOrderPlaced, Title: "New Order Placed", Message: msg, RelatedID: &o.ID,
		})
	})
	if err != nil {
		return order.Order{}, err
	}
	return o, nil
}

type locked struct {
	retailerID   int64
	wholesalerID int64
	productID    int64
	quantity     int
	status       order.Status
	productName  string
}

func lock(ctx context.Context, tx pgx.Tx, id int64) (locked, error) {
	var l locked
	err := tx.QueryRow(ctx, `
		SELECT o.retailer_id, o.wholesaler_id, o.product_id, o.quantity, o.status, p.name
		FROM orders o
		JOIN products p ON p.id = o.product_id
		WHERE o.id = $1
		FOR UPDATE OF o
	`, id).Scan(&l.retailerID, &l.wholesalerID, &l.productID, &l.quantity, &l.status, &l.productName)
	if db.IsNoRows(err) {
		return l, apperr.NotFound("Order not found")
	}
	return l, db.Classify(err)
}

// UpdateStatus moves an order along the transition table for actor's role.
// Any cancellation puts the ordered quantity back on the product; cancelled is
// terminal so this happens at most once per order.
func (r *Repo) UpdateStatus(ctx context.Context, actor user.Actor, id int64, to order.Status) error {
	if !to.Valid() {
		return apperr.Validation("Invalid status")
	}
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		cur, err := lock(ctx, tx, id)
		if err != nil {
			return err
		}
		switch actor.Role {
		case user.RoleRetailer:
			if cur.retailerID != actor.ID {
				return apperr.Forbidden("You can only update your own orders")
			}
		case user.RoleWholesaler:
			if cur.wholesalerID != actor.ID {
				return apperr.Forbidden("You can only update orders for your products")
			}
		}
		if err := CheckTransition(actor.Role, cur.status, to); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `
			UPDATE orders SET status = $1, updated_at = now() WHERE id = $2
		`, to, id); err != nil {
			return db.Classify(err)
		}
		if to == order.StatusCancelled {
			if _, err := tx.Exec(ctx, `
				UPDATE products SET quantity = quantity + $1, updated_at = now() WHERE id = $2
			`, cur.quantity, cur.productID); err != nil {
				return db.Classify(err)
			}
		}

		d := notifications.Draft{
			Type:      notification.TypeOrderUpdated,
			Title:     "Order Status Updated",
			Message:   "Order #" + strconv.FormatInt(id, 10) + " for " + cur.productName + " has been " + string(to),
			RelatedID: &id,
		}
		if actor.Role == user.RoleRetailer {
			d.Title = "Order Cancelled"
			return notifications.Notify(ctx, tx, cur.wholesalerID, d)
		}
		return notifications.Notify(ctx, tx, cur.retailerID, d)
	})
}

// Analytics counts orders per status and sums the value of the ones not
// cancelled: revenue for sellers and admins, spend for retailers.
func (r *Repo) Analytics(ctx context.Context, actor user.Actor) (order.Analytics, error) {
	var args db.Args
	q := scope(actor, `
		SELECT o.status, COUNT(*), COALESCE(SUM(o.total_price), 0)
		FROM orders o
		WHERE true`, &args) + ` GROUP BY o.status`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return order.Analytics{}, db.Classify(err)
	}
	defer rows.Close()

	a := order.Analytics{ByStatus: make(map[order.Status]int, len(order.Statuses))}
	for _, s := range order.Statuses {
		a.ByStatus[s] = 0
	}
	sum := decimal.Zero
	for rows.Next() {
		var (
			s   order.Status
			n   int
			amt decimal.Decimal
		)
		if err := rows.Scan(&s, &n, &amt); err != nil {
			return order.Analytics{}, err
		}
		a.ByStatus[s] = n
		a.TotalOrders += n
		if s != order.StatusCancelled {
			sum = sum.Add(amt)
		}
	}
	if err := rows.Err(); err != nil {
		return order.Analytics{}, err
	}
	if actor.Role == user.RoleRetailer {
		a.Spent = &sum
	} else {
		a.Revenue = &sum
	}
	return a, nil
}
