package notifications

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/kumarbhakta81/Garment-platform/internal/apperr"
	"github.com/kumarbhakta81/Garment-platform/internal/db"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/notification"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/user"
)

// Draft is the content of a notification before it is addressed to anyone.
type Draft struct {
	Type      notification.Type
	Title     string
	Message   string
	RelatedID *int64
}

// Notify writes one notification for userID. q may be a pool or an open tx,
// so callers can keep the notification inside their own transaction.
func Notify(ctx context.Context, q db.Querier, userID int64, d Draft) error {
	_, err := q.Exec(ctx, `
		INSERT INTO notifications (user_id, type, title, message, related_id)
		VALUES ($1,$2,$3,$4,$5)
	`, userID, d.Type, d.Title, d.Message, d.RelatedID)
	return db.Classify(err)
}

// NotifyAdmins writes the same notification for every active admin.
func NotifyAdmins(ctx context.Context, q db.Querier, d Draft) error {
	_, err := q.Exec(ctx, `
		INSERT INTO notifications (user_id, type, title, message, related_id)
		SELECT id, $2, $3, $4, $5 FROM users WHERE role = $1 AND is_active = true
	`, user.RoleAdmin, d.Type, d.Title, d.Message, d.RelatedID)
	return db.Classify(err)
}

type Filter struct {
	IsRead *bool
	Type   *notification.Type
	Limit  int
	Offset int
}

type Repo struct {
	db db.DB
}

func NewRepo(d db.DB) *Repo {
	return &Repo{db: d}
}

const columns = `n.id, n.user_id, n.type, n.title, n.message, n.related_id, n.is_read, n.created_at`

func scan(row pgx.Row, n *notification.Notification, extra ...any) error {
	dest := []any{&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.RelatedID, &n.IsRead, &n.CreatedAt}
	return row.Scan(append(dest, extra...)...)
}

// where appends the optional filters and paging to q.
func where(f Filter, q string, args db.Args) (string, db.Args) {
	if f.IsRead != nil {
		q += ` AND n.is_read = ` + args.Add(*f.IsRead)
	}
	if f.Type != nil {
		q += ` AND n.type = ` + args.Add(*f.Type)
	}
	q += ` ORDER BY n.created_at DESC, n.id DESC LIMIT ` + args.Add(f.Limit) + ` OFFSET ` + args.Add(f.Offset)
	return q, args
}

func (r *Repo) List(ctx context.Context, userID int64, f Filter) ([]notification.Notification, error) {
	q, args := where(f, `SELECT `+columns+` FROM notifications n WHERE n.user_id = $1`, db.Args{userID})
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	out := []notification.Notification{}
	for rows.Next() {
		var n notification.Notification
		if err := scan(rows, &n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// ListAll is the admin view across every user, joined with the recipient.
func (r *Repo) ListAll(ctx context.Context, f Filter) ([]notification.Notification, error) {
	q, args := where(f, `
		SELECT `+columns+`, u.username, u.email, u.role
		FROM notifications n
		JOIN users u ON u.id = n.user_id
		WHERE true`, nil)
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	out := []notification.Notification{}
	for rows.Next() {
		var n notification.Notification
		if err := scan(rows, &n, &n.Username, &n.Email, &n.Role); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *Repo) Counts(ctx context.Context, userID int64) (notification.Counts, error) {
	rows, err := r.db.Query(ctx, `
		SELECT type, COUNT(*), COUNT(*) FILTER (WHERE is_read = false)
		FROM notifications
		WHERE user_id = $1
		GROUP BY type
	`, userID)
	if err != nil {
		return notification.Counts{}, db.Classify(err)
	}
	defer rows.Close()

	out := notification.Counts{ByType: map[notification.Type]int{}}
	for rows.Next() {
		var (
			t             notification.Type
			total, unread int
		)
		if err := rows.Scan(&t, &total, &unread); err != nil {
			return notification.Counts{}, err
		}
		out.ByType[t] = total
		out.Total += total
		out.Unread += unread
	}
	return out, rows.Err()
}

// MarkRead only touches a notification that belongs to userID.
func (r *Repo) MarkRead(ctx context.Context, userID, id int64) error {
	ct, err := r.db.Exec(ctx, `UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return db.Classify(err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("notification not found")
	}
	return nil
}

func (r *Repo) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	ct, err := r.db.Exec(ctx, `UPDATE notifications SET is_read = true WHERE user_id = $1 AND is_read = false`, userID)
	if err != nil {
		return 0, db.Classify(err)
	}
	return ct.RowsAffected(), nil
}

func (r *Repo) Delete(ctx context.Context, userID, id int64) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return db.Classify(err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("notification not found")
	}
	return nil
}
