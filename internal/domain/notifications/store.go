package notifications

import (
	"context"
	"time"

	"ponto/internal/platform/querier"
)

type Notification struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type StoreAPI interface {
	CreateNotification(ctx context.Context, employeeID, ntype, ref, title, body string) (bool, error)
	ListNotifications(ctx context.Context, employeeID string, unreadOnly bool, limit, offset int) ([]Notification, error)
	CountNotifications(ctx context.Context, employeeID string, unreadOnly bool) (int, error)
	MarkRead(ctx context.Context, employeeID, notificationID string) (bool, error)
}

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

// CreateNotification is a no-op when (employee, type, ref) already exists and
// reports whether a row was written.
func (s *Store) CreateNotification(ctx context.Context, employeeID, ntype, ref, title, body string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    INSERT INTO notifications (employee_id, type, ref, title, body)
    VALUES ($1,$2,$3,$4,$5)
    ON CONFLICT (employee_id, type, ref) DO NOTHING
  `, employeeID, ntype, ref, title, body)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) ListNotifications(ctx context.Context, employeeID string, unreadOnly bool, limit, offset int) ([]Notification, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, type, title, body, read_at, created_at
    FROM notifications
    WHERE employee_id = $1 AND ($2 = false OR read_at IS NULL)
    ORDER BY created_at DESC
    LIMIT $3 OFFSET $4
  `, employeeID, unreadOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Body, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) CountNotifications(ctx context.Context, employeeID string, unreadOnly bool) (int, error) {
	var total int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM notifications
    WHERE employee_id = $1 AND ($2 = false OR read_at IS NULL)
  `, employeeID, unreadOnly).Scan(&total)
	return total, err
}

func (s *Store) MarkRead(ctx context.Context, employeeID, notificationID string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE notifications SET read_at = now()
    WHERE employee_id = $1 AND id = $2 AND read_at IS NULL
  `, employeeID, notificationID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
