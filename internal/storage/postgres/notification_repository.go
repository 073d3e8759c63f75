package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/farmdirect/api/internal/domain"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	const q = `
SELECT id, user_id, title, message, link, created_at
FROM notifications
WHERE user_id = $1
ORDER BY created_at DESC`

	rows, err := query(ctx, r.pool, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Link, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NotificationRepository) ClearByUser(ctx context.Context, userID string) error {
	const stmt = `DELETE FROM notifications WHERE user_id = $1`
	if _, err := exec(ctx, r.pool, stmt, userID); err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}
	return nil
}
