package store

import (
	"context"
	"time"

	"ewastelocator/internal/model"
)

// SaveMessage 保存联系留言
func (s *Store) SaveMessage(ctx context.Context, msg model.ContactMessage) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		s.rebind("INSERT INTO messages (email, name, body, created_at) VALUES (?, ?, ?, ?)"),
		msg.Email, msg.Name, msg.Body, msg.CreatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

// ListMessages 某用户的留言，按时间先后
func (s *Store) ListMessages(ctx context.Context, email string) ([]model.ContactMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind("SELECT id, email, name, body, created_at FROM messages WHERE email = ? ORDER BY id"), email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ContactMessage{}
	for rows.Next() {
		var m model.ContactMessage
		var created string
		if err := rows.Scan(&m.ID, &m.Email, &m.Name, &m.Body, &created); err != nil {
			return nil, err
		}
		m.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, m)
	}
	return out, rows.Err()
}
