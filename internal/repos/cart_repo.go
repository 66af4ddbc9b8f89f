package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"cafeteria/internal/domain"
)

// CartRepo parks a session's cart in SQLite between requests.
type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

func (r *CartRepo) Load(ctx context.Context, sessionID string) (domain.Cart, error) {
	var lines []domain.CartLine
	err := r.db.SelectContext(ctx, &lines, `
		SELECT product_id, quantity
		FROM cart_lines
		WHERE session_id = ?
		ORDER BY position
	`, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}
	return domain.Cart{Lines: lines}, nil
}

// Save replaces whatever was stored for the session with cart.
func (r *CartRepo) Save(ctx context.Context, sessionID string, cart domain.Cart) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_lines WHERE session_id = ?`, sessionID); err != nil {
		return err
	}
	for i, l := range cart.Lines {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO cart_lines(session_id, product_id, quantity, position, updated_at)
			VALUES(?, ?, ?, ?, CURRENT_TIMESTAMP)
		`, sessionID, int64(l.ProductID), l.Quantity, i); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *CartRepo) Clear(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_lines WHERE session_id = ?`, sessionID)
	return err
}
