package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CardTokenRepository stores the vault card token per customer and store.
// Tokens are opaque; the card data itself never touches this database.
type CardTokenRepository struct {
	db *pgxpool.Pool
}

func NewCardTokenRepository(db *pgxpool.Pool) *CardTokenRepository {
	return &CardTokenRepository{db: db}
}

func (r *CardTokenRepository) Token(ctx context.Context, customerID, storeID string) (string, error) {
	query := `
		SELECT card_id FROM customer_card_tokens
		WHERE customer_id = $1 AND store_id = $2
	`

	var cardID string
	err := r.db.QueryRow(ctx, query, customerID, storeID).Scan(&cardID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load card token: %w", err)
	}

	return cardID, nil
}

func (r *CardTokenRepository) Save(ctx context.Context, customerID, storeID, cardID string) error {
	query := `
		INSERT INTO customer_card_tokens (customer_id, store_id, card_id, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (customer_id, store_id)
		DO UPDATE SET card_id = EXCLUDED.card_id, updated_at = now()
	`

	_, err := r.db.Exec(ctx, query, customerID, storeID, cardID)
	if err != nil {
		return fmt.Errorf("failed to save card token: %w", err)
	}

	return nil
}

func (r *CardTokenRepository) Delete(ctx context.Context, customerID, storeID string) error {
	query := `
		DELETE FROM customer_card_tokens
		WHERE customer_id = $1 AND store_id = $2
	`

	_, err := r.db.Exec(ctx, query, customerID, storeID)
	if err != nil {
		return fmt.Errorf("failed to delete card token: %w", err)
	}

	return nil
}
