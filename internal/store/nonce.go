package store

import (
	"context"
	"database/sql"
	"time"
)

// NonceRepository handles persistence for wallet sign-in nonces.
// Each nonce is single-use: Consume deletes it atomically, so a replayed
// message fails even when two requests race on the same nonce.
type NonceRepository struct {
	db *sql.DB
}

func NewNonceRepository(db *sql.DB) *NonceRepository {
	return &NonceRepository{db: db}
}

// Create persists a freshly minted nonce with an absolute expiry.
func (r *NonceRepository) Create(ctx context.Context, nonce string, expiresAt time.Time) error {
	const query = `
		INSERT INTO wallet_nonces (nonce, expires_at)
		VALUES ($1, $2)`
	if _, err := r.db.ExecContext(ctx, query, nonce, expiresAt); err != nil {
		return mapPQError(err)
	}
	return nil
}

// Consume deletes the nonce if it is still fresh. ErrNotFound means the
// nonce was never issued, already used, or expired; callers cannot tell
// which.
func (r *NonceRepository) Consume(ctx context.Context, nonce string) error {
	const query = `
		DELETE FROM wallet_nonces
		WHERE nonce = $1
		  AND expires_at > NOW()`
	result, err := r.db.ExecContext(ctx, query, nonce)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// PurgeExpired sweeps stale nonces. Maintenance only.
func (r *NonceRepository) PurgeExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM wallet_nonces WHERE expires_at <= NOW()`
	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
