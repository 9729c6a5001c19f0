package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hudl-events/apiserver/types"
)

// SessionRepository handles persistence for sessions.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create persists a session row. A user_id that references no existing
// user is rejected by the foreign key and surfaces as ErrNotFound.
func (r *SessionRepository) Create(ctx context.Context, session types.Session) (types.Session, error) {
	const query = `
		INSERT INTO user_sessions (user_id, session_token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(
		ctx,
		query,
		session.UserID,
		session.Token,
		session.ExpiresAt,
	).Scan(&session.ID, &session.CreatedAt)
	if err != nil {
		return types.Session{}, mapPQError(err)
	}
	return session, nil
}

// ResolveUser exchanges a session token for its user in a single join,
// gated on the live expiry predicate. An unknown token and an expired one
// are both ErrNotFound; callers cannot tell which, and expired rows are
// never valid no matter when the sweep runs.
func (r *SessionRepository) ResolveUser(ctx context.Context, token string) (types.User, error) {
	const query = `
		SELECT u.id, u.email, u.wallet_address, u.discord_id, u.full_name, u.avatar_url,
		       u.auth_provider, u.is_admin, u.password_hash, u.created_at, u.updated_at
		FROM users u
		JOIN user_sessions s ON u.id = s.user_id
		WHERE s.session_token = $1
		  AND s.expires_at > NOW()`
	return scanUser(r.db.QueryRowContext(ctx, query, token))
}

// Delete removes a session row. Deleting a token that does not exist is
// not an error; sign-out is idempotent.
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	const query = `DELETE FROM user_sessions WHERE session_token = $1`
	_, err := r.db.ExecContext(ctx, query, token)
	return err
}

// PurgeExpired sweeps rows whose expiry has passed and reports how many
// were removed. Maintenance only; ResolveUser already ignores them.
func (r *SessionRepository) PurgeExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM user_sessions WHERE expires_at <= NOW()`
	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// GetByToken loads a session row by its token.
func (r *SessionRepository) GetByToken(ctx context.Context, token string) (types.Session, error) {
	const query = `
		SELECT id, user_id, session_token, expires_at, created_at
		FROM user_sessions
		WHERE session_token = $1`
	var session types.Session
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&session.ID,
		&session.UserID,
		&session.Token,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Session{}, ErrNotFound
		}
		return types.Session{}, err
	}
	return session, nil
}
