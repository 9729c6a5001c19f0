package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hudl-events/apiserver/types"
)

// UserRepository handles persistence for users.
//
// Lookups are exact, case-sensitive matches. Callers normalize emails to
// lower case before storing or querying, so email matching is effectively
// case-insensitive at the service layer.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, wallet_address, discord_id, full_name, avatar_url,
		auth_provider, is_admin, password_hash, created_at, updated_at`

func scanUser(row *sql.Row) (types.User, error) {
	var user types.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.WalletAddress,
		&user.DiscordID,
		&user.FullName,
		&user.AvatarURL,
		&user.AuthProvider,
		&user.IsAdmin,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

// Create inserts a new user. Duplicate email, wallet address, or Discord ID
// surfaces as ErrConflict from the unique indexes; concurrent sign-up races
// are decided here, not by the caller's pre-check.
func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	const query = `
		INSERT INTO users (email, wallet_address, discord_id, full_name, avatar_url, auth_provider, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns
	row := r.db.QueryRowContext(
		ctx,
		query,
		user.Email,
		user.WalletAddress,
		user.DiscordID,
		user.FullName,
		user.AvatarURL,
		user.AuthProvider,
		user.IsAdmin,
	)
	created, err := scanUser(row)
	if err != nil {
		return types.User{}, mapPQError(err)
	}
	return created, nil
}

// CreateWithPassword inserts a new email user along with its bcrypt hash.
func (r *UserRepository) CreateWithPassword(ctx context.Context, user types.User, passwordHash string) (types.User, error) {
	const query = `
		INSERT INTO users (email, full_name, auth_provider, is_admin, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns
	row := r.db.QueryRowContext(
		ctx,
		query,
		user.Email,
		user.FullName,
		user.AuthProvider,
		user.IsAdmin,
		passwordHash,
	)
	created, err := scanUser(row)
	if err != nil {
		return types.User{}, mapPQError(err)
	}
	return created, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) GetByWallet(ctx context.Context, address string) (types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE wallet_address = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, address))
}

func (r *UserRepository) GetByDiscordID(ctx context.Context, discordID string) (types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE discord_id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, discordID))
}

// PromoteToAdmin sets is_admin and bumps updated_at. Idempotent.
func (r *UserRepository) PromoteToAdmin(ctx context.Context, id string) error {
	const query = `
		UPDATE users
		SET is_admin = TRUE,
			updated_at = NOW()
		WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
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
