package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrConflict is returned when a user_id or username already exists.
var ErrConflict = errors.New("user already exists")

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user not found")

// User is the persisted (user_id, username) record.
type User struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateUser inserts a new (user_id, username) pair. Returns ErrConflict
// if either column already exists; the HTTP layer maps that to 409.
func (db *Database) CreateUser(ctx context.Context, userID, username string) (*User, error) {
	var u User
	err := db.QueryRow(ctx,
		`INSERT INTO users (user_id, username, created_at) VALUES ($1, $2, NOW())
		 RETURNING user_id, username, created_at`,
		userID, username,
	).Scan(&u.UserID, &u.Username, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrConflict
		}
		return nil, err
	}
	return &u, nil
}

// GetUserByID looks up a user by their opaque user id.
func (db *Database) GetUserByID(ctx context.Context, userID string) (*User, error) {
	var u User
	err := db.QueryRow(ctx,
		`SELECT user_id, username, created_at FROM users WHERE user_id = $1`,
		userID,
	).Scan(&u.UserID, &u.Username, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
