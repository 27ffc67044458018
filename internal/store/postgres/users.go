package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/netra-news/backend/internal/news"
)

// CreateUser inserts a new account. Duplicate usernames or emails surface
// as news.ErrConflict whether caught by the pre-check or by the unique
// constraint under a concurrent registration.
func (s *Store) CreateUser(ctx context.Context, username, email, passwordHash string) (news.User, error) {
	var taken bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)`,
		username, email,
	).Scan(&taken)
	if err != nil {
		return news.User{}, fmt.Errorf("check user exists: %w", err)
	}
	if taken {
		return news.User{}, news.ErrConflict
	}

	user := news.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}
	err = s.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash) VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		username, email, passwordHash,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return news.User{}, news.ErrConflict
		}
		return news.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// UserByUsername returns the account with the given username.
func (s *Store) UserByUsername(ctx context.Context, username string) (news.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE username = $1`,
		username,
	))
}

// UserByID returns the account with the given id.
func (s *Store) UserByID(ctx context.Context, id int64) (news.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE id = $1`,
		id,
	))
}

func (s *Store) scanUser(row pgx.Row) (news.User, error) {
	var u news.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return news.User{}, news.ErrNotFound
	}
	if err != nil {
		return news.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}
