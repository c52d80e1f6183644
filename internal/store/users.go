package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser inserts a user together with an empty profile and the "user" role.
func (s *SQLiteStore) CreateUser(ctx context.Context, email, passwordHash string, displayName *string) (*User, error) {
	var user *User
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		user, err = createUserTx(ctx, tx, email, passwordHash, displayName)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func createUserTx(ctx context.Context, tx *sql.Tx, email, passwordHash string, displayName *string) (*User, error) {
	user := &User{
		ID:           uuid.NewString(),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		CreatedAt:    now(),
	}
	_, err := tx.ExecContext(ctx, "INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)",
		user.ID, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("email %s: %w", user.Email, ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	_, err = tx.ExecContext(ctx, "INSERT INTO profiles (user_id, display_name, created_at, updated_at) VALUES (?, ?, ?, ?)",
		user.ID, displayName, user.CreatedAt, user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert profile: %w", err)
	}

	if err := grantRoleTx(ctx, tx, user.ID, RoleUser); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.getUser(ctx, "SELECT id, email, password_hash, created_at FROM users WHERE email = ?", NormalizeEmail(email))
}

func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*User, error) {
	return s.getUser(ctx, "SELECT id, email, password_hash, created_at FROM users WHERE id = ?", id)
}

func (s *SQLiteStore) getUser(ctx context.Context, query string, arg string) (*User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

func (s *SQLiteStore) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	var p Profile
	var displayName, avatarURL, bio sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT user_id, display_name, avatar_url, bio, created_at, updated_at FROM profiles WHERE user_id = ?", userID).
		Scan(&p.UserID, &displayName, &avatarURL, &bio, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	p.DisplayName = nullString(displayName)
	p.AvatarURL = nullString(avatarURL)
	p.Bio = nullString(bio)
	return &p, nil
}

// GrantRole is idempotent.
func (s *SQLiteStore) GrantRole(ctx context.Context, userID, role string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return grantRoleTx(ctx, tx, userID, role)
	})
}

func grantRoleTx(ctx context.Context, tx *sql.Tx, userID, role string) error {
	_, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO user_roles (user_id, role) VALUES (?, ?)", userID, role)
	if err != nil {
		return fmt.Errorf("failed to grant role %s: %w", role, err)
	}
	return nil
}

func (s *SQLiteStore) GetRoles(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT role FROM user_roles WHERE user_id = ? ORDER BY role", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query roles: %w", err)
	}
	defer rows.Close()

	roles := []string{}
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("failed to scan role row: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (s *SQLiteStore) HasRole(ctx context.Context, userID, role string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM user_roles WHERE user_id = ? AND role = ?", userID, role).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to query role: %w", err)
	}
	return n > 0, nil
}

// RevokeToken records a token id as signed out. Expired entries are purged
// on the way.
func (s *SQLiteStore) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM revoked_tokens WHERE expires_at < ?", now()); err != nil {
			return fmt.Errorf("failed to purge revoked tokens: %w", err)
		}
		_, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO revoked_tokens (jti, expires_at) VALUES (?, ?)", jti, expiresAt.UTC())
		if err != nil {
			return fmt.Errorf("failed to revoke token: %w", err)
		}
		return nil
	})
}

func (s *SQLiteStore) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM revoked_tokens WHERE jti = ?", jti).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to query revoked token: %w", err)
	}
	return n > 0, nil
}
