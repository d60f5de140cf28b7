package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/deskfolio/deskfolio/shared/domain"
	internal_errors "github.com/deskfolio/deskfolio/shared/errors"
)

// =========================================================================
// Public Methods (satisfy service.IdentityStorage)
// =========================================================================

func (s *Storage) SaveUser(ctx context.Context, user domain.User) (domain.UserId, error) {
	var id domain.UserId
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = s.saveUser(ctx, tx, user)
		return err
	})
	return id, err
}

func (s *Storage) User(ctx context.Context, email domain.Email) (domain.User, error) {
	return s.user(ctx, s.db, email)
}

// UpdatePassword stores a new hash and drops any pending reset in one transaction.
func (s *Storage) UpdatePassword(ctx context.Context, email domain.Email, passHash string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.updatePassword(ctx, tx, email, passHash); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM password_resets WHERE email = $1", email)
		if err != nil {
			return fmt.Errorf("failed to clear password reset: %w", err)
		}
		return nil
	})
}

// SaveResetData replaces any pending reset of the same email.
func (s *Storage) SaveResetData(ctx context.Context, data domain.ResetData) error {
	return s.saveResetData(ctx, s.db, data)
}

func (s *Storage) ResetData(ctx context.Context, email domain.Email) (domain.ResetData, error) {
	return s.resetData(ctx, s.db, email)
}

func (s *Storage) DeleteResetData(ctx context.Context, email domain.Email) error {
	return s.deleteResetData(ctx, s.db, email)
}

// =========================================================================
// Internal Methods
// =========================================================================

func (s *Storage) saveUser(ctx context.Context, q Querier, user domain.User) (domain.UserId, error) {
	var id domain.UserId
	err := q.QueryRowContext(ctx,
		"INSERT INTO users(email, password_hash) VALUES($1, $2) RETURNING id",
		user.Email, user.PassHash,
	).Scan(&id)
	if err != nil {
		return -1, fmt.Errorf("failed to insert user: %w", err)
	}
	return id, nil
}

func (s *Storage) user(ctx context.Context, q Querier, email domain.Email) (domain.User, error) {
	var user domain.User
	err := q.QueryRowContext(ctx,
		"SELECT id, email, password_hash FROM users WHERE email = $1", email,
	).Scan(&user.Id, &user.Email, &user.PassHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, internal_errors.NotFound("User not found")
		}
		return domain.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

func (s *Storage) updatePassword(ctx context.Context, q Querier, email domain.Email, passHash string) error {
	result, err := q.ExecContext(ctx, "UPDATE users SET password_hash = $1 WHERE email = $2", passHash, email)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for password update: %w", err)
	}
	if rowsAffected == 0 {
		return internal_errors.NotFound("User not found for password update")
	}
	return nil
}

func (s *Storage) saveResetData(ctx context.Context, q Querier, data domain.ResetData) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO password_resets(email, confirmation_code_hash, expires_at)
		VALUES($1, $2, $3)
		ON CONFLICT (email) DO UPDATE
		SET confirmation_code_hash = EXCLUDED.confirmation_code_hash, expires_at = EXCLUDED.expires_at`,
		data.Email, data.CodeHash, data.Expires,
	)
	if err != nil {
		return fmt.Errorf("failed to save password reset: %w", err)
	}
	return nil
}

func (s *Storage) resetData(ctx context.Context, q Querier, email domain.Email) (domain.ResetData, error) {
	var data domain.ResetData
	err := q.QueryRowContext(ctx,
		"SELECT email, confirmation_code_hash, expires_at FROM password_resets WHERE email = $1", email,
	).Scan(&data.Email, &data.CodeHash, &data.Expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ResetData{}, internal_errors.NotFound("Password reset not found")
		}
		return domain.ResetData{}, fmt.Errorf("failed to query password reset: %w", err)
	}
	return data, nil
}

func (s *Storage) deleteResetData(ctx context.Context, q Querier, email domain.Email) error {
	result, err := q.ExecContext(ctx, "DELETE FROM password_resets WHERE email = $1", email)
	if err != nil {
		return fmt.Errorf("failed to delete password reset: %w", err)
	}
	rowsDeleted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for password reset deletion: %w", err)
	}
	if rowsDeleted == 0 {
		return internal_errors.NotFound("Password reset not found for deletion")
	}
	return nil
}
