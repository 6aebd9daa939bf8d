package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/stackover-dev/stackover/internal/domain"
	internal_errors "github.com/stackover-dev/stackover/internal/errors"
)

// =========================================================================
// Public Methods (satisfy the service.AuthStorage interface)
// =========================================================================

// SaveUser is the public entry point for creating a new user. The
// uniqueness of name and email is enforced by the database constraints,
// not by a check-then-write, so concurrent registrations with the same
// email cannot both succeed.
func (s *Storage) SaveUser(user domain.User) (domain.UserId, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var id domain.UserId
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = s.saveUser(tx, user)
		return err
	})
	return id, err
}

// UserByEmail is a public, read-only method to fetch a user by email.
func (s *Storage) UserByEmail(email string) (domain.User, error) {
	return s.user(s.db, "email", email)
}

// UserById is a public, read-only method to fetch a user by id.
func (s *Storage) UserById(id domain.UserId) (domain.User, error) {
	return s.user(s.db, "id", id)
}

// UpdateUser is the public entry point for profile edits (name/email).
func (s *Storage) UpdateUser(id domain.UserId, name, email string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.updateUser(tx, id, name, email)
	})
}

// SetOTP stores a pending password-reset code with its expiry,
// overwriting any previous code for that user.
func (s *Storage) SetOTP(id domain.UserId, code string, expires time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.setOTP(tx, id, code, expires)
	})
}

// ClearOTP removes any pending password-reset state.
func (s *Storage) ClearOTP(id domain.UserId) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.clearOTP(tx, id)
	})
}

// ConfirmPasswordReset swaps the password hash and clears the OTP state
// in a single conditional UPDATE: it applies only if the stored code
// matches and has not expired. Returns false when the row was not
// updated (wrong code, expired, or no pending code). Embedding the
// check in the UPDATE serializes a confirm racing a concurrent
// request-new-code against one consistent code/expiry pair.
func (s *Storage) ConfirmPasswordReset(id domain.UserId, passHash, code string, now time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var updated bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		updated, err = s.confirmPasswordReset(tx, id, passHash, code, now)
		return err
	})
	return updated, err
}

// =========================================================================
// Internal Methods (Core Database Logic)
// These methods accept a Querier and are transaction-agnostic.
// =========================================================================

func (s *Storage) saveUser(q Querier, user domain.User) (domain.UserId, error) {
	var id domain.UserId
	err := q.QueryRow(`
        INSERT INTO users(name, email, password_hash)
        VALUES($1, $2, $3) RETURNING id`,
		user.Name, user.Email, user.PassHash).Scan(&id)
	if err != nil {
		if isUniqueViolation(err, "users_name_key") {
			return -1, internal_errors.Conflict("Name already taken")
		}
		if isUniqueViolation(err, "users_email_key") {
			return -1, internal_errors.Conflict("Email already registered")
		}
		return -1, fmt.Errorf("failed to insert user: %w", err)
	}
	return id, nil
}

func (s *Storage) user(q Querier, column string, value any) (domain.User, error) {
	// column is always a compile-time constant ("email" or "id")
	query := fmt.Sprintf(`
        SELECT id, name, email, password_hash,
               COALESCE(otp_code, ''),
               COALESCE(otp_expires_at AT TIME ZONE 'utc', 'epoch'::timestamp),
               created_at AT TIME ZONE 'utc'
        FROM users WHERE %s = $1`, column)

	var user domain.User
	err := q.QueryRow(query, value).Scan(
		&user.Id, &user.Name, &user.Email, &user.PassHash,
		&user.OtpCode, &user.OtpExpires, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, internal_errors.NotFound("User not found")
		}
		return domain.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	if user.OtpExpires.Unix() == 0 {
		user.OtpExpires = time.Time{}
	}
	return user, nil
}

func (s *Storage) updateUser(q Querier, id domain.UserId, name, email string) error {
	result, err := q.Exec("UPDATE users SET name = $1, email = $2 WHERE id = $3", name, email, id)
	if err != nil {
		if isUniqueViolation(err, "users_name_key") {
			return internal_errors.Conflict("Name already taken")
		}
		if isUniqueViolation(err, "users_email_key") {
			return internal_errors.Conflict("Email already registered")
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for user update: %w", err)
	}
	if rowsAffected == 0 {
		return internal_errors.NotFound("User not found")
	}
	return nil
}

func (s *Storage) setOTP(q Querier, id domain.UserId, code string, expires time.Time) error {
	result, err := q.Exec(
		"UPDATE users SET otp_code = $1, otp_expires_at = $2 WHERE id = $3",
		code, expires, id)
	if err != nil {
		return fmt.Errorf("failed to set otp: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for otp update: %w", err)
	}
	if rowsAffected == 0 {
		return internal_errors.NotFound("User not found")
	}
	return nil
}

func (s *Storage) clearOTP(q Querier, id domain.UserId) error {
	_, err := q.Exec(
		"UPDATE users SET otp_code = NULL, otp_expires_at = NULL WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to clear otp: %w", err)
	}
	return nil
}

func (s *Storage) confirmPasswordReset(q Querier, id domain.UserId, passHash, code string, now time.Time) (bool, error) {
	result, err := q.Exec(`
        UPDATE users
        SET password_hash = $1, otp_code = NULL, otp_expires_at = NULL
        WHERE id = $2 AND otp_code = $3 AND otp_expires_at > $4`,
		passHash, id, code, now)
	if err != nil {
		return false, fmt.Errorf("failed to confirm password reset: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows for password reset: %w", err)
	}
	return rowsAffected > 0, nil
}
