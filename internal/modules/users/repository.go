// Package users manages user records and token balance mutations.
package users

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tzagara/curvecast/internal/domain"
)

// Repository handles user database operations and implements
// domain.UserLedger. Balance mutations are single guarded UPDATE statements,
// so they are atomic without explicit locking.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new users repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "users").Logger(),
	}
}

// Create inserts a new user with the default starting token balance
func (r *Repository) Create(id, displayName string) (*domain.User, error) {
	now := time.Now().UTC()
	_, err := r.db.Exec(`
		INSERT INTO users (id, display_name, token_balance, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		id, displayName, domain.DefaultTokenBalance, now.Unix(), now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &domain.User{
		ID:           id,
		DisplayName:  displayName,
		TokenBalance: domain.DefaultTokenBalance,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// GetByID returns a user or domain.ErrNotFound
func (r *Repository) GetByID(id string) (*domain.User, error) {
	var user domain.User
	var createdAt, updatedAt int64

	err := r.db.QueryRow(
		"SELECT id, display_name, token_balance, created_at, updated_at FROM users WHERE id = ?", id,
	).Scan(&user.ID, &user.DisplayName, &user.TokenBalance, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	user.CreatedAt = time.Unix(createdAt, 0).UTC()
	user.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &user, nil
}

// All returns every user
func (r *Repository) All() ([]domain.User, error) {
	rows, err := r.db.Query("SELECT id, display_name, token_balance, created_at, updated_at FROM users")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		var createdAt, updatedAt int64
		if err := rows.Scan(&user.ID, &user.DisplayName, &user.TokenBalance, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		user.CreatedAt = time.Unix(createdAt, 0).UTC()
		user.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return result, nil
}

// Debit removes tokens from a user's balance. Returns
// domain.ErrInsufficientFunds when the balance cannot cover the amount.
func (r *Repository) Debit(userID string, amount int) error {
	if amount < 0 {
		return fmt.Errorf("debit amount must be non-negative: %w", domain.ErrInvalidInput)
	}

	result, err := r.db.Exec(`
		UPDATE users
		SET token_balance = token_balance - ?, updated_at = ?
		WHERE id = ? AND token_balance >= ?`,
		amount, time.Now().UTC().Unix(), userID, amount,
	)
	if err != nil {
		return fmt.Errorf("failed to debit user %s: %w", userID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check debit result: %w", err)
	}
	if affected == 0 {
		// Distinguish a missing user from an uncovered stake
		if _, err := r.GetByID(userID); err != nil {
			return err
		}
		return domain.ErrInsufficientFunds
	}

	r.log.Debug().Str("user", userID).Int("amount", amount).Msg("Debited tokens")
	return nil
}

// Credit adds tokens to a user's balance
func (r *Repository) Credit(userID string, amount int) error {
	if amount < 0 {
		return fmt.Errorf("credit amount must be non-negative: %w", domain.ErrInvalidInput)
	}

	result, err := r.db.Exec(`
		UPDATE users
		SET token_balance = token_balance + ?, updated_at = ?
		WHERE id = ?`,
		amount, time.Now().UTC().Unix(), userID,
	)
	if err != nil {
		return fmt.Errorf("failed to credit user %s: %w", userID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check credit result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	r.log.Debug().Str("user", userID).Int("amount", amount).Msg("Credited tokens")
	return nil
}
