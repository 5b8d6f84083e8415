// Package db provides database access for the deconfliction service.
package db

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Operator represents an account that can register and manage
// scheduled flights in the catalogue.
type Operator struct {
	ID           int        `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Never expose password hash in JSON
	Role         string     `json:"role"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

var (
	// ErrOperatorNotFound is returned when an operator cannot be found
	ErrOperatorNotFound = errors.New("operator not found")
	// ErrOperatorExists is returned when trying to create an operator that already exists
	ErrOperatorExists = errors.New("operator already exists")
)

// OperatorRepository provides methods for operator account database operations.
type OperatorRepository struct {
	db *sql.DB
}

// NewOperatorRepository creates a new operator repository.
func NewOperatorRepository(db *sql.DB) *OperatorRepository {
	return &OperatorRepository{db: db}
}

// Create creates a new operator account in the database.
func (r *OperatorRepository) Create(ctx context.Context, op *Operator) error {
	query := `
		INSERT INTO operators (username, email, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		op.Username,
		op.Email,
		op.PasswordHash,
		op.Role,
		op.IsActive,
	).Scan(&op.ID, &op.CreatedAt, &op.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrOperatorExists
		}
		return err
	}

	return nil
}

// GetByID retrieves an operator by their ID.
func (r *OperatorRepository) GetByID(ctx context.Context, id int) (*Operator, error) {
	query := `
		SELECT id, username, email, password_hash, role, is_active,
		       created_at, updated_at, last_login
		FROM operators
		WHERE id = $1
	`

	op := &Operator{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&op.ID,
		&op.Username,
		&op.Email,
		&op.PasswordHash,
		&op.Role,
		&op.IsActive,
		&op.CreatedAt,
		&op.UpdatedAt,
		&op.LastLogin,
	)

	if err == sql.ErrNoRows {
		return nil, ErrOperatorNotFound
	}
	if err != nil {
		return nil, err
	}

	return op, nil
}

// GetByUsername retrieves an operator by their username.
func (r *OperatorRepository) GetByUsername(ctx context.Context, username string) (*Operator, error) {
	query := `
		SELECT id, username, email, password_hash, role, is_active,
		       created_at, updated_at, last_login
		FROM operators
		WHERE username = $1
	`

	op := &Operator{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&op.ID,
		&op.Username,
		&op.Email,
		&op.PasswordHash,
		&op.Role,
		&op.IsActive,
		&op.CreatedAt,
		&op.UpdatedAt,
		&op.LastLogin,
	)

	if err == sql.ErrNoRows {
		return nil, ErrOperatorNotFound
	}
	if err != nil {
		return nil, err
	}

	return op, nil
}

// UpdateLastLogin updates the last login timestamp for an operator.
func (r *OperatorRepository) UpdateLastLogin(ctx context.Context, operatorID int) error {
	query := `
		UPDATE operators
		SET last_login = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, operatorID)
	return err
}

// Update updates an operator's account information.
func (r *OperatorRepository) Update(ctx context.Context, op *Operator) error {
	query := `
		UPDATE operators
		SET username = $1, email = $2, role = $3, is_active = $4
		WHERE id = $5
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		op.Username,
		op.Email,
		op.Role,
		op.IsActive,
		op.ID,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrOperatorExists
		}
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrOperatorNotFound
	}

	return nil
}

// Delete deletes an operator account from the database.
func (r *OperatorRepository) Delete(ctx context.Context, operatorID int) error {
	query := `DELETE FROM operators WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, operatorID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrOperatorNotFound
	}

	return nil
}

// List retrieves operator accounts ordered by creation time.
func (r *OperatorRepository) List(ctx context.Context, limit, offset int) ([]*Operator, error) {
	query := `
		SELECT id, username, email, password_hash, role, is_active,
		       created_at, updated_at, last_login
		FROM operators
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var operators []*Operator
	for rows.Next() {
		op := &Operator{}
		err := rows.Scan(
			&op.ID,
			&op.Username,
			&op.Email,
			&op.PasswordHash,
			&op.Role,
			&op.IsActive,
			&op.CreatedAt,
			&op.UpdatedAt,
			&op.LastLogin,
		)
		if err != nil {
			return nil, err
		}
		operators = append(operators, op)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return operators, nil
}

// isUniqueViolation checks if an error is a unique constraint violation.
// This is PostgreSQL-specific but can be adapted for other databases.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return err.Error() == `pq: duplicate key value violates unique constraint "operators_username_key"` ||
		err.Error() == `pq: duplicate key value violates unique constraint "operators_email_key"`
}
