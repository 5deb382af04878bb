package postgres

import (
	"context"
	"database/sql"
	"errors"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// UserRepository is a PostgreSQL implementation of repository.UserRepository.
type UserRepository struct {
	q Querier
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{q: db}
}

// Create adds a new user.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, name, email, phone, password_hash)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.q.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.Phone, user.PasswordHash)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT id, name, email, phone, password_hash, created_at FROM users WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetForUpdate retrieves a user by ID with a row lock. The lock is held
// until the enclosing transaction commits or rolls back.
func (r *UserRepository) GetForUpdate(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT id, name, email, phone, password_hash, created_at FROM users WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a user by email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT id, name, email, phone, password_hash, created_at FROM users WHERE email = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) scanOne(row *sql.Row) (*domain.User, error) {
	var user domain.User
	var phone sql.NullString
	err := row.Scan(&user.ID, &user.Name, &user.Email, &phone, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if phone.Valid {
		user.Phone = phone.String
	}
	return &user, nil
}

// List retrieves a page of users, optionally filtered by role.
func (r *UserRepository) List(ctx context.Context, role domain.Role, offset, limit int) ([]*domain.User, error) {
	query := `
		SELECT DISTINCT u.id, u.name, u.email, u.phone, u.password_hash, u.created_at
		FROM users u
		LEFT JOIN user_roles ur ON ur.user_id = u.id
		WHERE ($1 = '' OR ur.role = $1)
		ORDER BY u.created_at DESC, u.id
		OFFSET $2 LIMIT $3
	`
	rows, err := r.q.QueryContext(ctx, query, string(role), offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		var user domain.User
		var phone sql.NullString
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &phone, &user.PasswordHash, &user.CreatedAt); err != nil {
			return nil, err
		}
		if phone.Valid {
			user.Phone = phone.String
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}

// Count returns the number of users, optionally filtered by role.
func (r *UserRepository) Count(ctx context.Context, role domain.Role) (int, error) {
	query := `
		SELECT COUNT(DISTINCT u.id)
		FROM users u
		LEFT JOIN user_roles ur ON ur.user_id = u.id
		WHERE ($1 = '' OR ur.role = $1)
	`
	var count int
	err := r.q.QueryRowContext(ctx, query, string(role)).Scan(&count)
	return count, err
}

// Delete removes a user row.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
