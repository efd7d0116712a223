package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/frankly034/userdir/internal/common"
	"github.com/frankly034/userdir/internal/dbx"
	"github.com/frankly034/userdir/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `u.id, u.name, u.email, u.password, u.email_confirmed, u.is_admin, u.is_deleted, u.credentials_id, u.created_at, u.updated_at`

// scanUser reads one user row. With credentials joined in, two extra nullable
// columns (c.id, c.hash) follow the user columns.
func scanUser(row interface{ Scan(dest ...any) error }, includeCredentials bool) (*models.User, error) {
	user := &models.User{}
	var email, credentialsID sql.NullString
	var credID, credHash sql.NullString

	dest := []any{
		&user.ID, &user.Name, &email, &user.Password, &user.EmailConfirmed,
		&user.IsAdmin, &user.IsDeleted, &credentialsID, &user.CreatedAt, &user.UpdatedAt,
	}
	if includeCredentials {
		dest = append(dest, &credID, &credHash)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	user.Email = email.String
	user.CredentialsID = credentialsID.String
	if includeCredentials && credID.Valid {
		user.Credentials = &models.Credentials{ID: credID.String, Hash: credHash.String}
	}
	return user, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (name, email, password, email_confirmed, is_admin, credentials_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Name, nullString(user.Email), user.Password, user.EmailConfirmed,
		user.IsAdmin, nullString(user.CredentialsID)).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string, includeCredentials bool) (*models.User, error) {
	return r.getBy(ctx, "u.id", id, includeCredentials)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string, includeCredentials bool) (*models.User, error) {
	return r.getBy(ctx, "u.email", email, includeCredentials)
}

func (r *PostgresRepository) getBy(ctx context.Context, column, value string, includeCredentials bool) (*models.User, error) {
	columns := userColumns
	join := ""
	if includeCredentials {
		columns += ", c.id, c.hash"
		join = " LEFT JOIN credentials c ON c.id = u.credentials_id"
	}

	query := `SELECT ` + columns + ` FROM users u` + join + ` WHERE ` + column + ` = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, value), includeCredentials)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter Filter) ([]*models.User, error) {
	columns := userColumns
	join := ""
	if filter.IncludeCredentials {
		columns += ", c.id, c.hash"
		join = " LEFT JOIN credentials c ON c.id = u.credentials_id"
	}

	var conditions []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Name != "" || filter.Email != "" {
		var or []string
		if filter.Name != "" {
			or = append(or, "u.name ILIKE '%' || "+arg(filter.Name)+" || '%'")
		}
		if filter.Email != "" {
			or = append(or, "u.email ILIKE '%' || "+arg(filter.Email)+" || '%'")
		}
		conditions = append(conditions, "("+strings.Join(or, " OR ")+")")
	}
	if !filter.UpdatedSince.IsZero() {
		conditions = append(conditions, "u.updated_at >= "+arg(filter.UpdatedSince))
	}
	if len(filter.IDs) > 0 {
		placeholders := make([]string, 0, len(filter.IDs))
		for _, id := range filter.IDs {
			placeholders = append(placeholders, arg(id))
		}
		conditions = append(conditions, "u.id IN ("+strings.Join(placeholders, ", ")+")")
	}

	query := `SELECT ` + columns + ` FROM users u` + join
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY u.created_at, u.id"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		user, err := scanUser(rows, filter.IncludeCredentials)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`UPDATE users
		 SET name = $2, email = $3, password = $4, email_confirmed = $5, credentials_id = $6, updated_at = now()
		 WHERE id = $1
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Name, nullString(user.Email), user.Password,
		user.EmailConfirmed, nullString(user.CredentialsID)).
		Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// SoftDelete marks the account terminal and redacts it: name is replaced by
// the deletion marker, email is cleared and the credentials link is dropped.
// Re-applying it to an already-deleted row is a no-op by construction.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id string) (*models.User, error) {
	query :=
		`UPDATE users
		 SET is_deleted = true, name = $2, email = NULL, credentials_id = NULL, updated_at = now()
		 WHERE id = $1
		 RETURNING id, name, email, password, email_confirmed, is_admin, is_deleted, credentials_id, created_at, updated_at
		 `

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id, common.DeletedUserName), false)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}
