package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *PostgresRepository) Create(ctx context.Context, hash string) (*models.Credentials, error) {
	query :=
		`INSERT INTO credentials (hash)
		 VALUES ($1)
		 RETURNING id
		 `

	creds := &models.Credentials{Hash: hash}
	err := r.db.QueryRowContext(ctx, query, hash).Scan(&creds.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return creds, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, hash string) (*models.Credentials, error) {
	query :=
		`UPDATE credentials SET hash = $2
		 WHERE id = $1
		 RETURNING id
		 `

	creds := &models.Credentials{Hash: hash}
	err := r.db.QueryRowContext(ctx, query, id, hash).Scan(&creds.ID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return creds, nil
}

// Delete removes the credentials row. Deleting a row that is already gone is
// not an error; soft-deleting a user must stay idempotent.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM credentials WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
