package credentials

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/frankly034/userdir/internal/common"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+credentials\s*\(hash\)\s*VALUES\s*\(\$1\)\s*RETURNING\s+id\s*$`
	mock.ExpectQuery(q).
		WithArgs("HS256").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("c1"))

	got, err := repo.Create(context.Background(), "HS256")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "c1" || got.Hash != "HS256" {
		t.Fatalf("unexpected credentials: %+v", got)
	}
}

func TestUpdate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+credentials\s+SET\s+hash\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$1\s+RETURNING\s+id\s*$`
	mock.ExpectQuery(q).
		WithArgs("c1", "HS512").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("c1"))

	got, err := repo.Update(context.Background(), "c1", "HS512")
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if got.Hash != "HS512" {
		t.Fatalf("unexpected credentials: %+v", got)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE\s+credentials`).WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), "missing", "HS512")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected common.ErrNotFound, got %v", err)
	}
}

func TestDelete_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^DELETE\s+FROM\s+credentials\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "c1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
}

func TestDelete_MissingRowIsNotAnError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+credentials`).
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "gone"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
}
