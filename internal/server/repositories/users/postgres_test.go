package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/frankly034/userdir/internal/common"
	"github.com/frankly034/userdir/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func userRows(id string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "email", "password", "email_confirmed", "is_admin", "is_deleted",
		"credentials_id", "created_at", "updated_at",
	}).AddRow(id, "Alice", "alice@example.com", "$2a$04$digest", false, false, false, nil, now, now)
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+users\s*\(name,\s*email,\s*password,\s*email_confirmed,\s*is_admin,\s*credentials_id\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)\s*RETURNING\s+id,\s*created_at,\s*updated_at\s*$`

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("42", now, now)
	mock.ExpectQuery(q).
		WithArgs("Alice", "alice@example.com", "$2a$04$digest", false, false, nil).
		WillReturnRows(rows)

	u := &models.User{Name: "Alice", Email: "alice@example.com", Password: "$2a$04$digest"}
	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "42" || got.Name != "Alice" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{Name: "Alice", Email: "alice@example.com", Password: "x"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByID_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+u\.id,.*\s+FROM\s+users\s+u\s+WHERE\s+u\.id\s*=\s*\$1$`
	mock.ExpectQuery(q).WithArgs("42").WillReturnRows(userRows("42"))

	got, err := repo.GetByID(context.Background(), "42", false)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.ID != "42" || got.Email != "alice@example.com" || got.Credentials != nil {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing", false)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected common.ErrNotFound, got %v", err)
	}
}

func TestGetByEmail_IncludesCredentials(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+u\.id,.*c\.id,\s*c\.hash\s+FROM\s+users\s+u\s+LEFT\s+JOIN\s+credentials\s+c\s+ON\s+c\.id\s*=\s*u\.credentials_id\s+WHERE\s+u\.email\s*=\s*\$1$`

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "name", "email", "password", "email_confirmed", "is_admin", "is_deleted",
		"credentials_id", "created_at", "updated_at", "c_id", "c_hash",
	}).AddRow("42", "Alice", "alice@example.com", "$2a$04$digest", true, false, false, "c1", now, now, "c1", "HS256")

	mock.ExpectQuery(q).WithArgs("alice@example.com").WillReturnRows(rows)

	got, err := repo.GetByEmail(context.Background(), "alice@example.com", true)
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if got.Credentials == nil || got.Credentials.Hash != "HS256" || got.CredentialsID != "c1" {
		t.Fatalf("unexpected credentials projection: %+v", got)
	}
}

func TestList_BuildsFilteredQuery(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+u\.id,.*\s+FROM\s+users\s+u\s+WHERE\s+\(u\.name\s+ILIKE\s+'%'\s*\|\|\s*\$1\s*\|\|\s*'%'\s+OR\s+u\.email\s+ILIKE\s+'%'\s*\|\|\s*\$2\s*\|\|\s*'%'\)\s+AND\s+u\.updated_at\s*>=\s*\$3\s+AND\s+u\.id\s+IN\s+\(\$4,\s*\$5\)\s+ORDER\s+BY\s+u\.created_at,\s*u\.id\s+LIMIT\s+\$6\s+OFFSET\s+\$7$`

	since := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(q).
		WithArgs("ali", "fake-mail", since, "1", "2", 20, 40).
		WillReturnRows(userRows("1"))

	filter := Filter{
		Name:         "ali",
		Email:        "fake-mail",
		IDs:          []string{"1", "2"},
		UpdatedSince: since,
		Limit:        20,
		Offset:       40,
	}
	got, err := repo.List(context.Background(), filter)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestList_NoFilter(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+u\.id,.*\s+FROM\s+users\s+u\s+ORDER\s+BY\s+u\.created_at,\s*u\.id$`
	mock.ExpectQuery(q).WillReturnRows(userRows("1").AddRow(
		"2", "Bob", "bob@example.com", "$2a$04$digest", false, false, false, nil, time.Now(), time.Now(),
	))

	got, err := repo.List(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 users, got %d", len(got))
	}
}

func TestUpdate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+users\s+SET\s+name\s*=\s*\$2,\s*email\s*=\s*\$3,\s*password\s*=\s*\$4,\s*email_confirmed\s*=\s*\$5,\s*credentials_id\s*=\s*\$6,\s*updated_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$1\s+RETURNING\s+created_at,\s*updated_at\s*$`

	now := time.Now()
	rows := sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now.Add(-time.Hour), now)
	mock.ExpectQuery(q).
		WithArgs("42", "X", "alice@example.com", "$2a$04$digest", true, "c1").
		WillReturnRows(rows)

	u := &models.User{
		ID: "42", Name: "X", Email: "alice@example.com", Password: "$2a$04$digest",
		EmailConfirmed: true, CredentialsID: "c1",
	}
	got, err := repo.Update(context.Background(), u)
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if !got.UpdatedAt.Equal(now) {
		t.Fatalf("expected refreshed updated_at")
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE\s+users`).WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), &models.User{ID: "missing"})
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected common.ErrNotFound, got %v", err)
	}
}

func TestSoftDelete_RedactsRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+users\s+SET\s+is_deleted\s*=\s*true,\s*name\s*=\s*\$2,\s*email\s*=\s*NULL,\s*credentials_id\s*=\s*NULL,\s*updated_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$1\s+RETURNING\s+`

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "name", "email", "password", "email_confirmed", "is_admin", "is_deleted",
		"credentials_id", "created_at", "updated_at",
	}).AddRow("42", common.DeletedUserName, nil, "$2a$04$digest", false, false, true, nil, now, now)

	mock.ExpectQuery(q).WithArgs("42", common.DeletedUserName).WillReturnRows(rows)

	got, err := repo.SoftDelete(context.Background(), "42")
	if err != nil {
		t.Fatalf("SoftDelete error: %v", err)
	}
	if !got.IsDeleted || got.Name != common.DeletedUserName || got.Email != "" {
		t.Fatalf("expected redacted row, got %+v", got)
	}
}
