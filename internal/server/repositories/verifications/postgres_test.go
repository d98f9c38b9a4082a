package verifications

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/clipfeed/clipfeed/internal/common"
	"github.com/clipfeed/clipfeed/internal/server/models"
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

	q := `(?s)^INSERT\s+INTO\s+phone_verifications\s*\(id,\s*phone,\s*code_hash,\s*attempts,\s*confirmed,\s*sent_at,\s*expires_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7\)\s*$`

	now := time.Now().UTC()
	v := &models.PhoneVerification{
		ID:        "ver-1",
		Phone:     "+919335922265",
		CodeHash:  "hash",
		Attempts:  0,
		Confirmed: false,
		SentAt:    now,
		ExpiresAt: now.Add(5 * time.Minute),
	}

	mock.ExpectExec(q).
		WithArgs(v.ID, v.Phone, v.CodeHash, v.Attempts, v.Confirmed, v.SentAt, v.ExpiresAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), v); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+phone_verifications\b.*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7\)\s*$`

	mock.ExpectExec(q).
		WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &models.PhoneVerification{ID: "ver-1"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*phone,\s*code_hash,\s*attempts,\s*confirmed,\s*sent_at,\s*expires_at\s+FROM\s+phone_verifications\s+WHERE\s+id\s*=\s*\$1\s*$`

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "phone", "code_hash", "attempts", "confirmed", "sent_at", "expires_at"}).
		AddRow("ver-1", "+919335922265", "hash", 2, false, now, now.Add(5*time.Minute))
	mock.ExpectQuery(q).
		WithArgs("ver-1").
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "ver-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.ID != "ver-1" || got.Attempts != 2 || got.Confirmed {
		t.Fatalf("unexpected verification: %+v", got)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*phone,\s*code_hash,\s*attempts,\s*confirmed,\s*sent_at,\s*expires_at\s+FROM\s+phone_verifications\s+WHERE\s+id\s*=\s*\$1\s*$`

	mock.ExpectQuery(q).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestIncrementAttempts_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+phone_verifications\s+SET\s+attempts\s*=\s*attempts\s*\+\s*1\s+WHERE\s+id\s*=\s*\$1\s+RETURNING\s+attempts\s*$`

	rows := sqlmock.NewRows([]string{"attempts"}).AddRow(3)
	mock.ExpectQuery(q).
		WithArgs("ver-1").
		WillReturnRows(rows)

	got, err := repo.IncrementAttempts(context.Background(), "ver-1")
	if err != nil {
		t.Fatalf("IncrementAttempts error: %v", err)
	}
	if got != 3 {
		t.Fatalf("unexpected attempts: %d", got)
	}
}

func TestIncrementAttempts_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+phone_verifications\s+SET\s+attempts\s*=\s*attempts\s*\+\s*1\s+WHERE\s+id\s*=\s*\$1\s+RETURNING\s+attempts\s*$`

	mock.ExpectQuery(q).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.IncrementAttempts(context.Background(), "missing")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestIncrementAttempts_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+phone_verifications\s+SET\s+attempts\s*=\s*attempts\s*\+\s*1\s+WHERE\s+id\s*=\s*\$1\s+RETURNING\s+attempts\s*$`

	mock.ExpectQuery(q).
		WithArgs("ver-1").
		WillReturnError(errors.New("db err"))

	_, err := repo.IncrementAttempts(context.Background(), "ver-1")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestMarkConfirmed_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+phone_verifications\s+SET\s+confirmed\s*=\s*TRUE\s+WHERE\s+id\s*=\s*\$1\s*$`

	mock.ExpectExec(q).
		WithArgs("ver-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkConfirmed(context.Background(), "ver-1"); err != nil {
		t.Fatalf("MarkConfirmed error: %v", err)
	}
}

func TestMarkConfirmed_NoRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+phone_verifications\s+SET\s+confirmed\s*=\s*TRUE\s+WHERE\s+id\s*=\s*\$1\s*$`

	mock.ExpectExec(q).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkConfirmed(context.Background(), "missing")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestMarkConfirmed_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+phone_verifications\s+SET\s+confirmed\s*=\s*TRUE\s+WHERE\s+id\s*=\s*\$1\s*$`

	mock.ExpectExec(q).
		WithArgs("ver-1").
		WillReturnError(errors.New("db err"))

	err := repo.MarkConfirmed(context.Background(), "ver-1")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestCountRecentByPhone_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+COUNT\(\*\)\s+FROM\s+phone_verifications\s+WHERE\s+phone\s*=\s*\$1\s+AND\s+sent_at\s*>\s*\$2\s*$`

	since := time.Now().Add(-time.Hour)
	rows := sqlmock.NewRows([]string{"count"}).AddRow(2)
	mock.ExpectQuery(q).
		WithArgs("+919335922265", since).
		WillReturnRows(rows)

	got, err := repo.CountRecentByPhone(context.Background(), "+919335922265", since)
	if err != nil {
		t.Fatalf("CountRecentByPhone error: %v", err)
	}
	if got != 2 {
		t.Fatalf("unexpected count: %d", got)
	}
}

func TestCountRecentByPhone_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+COUNT\(\*\)\s+FROM\s+phone_verifications\s+WHERE\s+phone\s*=\s*\$1\s+AND\s+sent_at\s*>\s*\$2\s*$`

	mock.ExpectQuery(q).
		WillReturnError(errors.New("db err"))

	_, err := repo.CountRecentByPhone(context.Background(), "+919335922265", time.Now())
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
