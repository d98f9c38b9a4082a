package videos

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
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

func TestInsert_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+videos\s*\(id,\s*url,\s*user_id,\s*caption,\s*created_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*$`

	created := time.Unix(1700000000, 0).UTC()
	v := &models.Video{
		ID:        "v-1",
		URL:       "https://cdn.local/videos/vid_1.mp4",
		UserID:    "u-1",
		Caption:   "first clip",
		CreatedAt: created,
	}

	mock.ExpectExec(q).
		WithArgs(v.ID, v.URL, v.UserID, v.Caption, v.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Insert(context.Background(), v); err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInsert_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+videos\b.*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*$`

	mock.ExpectExec(q).
		WillReturnError(errors.New("db down"))

	err := repo.Insert(context.Background(), &models.Video{ID: "v-1"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestSelectRecent_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*url,\s*user_id,\s*caption,\s*created_at\s+FROM\s+videos\s+ORDER\s+BY\s+created_at\s+DESC\s+LIMIT\s+\$1\s*$`

	newer := time.Unix(1700000060, 0).UTC()
	older := time.Unix(1700000000, 0).UTC()
	rows := sqlmock.NewRows([]string{"id", "url", "user_id", "caption", "created_at"}).
		AddRow("v-2", "https://cdn.local/videos/2.mp4", "u-1", "two", newer).
		AddRow("v-1", "https://cdn.local/videos/1.mp4", "u-1", "one", older)
	mock.ExpectQuery(q).
		WithArgs(20).
		WillReturnRows(rows)

	got, err := repo.SelectRecent(context.Background(), 20)
	if err != nil {
		t.Fatalf("SelectRecent error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unexpected row count: %d", len(got))
	}
	if got[0].ID != "v-2" || got[1].ID != "v-1" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if !got[0].CreatedAt.Equal(newer) {
		t.Fatalf("unexpected created_at: %v", got[0].CreatedAt)
	}
}

func TestSelectRecent_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*url,\s*user_id,\s*caption,\s*created_at\s+FROM\s+videos\s+ORDER\s+BY\s+created_at\s+DESC\s+LIMIT\s+\$1\s*$`

	rows := sqlmock.NewRows([]string{"id", "url", "user_id", "caption", "created_at"})
	mock.ExpectQuery(q).
		WithArgs(20).
		WillReturnRows(rows)

	got, err := repo.SelectRecent(context.Background(), 20)
	if err != nil {
		t.Fatalf("SelectRecent error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no rows, got %d", len(got))
	}
}

func TestSelectRecent_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*url,\s*user_id,\s*caption,\s*created_at\s+FROM\s+videos\s+ORDER\s+BY\s+created_at\s+DESC\s+LIMIT\s+\$1\s*$`

	mock.ExpectQuery(q).
		WithArgs(20).
		WillReturnError(errors.New("db err"))

	_, err := repo.SelectRecent(context.Background(), 20)
	if err == nil || !regexp.MustCompile(`failed to select videos: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped query error, got %v", err)
	}
}

func TestSelectRecent_ScanError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*url,\s*user_id,\s*caption,\s*created_at\s+FROM\s+videos\s+ORDER\s+BY\s+created_at\s+DESC\s+LIMIT\s+\$1\s*$`

	rows := sqlmock.NewRows([]string{"id", "url", "user_id", "caption", "created_at"}).
		AddRow("v-1", "https://cdn.local/videos/1.mp4", "u-1", "one", "not-a-time")
	mock.ExpectQuery(q).
		WithArgs(20).
		WillReturnRows(rows)

	_, err := repo.SelectRecent(context.Background(), 20)
	if err == nil {
		t.Fatal("expected scan error, got nil")
	}
}
