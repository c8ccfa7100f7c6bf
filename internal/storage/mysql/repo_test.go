package mysql

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"bankmarketing/internal/ddl"
	"bankmarketing/internal/schema"
	"bankmarketing/internal/storage"
)

func newMockRepo(t *testing.T, table string) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &Repository{db: db, cfg: Config{Table: table}}, mock
}

func TestCopyFrom_MultiRowInsert(t *testing.T) {
	r, mock := newMockRepo(t, "bank.client")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `bank`.`client` (`client_id`, `job`) VALUES (?, ?), (?, ?)")).
		WithArgs(int64(1), "admin", int64(2), nil).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	n, err := r.CopyFrom(context.Background(), []string{"client_id", "job"}, [][]any{
		{int64(1), "admin"},
		{int64(2), nil},
	})
	if err != nil || n != 2 {
		t.Fatalf("CopyFrom n=%d err=%v", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCopyFrom_ChunksByPlaceholderLimit(t *testing.T) {
	orig := maxPlaceholders
	maxPlaceholders = 4
	defer func() { maxPlaceholders = orig }()

	r, mock := newMockRepo(t, "campaign")
	two := regexp.QuoteMeta("INSERT INTO `campaign` (`a`, `b`) VALUES (?, ?), (?, ?)")
	one := regexp.QuoteMeta("INSERT INTO `campaign` (`a`, `b`) VALUES (?, ?)") + "$"

	mock.ExpectBegin()
	mock.ExpectExec(two).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(one).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rows := [][]any{{1, 2}, {3, 4}, {5, 6}}
	n, err := r.CopyFrom(context.Background(), []string{"a", "b"}, rows)
	if err != nil || n != 3 {
		t.Fatalf("CopyFrom n=%d err=%v", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCopyFrom_RollsBackOnError(t *testing.T) {
	r, mock := newMockRepo(t, "client")
	boom := errors.New("duplicate entry")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO").WillReturnError(boom)
	mock.ExpectRollback()

	if _, err := r.CopyFrom(context.Background(), []string{"a"}, [][]any{{1}}); !errors.Is(err, boom) {
		t.Fatalf("err=%v, want %v", err, boom)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestWrappedRepo_CoercesBeforeInsert(t *testing.T) {
	r, mock := newMockRepo(t, "campaign")
	w := &wrappedRepo{Repository: r, kinds: []string{"int", "date"}, closeFn: func() {}}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO").
		WithArgs(int64(7), time.Date(2022, time.August, 14, 0, 0, 0, 0, time.UTC)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if _, err := w.CopyFrom(context.Background(), []string{"client_id", "last_contact_date"}, [][]any{{"7", "2022-08-14"}}); err != nil {
		t.Fatalf("CopyFrom: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDDL(t *testing.T) {
	c := schema.Contract{Fields: []schema.Field{
		{Name: "client_id", Type: "int"},
		{Name: "cons_price_idx", Type: "float", Nullable: true},
		{Name: "last_contact_date", Type: "date"},
	}}
	got, err := ddl.BuildCreateTableSQL(ddl.FromContract("bank_campaign", c, dialect), dialect)
	if err != nil {
		t.Fatal(err)
	}
	want := "CREATE TABLE IF NOT EXISTS `bank_campaign` (\n" +
		"  `client_id` BIGINT NOT NULL,\n" +
		"  `cons_price_idx` DOUBLE,\n" +
		"  `last_contact_date` DATE NOT NULL\n" +
		");"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestAdapterRegistration(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	closed := false
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		return &Repository{cfg: cfg}, func() { closed = true }, nil
	}
	repo, err := storage.New(context.Background(), storage.Config{Kind: "mysql", DSN: "u:p@tcp(localhost:3306)/bank", Table: "client"})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	repo.Close()
	if !closed {
		t.Fatal("Close did not call closeFn")
	}

	if _, _, err := NewRepository(context.Background(), Config{DSN: "no-slash"}); err == nil || !strings.Contains(err.Error(), "mysql dsn") {
		t.Fatalf("expected DSN error, got %v", err)
	}
}
