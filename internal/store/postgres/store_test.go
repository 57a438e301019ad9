package postgres

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, true},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, false},
		{"plain error", errors.New("boom"), false},
		{"wrapped pg error", errorsJoin(&pgconn.PgError{Code: "40001"}), true},
	}
	for _, tc := range cases {
		if got := isRetryable(tc.err); got != tc.want {
			t.Fatalf("%s: isRetryable = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func errorsJoin(err error) error {
	return &wrapped{err: err}
}

type wrapped struct{ err error }

func (w *wrapped) Error() string { return "tx: " + w.err.Error() }
func (w *wrapped) Unwrap() error { return w.err }

func TestNullTimePtr(t *testing.T) {
	if nullTimePtr(sql.NullTime{}) != nil {
		t.Fatalf("invalid NullTime should produce nil")
	}
	at := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	got := nullTimePtr(sql.NullTime{Time: at, Valid: true})
	if got == nil || !got.Equal(at) {
		t.Fatalf("expected %v, got %v", at, got)
	}
}
