package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm translated", fmt.Errorf("create: %w", gorm.ErrDuplicatedKey), true},
		{"raw pg", &pgconn.PgError{Code: "23505"}, true},
		{"other pg", &pgconn.PgError{Code: "23503"}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range cases {
		if got := IsUniqueViolation(tc.err); got != tc.want {
			t.Fatalf("%s: want %v got %v", tc.name, tc.want, got)
		}
	}
}

func TestPostgresConfigDSN(t *testing.T) {
	cfg := PostgresConfig{Host: "db", Port: "5432", User: "postgres", Password: "1234", Name: "MundoTea"}
	want := "postgres://postgres:1234@db:5432/MundoTea?sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Fatalf("want %q got %q", want, got)
	}
}
