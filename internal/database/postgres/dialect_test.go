package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint \"candidates_email_key\""}

	if !isUniqueViolation(dup) {
		t.Error("expected 23505 to be a unique violation")
	}
	if !isUniqueViolation(fmt.Errorf("insert: %w", dup)) {
		t.Error("expected wrapped pq error to be detected")
	}
	if isUniqueViolation(&pq.Error{Code: "23502"}) {
		t.Error("not-null violation is not a unique violation")
	}
	if isUniqueViolation(errors.New("duplicate key")) {
		t.Error("plain errors are not unique violations")
	}
}

func TestIsPostgresURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"postgres://u:p@localhost/db", true},
		{"postgresql://localhost/db", true},
		{"file:candidates.db", false},
		{"mysql://u@tcp(localhost)/db", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := IsPostgresURL(tc.url); got != tc.want {
			t.Errorf("IsPostgresURL(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}
