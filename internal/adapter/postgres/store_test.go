package postgres

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		in   error
		want error
	}{
		{sql.ErrNoRows, domain.ErrNotFound},
		{&pq.Error{Code: "23505"}, domain.ErrConflict},
		{&pq.Error{Code: "23503"}, domain.ErrConflict},
		{&pq.Error{Code: "23502"}, domain.ErrValidation},
		{&pq.Error{Code: "23514"}, domain.ErrValidation},
	}
	for _, c := range cases {
		if got := mapError(c.in, "bike"); !errors.Is(got, c.want) {
			t.Fatalf("mapError(%v) = %v, want %v", c.in, got, c.want)
		}
	}
	if mapError(nil, "bike") != nil {
		t.Fatalf("nil must stay nil")
	}
	other := errors.New("connection reset")
	if got := mapError(other, "bike"); !errors.Is(got, other) {
		t.Fatalf("unknown errors must be wrapped, got %v", got)
	}
}
