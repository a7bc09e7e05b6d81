package aggregates

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/shortcraft-backend/internal/domain/pipeline"
)

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm translated", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), true},
		{"pg 23505", &pgconn.PgError{Code: "23505"}, true},
		{"pg fk", &pgconn.PgError{Code: "23503"}, false},
		{"sqlite text", errors.New("UNIQUE constraint failed: project_output.project_id"), true},
		{"other", errors.New("connection reset"), false},
	}
	for _, tc := range cases {
		if got := IsUniqueViolation(tc.err); got != tc.want {
			t.Fatalf("%s: IsUniqueViolation = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestMapError_NotFound(t *testing.T) {
	err := MapError("op", gorm.ErrRecordNotFound)
	if !pipeline.IsCode(err, pipeline.CodeNotFound) {
		t.Fatalf("expected not_found code, got %q (%v)", pipeline.CodeOf(err), err)
	}
}

func TestMapError_Conflict(t *testing.T) {
	err := MapError("op", &pgconn.PgError{Code: "40001"})
	if !pipeline.IsCode(err, pipeline.CodeConflict) {
		t.Fatalf("expected conflict code, got %q (%v)", pipeline.CodeOf(err), err)
	}
}

func TestMapError_PassthroughPipelineError(t *testing.T) {
	in := pipeline.NewError(pipeline.CodeValidation, "op", "bad", nil)
	if out := MapError("other", in); out != in {
		t.Fatalf("expected passthrough pipeline error")
	}
}
