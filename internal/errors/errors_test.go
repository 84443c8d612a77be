package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name      string
		err       *Error
		wantParts []string
	}{
		{
			name:      "with cause",
			err:       Wrap(InternalError, "render failed", stderrors.New("template: bad")),
			wantParts: []string{"INTERNAL_ERROR", "render failed", "template: bad"},
		},
		{
			name:      "without cause",
			err:       Newf(NotFound, "dataset %q not found", "heloc"),
			wantParts: []string{"NOT_FOUND", `dataset "heloc" not found`},
		},
		{
			name:      "invalid parameter",
			err:       InvalidParam("ml_model", "value %q is not one of %v", "zzz", []string{"lr", "ann"}),
			wantParts: []string{"INVALID_PARAMETER", `"ml_model"`, `"zzz"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, part := range tt.wantParts {
				if !strings.Contains(msg, part) {
					t.Errorf("Error() = %q, missing %q", msg, part)
				}
			}
		})
	}
}

func TestCodeOfAndIs(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", New(UnknownCategory, "bogus"))

	if got := CodeOf(wrapped); got != UnknownCategory {
		t.Errorf("CodeOf = %v, want %v", got, UnknownCategory)
	}
	if !stderrors.Is(wrapped, New(UnknownCategory, "")) {
		t.Error("expected errors.Is to match on code")
	}
	if stderrors.Is(wrapped, New(NotFound, "")) {
		t.Error("errors.Is matched a different code")
	}
	if got := CodeOf(stderrors.New("plain")); got != InternalError {
		t.Errorf("CodeOf(plain) = %v, want %v", got, InternalError)
	}
}

func TestFieldOf(t *testing.T) {
	err := fmt.Errorf("validate: %w", InvalidParam("model_info.data_name", "required"))
	if got := FieldOf(err); got != "model_info.data_name" {
		t.Errorf("FieldOf = %q", got)
	}
	if got := FieldOf(New(NotFound, "x")); got != "" {
		t.Errorf("FieldOf = %q, want empty", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("disk")
	err := Wrap(InternalError, "audit", cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected cause in chain")
	}
}
