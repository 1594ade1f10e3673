package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want int
	}{
		{"validation", Validation("No PDF uploaded", nil), http.StatusBadRequest},
		{"too large", TooLarge("too big", nil), http.StatusRequestEntityTooLarge},
		{"rate limited", RateLimited("slow down"), http.StatusTooManyRequests},
		{"upstream", Upstream("provider down", errors.New("502")), http.StatusInternalServerError},
		{"internal", Internal("disk full", errors.New("ENOSPC")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.StatusCode(); got != tt.want {
				t.Errorf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFrom(t *testing.T) {
	t.Run("tagged error survives wrapping", func(t *testing.T) {
		orig := Validation("Could not extract text from PDF", nil)
		wrapped := fmt.Errorf("analyze: %w", orig)

		got := From(wrapped)
		if got != orig {
			t.Errorf("From() returned %v, want the original tagged error", got)
		}
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		cause := errors.New("boom")
		got := From(cause)
		if got.Kind != KindInternal {
			t.Errorf("Kind = %q, want %q", got.Kind, KindInternal)
		}
		if !errors.Is(got, cause) {
			t.Error("internal error should wrap the cause")
		}
		if got.Message == cause.Error() {
			t.Error("cause text must not become the user message")
		}
	})
}
