package launcher

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"pkaprep/internal/services"
)

func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "stage error", err: &StageError{Stage: "split", ExitCode: 42, Err: errors.New("x")}, want: 42},
		{name: "wrapped stage error", err: fmt.Errorf("run: %w", &StageError{Stage: "split", ExitCode: 5}), want: 5},
		{name: "not found", err: services.Wrap(services.ErrNotFound, "preprocess", "start command", "", nil), want: ExitNotFound},
		{name: "timeout", err: services.Wrap(services.ErrTimeout, "predict", "run", "", nil), want: ExitTimeout},
		{name: "cancelled", err: context.Canceled, want: ExitInterrupted},
		{name: "other", err: errors.New("lock held"), want: ExitFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExitCode(tc.err); got != tc.want {
				t.Fatalf("ExitCode(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}
