package task

import (
	"testing"
	"time"
)

func TestBackoff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		base  time.Duration
		retry int
		want  time.Duration
	}{
		{"first retry", time.Second, 1, time.Second},
		{"second retry", time.Second, 2, 2 * time.Second},
		{"third retry", time.Second, 3, 4 * time.Second},
		{"custom base", 250 * time.Millisecond, 3, time.Second},
		{"zero retry", time.Second, 0, 0},
		{"negative retry", time.Second, -1, 0},
		{"zero base", 0, 2, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Backoff(tc.base, tc.retry); got != tc.want {
				t.Errorf("Backoff(%v, %d) = %v, want %v", tc.base, tc.retry, got, tc.want)
			}
		})
	}
}
