package task

import "time"

// Backoff returns the delay before retry number retry (1-based):
// base * 2^(retry-1). Retries below 1 get no delay.
func Backoff(base time.Duration, retry int) time.Duration {
	if retry < 1 || base <= 0 {
		return 0
	}
	return base << (retry - 1)
}
