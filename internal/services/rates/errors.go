package rates

import "errors"

// Service errors
var (
	// ErrRateUnavailable means the oracle and the fallback table both came
	// up empty for the pair. Callers may retry.
	ErrRateUnavailable = errors.New("exchange rate unavailable")
)
