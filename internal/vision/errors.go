package vision

import "errors"

// ErrModelUnavailable is returned when no vision backend was initialized at
// startup. Checked once per request, before any inference attempt.
var ErrModelUnavailable = errors.New("vision model not initialized")
