package dbpkg

import (
	"errors"

	"github.com/lib/pq"
)

// IsConflict reports whether err is a Postgres error caused by concurrent access
// to the same rows: a NOWAIT lock that could not be taken, a serialization
// failure or a detected deadlock.
func IsConflict(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	switch pqErr.Code.Name() {
	case "lock_not_available", "serialization_failure", "deadlock_detected":
		return true
	}

	return false
}
