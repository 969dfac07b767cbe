// Package reproducible pins timestamps so that repeated builds of the same
// tag produce byte-identical artifacts.
//
// https://reproducible-builds.org/specs/source-date-epoch/
package reproducible

import (
	"os"
	"strconv"
	"sync"
	"time"
)

var (
	nowOnce sync.Once
	now     time.Time
)

// Now returns the time given by SOURCE_DATE_EPOCH, or the wall-clock time if
// SOURCE_DATE_EPOCH is unset or malformed.  The answer is computed once and
// then frozen, so every artifact written during a run carries the same
// timestamp.
func Now() time.Time {
	nowOnce.Do(func() {
		secs, err := strconv.ParseInt(os.Getenv("SOURCE_DATE_EPOCH"), 10, 64)
		if err == nil {
			now = time.Unix(secs, 0)
		} else {
			now = time.Now()
		}
	})
	return now
}

// Clamp caps t to the frozen Now(); timestamps later than Now() would make
// the output depend on when the build ran.  A zero t passes through
// unchanged so that callers can use the zero value for "no timestamp".
func Clamp(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	if limit := Now(); t.After(limit) {
		return limit
	}
	return t
}
