package service

import "time"

// clock reads now, falling back to the wall clock. Services take an
// optional Now so tests can move time.
func clock(now func() time.Time) time.Time {
	if now != nil {
		return now().UTC()
	}
	return time.Now().UTC()
}
