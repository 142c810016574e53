// Package billing computes the cost of a completed reservation. It is pure:
// occupancy duration and the lot's hourly price in, rounded cost out.
package billing

import (
	"errors"
	"math"
	"time"
)

// ErrNegativeDuration indicates an exit time before the parking time, which
// the release path never produces.
var ErrNegativeDuration = errors.New("billing: exit time before parking time")

// Compute bills fractional wall-clock hours at the given hourly price,
// rounded to two decimal places.
func Compute(start, end time.Time, hourlyPrice float64) (float64, error) {
	if end.Before(start) {
		return 0, ErrNegativeDuration
	}
	hours := end.Sub(start).Hours()
	return Round2(hours * hourlyPrice), nil
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
