package sherpa

import (
	"math/rand"
	"time"
)

// Jitter supplies randomness in [0, 1) for backoff spreading. Injected so
// tests can pin it.
type Jitter func() float64

func defaultJitter() float64 {
	return rand.Float64()
}

// Backoff is a pure function of (attempt, config) plus the jitter source:
// the base wait doubles each attempt starting from WaitMin, is capped at
// WaitMax, then equal-jittered so synchronized clients fan out. The realized
// wait never drops below WaitMin.
type Backoff struct {
	WaitMin time.Duration
	WaitMax time.Duration
}

func NewBackoff(waitMinSec, waitMaxSec float64) Backoff {
	return Backoff{
		WaitMin: time.Duration(waitMinSec * float64(time.Second)),
		WaitMax: time.Duration(waitMaxSec * float64(time.Second)),
	}
}

// Duration returns the wait before retry number attempt (0-based).
func (b Backoff) Duration(attempt int, jitter Jitter) time.Duration {
	base := b.WaitMin
	for i := 0; i < attempt && base < b.WaitMax; i++ {
		base *= 2
	}
	if base > b.WaitMax {
		base = b.WaitMax
	}
	half := base / 2
	wait := half + time.Duration(jitter()*float64(half))
	if wait < b.WaitMin {
		wait = b.WaitMin
	}
	return wait
}
