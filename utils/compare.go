package utils

import (
	"fmt"
	"reflect"
	"time"
)

func asFloat(v any) (float64, bool) {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return reflect.ValueOf(v).Convert(reflect.TypeFor[float64]()).Float(), true
	default:
		return 0, false
	}
}

// Compare orders two cursor values: 0 equal, -1 when a < b, 1 when a > b.
// nil sorts first so a fresh bookmark is always overtaken. Mixed-type pairs
// fall back to string ordering instead of guessing a numeric meaning.
func Compare(a, b any) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	if aFloat, aOK := asFloat(a); aOK {
		if bFloat, bOK := asFloat(b); bOK {
			switch {
			case aFloat < bFloat:
				return -1
			case aFloat > bFloat:
				return 1
			default:
				return 0
			}
		}
	}

	if aTime, ok := a.(time.Time); ok {
		if bTime, ok := b.(time.Time); ok {
			switch {
			case aTime.Before(bTime):
				return -1
			case aTime.After(bTime):
				return 1
			default:
				return 0
			}
		}
	}

	aStr := fmt.Sprintf("%v", a)
	bStr := fmt.Sprintf("%v", b)
	switch {
	case aStr < bStr:
		return -1
	case aStr > bStr:
		return 1
	default:
		return 0
	}
}
