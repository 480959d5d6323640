package view

import (
	"cmp"
	"time"
)

// ByFlag orders items with the flag set first.
func ByFlag[T any](flag func(T) bool) func(a, b T) int {
	return func(a, b T) int {
		fa, fb := flag(a), flag(b)
		switch {
		case fa == fb:
			return 0
		case fa:
			return -1
		default:
			return 1
		}
	}
}

// ByNumber orders by a numeric field. Items without a value sort last.
func ByNumber[T any](value func(T) (float64, bool), descending bool) func(a, b T) int {
	return func(a, b T) int {
		va, oka := value(a)
		vb, okb := value(b)
		switch {
		case !oka && !okb:
			return 0
		case !oka:
			return 1
		case !okb:
			return -1
		}
		if descending {
			return cmp.Compare(vb, va)
		}
		return cmp.Compare(va, vb)
	}
}

// ByTime orders by a timestamp.
func ByTime[T any](value func(T) time.Time, descending bool) func(a, b T) int {
	return func(a, b T) int {
		if descending {
			return value(b).Compare(value(a))
		}
		return value(a).Compare(value(b))
	}
}

func optional(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}
