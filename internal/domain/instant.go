package domain

import (
	"encoding/json"
	"time"
)

// Epoch values above this are taken to be milliseconds. Anything created
// after 2286 would misdetect; acceptable for listing timestamps.
const msThreshold = 1e10

// Instant is an epoch timestamp with a known unit (seconds). New records are
// always created through FromTime/FromSeconds/FromMillis so the unit is never
// ambiguous; CoerceEpoch exists only to adapt legacy untyped numbers.
type Instant struct {
	seconds float64
	known   bool
}

func FromSeconds(s float64) Instant { return Instant{seconds: s, known: true} }

func FromMillis(ms int64) Instant { return Instant{seconds: float64(ms) / 1000.0, known: true} }

func FromTime(t time.Time) Instant {
	return Instant{seconds: float64(t.UnixMilli()) / 1000.0, known: true}
}

// CoerceEpoch adapts a raw numeric timestamp of unknown unit. Magnitude
// heuristic: large values are milliseconds.
func CoerceEpoch(raw float64) Instant {
	if raw <= 0 {
		return Instant{}
	}
	if raw > msThreshold {
		raw /= 1000.0
	}
	return Instant{seconds: raw, known: true}
}

func (i Instant) Known() bool      { return i.known }
func (i Instant) Seconds() float64 { return i.seconds }

// Time returns the instant in the server's local timezone.
func (i Instant) Time() time.Time {
	sec := int64(i.seconds)
	nsec := int64((i.seconds - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

// MarshalJSON writes epoch seconds, or null when unknown.
func (i Instant) MarshalJSON() ([]byte, error) {
	if !i.known {
		return []byte("null"), nil
	}
	return json.Marshal(i.seconds)
}

func (i *Instant) UnmarshalJSON(b []byte) error {
	var raw *float64
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == nil {
		*i = Instant{}
		return nil
	}
	*i = CoerceEpoch(*raw)
	return nil
}

// SameLocalDay reports whether a and b fall on the same calendar date in the
// server's local timezone. "Today" deliberately follows the host timezone.
func SameLocalDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}
