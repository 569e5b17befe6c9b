// Copyright (c) 2025 Neomantra Corp

package mbp

import (
	"time"
)

// FixedPriceScale is the denominator of this store's fixed-point
// prices: price units are integer nanodollars (1e-9), matching the
// DBN convention the event schema is normalized from.
const FixedPriceScale float64 = 1_000_000_000.0

// Fixed9ToFloat64 converts a fixed-point price (spec.md §3) to a
// float64, for display/export only — never on the storage path.
func Fixed9ToFloat64(fixed int64) float64 {
	return float64(fixed) / FixedPriceScale
}

// TimestampToSecNanos splits a UTC nanosecond timestamp into seconds
// and nanoseconds since the epoch.
func TimestampToSecNanos(ts uint64) (int64, int64) {
	secs := int64(ts / 1e9)
	nanos := int64(ts) - secs*1e9
	return secs, nanos
}

// TimestampToTime converts a UTC nanosecond timestamp to a time.Time.
// Spec.md §1 fixes all timestamps to UTC nanoseconds; no timezone
// handling is performed.
func TimestampToTime(ts uint64) time.Time {
	secs, nanos := TimestampToSecNanos(ts)
	return time.Unix(secs, nanos)
}
