package domain

import "time"

// ShouldRefresh reports whether the cached report is stale enough to re-fetch:
// true iff now is strictly past lastUpdate + cooldown. At the exact boundary
// the cache is still served.
func ShouldRefresh(now, lastUpdate time.Time, cooldown time.Duration) bool {
	return now.After(lastUpdate.Add(cooldown))
}

// InActiveWindow reports whether hour (0..23) falls inside the inclusive
// daily window [from, to] during which scheduled notifications may be sent.
func InActiveWindow(hour, from, to int) bool {
	return hour >= from && hour <= to
}
