package domain

import "time"

// User represents per-chat weather settings and the cached report.
type User struct {
	ChatID      int64
	Username    string // display only
	Lat         float64
	Lon         float64
	Weather     string    // last rendered report text
	LastUpdate  time.Time // UTC, time of the last successful fetch
	Subscribed  bool
	PeriodHours int       // hours between notifications, meaningful only if Subscribed
	CreatedAt   time.Time // UTC
}

// Period returns the subscription cadence as a duration.
func (u *User) Period() time.Duration {
	return time.Duration(u.PeriodHours) * time.Hour
}
