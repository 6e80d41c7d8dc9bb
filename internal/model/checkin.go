package model

import "time"

// CheckIn mirrors a row of the `check_ins` table.  A check-in records that
// the owning user visited a venue (identified by its short code) on a given
// date and time.  The owner is always taken from the authenticated session,
// never from client input, and rows are append-only.
type CheckIn struct {
	ID        uint64
	Code      string // check_ins.check_in_code
	Date      string // check_ins.date_ (YYYY-MM-DD)
	Time      string // check_ins.time_ (HH:MM:SS)
	Username  string // check_ins.username (owner)
	CreatedAt time.Time
}
