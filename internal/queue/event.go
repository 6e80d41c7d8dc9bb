// Package queue defines message payloads exchanged over the message broker.
package queue

// CheckInRecordedEvent is published when a venue check-in is successfully
// recorded.  It carries enough for downstream exposure-analysis and audit
// tooling to work without querying the primary database.
type CheckInRecordedEvent struct {
	Username   string `json:"username"`
	VenueCode  string `json:"venue_code"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	RecordedAt string `json:"recorded_at"`
}
