package enums

import "strings"

type MatchStatus string

const (
	MatchStatusPending  MatchStatus = "pending"
	MatchStatusAccepted MatchStatus = "accepted"
	MatchStatusRejected MatchStatus = "rejected"
	// MatchStatusCompleted exists in the schema but nothing in this service moves a match into it.
	MatchStatusCompleted MatchStatus = "completed"
)

func ParseMatchStatus(raw string) (MatchStatus, bool) {
	status := MatchStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch status {
	case MatchStatusPending, MatchStatusAccepted, MatchStatusRejected, MatchStatusCompleted:
		return status, true
	default:
		return "", false
	}
}

func (s MatchStatus) Terminal() bool {
	return s != MatchStatusPending
}
