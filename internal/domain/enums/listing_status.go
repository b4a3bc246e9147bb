package enums

type ListingStatus string

const (
	ListingStatusActive    ListingStatus = "active"
	ListingStatusPaused    ListingStatus = "paused"
	ListingStatusCompleted ListingStatus = "completed"
)

func (s ListingStatus) Valid() bool {
	switch s {
	case ListingStatusActive, ListingStatusPaused, ListingStatusCompleted:
		return true
	default:
		return false
	}
}
