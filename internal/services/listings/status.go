package listings

import (
	"errors"
	"fmt"

	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/enums"
)

var ErrInvalidStatusTransition = errors.New("invalid listing status transition")

type StatusTransitionError struct {
	From enums.ListingStatus
	To   enums.ListingStatus
}

func (e StatusTransitionError) Error() string {
	return fmt.Sprintf("listing cannot move from %s to %s", e.From, e.To)
}

func (e StatusTransitionError) Is(target error) bool {
	return target == ErrInvalidStatusTransition
}

func IsStatusTransition(err error) (StatusTransitionError, bool) {
	var target StatusTransitionError
	if !errors.As(err, &target) {
		return StatusTransitionError{}, false
	}
	return target, true
}

// CanTransition allows pausing and resuming, and closing an active or paused
// listing. Completed is terminal.
func CanTransition(from, to enums.ListingStatus) bool {
	switch from {
	case enums.ListingStatusActive:
		return to == enums.ListingStatusPaused || to == enums.ListingStatusCompleted
	case enums.ListingStatusPaused:
		return to == enums.ListingStatusActive || to == enums.ListingStatusCompleted
	default:
		return false
	}
}
