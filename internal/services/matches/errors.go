package matches

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/enums"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrOwnListing         = errors.New("cannot express interest in own listing")
	ErrListingUnavailable = errors.New("listing is not open for interest")
	ErrDecisionInFlight   = errors.New("decision already in flight")
	ErrInvalidTransition  = errors.New("invalid match status transition")
	errDependencyNotWired = errors.New("match dependencies are not configured")
)

// InvalidTransitionError is returned when a decision targets a match that is no
// longer pending. From holds the status observed in the store.
type InvalidTransitionError struct {
	MatchID uuid.UUID
	From    enums.MatchStatus
	To      enums.MatchStatus
	Err     error
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("match %s: cannot move from %s to %s", e.MatchID, e.From, e.To)
}

func (e InvalidTransitionError) Unwrap() error {
	return e.Err
}

func (e InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

func IsInvalidTransition(err error) (InvalidTransitionError, bool) {
	var target InvalidTransitionError
	if errors.As(err, &target) {
		return target, true
	}
	return InvalidTransitionError{}, false
}

type TooManyRequestsError struct {
	RetryAfterSec int64
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many interest requests, retry after %d seconds", e.RetryAfterSec)
}

func (e TooManyRequestsError) RetryAfter() int64 {
	return e.RetryAfterSec
}

func IsTooManyRequests(err error) (TooManyRequestsError, bool) {
	var target TooManyRequestsError
	if errors.As(err, &target) {
		return target, true
	}
	return TooManyRequestsError{}, false
}
