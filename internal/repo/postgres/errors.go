package postgres

import (
	"fmt"

	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/storeerr"
)

var errNoPool = fmt.Errorf("postgres pool is nil")

// classify maps driver errors onto the store taxonomy and keeps the operation name
// on errors it cannot classify.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	classified := storeerr.Classify(op, err)
	if storeerr.KindOf(classified) == storeerr.KindUnknown {
		return fmt.Errorf("%s: %w", op, err)
	}
	return classified
}
