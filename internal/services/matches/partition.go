package matches

import (
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/enums"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/model"
)

type Partition struct {
	Pending   []model.Match
	Accepted  []model.Match
	Rejected  []model.Match
	Completed []model.Match
}

// PartitionMatches groups matches by status, keeping the input order inside each
// group.
func PartitionMatches(items []model.Match) Partition {
	p := Partition{
		Pending:   []model.Match{},
		Accepted:  []model.Match{},
		Rejected:  []model.Match{},
		Completed: []model.Match{},
	}
	for _, item := range items {
		switch item.Status {
		case enums.MatchStatusPending:
			p.Pending = append(p.Pending, item)
		case enums.MatchStatusAccepted:
			p.Accepted = append(p.Accepted, item)
		case enums.MatchStatusRejected:
			p.Rejected = append(p.Rejected, item)
		case enums.MatchStatusCompleted:
			p.Completed = append(p.Completed, item)
		}
	}
	return p
}
