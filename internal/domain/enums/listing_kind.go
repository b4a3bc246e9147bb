package enums

import "strings"

type ListingKind string

const (
	ListingKindOpportunity ListingKind = "opportunity"
	ListingKindPost        ListingKind = "post"
)

func ParseListingKind(raw string) (ListingKind, bool) {
	switch ListingKind(strings.ToLower(strings.TrimSpace(raw))) {
	case ListingKindOpportunity:
		return ListingKindOpportunity, true
	case ListingKindPost:
		return ListingKindPost, true
	default:
		return "", false
	}
}
