package postgres

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/enums"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/model"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/storeerr"
)

type errRow struct {
	err error
}

func (r errRow) Scan(...any) error {
	return r.err
}

// listingRow holds the columns shared by opportunities and posts before decoding.
type listingRow struct {
	id           uuid.UUID
	ownerID      uuid.UUID
	title        string
	description  string
	location     string
	adType       string
	price        []byte
	media        []byte
	categoryID   *uuid.UUID
	status       string
	verification string
	reason       *string
	createdAt    time.Time
	updatedAt    time.Time
}

func (l *listingRow) targets() []any {
	return []any{
		&l.id, &l.ownerID, &l.title, &l.description, &l.location, &l.adType, &l.price, &l.media,
		&l.categoryID, &l.status, &l.verification, &l.reason, &l.createdAt, &l.updatedAt,
	}
}

// decode turns the JSON columns into typed values. Malformed shapes surface as
// validation errors instead of reaching the services.
func (l *listingRow) decode(op string) (*model.PriceRange, []string, uuid.UUID, error) {
	price, err := model.DecodePriceRange(l.price)
	if err != nil {
		return nil, nil, uuid.Nil, storeerr.Validation(op, err)
	}
	media, err := model.DecodeMedia(l.media)
	if err != nil {
		return nil, nil, uuid.Nil, storeerr.Validation(op, err)
	}
	categoryID := uuid.Nil
	if l.categoryID != nil {
		categoryID = *l.categoryID
	}
	return price, media, categoryID, nil
}

func scanOpportunity(row pgx.Row) (model.Opportunity, error) {
	var l listingRow
	if err := row.Scan(l.targets()...); err != nil {
		return model.Opportunity{}, err
	}
	price, media, categoryID, err := l.decode("scan opportunity")
	if err != nil {
		return model.Opportunity{}, err
	}

	return model.Opportunity{
		ID:                 l.id,
		OwnerID:            l.ownerID,
		Title:              l.title,
		Description:        l.description,
		Location:           l.location,
		AdType:             l.adType,
		Price:              price,
		Media:              media,
		CategoryID:         categoryID,
		Status:             enums.ListingStatus(l.status),
		VerificationStatus: enums.VerificationStatus(l.verification),
		RejectionReason:    l.reason,
		CreatedAt:          l.createdAt.UTC(),
		UpdatedAt:          l.updatedAt.UTC(),
	}, nil
}

func scanPost(row pgx.Row) (model.Post, error) {
	var (
		l        listingRow
		hashtags string
		reach    int64
	)
	if err := row.Scan(append(l.targets(), &hashtags, &reach)...); err != nil {
		return model.Post{}, err
	}
	price, media, categoryID, err := l.decode("scan post")
	if err != nil {
		return model.Post{}, err
	}

	return model.Post{
		ID:                 l.id,
		OwnerID:            l.ownerID,
		Title:              l.title,
		Description:        l.description,
		Location:           l.location,
		AdType:             l.adType,
		Price:              price,
		Media:              media,
		Hashtags:           hashtags,
		Reach:              reach,
		CategoryID:         categoryID,
		Status:             enums.ListingStatus(l.status),
		VerificationStatus: enums.VerificationStatus(l.verification),
		RejectionReason:    l.reason,
		CreatedAt:          l.createdAt.UTC(),
		UpdatedAt:          l.updatedAt.UTC(),
	}, nil
}

func nullableUUID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id
}

func joinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}
