package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/enums"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/model"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/storeerr"
)

const (
	opportunitiesTable = "opportunities"
	postsTable         = "posts"
)

var (
	opportunityColumns = []string{
		"id", "owner_id", "title", "description", "location", "ad_type", "price_range", "media",
		"category_id", "status", "verification_status", "rejection_reason", "created_at", "updated_at",
	}
	postColumns = append(append([]string{}, opportunityColumns...), "hashtags", "reach")
)

type ListingRepo struct {
	pool *pgxpool.Pool
}

func NewListingRepo(pool *pgxpool.Pool) *ListingRepo {
	return &ListingRepo{pool: pool}
}

func (r *ListingRepo) ListOpportunities(ctx context.Context, q model.ListingQuery) ([]model.Opportunity, error) {
	if r.pool == nil {
		return nil, errNoPool
	}

	rows, err := qQuery(ctx, r.pool, listingQuery(opportunitiesTable, opportunityColumns, q))
	if err != nil {
		return nil, classify("list opportunities", err)
	}
	defer rows.Close()

	items := make([]model.Opportunity, 0)
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, classify("scan opportunity", err)
		}
		items = append(items, o)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate opportunities", err)
	}
	return items, nil
}

func (r *ListingRepo) ListPosts(ctx context.Context, q model.ListingQuery) ([]model.Post, error) {
	if r.pool == nil {
		return nil, errNoPool
	}

	rows, err := qQuery(ctx, r.pool, listingQuery(postsTable, postColumns, q))
	if err != nil {
		return nil, classify("list posts", err)
	}
	defer rows.Close()

	items := make([]model.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, classify("scan post", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate posts", err)
	}
	return items, nil
}

func (r *ListingRepo) GetOpportunity(ctx context.Context, id uuid.UUID) (model.Opportunity, error) {
	if r.pool == nil {
		return model.Opportunity{}, errNoPool
	}

	sql, args, err := psql.Select(opportunityColumns...).From(opportunitiesTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return model.Opportunity{}, fmt.Errorf("build get opportunity: %w", err)
	}
	o, err := scanOpportunity(r.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		return model.Opportunity{}, classify("get opportunity", err)
	}
	return o, nil
}

func (r *ListingRepo) GetPost(ctx context.Context, id uuid.UUID) (model.Post, error) {
	if r.pool == nil {
		return model.Post{}, errNoPool
	}

	sql, args, err := psql.Select(postColumns...).From(postsTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return model.Post{}, fmt.Errorf("build get post: %w", err)
	}
	p, err := scanPost(r.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		return model.Post{}, classify("get post", err)
	}
	return p, nil
}

// GetListing reads the kind-independent header used by the match flow.
func (r *ListingRepo) GetListing(ctx context.Context, ref model.ListingRef) (model.Listing, error) {
	if r.pool == nil {
		return model.Listing{}, errNoPool
	}
	table, ok := tableFor(ref.Kind)
	if !ok {
		return model.Listing{}, storeerr.NotFound("get listing")
	}

	var (
		h            = model.Listing{Ref: ref}
		status       string
		verification string
	)
	err := r.pool.QueryRow(ctx, `
SELECT owner_id, title, status, verification_status, rejection_reason
FROM `+table+`
WHERE id = $1
`, ref.ID).Scan(&h.OwnerID, &h.Title, &status, &verification, &h.RejectionReason)
	if err != nil {
		return model.Listing{}, classify("get listing", err)
	}
	h.Status = enums.ListingStatus(status)
	h.VerificationStatus = enums.VerificationStatus(verification)
	return h, nil
}

func (r *ListingRepo) SaveOpportunity(ctx context.Context, o model.Opportunity) (model.Opportunity, error) {
	if r.pool == nil {
		return model.Opportunity{}, errNoPool
	}

	set, err := editableColumns(o.Title, o.Description, o.Location, o.AdType, o.Price, o.Media, o.CategoryID)
	if err != nil {
		return model.Opportunity{}, storeerr.Validation("save opportunity", err)
	}
	set["status"] = string(o.Status)
	set["verification_status"] = string(o.VerificationStatus)
	set["rejection_reason"] = o.RejectionReason

	saved, err := scanOpportunity(r.updateRow(ctx, opportunitiesTable, opportunityColumns, o.ID, o.OwnerID, set))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Opportunity{}, r.missingOrForeign(ctx, opportunitiesTable, o.ID, "save opportunity")
	}
	if err != nil {
		return model.Opportunity{}, classify("save opportunity", err)
	}
	return saved, nil
}

func (r *ListingRepo) SavePost(ctx context.Context, p model.Post) (model.Post, error) {
	if r.pool == nil {
		return model.Post{}, errNoPool
	}

	set, err := editableColumns(p.Title, p.Description, p.Location, p.AdType, p.Price, p.Media, p.CategoryID)
	if err != nil {
		return model.Post{}, storeerr.Validation("save post", err)
	}
	set["hashtags"] = p.Hashtags
	set["reach"] = p.Reach
	set["status"] = string(p.Status)
	set["verification_status"] = string(p.VerificationStatus)
	set["rejection_reason"] = p.RejectionReason

	saved, err := scanPost(r.updateRow(ctx, postsTable, postColumns, p.ID, p.OwnerID, set))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Post{}, r.missingOrForeign(ctx, postsTable, p.ID, "save post")
	}
	if err != nil {
		return model.Post{}, classify("save post", err)
	}
	return saved, nil
}

func (r *ListingRepo) CreateOpportunity(ctx context.Context, o model.Opportunity) (model.Opportunity, error) {
	if r.pool == nil {
		return model.Opportunity{}, errNoPool
	}

	set, err := editableColumns(o.Title, o.Description, o.Location, o.AdType, o.Price, o.Media, o.CategoryID)
	if err != nil {
		return model.Opportunity{}, storeerr.Validation("create opportunity", err)
	}
	set["id"] = o.ID
	set["owner_id"] = o.OwnerID
	set["status"] = string(o.Status)
	set["verification_status"] = string(o.VerificationStatus)

	saved, err := scanOpportunity(r.insertRow(ctx, opportunitiesTable, opportunityColumns, set))
	if err != nil {
		return model.Opportunity{}, classify("create opportunity", err)
	}
	return saved, nil
}

func (r *ListingRepo) CreatePost(ctx context.Context, p model.Post) (model.Post, error) {
	if r.pool == nil {
		return model.Post{}, errNoPool
	}

	set, err := editableColumns(p.Title, p.Description, p.Location, p.AdType, p.Price, p.Media, p.CategoryID)
	if err != nil {
		return model.Post{}, storeerr.Validation("create post", err)
	}
	set["id"] = p.ID
	set["owner_id"] = p.OwnerID
	set["hashtags"] = p.Hashtags
	set["reach"] = p.Reach
	set["status"] = string(p.Status)
	set["verification_status"] = string(p.VerificationStatus)

	saved, err := scanPost(r.insertRow(ctx, postsTable, postColumns, set))
	if err != nil {
		return model.Post{}, classify("create post", err)
	}
	return saved, nil
}

// DeleteListing removes the listing and the matches that point at it.
func (r *ListingRepo) DeleteListing(ctx context.Context, ownerID uuid.UUID, ref model.ListingRef) error {
	if r.pool == nil {
		return errNoPool
	}
	table, ok := tableFor(ref.Kind)
	if !ok {
		return storeerr.NotFound("delete listing")
	}

	var deleted bool
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := qExec(ctx, tx, psql.Delete(table).Where(sq.Eq{"id": ref.ID, "owner_id": ownerID}))
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		deleted = true

		_, err = qExec(ctx, tx, psql.Delete("matches").Where(sq.Eq{
			"listing_kind": string(ref.Kind),
			"listing_id":   ref.ID,
		}))
		return err
	})
	if err != nil {
		return classify("delete listing", err)
	}
	if !deleted {
		return r.missingOrForeign(ctx, table, ref.ID, "delete listing")
	}
	return nil
}

func (r *ListingRepo) insertRow(ctx context.Context, table string, columns []string, set map[string]any) pgx.Row {
	sql, args, err := insertQuery(table, columns, set).ToSql()
	if err != nil {
		return errRow{err: fmt.Errorf("build insert %s: %w", table, err)}
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func insertQuery(table string, columns []string, set map[string]any) sq.InsertBuilder {
	return psql.Insert(table).SetMap(set).Suffix("RETURNING " + joinColumns(columns))
}

func (r *ListingRepo) updateRow(ctx context.Context, table string, columns []string, id, ownerID uuid.UUID, set map[string]any) pgx.Row {
	sql, args, err := psql.Update(table).
		SetMap(set).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id, "owner_id": ownerID}).
		Suffix("RETURNING " + joinColumns(columns)).
		ToSql()
	if err != nil {
		return errRow{err: fmt.Errorf("build update %s: %w", table, err)}
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

// missingOrForeign tells a missing row apart from one owned by someone else after
// an owner-scoped statement matched nothing.
func (r *ListingRepo) missingOrForeign(ctx context.Context, table string, id uuid.UUID, op string) error {
	var owner uuid.UUID
	err := r.pool.QueryRow(ctx, `SELECT owner_id FROM `+table+` WHERE id = $1`, id).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return storeerr.NotFound(op)
	}
	if err != nil {
		return classify(op, err)
	}
	return storeerr.PermissionDenied(op)
}

func listingQuery(table string, columns []string, q model.ListingQuery) sq.SelectBuilder {
	b := psql.Select(columns...).From(table).OrderBy("created_at DESC", "id DESC")
	if q.OwnerID != nil {
		b = b.Where(sq.Eq{"owner_id": *q.OwnerID})
	}
	if q.CategoryID != nil {
		b = b.Where(sq.Eq{"category_id": *q.CategoryID})
	}
	if q.VisibleOnly {
		b = b.Where(sq.Eq{"status": string(enums.ListingStatusActive)}).
			Where(sq.Eq{"verification_status": string(enums.VerificationStatusApproved)})
	}
	if q.Limit > 0 {
		b = b.Limit(uint64(q.Limit))
	}
	if q.Offset > 0 {
		b = b.Offset(uint64(q.Offset))
	}
	return b
}

func editableColumns(title, description, location, adType string, price *model.PriceRange, media []string, categoryID uuid.UUID) (map[string]any, error) {
	priceJSON, err := model.EncodePriceRange(price)
	if err != nil {
		return nil, err
	}
	mediaJSON, err := model.EncodeMedia(media)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"title":       title,
		"description": description,
		"location":    location,
		"ad_type":     adType,
		"price_range": priceJSON,
		"media":       mediaJSON,
		"category_id": nullableUUID(categoryID),
	}, nil
}

func tableFor(kind enums.ListingKind) (string, bool) {
	switch kind {
	case enums.ListingKindOpportunity:
		return opportunitiesTable, true
	case enums.ListingKindPost:
		return postsTable, true
	default:
		return "", false
	}
}
