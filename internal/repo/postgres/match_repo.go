package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/enums"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/model"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/storeerr"
)

const defaultMatchListLimit = 500

// matchSelect joins both parties' profiles; either may be missing.
var matchSelect = psql.Select(
	"m.id", "m.listing_kind", "m.listing_id", "m.listing_title", "m.brand_id", "m.owner_id", "m.status",
	"m.meeting_at", "m.meeting_link", "m.notes", "m.created_at", "m.updated_at",
	"bp.account_id", "bp.company_name", "bp.industry", "bp.contact_email", "bp.phone", "bp.website",
	"op.account_id", "op.company_name", "op.industry", "op.contact_email", "op.phone", "op.website",
).
	From("matches m").
	LeftJoin("profiles bp ON bp.account_id = m.brand_id").
	LeftJoin("profiles op ON op.account_id = m.owner_id")

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

// CreatePending inserts a pending match. The unique (brand, listing) constraint
// turns a repeated interest into a read of the existing row.
func (r *MatchRepo) CreatePending(ctx context.Context, m model.Match) (model.Match, bool, error) {
	if r.pool == nil {
		return model.Match{}, false, errNoPool
	}
	if m.ID == uuid.Nil || m.BrandID == uuid.Nil || m.OwnerID == uuid.Nil || m.Listing.ID == uuid.Nil {
		return model.Match{}, false, storeerr.Validation("create pending match", fmt.Errorf("invalid match payload"))
	}

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
INSERT INTO matches (
	id,
	listing_kind,
	listing_id,
	listing_title,
	brand_id,
	owner_id,
	status,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, 'pending', NOW(), NOW())
ON CONFLICT (brand_id, listing_kind, listing_id) DO NOTHING
RETURNING id
`, m.ID, string(m.Listing.Kind), m.Listing.ID, m.ListingTitle, m.BrandID, m.OwnerID).Scan(&id)

	created := true
	if errors.Is(err, pgx.ErrNoRows) {
		created = false
		err = r.pool.QueryRow(ctx, `
SELECT id
FROM matches
WHERE brand_id = $1 AND listing_kind = $2 AND listing_id = $3
`, m.BrandID, string(m.Listing.Kind), m.Listing.ID).Scan(&id)
	}
	if err != nil {
		return model.Match{}, false, classify("create pending match", err)
	}

	stored, err := r.GetMatch(ctx, id)
	if err != nil {
		return model.Match{}, false, err
	}
	return stored, created, nil
}

func (r *MatchRepo) GetMatch(ctx context.Context, id uuid.UUID) (model.Match, error) {
	if r.pool == nil {
		return model.Match{}, errNoPool
	}

	sql, args, err := matchSelect.Where(sq.Eq{"m.id": id}).ToSql()
	if err != nil {
		return model.Match{}, fmt.Errorf("build get match: %w", err)
	}
	m, err := scanMatch(r.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		return model.Match{}, classify("get match", err)
	}
	return m, nil
}

// UpdateStatus is the conditional write that settles concurrent decisions: only
// the writer that still sees change.From wins.
func (r *MatchRepo) UpdateStatus(ctx context.Context, change model.StatusChange) (model.Match, error) {
	if r.pool == nil {
		return model.Match{}, errNoPool
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE matches
SET
	status = $3,
	meeting_at = $4,
	meeting_link = $5,
	notes = $6,
	updated_at = NOW()
WHERE id = $1 AND status = $2
`, change.MatchID, string(change.From), string(change.To), change.MeetingAt, change.MeetingLink, change.Notes)
	if err != nil {
		return model.Match{}, classify("update match status", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM matches WHERE id = $1)`, change.MatchID).Scan(&exists); err != nil {
			return model.Match{}, classify("update match status", err)
		}
		if !exists {
			return model.Match{}, storeerr.NotFound("update match status")
		}
		return model.Match{}, storeerr.Conflict("update match status")
	}

	return r.GetMatch(ctx, change.MatchID)
}

func (r *MatchRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Match, error) {
	return r.list(ctx, "list owner matches", sq.Eq{"m.owner_id": ownerID})
}

func (r *MatchRepo) ListByBrand(ctx context.Context, brandID uuid.UUID) ([]model.Match, error) {
	return r.list(ctx, "list brand matches", sq.Eq{"m.brand_id": brandID})
}

func (r *MatchRepo) list(ctx context.Context, op string, where sq.Eq) ([]model.Match, error) {
	if r.pool == nil {
		return nil, errNoPool
	}

	rows, err := qQuery(ctx, r.pool, matchListQuery(where, defaultMatchListLimit))
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	items := make([]model.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, classify(op, err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return items, nil
}

func matchListQuery(where sq.Eq, limit uint64) sq.SelectBuilder {
	return matchSelect.Where(where).OrderBy("m.created_at DESC", "m.id DESC").Limit(limit)
}

// profileRow scans a left-joined profile whose columns may all be NULL.
type profileRow struct {
	accountID    *uuid.UUID
	companyName  *string
	industry     *string
	contactEmail *string
	phone        *string
	website      *string
}

func (p *profileRow) targets() []any {
	return []any{&p.accountID, &p.companyName, &p.industry, &p.contactEmail, &p.phone, &p.website}
}

func (p *profileRow) profile() *model.Profile {
	if p.accountID == nil {
		return nil
	}
	return &model.Profile{
		AccountID:    *p.accountID,
		CompanyName:  deref(p.companyName),
		Industry:     deref(p.industry),
		ContactEmail: deref(p.contactEmail),
		Phone:        deref(p.phone),
		Website:      deref(p.website),
	}
}

func scanMatch(row pgx.Row) (model.Match, error) {
	var (
		m         model.Match
		kind      string
		status    string
		meetingAt *time.Time
		brand     profileRow
		owner     profileRow
	)
	targets := []any{
		&m.ID, &kind, &m.Listing.ID, &m.ListingTitle, &m.BrandID, &m.OwnerID, &status,
		&meetingAt, &m.MeetingLink, &m.Notes, &m.CreatedAt, &m.UpdatedAt,
	}
	targets = append(targets, brand.targets()...)
	targets = append(targets, owner.targets()...)
	if err := row.Scan(targets...); err != nil {
		return model.Match{}, err
	}

	m.Listing.Kind = enums.ListingKind(kind)
	m.Status = enums.MatchStatus(status)
	if meetingAt != nil {
		at := meetingAt.UTC()
		m.MeetingAt = &at
	}
	m.CreatedAt = m.CreatedAt.UTC()
	m.UpdatedAt = m.UpdatedAt.UTC()
	m.Brand = brand.profile()
	m.Owner = owner.profile()
	return m, nil
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
