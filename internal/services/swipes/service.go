package swipes

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/model"
	matchessvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/matches"
)

// Threshold is the horizontal displacement a card must pass before a release counts.
const Threshold = 100

type Action string

const (
	ActionNone   Action = "none"
	ActionLike   Action = "like"
	ActionReject Action = "reject"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrCardNotFound = errors.New("card not found")
	ErrCardBusy     = errors.New("card action already in progress")
)

type InterestRequester interface {
	RequestInterest(ctx context.Context, brandID uuid.UUID, ref model.ListingRef) (matchessvc.InterestResult, error)
}

// Interpret maps a release offset to an action. Offsets within the threshold are no-ops.
func Interpret(offset float64) Action {
	switch {
	case math.IsNaN(offset):
		return ActionNone
	case offset > Threshold:
		return ActionLike
	case offset < -Threshold:
		return ActionReject
	default:
		return ActionNone
	}
}

type Card struct {
	Ref    model.ListingRef
	Offset float64
}

type Outcome struct {
	Action    Action
	Match     *model.Match
	Duplicate bool
}

type card struct {
	ref    model.ListingRef
	offset float64
	busy   bool
}

// Deck is the ordered card stack of one brand session.
type Deck struct {
	mu       sync.Mutex
	brandID  uuid.UUID
	interest InterestRequester
	logger   *zap.Logger
	cards    []*card
}

func NewDeck(brandID uuid.UUID, interest InterestRequester, logger *zap.Logger, refs []model.ListingRef) *Deck {
	if logger == nil {
		logger = zap.NewNop()
	}
	cards := make([]*card, 0, len(refs))
	for _, ref := range refs {
		cards = append(cards, &card{ref: ref})
	}
	return &Deck{
		brandID:  brandID,
		interest: interest,
		logger:   logger,
		cards:    cards,
	}
}

func (d *Deck) Cards() []Card {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Card, 0, len(d.cards))
	for _, c := range d.cards {
		out = append(out, Card{Ref: c.ref, Offset: c.offset})
	}
	return out
}

func (d *Deck) Offset(cardID uuid.UUID) (float64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, _ := d.find(cardID)
	if c == nil {
		return 0, false
	}
	return c.offset, true
}

func (d *Deck) Begin(cardID uuid.UUID) (*Gesture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if c, _ := d.find(cardID); c == nil {
		return nil, ErrCardNotFound
	}
	return &Gesture{deck: d, cardID: cardID}, nil
}

// Like is the button path for a positive decision. A successful or duplicate
// interest removes the card; a failure leaves it in place at rest.
func (d *Deck) Like(ctx context.Context, cardID uuid.UUID) (Outcome, error) {
	if d.interest == nil {
		return Outcome{}, fmt.Errorf("swipe deck dependencies are not configured")
	}

	d.mu.Lock()
	c, _ := d.find(cardID)
	if c == nil {
		d.mu.Unlock()
		return Outcome{}, ErrCardNotFound
	}
	if c.busy {
		d.mu.Unlock()
		return Outcome{}, ErrCardBusy
	}
	c.busy = true
	ref := c.ref
	d.mu.Unlock()

	res, err := d.interest.RequestInterest(ctx, d.brandID, ref)

	d.mu.Lock()
	defer d.mu.Unlock()
	c.busy = false
	if err != nil {
		c.offset = 0
		d.logger.Debug("swipe like failed",
			zap.String("listing_id", ref.ID.String()),
			zap.Error(err),
		)
		return Outcome{}, err
	}
	d.remove(cardID)

	match := res.Match
	return Outcome{Action: ActionLike, Match: &match, Duplicate: res.Duplicate}, nil
}

// Reject skips the card locally. Nothing is persisted.
func (d *Deck) Reject(cardID uuid.UUID) (Outcome, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, _ := d.find(cardID)
	if c == nil {
		return Outcome{}, ErrCardNotFound
	}
	if c.busy {
		return Outcome{}, ErrCardBusy
	}
	d.remove(cardID)
	return Outcome{Action: ActionReject}, nil
}

func (d *Deck) setOffset(cardID uuid.UUID, offset float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if c, _ := d.find(cardID); c != nil {
		c.offset = offset
	}
}

func (d *Deck) find(cardID uuid.UUID) (*card, int) {
	for i, c := range d.cards {
		if c.ref.ID == cardID {
			return c, i
		}
	}
	return nil, -1
}

func (d *Deck) remove(cardID uuid.UUID) {
	if _, i := d.find(cardID); i >= 0 {
		d.cards = append(d.cards[:i], d.cards[i+1:]...)
	}
}

// Gesture is one drag on a card. Release acts at most once.
type Gesture struct {
	deck   *Deck
	cardID uuid.UUID

	mu       sync.Mutex
	released bool
}

func (g *Gesture) Move(offset float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.released {
		return
	}
	g.deck.setOffset(g.cardID, offset)
}

func (g *Gesture) Release(ctx context.Context, offset float64) (Outcome, error) {
	g.mu.Lock()
	if g.released {
		g.mu.Unlock()
		return Outcome{Action: ActionNone}, nil
	}
	g.released = true
	g.mu.Unlock()

	switch Interpret(offset) {
	case ActionLike:
		return g.deck.Like(ctx, g.cardID)
	case ActionReject:
		return g.deck.Reject(g.cardID)
	default:
		g.deck.setOffset(g.cardID, 0)
		return Outcome{Action: ActionNone}, nil
	}
}

type Dependencies struct {
	Interest InterestRequester
	Logger   *zap.Logger
}

// Service resolves a single stateless swipe: the server interprets the final
// offset and runs it through a one-card deck so both paths share the same code.
type Service struct {
	interest InterestRequester
	logger   *zap.Logger
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		interest: deps.Interest,
		logger:   logger,
	}
}

func (s *Service) Swipe(ctx context.Context, brandID uuid.UUID, ref model.ListingRef, offset float64) (Outcome, error) {
	if brandID == uuid.Nil || ref.ID == uuid.Nil || math.IsNaN(offset) || math.IsInf(offset, 0) {
		return Outcome{}, ErrValidation
	}
	if s.interest == nil {
		return Outcome{}, fmt.Errorf("swipe service dependencies are not configured")
	}

	deck := NewDeck(brandID, s.interest, s.logger, []model.ListingRef{ref})
	gesture, err := deck.Begin(ref.ID)
	if err != nil {
		return Outcome{}, err
	}
	return gesture.Release(ctx, offset)
}
