package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/enums"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/model"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/repo/memory"
)

func TestSummary(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	accountID := uuid.New()
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	mine := store.PutPost(model.Post{OwnerID: accountID, Title: "My reel", Status: enums.ListingStatusActive, VerificationStatus: enums.VerificationStatusApproved})
	reason := "missing reach proof"
	store.PutOpportunity(model.Opportunity{OwnerID: accountID, Title: "Rejected slot", VerificationStatus: enums.VerificationStatusRejected, RejectionReason: &reason})
	store.PutOpportunity(model.Opportunity{OwnerID: accountID, Title: "Pending slot", VerificationStatus: enums.VerificationStatusPending})

	if _, _, err := store.CreatePending(ctx, model.Match{ID: uuid.New(), Listing: mine.Ref(), BrandID: uuid.New(), OwnerID: accountID}); err != nil {
		t.Fatalf("seed incoming: %v", err)
	}

	otherOwner := uuid.New()
	soon, later, past := now.Add(time.Hour), now.Add(48*time.Hour), now.Add(-time.Hour)
	for _, at := range []time.Time{later, past, soon} {
		ref := model.ListingRef{Kind: enums.ListingKindOpportunity, ID: uuid.New()}
		m, _, err := store.CreatePending(ctx, model.Match{ID: uuid.New(), Listing: ref, BrandID: accountID, OwnerID: otherOwner})
		if err != nil {
			t.Fatalf("seed outgoing: %v", err)
		}
		meetingAt := at
		if _, err := store.UpdateStatus(ctx, model.StatusChange{MatchID: m.ID, From: enums.MatchStatusPending, To: enums.MatchStatusAccepted, MeetingAt: &meetingAt}); err != nil {
			t.Fatalf("accept outgoing: %v", err)
		}
	}

	svc := NewService(store, store)
	svc.now = func() time.Time { return now }

	got, err := svc.Summary(ctx, accountID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if got.PendingIncoming != 1 {
		t.Fatalf("unexpected pending count: %d", got.PendingIncoming)
	}
	if len(got.UpcomingMeetings) != 2 || !got.UpcomingMeetings[0].MeetingAt.Equal(soon) || !got.UpcomingMeetings[1].MeetingAt.Equal(later) {
		t.Fatalf("unexpected meetings: %+v", got.UpcomingMeetings)
	}
	if len(got.Verifications) != 2 {
		t.Fatalf("unexpected verifications: %+v", got.Verifications)
	}
	for _, v := range got.Verifications {
		switch v.Status {
		case enums.VerificationStatusRejected:
			if v.RejectionReason == nil || *v.RejectionReason != reason {
				t.Fatalf("rejected listing must carry its reason: %+v", v)
			}
		case enums.VerificationStatusPending:
			if v.RejectionReason != nil {
				t.Fatalf("pending listing must not carry a reason: %+v", v)
			}
		default:
			t.Fatalf("unexpected verification status: %s", v.Status)
		}
	}
}

func TestSummaryRequiresAccount(t *testing.T) {
	store := memory.NewStore()
	if _, err := NewService(store, store).Summary(context.Background(), uuid.Nil); err != ErrValidation {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
