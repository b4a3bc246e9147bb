package filters

import (
	"net/url"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/model"
)

var (
	musicCategory = uuid.MustParse("0b0c3a5e-8d0f-4b43-9b53-1f3e0a7a0001")
	techCategory  = uuid.MustParse("0b0c3a5e-8d0f-4b43-9b53-1f3e0a7a0002")
)

func sampleOpportunities() []model.Opportunity {
	return []model.Opportunity{
		{ID: uuid.New(), Title: "Summer Music Fest", Description: "Main stage branding", Location: "Austin, TX", AdType: "event", CategoryID: musicCategory, Price: model.NewPriceRange(10000, 50000)},
		{ID: uuid.New(), Title: "Tech Expo", Description: "Booth sponsorship", Location: "San Francisco", AdType: "booth", CategoryID: techCategory, Price: model.NewPriceRange(60000, 90000)},
		{ID: uuid.New(), Title: "Indie Night", Description: "Small music venue", Location: "austin", AdType: "Event", CategoryID: musicCategory},
		{ID: uuid.New(), Title: "Dev Meetup", Description: "Pizza and talks", Location: "Berlin", AdType: "event", CategoryID: techCategory, Price: model.NewPriceRange(5000, 20000)},
	}
}

func titles(items []model.Opportunity) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Title)
	}
	return out
}

func TestApplySingleCriteria(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{name: "category", criteria: Criteria{CategoryID: musicCategory.String()}, want: []string{"Summer Music Fest", "Indie Night"}},
		{name: "ad type is case insensitive", criteria: Criteria{AdType: "EVENT"}, want: []string{"Summer Music Fest", "Indie Night", "Dev Meetup"}},
		{name: "location substring", criteria: Criteria{Location: "AUST"}, want: []string{"Summer Music Fest", "Indie Night"}},
		{name: "text matches description", criteria: Criteria{Text: "music"}, want: []string{"Summer Music Fest", "Indie Night"}},
		{name: "open ended price", criteria: Criteria{PriceRange: "50000-"}, want: []string{"Tech Expo"}},
		{name: "bounded price", criteria: Criteria{PriceRange: "0-20000"}, want: []string{"Dev Meetup"}},
		{name: "malformed price is ignored", criteria: Criteria{PriceRange: "cheap"}, want: []string{"Summer Music Fest", "Tech Expo", "Indie Night", "Dev Meetup"}},
		{name: "reversed price is ignored", criteria: Criteria{PriceRange: "900-10"}, want: []string{"Summer Music Fest", "Tech Expo", "Indie Night", "Dev Meetup"}},
		{name: "unknown category matches nothing", criteria: Criteria{CategoryID: "nope"}, want: []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := titles(Apply(sampleOpportunities(), tc.criteria))
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("unexpected result: got %v want %v", got, tc.want)
			}
		})
	}
}

func TestApplyCombinesCriteria(t *testing.T) {
	got := titles(Apply(sampleOpportunities(), Criteria{
		CategoryID: musicCategory.String(),
		Location:   "austin",
		PriceRange: "10000-50000",
	}))
	if !reflect.DeepEqual(got, []string{"Summer Music Fest"}) {
		t.Fatalf("unexpected result: %v", got)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	items := sampleOpportunities()
	for _, c := range []Criteria{
		{Text: "e"},
		{AdType: "event", PriceRange: "0-"},
		{Location: "a", CategoryID: techCategory.String()},
		Reset(),
	} {
		once := Apply(items, c)
		twice := Apply(once, c)
		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("apply is not idempotent for %+v: %v vs %v", c, titles(once), titles(twice))
		}
	}
}

func TestApplyEmptyCriteriaIsIdentity(t *testing.T) {
	items := sampleOpportunities()
	got := Apply(items, Criteria{Location: "   "})
	if !reflect.DeepEqual(got, items) {
		t.Fatalf("empty criteria must return the input unchanged")
	}
	if !Reset().IsEmpty() {
		t.Fatalf("reset criteria must be empty")
	}
}

func TestPriceFilterBounds(t *testing.T) {
	tests := []struct {
		name  string
		price *model.PriceRange
		want  bool
	}{
		{name: "inside", price: model.NewPriceRange(20000, 30000), want: true},
		{name: "on both edges", price: model.NewPriceRange(10000, 50000), want: true},
		{name: "min below", price: model.NewPriceRange(9999, 30000), want: false},
		{name: "max above", price: model.NewPriceRange(20000, 50001), want: false},
		{name: "missing range", price: nil, want: false},
		{name: "missing max", price: &model.PriceRange{Min: floatPtr(20000)}, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			item := model.Opportunity{Title: "x", Price: tc.price}
			if got := Match(item, Criteria{PriceRange: "10000-50000"}); got != tc.want {
				t.Fatalf("unexpected match: got %v want %v", got, tc.want)
			}
		})
	}
}

func TestTextSearchOverPosts(t *testing.T) {
	posts := []model.Post{
		{ID: uuid.New(), Title: "Music Fest", Hashtags: "#music"},
		{ID: uuid.New(), Title: "Tech Expo"},
		{ID: uuid.New(), Title: "Weekend vlog", Hashtags: "#travel #MUSIC"},
	}

	got := Apply(posts, Criteria{Text: "music"})
	if len(got) != 2 || got[0].Title != "Music Fest" || got[1].Title != "Weekend vlog" {
		t.Fatalf("unexpected posts: %+v", got)
	}

	got = Apply(posts[:2], Criteria{Text: "music"})
	if len(got) != 1 || got[0].Title != "Music Fest" {
		t.Fatalf("expected only Music Fest, got %+v", got)
	}
}

func TestFromQueryTreatsCityAsLocation(t *testing.T) {
	c := FromQuery(url.Values{"city": {" Austin "}, "q": {"fest"}})
	if c.Location != "Austin" || c.Text != "fest" {
		t.Fatalf("unexpected criteria: %+v", c)
	}

	c = FromQuery(url.Values{"city": {"Austin"}, "location": {"Berlin"}})
	if c.Location != "Berlin" {
		t.Fatalf("location must win over city, got %q", c.Location)
	}
}

func floatPtr(v float64) *float64 {
	return &v
}
