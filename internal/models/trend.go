package models

import (
	"fmt"
	"time"
)

// GeneratedTrend is the structured content for one post: narrative,
// caption and per-panel slide beats. SlideDescriptions always holds
// exactly Panels() entries for the grid it was generated for; the
// content generator pads or truncates before returning.
type GeneratedTrend struct {
	Topic             string    `json:"topic" firestore:"topic"`
	Summary           string    `json:"summary" firestore:"summary"`
	Caption           string    `json:"caption" firestore:"caption"`
	Hashtags          []string  `json:"hashtags" firestore:"hashtags"`
	Narrative         string    `json:"narrative" firestore:"narrative"`
	Mood              string    `json:"mood" firestore:"mood"`
	Palette           string    `json:"palette" firestore:"palette"`
	SlideDescriptions []string  `json:"slideDescriptions" firestore:"slideDescriptions"`
	SourceURLs        []string  `json:"sourceUrls" firestore:"sourceUrls"`
	Grid              GridShape `json:"grid" firestore:"grid"`
}

// defaultBeats is the fixed ordered list of narrative beats used to pad
// missing slide descriptions.
var defaultBeats = []string{
	"establishing shot introducing the theme",
	"closer look at the central subject",
	"a contrasting detail or texture",
	"human element interacting with the scene",
	"wide perspective showing context",
	"intimate close-up on a defining feature",
	"movement or transition moment",
	"quiet aftermath or reflection",
	"closing statement shot echoing the opening",
}

// Normalize fills every absent field with a usable default so a
// structurally incomplete content object never travels downstream.
func (t *GeneratedTrend) Normalize(grid GridShape) {
	if !grid.Valid() {
		grid = Grid2x2
	}
	t.Grid = grid

	if t.Topic == "" {
		t.Topic = "untitled trend"
	}
	if t.Summary == "" {
		t.Summary = fmt.Sprintf("A look at %s.", t.Topic)
	}
	if t.Caption == "" {
		t.Caption = fmt.Sprintf("Exploring %s — what do you think?", t.Topic)
	}
	if len(t.Hashtags) == 0 {
		t.Hashtags = []string{"#trending", "#inspiration"}
	}
	if t.Narrative == "" {
		t.Narrative = t.Summary
	}
	if t.Mood == "" {
		t.Mood = "vibrant"
	}
	if t.Palette == "" {
		t.Palette = "natural tones with one bold accent"
	}

	want := grid.Panels()
	for len(t.SlideDescriptions) < want {
		beat := defaultBeats[len(t.SlideDescriptions)%len(defaultBeats)]
		t.SlideDescriptions = append(t.SlideDescriptions, fmt.Sprintf("%s: %s", t.Topic, beat))
	}
	t.SlideDescriptions = t.SlideDescriptions[:want]
}

// TrendSignal is a lightweight discovered-trend record.
type TrendSignal struct {
	ID        string    `json:"id" firestore:"id"`
	Topic     string    `json:"topic" firestore:"topic"`
	Headline  string    `json:"headline" firestore:"headline"`
	Summary   string    `json:"summary" firestore:"summary"`
	Relevance float64   `json:"relevance" firestore:"relevance"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}

// UsageRef links an article to a post that consumed it. The list is
// append-only and drives idempotent "already used by this owner" checks.
type UsageRef struct {
	PostID  string `json:"postId" firestore:"postId"`
	OwnerID string `json:"ownerId" firestore:"ownerId"`
}

// NewsArticle is a discovered article cached per niche, shared by all
// owners.
type NewsArticle struct {
	ID        string     `json:"id" firestore:"id"`
	Niche     string     `json:"niche" firestore:"niche"`
	Headline  string     `json:"headline" firestore:"headline"`
	Summary   string     `json:"summary" firestore:"summary"`
	Body      string     `json:"body" firestore:"body"`
	Relevance float64    `json:"relevance" firestore:"relevance"`
	SourceURL string     `json:"sourceUrl" firestore:"sourceUrl"`
	UsageCnt  int        `json:"usageCount" firestore:"usageCount"`
	UsedIn    []UsageRef `json:"usedIn" firestore:"usedIn"`
	FetchedAt time.Time  `json:"fetchedAt" firestore:"fetchedAt"`
}

// UsedBy reports whether ownerID already generated a post from this
// article.
func (a *NewsArticle) UsedBy(ownerID string) bool {
	for _, ref := range a.UsedIn {
		if ref.OwnerID == ownerID {
			return true
		}
	}
	return false
}
