package models

import "time"

// FetchStatus is the state of the per-niche news fetch record.
type FetchStatus string

const (
	FetchInProgress FetchStatus = "in-progress"
	FetchCompleted  FetchStatus = "completed"
	FetchFailed     FetchStatus = "failed"
)

// NewsFetchMetadata is the niche-scoped, owner-independent record that
// gates fresh discovery calls across every client. It is read-then-
// written without a transaction; the in-progress timeout is a liveness
// heuristic, not a correctness guarantee.
type NewsFetchMetadata struct {
	Niche        string      `json:"niche" firestore:"niche"`
	Status       FetchStatus `json:"status" firestore:"status"`
	LastFetch    time.Time   `json:"lastFetch" firestore:"lastFetch"`
	ArticleCount int         `json:"articleCount" firestore:"articleCount"`
}

// FetchDecision is the outcome of the cache-or-fetch decision.
type FetchDecision int

const (
	// DecisionFetch performs a fresh discovery call.
	DecisionFetch FetchDecision = iota
	// DecisionCacheOnly serves cached articles without a remote call.
	DecisionCacheOnly
	// DecisionWait serves whatever cache exists because another caller
	// is presumed to be fetching right now.
	DecisionWait
)

// Decide applies the gate's state machine. A nil receiver means no
// record exists yet. allowRetry is the caller-provided override for
// user-initiated retry after a first-load error.
func (m *NewsFetchMetadata) Decide(now time.Time, refreshWindow, inProgressTimeout time.Duration, allowRetry bool) FetchDecision {
	if allowRetry {
		return DecisionFetch
	}
	if m == nil {
		return DecisionFetch
	}
	age := now.Sub(m.LastFetch)
	switch m.Status {
	case FetchCompleted:
		if age < refreshWindow {
			return DecisionCacheOnly
		}
		return DecisionFetch
	case FetchInProgress:
		if age < inProgressTimeout {
			return DecisionWait
		}
		// The other fetch probably died; treat as failed.
		return DecisionFetch
	default:
		return DecisionFetch
	}
}
