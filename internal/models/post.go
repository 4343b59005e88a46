package models

import "time"

// Post is the final persisted record of a completed post pipeline.
type Post struct {
	ID         string    `json:"id" firestore:"id"`
	OwnerID    string    `json:"ownerId" firestore:"ownerId"`
	Influencer string    `json:"influencer" firestore:"influencer"`
	Topic      string    `json:"topic" firestore:"topic"`
	Caption    string    `json:"caption" firestore:"caption"`
	Hashtags   []string  `json:"hashtags" firestore:"hashtags"`
	ImageURLs  []string  `json:"imageUrls" firestore:"imageUrls"`
	Grid       GridShape `json:"grid" firestore:"grid"`
	// ArticleID is set when the post was generated from a cached news
	// article, for usage linkage.
	ArticleID  string    `json:"articleId,omitempty" firestore:"articleId,omitempty"`
	SourceURLs []string  `json:"sourceUrls,omitempty" firestore:"sourceUrls,omitempty"`
	CreatedAt  time.Time `json:"createdAt" firestore:"createdAt"`
}

// Influencer is a persisted persona owned by a user.
type Influencer struct {
	ID         string    `json:"id" firestore:"id"`
	OwnerID    string    `json:"ownerId" firestore:"ownerId"`
	Persona    Persona   `json:"persona" firestore:"persona"`
	AvatarURL  string    `json:"avatarUrl,omitempty" firestore:"avatarUrl,omitempty"`
	AvatarURLs []string  `json:"avatarUrls,omitempty" firestore:"avatarUrls,omitempty"`
	CreatedAt  time.Time `json:"createdAt" firestore:"createdAt"`
}
