package models

import "time"

// Article is the canonical, fully-defaulted form of an article record.
//
// Every field is defined after normalization: a missing title becomes
// "Untitled", a missing description becomes "", images is never nil.
// Link is the one deliberately optional field (nil means "no link",
// which is different from an empty string).
type Article struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Link        *string   `json:"link"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Key returns the record identity used by the reconciling store.
func (a Article) Key() int { return a.ID }
