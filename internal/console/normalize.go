// Package console implements the client side of the admin console: a
// REST snapshot loader, a normalizer for the backend's loosely-typed
// payloads, an identity-keyed store reconciling real-time deltas, and
// the push-channel subscriber feeding it.
package console

import (
	"encoding/json"
	"errors"
	"time"

	"adminhub/pkg/models"
)

// Field defaults substituted when the backend omits a value.
const (
	DefaultTitle = "Untitled"
)

var errMissingID = errors.New("record has no usable identity")

// RawArticle is an article as the wire delivers it: fields may be
// missing, null, or hiding behind the backend's historical misspelling
// of "description". Images may be any JSON shape at all.
type RawArticle struct {
	ID          *int            `json:"id"`
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Discription *string         `json:"discription"` // typo preserved by the backend
	Link        *string         `json:"link"`
	Images      json.RawMessage `json:"images"`
	CreatedAt   *string         `json:"createdAt"`
}

// RawClient mirrors RawArticle for the client collection.
type RawClient struct {
	ClientID    *int    `json:"clientId"`
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phoneNumber"`
	Gender      *string `json:"gender"`
	DateOfBirth *string `json:"dateOfBirth"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	JoinDate    *string `json:"joinDate"`
	IsDeleted   *bool   `json:"isDeleted"`
}

// NormalizeArticle maps a raw record onto the canonical shape, field by
// field. Identity passes through verbatim and is the only way to fail:
// a record without it is rejected rather than inserted half-formed.
func NormalizeArticle(raw RawArticle) (models.Article, error) {
	if raw.ID == nil {
		return models.Article{}, errMissingID
	}

	a := models.Article{
		ID:          *raw.ID,
		Title:       textOr(raw.Title, DefaultTitle),
		Description: textOr(raw.Description, textOr(raw.Discription, "")),
		Link:        raw.Link,
		Images:      imageList(raw.Images),
		CreatedAt:   timeOrNow(raw.CreatedAt),
	}
	return a, nil
}

// NormalizeClient is the client-collection counterpart.
func NormalizeClient(raw RawClient) (models.Client, error) {
	if raw.ClientID == nil {
		return models.Client{}, errMissingID
	}

	cl := models.Client{
		ClientID:    *raw.ClientID,
		FirstName:   textOr(raw.FirstName, ""),
		LastName:    textOr(raw.LastName, ""),
		Email:       textOr(raw.Email, ""),
		PhoneNumber: textOr(raw.PhoneNumber, ""),
		Gender:      textOr(raw.Gender, ""),
		Address:     textOr(raw.Address, ""),
		City:        textOr(raw.City, ""),
		JoinDate:    timeOrNow(raw.JoinDate),
	}
	if raw.DateOfBirth != nil {
		if t, ok := parseTime(*raw.DateOfBirth); ok {
			cl.DateOfBirth = &t
		}
	}
	if raw.IsDeleted != nil {
		cl.IsDeleted = *raw.IsDeleted
	}
	return cl, nil
}

func textOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

// imageList accepts only an actual JSON array of strings; null, objects,
// scalars, and mixed arrays all normalize to an empty list.
func imageList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var images []string
	if err := json.Unmarshal(raw, &images); err != nil || images == nil {
		return []string{}
	}
	return images
}

func timeOrNow(s *string) time.Time {
	if s != nil {
		if t, ok := parseTime(*s); ok {
			return t
		}
	}
	return time.Now().UTC()
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
