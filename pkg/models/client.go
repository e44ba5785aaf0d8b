package models

import "time"

// Client is the canonical form of a client record.
type Client struct {
	ClientID    int        `json:"clientId"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Email       string     `json:"email"`
	PhoneNumber string     `json:"phoneNumber"`
	Gender      string     `json:"gender"`
	DateOfBirth *time.Time `json:"dateOfBirth"`
	Address     string     `json:"address"`
	City        string     `json:"city"`
	JoinDate    time.Time  `json:"joinDate"`
	IsDeleted   bool       `json:"isDeleted"`
}

// Key returns the record identity used by the reconciling store.
func (c Client) Key() int { return c.ClientID }
