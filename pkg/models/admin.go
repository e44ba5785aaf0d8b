package models

// Admin is a console administrator account as exposed over the API.
// The password hash never leaves the server.
type Admin struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}
