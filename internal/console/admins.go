package console

import (
	"context"
	"encoding/json"
	"net/http"

	"adminhub/pkg/models"
)

// Admin accounts are managed through plain request/response calls; they
// have no real-time channel and no reconciling view.

func (a *API) FetchAdmins(ctx context.Context) ([]models.Admin, error) {
	var body json.RawMessage
	if err := a.doJSON(ctx, http.MethodGet, "/Admins/get-allUsers", nil, nil, &body); err != nil {
		return nil, err
	}

	elems := decodeCollection(body, "data", "items", "admins")
	out := make([]models.Admin, 0, len(elems))
	for _, elem := range elems {
		var admin models.Admin
		if err := json.Unmarshal(elem, &admin); err != nil {
			continue
		}
		out = append(out, admin)
	}
	return out, nil
}

// AdminInput carries the fields of an admin account mutation. Password
// is required on create; blank on update keeps the current one.
type AdminInput struct {
	Username    string `json:"username,omitempty"`
	Password    string `json:"password,omitempty"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

func (a *API) CreateAdmin(ctx context.Context, in AdminInput) error {
	return a.doJSON(ctx, http.MethodPost, "/Admins/add-admin", nil, in, nil)
}

func (a *API) UpdateAdmin(ctx context.Context, id int, in AdminInput) error {
	return a.doJSON(ctx, http.MethodPut, "/Admins/update-user", idQuery(id), in, nil)
}

func (a *API) DeleteAdmin(ctx context.Context, id int) error {
	return a.doJSON(ctx, http.MethodDelete, "/Admins/delete-user", idQuery(id), nil, nil)
}
