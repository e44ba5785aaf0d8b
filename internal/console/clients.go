package console

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"adminhub/pkg/models"
)

// ClientView is the client-collection counterpart of ArticleView: same
// store discipline, JSON mutations instead of multipart.
type ClientView struct {
	Store   *Store[models.Client]
	Confirm ConfirmFunc

	api *API
}

func NewClientView(api *API) *ClientView {
	return &ClientView{
		Store: NewStore[models.Client](),
		api:   api,
	}
}

func (v *ClientView) Load(ctx context.Context) error {
	items, err := v.api.FetchClients(ctx)
	if err != nil {
		v.Store.Reset(nil)
		return err
	}
	v.Store.Reset(items)
	return nil
}

func (v *ClientView) Subscribe(sub *Subscriber) {
	sub.On(EventClientCreated, func(data json.RawMessage) {
		client, ok := decodeClient(data)
		if !ok {
			return
		}
		v.Store.Upsert(client)
	})
	sub.On(EventClientUpdated, func(data json.RawMessage) {
		client, ok := decodeClient(data)
		if !ok {
			return
		}
		v.Store.Replace(client)
	})
	sub.On(EventClientDeleted, func(data json.RawMessage) {
		var id int
		if err := json.Unmarshal(data, &id); err != nil {
			log.Printf("[console] skipping delete event: %v", err)
			return
		}
		v.Store.Remove(id)
	})
}

// ClientInput carries the editable fields of a client mutation.
type ClientInput struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Address     string `json:"address"`
	City        string `json:"city"`
}

func (v *ClientView) Create(ctx context.Context, in ClientInput) (models.Client, error) {
	var resp struct {
		Client RawClient `json:"client"`
	}
	if err := v.api.doJSON(ctx, http.MethodPost, "/Clients/add-client", nil, in, &resp); err != nil {
		return models.Client{}, err
	}

	client, err := NormalizeClient(resp.Client)
	if err != nil {
		return models.Client{}, ErrPendingEcho
	}
	v.Store.Upsert(client)
	return client, nil
}

func (v *ClientView) Update(ctx context.Context, id int, in ClientInput) error {
	if v.Confirm != nil && !v.Confirm("Save changes to this client?") {
		return ErrCancelled
	}

	var resp struct {
		Client RawClient `json:"client"`
	}
	if err := v.api.doJSON(ctx, http.MethodPut, "/Clients/update-client", idQuery(id), in, &resp); err != nil {
		return err
	}

	if client, err := NormalizeClient(resp.Client); err == nil {
		v.Store.Replace(client)
	}
	return nil
}

func (v *ClientView) Delete(ctx context.Context, id int) error {
	if v.Confirm != nil && !v.Confirm("Are you sure you want to delete this client?") {
		return ErrCancelled
	}

	if err := v.api.doJSON(ctx, http.MethodDelete, "/Clients/delete-client", idQuery(id), nil, nil); err != nil {
		return err
	}
	v.Store.Remove(id)
	return nil
}

func (v *ClientView) Items() []models.Client {
	return v.Store.Items()
}

func decodeClient(data json.RawMessage) (models.Client, bool) {
	var raw RawClient
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Printf("[console] skipping client event: %v", err)
		return models.Client{}, false
	}
	client, err := NormalizeClient(raw)
	if err != nil {
		log.Printf("[console] skipping client event: %v", err)
		return models.Client{}, false
	}
	return client, true
}
