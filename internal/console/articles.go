package console

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"adminhub/pkg/models"
)

// ErrCancelled is returned when the user declines the confirmation
// prompt; nothing was sent and nothing changed.
var ErrCancelled = errors.New("cancelled by user")

// ErrPendingEcho is returned when the server accepted a create but the
// response carried no usable record; the push channel delivers it.
var ErrPendingEcho = errors.New("created record pending real-time echo")

// ConfirmFunc asks the user to confirm a destructive operation.
type ConfirmFunc func(prompt string) bool

// ArticleView owns the reconciled article collection for one mounted
// view: snapshot load, real-time deltas, and user-initiated mutations
// all funnel into the same store. Mutations are optimistic: the local
// edit is applied as soon as the API accepts the request, and the
// real-time echo that follows re-applies the same idempotent operation.
type ArticleView struct {
	Store   *Store[models.Article]
	Confirm ConfirmFunc

	api *API
}

func NewArticleView(api *API) *ArticleView {
	return &ArticleView{
		Store: NewStore[models.Article](),
		api:   api,
	}
}

// Load replaces the store with a fresh snapshot. On failure the store
// is emptied, so the view presents an empty collection alongside the
// error rather than stale data; retry is the caller invoking Load again.
func (v *ArticleView) Load(ctx context.Context) error {
	items, err := v.api.FetchArticles(ctx)
	if err != nil {
		v.Store.Reset(nil)
		return err
	}
	v.Store.Reset(items)
	return nil
}

// Subscribe registers this view's delta handlers on the subscriber.
func (v *ArticleView) Subscribe(sub *Subscriber) {
	sub.On(EventArticleCreated, func(data json.RawMessage) {
		article, ok := decodeArticle(data)
		if !ok {
			return
		}
		v.Store.Upsert(article)
	})
	sub.On(EventArticleUpdated, func(data json.RawMessage) {
		article, ok := decodeArticle(data)
		if !ok {
			return
		}
		v.Store.Replace(article)
	})
	sub.On(EventArticleDeleted, func(data json.RawMessage) {
		var id int
		if err := json.Unmarshal(data, &id); err != nil {
			log.Printf("[console] skipping delete event: %v", err)
			return
		}
		v.Store.Remove(id)
	})
}

// ArticleInput carries the editable fields of an article mutation.
type ArticleInput struct {
	Title       string
	Description string
	Link        string
	Images      []Upload
}

func (in ArticleInput) fields() map[string]string {
	fields := map[string]string{
		"title":       in.Title,
		"description": in.Description,
	}
	if in.Link != "" {
		fields["link"] = in.Link
	}
	return fields
}

// Create publishes a new article. The response record is upserted
// optimistically; the created echo re-applies the same upsert.
func (v *ArticleView) Create(ctx context.Context, in ArticleInput) (models.Article, error) {
	var resp struct {
		Article RawArticle `json:"article"`
	}
	if err := v.api.doMultipart(ctx, http.MethodPost, "/Articles/add-article", nil, in.fields(), in.Images, &resp); err != nil {
		return models.Article{}, err
	}

	article, err := NormalizeArticle(resp.Article)
	if err != nil {
		return models.Article{}, ErrPendingEcho
	}
	v.Store.Upsert(article)
	return article, nil
}

// Update edits an existing article after confirmation. On success the
// replacement is applied locally without waiting for the echo; on
// failure the store is untouched.
func (v *ArticleView) Update(ctx context.Context, id int, in ArticleInput) error {
	if v.Confirm != nil && !v.Confirm("Are you sure you want to update this article?") {
		return ErrCancelled
	}

	var resp struct {
		Article RawArticle `json:"article"`
	}
	if err := v.api.doMultipart(ctx, http.MethodPut, "/Articles/update-article", idQuery(id), in.fields(), in.Images, &resp); err != nil {
		return err
	}

	if article, err := NormalizeArticle(resp.Article); err == nil {
		v.Store.Replace(article)
	}
	return nil
}

// Delete removes an article after confirmation, optimistically dropping
// it from the store.
func (v *ArticleView) Delete(ctx context.Context, id int) error {
	if v.Confirm != nil && !v.Confirm("Are you sure you want to delete this article?") {
		return ErrCancelled
	}

	if err := v.api.doJSON(ctx, http.MethodDelete, "/Articles/delete-article", idQuery(id), nil, nil); err != nil {
		return err
	}
	v.Store.Remove(id)
	return nil
}

func (v *ArticleView) Items() []models.Article {
	return v.Store.Items()
}

func decodeArticle(data json.RawMessage) (models.Article, bool) {
	var raw RawArticle
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Printf("[console] skipping article event: %v", err)
		return models.Article{}, false
	}
	article, err := NormalizeArticle(raw)
	if err != nil {
		log.Printf("[console] skipping article event: %v", err)
		return models.Article{}, false
	}
	return article, true
}
