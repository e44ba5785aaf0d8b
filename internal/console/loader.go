package console

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"adminhub/pkg/models"
)

// FetchArticles loads the full article collection. Whatever envelope
// the backend answers with, every element goes through the normalizer;
// elements it cannot interpret are dropped, never half-inserted.
func (a *API) FetchArticles(ctx context.Context) ([]models.Article, error) {
	var body json.RawMessage
	if err := a.doJSON(ctx, http.MethodGet, "/Articles/get-allArticles", nil, nil, &body); err != nil {
		return nil, err
	}

	elems := decodeCollection(body, "data", "items", "articles")
	out := make([]models.Article, 0, len(elems))
	for _, elem := range elems {
		var raw RawArticle
		if err := json.Unmarshal(elem, &raw); err != nil {
			log.Printf("[console] skipping malformed article: %v", err)
			continue
		}
		article, err := NormalizeArticle(raw)
		if err != nil {
			log.Printf("[console] skipping article: %v", err)
			continue
		}
		out = append(out, article)
	}
	return out, nil
}

// FetchClients loads the client collection, tolerating the historical
// {status, clients} envelope alongside the generic ones.
func (a *API) FetchClients(ctx context.Context) ([]models.Client, error) {
	var body json.RawMessage
	if err := a.doJSON(ctx, http.MethodGet, "/Clients/get-allClients", nil, nil, &body); err != nil {
		return nil, err
	}

	elems := decodeCollection(body, "data", "items", "clients")
	out := make([]models.Client, 0, len(elems))
	for _, elem := range elems {
		var raw RawClient
		if err := json.Unmarshal(elem, &raw); err != nil {
			log.Printf("[console] skipping malformed client: %v", err)
			continue
		}
		client, err := NormalizeClient(raw)
		if err != nil {
			log.Printf("[console] skipping client: %v", err)
			continue
		}
		out = append(out, client)
	}
	return out, nil
}

// FetchArticle loads one article by identity.
func (a *API) FetchArticle(ctx context.Context, id int) (models.Article, error) {
	var raw RawArticle
	if err := a.doJSON(ctx, http.MethodGet, "/Articles/get-articleById", idQuery(id), nil, &raw); err != nil {
		return models.Article{}, err
	}
	return NormalizeArticle(raw)
}
