package console

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchArticlesAcrossEnvelopes(t *testing.T) {
	bodies := []string{
		`[{"id":1,"title":"a"},{"id":2,"title":"b"}]`,
		`{"data":[{"id":1,"title":"a"},{"id":2,"title":"b"}]}`,
		`{"items":[{"id":1,"title":"a"},{"id":2,"title":"b"}]}`,
		`{"articles":[{"id":1,"title":"a"},{"id":2,"title":"b"}]}`,
	}

	for _, body := range bodies {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/Articles/get-allArticles", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		}))

		api := NewAPI(srv.URL+"/api", nil)
		articles, err := api.FetchArticles(context.Background())
		srv.Close()

		require.NoError(t, err, "body %s", body)
		require.Len(t, articles, 2)
		assert.Equal(t, 1, articles[0].ID)
		assert.Equal(t, "a", articles[0].Title)
	}
}

func TestFetchArticlesSkipsMalformedRecords(t *testing.T) {
	body := `{"data":[
		{"id":1,"title":"kept"},
		{"title":"no identity"},
		{"id":3,"discription":"old spelling","images":{"not":"an array"}}
	]}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	api := NewAPI(srv.URL+"/api", nil)
	articles, err := api.FetchArticles(context.Background())
	require.NoError(t, err)

	require.Len(t, articles, 2)
	assert.Equal(t, "kept", articles[0].Title)
	assert.Equal(t, "old spelling", articles[1].Description)
	assert.Equal(t, []string{}, articles[1].Images)
}

func TestFetchArticlesEmptyOnUnknownEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	api := NewAPI(srv.URL+"/api", nil)
	articles, err := api.FetchArticles(context.Background())
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestFetchClientsStatusEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/Clients/get-allClients", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":true,"clients":[{"clientId":7,"firstName":"Ada"}]}`))
	}))
	defer srv.Close()

	api := NewAPI(srv.URL+"/api", nil)
	clients, err := api.FetchClients(context.Background())
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, 7, clients[0].ClientID)
	assert.Equal(t, "Ada", clients[0].FirstName)
}

func TestBearerTokenAttachedCentrally(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	api := NewAPI(srv.URL+"/api", func() string { return "tok-123" })
	_, err := api.FetchArticles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestNoBearerHeaderWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	api := NewAPI(srv.URL+"/api", func() string { return "" })
	_, err := api.FetchArticles(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestAPIErrorPrefersServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid credentials"}`))
	}))
	defer srv.Close()

	api := NewAPI(srv.URL+"/api", nil)
	_, err := api.Login(context.Background(), "admin", "wrong")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid credentials", apiErr.Message)
}

func TestAPIErrorFallsBackToStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	api := NewAPI(srv.URL+"/api", nil)
	_, err := api.FetchArticles(context.Background())
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, "Internal Server Error", apiErr.Message)
}

func TestFetchArticleByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/Articles/get-articleById", r.URL.Path)
		assert.Equal(t, "4", r.URL.Query().Get("id"))
		_, _ = w.Write([]byte(`{"id":4,"discription":"typo field"}`))
	}))
	defer srv.Close()

	api := NewAPI(srv.URL+"/api", nil)
	article, err := api.FetchArticle(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 4, article.ID)
	assert.Equal(t, "Untitled", article.Title)
	assert.Equal(t, "typo field", article.Description)
}
