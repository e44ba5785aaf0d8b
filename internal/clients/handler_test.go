package clients

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adminhub/internal/realtime"
	"adminhub/pkg/database"
	"adminhub/pkg/models"
)

func newTestRouter(t *testing.T, hub *realtime.Hub) (*gin.Engine, *Repo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewRepo(db)
	h := NewHandler(repo, hub)

	r := gin.New()
	h.RegisterRoutes(r.Group("/api/Clients"))
	return r, repo
}

func postJSON(t *testing.T, r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateAndListClients(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := postJSON(t, r, http.MethodPost, "/api/Clients/add-client",
		`{"firstName":"Ada","lastName":"Lovelace","email":"ADA@Example.com","dateOfBirth":"1990-06-01"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Client models.Client `json:"client"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotZero(t, created.Client.ClientID)
	assert.Equal(t, "ada@example.com", created.Client.Email)
	require.NotNil(t, created.Client.DateOfBirth)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/Clients/get-allClients", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status  bool            `json:"status"`
		Clients []models.Client `json:"clients"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Status)
	require.Len(t, resp.Clients, 1)
	assert.Equal(t, "Ada", resp.Clients[0].FirstName)
}

func TestCreateClientValidation(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := postJSON(t, r, http.MethodPost, "/api/Clients/add-client", `{"firstName":"Only"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(t, r, http.MethodPost, "/api/Clients/add-client",
		`{"firstName":"Bad","lastName":"Date","dateOfBirth":"june 1st"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateClient(t *testing.T) {
	hub := realtime.NewHub()
	hub.Poll("watcher", time.Millisecond)
	r, _ := newTestRouter(t, hub)

	w := postJSON(t, r, http.MethodPost, "/api/Clients/add-client",
		`{"firstName":"Grace","lastName":"Hopper"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	hub.Poll("watcher", time.Second) // drain the created event

	w = postJSON(t, r, http.MethodPut, "/api/Clients/update-client?id=1",
		`{"firstName":"Grace","lastName":"Hopper","city":"Arlington"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Client models.Client `json:"client"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Arlington", resp.Client.City)

	events := hub.Poll("watcher", time.Second)
	require.Len(t, events, 1)
	assert.Equal(t, realtime.ClientUpdated, events[0].Event)
}

func TestDeleteClientIsSoft(t *testing.T) {
	r, repo := newTestRouter(t, nil)

	w := postJSON(t, r, http.MethodPost, "/api/Clients/add-client",
		`{"firstName":"Soon","lastName":"Gone"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/Clients/delete-client?id=1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	// gone from the list
	listed, err := repo.List(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	require.NoError(t, err)
	assert.Empty(t, listed)

	// but still in the table, flagged
	var isDeleted int
	require.NoError(t, repo.DB.QueryRow(`SELECT is_deleted FROM clients WHERE client_id = 1`).Scan(&isDeleted))
	assert.Equal(t, 1, isDeleted)

	// a second delete reports not found
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/Clients/delete-client?id=1", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateDeletedClientIsNotFound(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	postJSON(t, r, http.MethodPost, "/api/Clients/add-client", `{"firstName":"A","lastName":"B"}`)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/Clients/delete-client?id=1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, r, http.MethodPut, "/api/Clients/update-client?id=1",
		`{"firstName":"A","lastName":"B"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
