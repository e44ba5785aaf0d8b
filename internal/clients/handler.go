package clients

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"adminhub/internal/realtime"
	"adminhub/pkg/models"
)

type Handler struct {
	Repo *Repo
	Hub  *realtime.Hub
}

func NewHandler(repo *Repo, hub *realtime.Hub) *Handler {
	return &Handler{Repo: repo, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/get-allClients", h.list)
	rg.POST("/add-client", h.create)
	rg.PUT("/update-client", h.update)
	rg.DELETE("/delete-client", h.remove)
}

// list keeps the historical {status, clients} envelope.
func (h *Handler) list(c *gin.Context) {
	out, err := h.Repo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": false, "message": "list failed"})
		return
	}
	if out == nil {
		out = []models.Client{}
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "clients": out})
}

type clientReq struct {
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Email       string  `json:"email"`
	PhoneNumber string  `json:"phoneNumber"`
	Gender      string  `json:"gender"`
	DateOfBirth *string `json:"dateOfBirth"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
}

func (req clientReq) toModel() (models.Client, bool) {
	cl := models.Client{
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Email:       strings.TrimSpace(strings.ToLower(req.Email)),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		Gender:      strings.TrimSpace(req.Gender),
		Address:     strings.TrimSpace(req.Address),
		City:        strings.TrimSpace(req.City),
	}
	if req.DateOfBirth != nil && *req.DateOfBirth != "" {
		t, err := time.Parse(time.RFC3339, *req.DateOfBirth)
		if err != nil {
			// date-only form from the edit dialog
			t, err = time.Parse("2006-01-02", *req.DateOfBirth)
		}
		if err != nil {
			return models.Client{}, false
		}
		utc := t.UTC()
		cl.DateOfBirth = &utc
	}
	return cl, true
}

func (h *Handler) create(c *gin.Context) {
	var req clientReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}

	cl, ok := req.toModel()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid dateOfBirth"})
		return
	}
	if cl.FirstName == "" || cl.LastName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "firstName and lastName required"})
		return
	}
	cl.JoinDate = time.Now().UTC()

	id, err := h.Repo.Create(c.Request.Context(), cl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "create failed"})
		return
	}
	cl.ClientID = id

	if h.Hub != nil {
		go h.Hub.Broadcast(realtime.ClientCreated, cl)
	}

	c.JSON(http.StatusCreated, gin.H{"message": "client created", "client": cl})
}

func (h *Handler) update(c *gin.Context) {
	id, ok := queryID(c)
	if !ok {
		return
	}

	existing, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "get failed"})
		return
	}
	if existing == nil || existing.IsDeleted {
		c.JSON(http.StatusNotFound, gin.H{"message": "client not found"})
		return
	}

	var req clientReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}

	cl, ok := req.toModel()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid dateOfBirth"})
		return
	}
	cl.ClientID = id
	cl.JoinDate = existing.JoinDate

	updated, err := h.Repo.Update(c.Request.Context(), cl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "update failed"})
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"message": "client not found"})
		return
	}

	if h.Hub != nil {
		go h.Hub.Broadcast(realtime.ClientUpdated, cl)
	}

	c.JSON(http.StatusOK, gin.H{"message": "client updated", "client": cl})
}

func (h *Handler) remove(c *gin.Context) {
	id, ok := queryID(c)
	if !ok {
		return
	}

	deleted, err := h.Repo.Delete(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "delete failed"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"message": "client not found"})
		return
	}

	if h.Hub != nil {
		go h.Hub.Broadcast(realtime.ClientDeleted, id)
	}

	c.JSON(http.StatusOK, gin.H{"message": "client deleted"})
}

func queryID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(c.Query("id")))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "valid id required"})
		return 0, false
	}
	return id, true
}
