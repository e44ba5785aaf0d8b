package admins

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"adminhub/pkg/models"
)

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/get-allUsers", h.list)
	rg.GET("/get-userById", h.getByID)
	rg.POST("/add-admin", h.create)
	rg.PUT("/update-user", h.update)
	rg.DELETE("/delete-user", h.remove)
}

func (h *Handler) list(c *gin.Context) {
	out, err := h.Repo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "list failed"})
		return
	}
	if out == nil {
		out = []models.Admin{}
	}
	c.JSON(http.StatusOK, gin.H{"admins": out})
}

func (h *Handler) getByID(c *gin.Context) {
	id, ok := queryID(c)
	if !ok {
		return
	}

	a, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "get failed"})
		return
	}
	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	}
	c.JSON(http.StatusOK, a)
}

type createReq struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if len(req.Username) < 3 || len(req.Username) > 30 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "username must be 3-30 chars"})
		return
	}
	if !strings.Contains(req.Email, "@") || len(req.Email) > 255 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid email"})
		return
	}
	if len(req.Password) < 8 || len(req.Password) > 72 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "password must be 8-72 chars"})
		return
	}

	// uniqueness checks
	if exists, _ := h.Repo.UsernameExists(c.Request.Context(), req.Username); exists {
		c.JSON(http.StatusConflict, gin.H{"message": "username already exists"})
		return
	}
	if exists, _ := h.Repo.EmailExists(c.Request.Context(), req.Email); exists {
		c.JSON(http.StatusConflict, gin.H{"message": "email already exists"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "hash failed"})
		return
	}

	a := models.Admin{
		Username:    req.Username,
		FullName:    strings.TrimSpace(req.FullName),
		Email:       req.Email,
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
	}

	id, err := h.Repo.Create(c.Request.Context(), a, string(hash))
	if err != nil {
		// unique constraint will also trigger here in races
		c.JSON(http.StatusInternalServerError, gin.H{"message": "create user failed"})
		return
	}
	a.ID = id

	c.JSON(http.StatusCreated, gin.H{"message": "user created", "user": a})
}

type updateReq struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"` // blank keeps the current one
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
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	}

	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if !strings.Contains(req.Email, "@") || len(req.Email) > 255 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid email"})
		return
	}

	var hash string
	if req.Password != "" {
		if len(req.Password) < 8 || len(req.Password) > 72 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "password must be 8-72 chars"})
			return
		}
		b, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "hash failed"})
			return
		}
		hash = string(b)
	}

	a := models.Admin{
		ID:          id,
		Username:    existing.Username,
		FullName:    strings.TrimSpace(req.FullName),
		Email:       req.Email,
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
	}

	if _, err := h.Repo.Update(c.Request.Context(), a, hash); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "update user failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user updated", "user": a})
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
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

func queryID(c *gin.Context) (int, bool) {
	raw := strings.TrimSpace(c.Query("id"))
	if raw == "" {
		// the old backend used ?Id= on delete
		raw = strings.TrimSpace(c.Query("Id"))
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "valid id required"})
		return 0, false
	}
	return id, true
}
