package articles

import (
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"adminhub/internal/realtime"
	"adminhub/pkg/models"
)

type Handler struct {
	Repo      *Repo
	Hub       *realtime.Hub
	UploadDir string
}

func NewHandler(repo *Repo, hub *realtime.Hub, uploadDir string) *Handler {
	return &Handler{Repo: repo, Hub: hub, UploadDir: uploadDir}
}

// RegisterRoutes wires the public read endpoints; RegisterProtectedRoutes
// the mutations. Route names match the historical backend.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/get-allArticles", h.list)
	rg.GET("/get-articleById", h.getByID)
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/add-article", h.create)
	rg.PUT("/update-article", h.update)
	rg.DELETE("/delete-article", h.remove)
}

// wireArticle is the list-payload shape. Legacy rows serialize their
// description under the misspelled key, as the old backend did.
type wireArticle struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Discription string    `json:"discription,omitempty"`
	Link        *string   `json:"link"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toWire(row Row) wireArticle {
	w := wireArticle{
		ID:        row.ID,
		Title:     row.Title,
		Link:      row.Link,
		Images:    row.Images,
		CreatedAt: row.CreatedAt,
	}
	if row.LegacyDesc {
		w.Discription = row.Description
	} else {
		w.Description = row.Description
	}
	return w
}

func (h *Handler) list(c *gin.Context) {
	rows, err := h.Repo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "list failed"})
		return
	}

	out := make([]wireArticle, 0, len(rows))
	for _, row := range rows {
		out = append(out, toWire(row))
	}
	c.JSON(http.StatusOK, gin.H{"articles": out})
}

func (h *Handler) getByID(c *gin.Context) {
	id, ok := queryID(c, "id")
	if !ok {
		return
	}

	row, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "get failed"})
		return
	}
	if row == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "article not found"})
		return
	}
	c.JSON(http.StatusOK, row.Article)
}

func (h *Handler) create(c *gin.Context) {
	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "title required"})
		return
	}

	a := models.Article{
		Title:       title,
		Description: c.PostForm("description"),
		Images:      []string{},
		CreatedAt:   time.Now().UTC(),
	}
	if link := strings.TrimSpace(c.PostForm("link")); link != "" {
		a.Link = &link
	}

	refs, err := h.saveUploads(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "image upload failed"})
		return
	}
	a.Images = refs

	id, err := h.Repo.Create(c.Request.Context(), a)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "create failed"})
		return
	}
	a.ID = id

	if h.Hub != nil {
		go h.Hub.Broadcast(realtime.ArticleCreated, a)
	}

	c.JSON(http.StatusCreated, gin.H{"message": "article created", "article": a})
}

func (h *Handler) update(c *gin.Context) {
	id, ok := queryID(c, "id")
	if !ok {
		return
	}

	existing, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "get failed"})
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "article not found"})
		return
	}

	a := existing.Article
	if title := strings.TrimSpace(c.PostForm("title")); title != "" {
		a.Title = title
	}
	if desc, set := c.GetPostForm("description"); set {
		a.Description = desc
	}
	if link := strings.TrimSpace(c.PostForm("link")); link != "" {
		a.Link = &link
	}

	// replace-on-upload: new images supersede the stored set
	refs, err := h.saveUploads(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "image upload failed"})
		return
	}
	if len(refs) > 0 {
		a.Images = refs
	}

	if _, err := h.Repo.Update(c.Request.Context(), a); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "update failed"})
		return
	}

	if h.Hub != nil {
		go h.Hub.Broadcast(realtime.ArticleUpdated, a)
	}

	c.JSON(http.StatusOK, gin.H{"message": "article updated", "article": a})
}

func (h *Handler) remove(c *gin.Context) {
	id, ok := queryID(c, "id")
	if !ok {
		return
	}

	deleted, err := h.Repo.Delete(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "delete failed"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"message": "article not found"})
		return
	}

	if h.Hub != nil {
		go h.Hub.Broadcast(realtime.ArticleDeleted, id)
	}

	c.JSON(http.StatusOK, gin.H{"message": "article deleted"})
}

// saveUploads stores every "images" part under the upload dir with a
// generated name and returns the public /uploads refs.
func (h *Handler) saveUploads(c *gin.Context) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// plain form posts without files are fine
		return []string{}, nil
	}

	var refs []string
	for _, fh := range form.File["images"] {
		ref, err := h.saveOne(c, fh)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	if refs == nil {
		refs = []string{}
	}
	return refs, nil
}

func (h *Handler) saveOne(c *gin.Context, fh *multipart.FileHeader) (string, error) {
	name := uuid.NewString() + filepath.Ext(fh.Filename)
	if err := c.SaveUploadedFile(fh, filepath.Join(h.UploadDir, name)); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}

func queryID(c *gin.Context, param string) (int, bool) {
	raw := c.Query(param)
	if raw == "" {
		// the old backend was inconsistent about the casing
		raw = c.Query(strings.ToUpper(param[:1]) + param[1:])
	}
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "valid id required"})
		return 0, false
	}
	return id, true
}
