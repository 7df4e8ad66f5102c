package metadata

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct{ client *Client }

func RegisterRoutes(r gin.IRoutes, client *Client) {
	h := &Handler{client: client}

	r.GET("/metadata/isbn/:isbn", h.LookupISBN)
	r.GET("/metadata/search", h.Search)
}

func (h *Handler) LookupISBN(c *gin.Context) {
	res, err := h.client.SearchByISBN(c.Request.Context(), c.Param("isbn"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if res == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no volume found for isbn"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// Search looks up by title or author, whichever query parameter is set.
func (h *Handler) Search(c *gin.Context) {
	var (
		res []BookMetadata
		err error
	)
	switch {
	case c.Query("title") != "":
		res, err = h.client.SearchByTitle(c.Request.Context(), c.Query("title"))
	case c.Query("author") != "":
		res, err = h.client.SearchByAuthor(c.Request.Context(), c.Query("author"))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "title or author query is required"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}
