package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// aboutAuthor renders the static page about the project's author
func (r *Router) aboutAuthor(c *gin.Context) {
	c.HTML(http.StatusOK, "about_author.html", r.pageData(c, nil))
}

// aboutTech renders the static page about the technology stack
func (r *Router) aboutTech(c *gin.Context) {
	c.HTML(http.StatusOK, "about_tech.html", r.pageData(c, nil))
}
