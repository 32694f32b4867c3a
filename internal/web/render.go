package web

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// pageData assembles the template context shared by every page
func (r *Router) pageData(c *gin.Context, extra gin.H) gin.H {
	data := gin.H{
		"User": CurrentUser(c),
		"Path": c.Request.URL.Path,
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

// renderToBytes renders a template without writing the response, for
// pages that are cached whole
func (r *Router) renderToBytes(name string, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Router) renderNotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "404.html", gin.H{
		"User": CurrentUser(c),
		"Path": c.Request.URL.Path,
	})
}

func (r *Router) renderServerError(c *gin.Context, err error) {
	r.logger.Error("request failed",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	c.HTML(http.StatusInternalServerError, "500.html", gin.H{
		"User": CurrentUser(c),
	})
}
