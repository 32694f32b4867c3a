package web

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Pavel-Maksimov/Yatube/internal/db"
	"github.com/Pavel-Maksimov/Yatube/internal/models"
)

// addComment creates a comment on a post. Guests and empty
// submissions produce no comment; the caller lands on the post view
// either way, with no error surfaced.
func (r *Router) addComment(c *gin.Context) {
	post, err := r.resolvePost(c)
	if err != nil {
		if err == db.ErrNotFound {
			r.renderNotFound(c)
		} else {
			r.renderServerError(c, err)
		}
		return
	}

	user := CurrentUser(c)
	if user == nil {
		c.Redirect(http.StatusFound, postURL(post))
		return
	}

	var form CommentForm
	if err := c.ShouldBind(&form); err == nil {
		if text := strings.TrimSpace(form.Text); text != "" {
			comment := &models.Comment{
				PostID:   post.ID,
				AuthorID: user.ID,
				Text:     text,
			}
			if err := r.comments.Create(c.Request.Context(), comment); err != nil {
				r.renderServerError(c, err)
				return
			}
		}
	}

	c.Redirect(http.StatusFound, postURL(post))
}
