package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Pavel-Maksimov/Yatube/internal/db"
)

// followIndex renders the personalized feed: posts by everyone the
// viewer follows, newest first
func (r *Router) followIndex(c *gin.Context) {
	user := CurrentUser(c)

	postPage, err := r.posts.ListFeedPage(c.Request.Context(), user.ID, pageNumber(c), r.cfg.App.PageSize)
	if err != nil {
		r.renderServerError(c, err)
		return
	}

	c.HTML(http.StatusOK, "follow.html", r.pageData(c, gin.H{
		"Page": postPage,
	}))
}

// profileFollow creates a follow edge. Self-follows are rejected and
// re-following is a no-op; either way the caller lands back on the
// profile.
func (r *Router) profileFollow(c *gin.Context) {
	user := CurrentUser(c)

	author, err := r.users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		if err == db.ErrNotFound {
			r.renderNotFound(c)
		} else {
			r.renderServerError(c, err)
		}
		return
	}

	if user.ID != author.ID {
		if err := r.follows.Create(c.Request.Context(), user.ID, author.ID); err != nil {
			r.renderServerError(c, err)
			return
		}
	}

	c.Redirect(http.StatusFound, profileURL(author.Username))
}

// profileUnfollow removes a follow edge; removing an edge that does
// not exist is a not-found condition
func (r *Router) profileUnfollow(c *gin.Context) {
	user := CurrentUser(c)

	author, err := r.users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		if err == db.ErrNotFound {
			r.renderNotFound(c)
		} else {
			r.renderServerError(c, err)
		}
		return
	}

	if err := r.follows.Delete(c.Request.Context(), user.ID, author.ID); err != nil {
		if err == db.ErrNotFound {
			r.renderNotFound(c)
		} else {
			r.renderServerError(c, err)
		}
		return
	}

	c.Redirect(http.StatusFound, profileURL(author.Username))
}
