package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Pavel-Maksimov/Yatube/internal/db"
)

// profile renders an author's page: their info, their posts and
// whether the viewer follows them
func (r *Router) profile(c *gin.Context) {
	author, err := r.users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		if err == db.ErrNotFound {
			r.renderNotFound(c)
		} else {
			r.renderServerError(c, err)
		}
		return
	}

	postPage, err := r.posts.ListByAuthorPage(c.Request.Context(), author.ID, pageNumber(c), r.cfg.App.PageSize)
	if err != nil {
		r.renderServerError(c, err)
		return
	}

	following := false
	if user := CurrentUser(c); user != nil {
		following, err = r.follows.Exists(c.Request.Context(), user.ID, author.ID)
		if err != nil {
			r.renderServerError(c, err)
			return
		}
	}

	followers, err := r.follows.CountFollowers(c.Request.Context(), author.ID)
	if err != nil {
		r.renderServerError(c, err)
		return
	}
	followingCount, err := r.follows.CountFollowing(c.Request.Context(), author.ID)
	if err != nil {
		r.renderServerError(c, err)
		return
	}

	c.HTML(http.StatusOK, "profile.html", r.pageData(c, gin.H{
		"Author":         author,
		"Page":           postPage,
		"Following":      following,
		"Followers":      followers,
		"FollowingCount": followingCount,
	}))
}
