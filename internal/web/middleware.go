package web

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Pavel-Maksimov/Yatube/internal/auth"
	"github.com/Pavel-Maksimov/Yatube/internal/db"
	"github.com/Pavel-Maksimov/Yatube/internal/models"
	"github.com/Pavel-Maksimov/Yatube/pkg/telemetry"
)

const (
	userKey = "currentUser"
	postKey = "guardedPost"
)

// requestSpan opens a telemetry span per request and logs completion
func (r *Router) requestSpan() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := telemetry.StartSpan(c.Request.Context(), "http "+c.Request.Method+" "+c.FullPath())
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		r.logger.Debug("request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()))
	}
}

// currentUser resolves the session cookie to a user and stores it in
// the request context. Guests pass through with no user set.
func (r *Router) currentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(auth.CookieName)
		if err != nil {
			c.Next()
			return
		}
		username, err := r.sessions.Resolve(token)
		if err != nil {
			c.Next()
			return
		}
		user, err := r.users.GetByUsername(c.Request.Context(), username)
		if err != nil {
			c.Next()
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

// loginRequired redirects guests to the login page with a return path
func (r *Router) loginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			redirectToLogin(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// postAuthorRequired gates post mutation to the post's author. It
// resolves the post referenced by the URL exactly once and passes it
// to the handler through the context; guests bounce to login,
// authenticated non-authors to the post's read view.
func (r *Router) postAuthorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		post, err := r.resolvePost(c)
		if err != nil {
			if err == db.ErrNotFound {
				r.renderNotFound(c)
			} else {
				r.renderServerError(c, err)
			}
			c.Abort()
			return
		}

		user := CurrentUser(c)
		if user == nil {
			redirectToLogin(c)
			c.Abort()
			return
		}
		if user.ID != post.AuthorID {
			c.Redirect(http.StatusFound, postURL(post))
			c.Abort()
			return
		}

		c.Set(postKey, post)
		c.Next()
	}
}

// resolvePost loads the post named by the :username/:post_id URL pair
func (r *Router) resolvePost(c *gin.Context) (*models.Post, error) {
	postID, err := strconv.ParseInt(c.Param("post_id"), 10, 64)
	if err != nil {
		return nil, db.ErrNotFound
	}
	author, err := r.users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		return nil, err
	}
	return r.posts.GetByAuthorAndID(c.Request.Context(), author.ID, postID)
}

// CurrentUser returns the authenticated user for the request, or nil
// for guests
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// GuardedPost returns the post resolved by the author guard
func GuardedPost(c *gin.Context) *models.Post {
	if v, ok := c.Get(postKey); ok {
		if post, ok := v.(*models.Post); ok {
			return post
		}
	}
	return nil
}

func redirectToLogin(c *gin.Context) {
	next := url.QueryEscape(c.Request.URL.RequestURI())
	c.Redirect(http.StatusFound, "/auth/login?next="+next)
}

func postURL(post *models.Post) string {
	username := ""
	if post.Author != nil {
		username = post.Author.Username
	}
	return "/" + username + "/" + strconv.FormatInt(post.ID, 10)
}

func profileURL(username string) string {
	return "/" + username
}
