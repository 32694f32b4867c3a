package web

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Pavel-Maksimov/Yatube/internal/auth"
	"github.com/Pavel-Maksimov/Yatube/internal/db"
	"github.com/Pavel-Maksimov/Yatube/internal/models"
)

// signupForm renders the empty registration form
func (r *Router) signupForm(c *gin.Context) {
	c.HTML(http.StatusOK, "signup.html", r.pageData(c, gin.H{
		"Form":   &SignupForm{},
		"Errors": map[string]string{},
	}))
}

// signup registers a new user. On top of the stock field checks the
// username must be unique ignoring case, so "Alice" collides with
// "alice".
func (r *Router) signup(c *gin.Context) {
	var form SignupForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusOK, "signup.html", r.pageData(c, gin.H{
			"Form":   &form,
			"Errors": fieldErrors(err),
		}))
		return
	}

	form.Username = strings.TrimSpace(form.Username)
	taken, err := r.users.UsernameTaken(c.Request.Context(), form.Username)
	if err != nil {
		r.renderServerError(c, err)
		return
	}
	if taken {
		c.HTML(http.StatusOK, "signup.html", r.pageData(c, gin.H{
			"Form":   &form,
			"Errors": map[string]string{"username": msgUsernameTaken},
		}))
		return
	}

	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		r.renderServerError(c, err)
		return
	}

	user := &models.User{
		Username:     form.Username,
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		Email:        form.Email,
		PasswordHash: hash,
	}
	if err := r.users.Create(c.Request.Context(), user); err != nil {
		r.renderServerError(c, err)
		return
	}

	r.startSession(c, user.Username)
	c.Redirect(http.StatusFound, "/")
}

// loginForm renders the login form
func (r *Router) loginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", r.pageData(c, gin.H{
		"Form":   &LoginForm{},
		"Errors": map[string]string{},
		"Next":   c.Query("next"),
	}))
}

// login opens a session and sends the user back where they came from
func (r *Router) login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusOK, "login.html", r.pageData(c, gin.H{
			"Form":   &form,
			"Errors": fieldErrors(err),
			"Next":   c.PostForm("next"),
		}))
		return
	}

	user, err := r.users.GetByUsername(c.Request.Context(), form.Username)
	if err != nil && err != db.ErrNotFound {
		r.renderServerError(c, err)
		return
	}
	if err == db.ErrNotFound || !auth.CheckPassword(user.PasswordHash, form.Password) {
		c.HTML(http.StatusOK, "login.html", r.pageData(c, gin.H{
			"Form":   &form,
			"Errors": map[string]string{"__all__": msgBadCredentials},
			"Next":   c.PostForm("next"),
		}))
		return
	}

	r.startSession(c, user.Username)

	next := c.PostForm("next")
	if next == "" || !strings.HasPrefix(next, "/") {
		next = "/"
	}
	c.Redirect(http.StatusFound, next)
}

// logout ends the session and shows the logged-out page
func (r *Router) logout(c *gin.Context) {
	if token, err := c.Cookie(auth.CookieName); err == nil {
		_ = r.sessions.Destroy(token)
	}
	c.SetCookie(auth.CookieName, "", -1, "/", "", false, true)
	c.HTML(http.StatusOK, "logged_out.html", gin.H{"User": nil})
}

func (r *Router) startSession(c *gin.Context, username string) {
	token, err := r.sessions.Create(username)
	if err != nil {
		r.logger.Error("failed to open session", zap.Error(err))
		return
	}
	maxAge := int(r.cfg.App.SessionTTL.Seconds())
	c.SetCookie(auth.CookieName, token, maxAge, "/", "", false, true)
}
