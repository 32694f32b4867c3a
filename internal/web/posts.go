package web

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Pavel-Maksimov/Yatube/internal/cache"
	"github.com/Pavel-Maksimov/Yatube/internal/db"
	"github.com/Pavel-Maksimov/Yatube/internal/media"
	"github.com/Pavel-Maksimov/Yatube/internal/models"
)

// pageNumber reads the requested page from the query string; anything
// unparseable means the first page
func pageNumber(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// index renders the home listing. Whole rendered pages are cached
// under a short TTL and served stale until expiry or explicit
// invalidation.
func (r *Router) index(c *gin.Context) {
	page := pageNumber(c)

	// Full-page cache only applies to guests; a logged-in page embeds
	// the user's own navigation.
	cacheable := CurrentUser(c) == nil

	if cacheable {
		if html, err := r.cache.GetIndexPage(page); err == nil {
			c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
			return
		} else if err != cache.ErrCacheDisabled && !cache.IsMiss(err) {
			r.logger.Warn("index cache read failed", zap.Error(err))
		}
	}

	postPage, err := r.posts.ListPage(c.Request.Context(), page, r.cfg.App.PageSize)
	if err != nil {
		r.renderServerError(c, err)
		return
	}

	// An out-of-range request clamps to a valid page; that page may
	// already be cached under its real number.
	if cacheable && postPage.Number != page {
		if html, err := r.cache.GetIndexPage(postPage.Number); err == nil {
			c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
			return
		} else if err != cache.ErrCacheDisabled && !cache.IsMiss(err) {
			r.logger.Warn("index cache read failed", zap.Error(err))
		}
	}

	data := r.pageData(c, gin.H{"Page": postPage})
	if !cacheable {
		c.HTML(http.StatusOK, "index.html", data)
		return
	}

	html, err := r.renderToBytes("index.html", data)
	if err != nil {
		r.renderServerError(c, err)
		return
	}
	if err := r.cache.SetIndexPage(postPage.Number, string(html), r.cfg.App.IndexCacheTTL); err != nil && err != cache.ErrCacheDisabled {
		r.logger.Warn("index cache write failed", zap.Error(err))
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

// groupPosts renders a group's listing
func (r *Router) groupPosts(c *gin.Context) {
	group, err := r.groups.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if err == db.ErrNotFound {
			r.renderNotFound(c)
		} else {
			r.renderServerError(c, err)
		}
		return
	}

	postPage, err := r.posts.ListByGroupPage(c.Request.Context(), group.ID, pageNumber(c), r.cfg.App.PageSize)
	if err != nil {
		r.renderServerError(c, err)
		return
	}

	c.HTML(http.StatusOK, "group.html", r.pageData(c, gin.H{
		"Group": group,
		"Page":  postPage,
	}))
}

// newPostForm renders the empty creation form
func (r *Router) newPostForm(c *gin.Context) {
	r.renderPostForm(c, http.StatusOK, &PostForm{}, nil, nil)
}

// newPost handles post creation. On validation failure the form is
// re-rendered with field errors and nothing is persisted.
func (r *Router) newPost(c *gin.Context) {
	form, groupID, imagePath, errs := r.bindPostForm(c)
	if len(errs) > 0 {
		r.renderPostForm(c, http.StatusOK, form, errs, nil)
		return
	}

	post := &models.Post{
		Text:     form.Text,
		AuthorID: CurrentUser(c).ID,
		GroupID:  groupID,
		Image:    imagePath,
	}
	if err := r.posts.Create(c.Request.Context(), post); err != nil {
		r.renderServerError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// postView renders a post with its comments and the comment form
func (r *Router) postView(c *gin.Context) {
	post, err := r.resolvePost(c)
	if err != nil {
		if err == db.ErrNotFound {
			r.renderNotFound(c)
		} else {
			r.renderServerError(c, err)
		}
		return
	}

	comments, err := r.comments.ListByPost(c.Request.Context(), post.ID)
	if err != nil {
		r.renderServerError(c, err)
		return
	}
	postCount, err := r.posts.CountByAuthor(c.Request.Context(), post.AuthorID)
	if err != nil {
		r.renderServerError(c, err)
		return
	}

	c.HTML(http.StatusOK, "post.html", r.pageData(c, gin.H{
		"Post":      post,
		"Author":    post.Author,
		"PostCount": postCount,
		"Comments":  comments,
	}))
}

// postEditForm renders the edit form pre-filled with the post. Only
// reachable by the author; the guard resolved the post already.
func (r *Router) postEditForm(c *gin.Context) {
	post := GuardedPost(c)
	form := &PostForm{Text: post.Text}
	if post.GroupID.Valid {
		form.Group = strconv.FormatInt(post.GroupID.Int64, 10)
	}
	r.renderPostForm(c, http.StatusOK, form, nil, post)
}

// postEdit applies an author's changes. The publication date never
// changes; the group may be changed or cleared.
func (r *Router) postEdit(c *gin.Context) {
	post := GuardedPost(c)

	form, groupID, imagePath, errs := r.bindPostForm(c)
	if len(errs) > 0 {
		r.renderPostForm(c, http.StatusOK, form, errs, post)
		return
	}

	post.Text = form.Text
	post.GroupID = groupID
	if imagePath.Valid {
		post.Image = imagePath
	}
	if err := r.posts.UpdateContent(c.Request.Context(), post); err != nil {
		r.renderServerError(c, err)
		return
	}

	c.Redirect(http.StatusFound, postURL(post))
}

// bindPostForm validates the shared create/edit form: text required
// after trimming, group must exist when given, upload must be an
// image within the size limit.
func (r *Router) bindPostForm(c *gin.Context) (*PostForm, sql.NullInt64, sql.NullString, map[string]string) {
	var form PostForm
	errs := map[string]string{}
	_ = c.ShouldBind(&form)

	form.Text = strings.TrimSpace(form.Text)
	if form.Text == "" {
		errs["text"] = msgRequired
	}

	var groupID sql.NullInt64
	if form.Group != "" {
		id, err := strconv.ParseInt(form.Group, 10, 64)
		if err != nil {
			errs["group"] = msgUnknownGroup
		} else if _, err := r.groups.GetByID(c.Request.Context(), id); err != nil {
			errs["group"] = msgUnknownGroup
		} else {
			groupID = sql.NullInt64{Int64: id, Valid: true}
		}
	}

	// The image is only written once the other fields are valid, so a
	// rejected submission leaves nothing behind.
	var imagePath sql.NullString
	if fh, err := c.FormFile("image"); err == nil && fh != nil && len(errs) == 0 {
		path, err := r.media.SaveImage(fh)
		switch err {
		case nil:
			imagePath = sql.NullString{String: path, Valid: true}
		case media.ErrNotImage:
			errs["image"] = msgNotAnImage
		case media.ErrTooLarge:
			errs["image"] = msgImageTooLarge
		default:
			r.logger.Error("image upload failed", zap.Error(err))
			errs["image"] = msgNotAnImage
		}
	}

	return &form, groupID, imagePath, errs
}

// renderPostForm renders the shared create/edit template
func (r *Router) renderPostForm(c *gin.Context, status int, form *PostForm, errs map[string]string, post *models.Post) {
	groups, err := r.groups.List(c.Request.Context())
	if err != nil {
		r.renderServerError(c, err)
		return
	}
	c.HTML(status, "new_post.html", r.pageData(c, gin.H{
		"Form":   form,
		"Errors": errs,
		"Post":   post,
		"Groups": groups,
	}))
}
