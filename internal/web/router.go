package web

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Pavel-Maksimov/Yatube/internal/auth"
	"github.com/Pavel-Maksimov/Yatube/internal/cache"
	"github.com/Pavel-Maksimov/Yatube/internal/db"
	"github.com/Pavel-Maksimov/Yatube/internal/media"
	"github.com/Pavel-Maksimov/Yatube/pkg/config"
	"github.com/Pavel-Maksimov/Yatube/pkg/logging"
)

// PageCache is the full-page cache for the home listing. The redis
// cache satisfies it in production; tests use an in-memory map.
type PageCache interface {
	GetIndexPage(page int) (string, error)
	SetIndexPage(page int, html string, ttl time.Duration) error
	InvalidateIndex() error
	Health(ctx context.Context) error
}

// Router sets up the application routes
type Router struct {
	users    *db.UserRepository
	groups   *db.GroupRepository
	posts    *db.PostRepository
	comments *db.CommentRepository
	follows  *db.FollowRepository
	database *db.DB
	cache    PageCache
	sessions *auth.Sessions
	media    *media.Storage
	cfg      *config.Config
	tmpl     *template.Template
	logger   *zap.Logger
}

// NewRouter creates a new application router
func NewRouter(database *db.DB, pageCache PageCache, sessions *auth.Sessions, mediaStore *media.Storage, cfg *config.Config) (*Router, error) {
	tmpl, err := template.New("").
		Funcs(template.FuncMap{
			"add": func(a, b int) int { return a + b },
		}).
		ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	if pageCache == nil {
		// a nil *cache.Cache carries the disabled-cache behavior
		pageCache = (*cache.Cache)(nil)
	}

	repo := db.NewRepository(database.DB)
	return &Router{
		users:    db.NewUserRepository(repo),
		groups:   db.NewGroupRepository(repo),
		posts:    db.NewPostRepository(repo),
		comments: db.NewCommentRepository(repo),
		follows:  db.NewFollowRepository(repo),
		database: database,
		cache:    pageCache,
		sessions: sessions,
		media:    mediaStore,
		cfg:      cfg,
		tmpl:     tmpl,
		logger:   logging.GetLogger().With(zap.String("component", "web-router")),
	}, nil
}

// SetupRoutes sets up all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.SetHTMLTemplate(r.tmpl)

	engine.Use(r.requestSpan())
	engine.Use(r.currentUser())

	// Health check endpoints
	engine.GET("/health", r.healthHandler)

	// Uploaded post images
	engine.Static("/media", r.media.Root())

	// Static pages
	engine.GET("/about/author", r.aboutAuthor)
	engine.GET("/about/tech", r.aboutTech)

	// Content
	engine.GET("/", r.index)
	engine.GET("/group/:slug", r.groupPosts)
	engine.GET("/new", r.loginRequired(), r.newPostForm)
	engine.POST("/new", r.loginRequired(), r.newPost)
	engine.GET("/follow", r.loginRequired(), r.followIndex)

	// Registration and sessions
	authGroup := engine.Group("/auth")
	authGroup.GET("/signup", r.signupForm)
	authGroup.POST("/signup", r.signup)
	authGroup.GET("/login", r.loginForm)
	authGroup.POST("/login", r.login)
	authGroup.GET("/logout", r.logout)

	// Per-author routes; static siblings above take precedence
	engine.GET("/:username", r.profile)
	engine.GET("/:username/follow", r.loginRequired(), r.profileFollow)
	engine.GET("/:username/unfollow", r.loginRequired(), r.profileUnfollow)
	engine.GET("/:username/:post_id", r.postView)
	engine.GET("/:username/:post_id/edit", r.postAuthorRequired(), r.postEditForm)
	engine.POST("/:username/:post_id/edit", r.postAuthorRequired(), r.postEdit)
	engine.POST("/:username/:post_id/comment", r.addComment)

	engine.NoRoute(r.notFoundHandler)
}

// healthHandler reports database and cache health
func (r *Router) healthHandler(c *gin.Context) {
	status := http.StatusOK
	dbStatus := "OK"
	if err := r.database.Health(c.Request.Context()); err != nil {
		dbStatus = err.Error()
		status = http.StatusServiceUnavailable
	}
	cacheStatus := "OK"
	if err := r.cache.Health(c.Request.Context()); err != nil {
		if err == cache.ErrCacheDisabled {
			cacheStatus = "disabled"
		} else {
			cacheStatus = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	c.JSON(status, gin.H{
		"status":   "OK",
		"service":  "yatube",
		"database": dbStatus,
		"cache":    cacheStatus,
	})
}

func (r *Router) notFoundHandler(c *gin.Context) {
	r.renderNotFound(c)
}
