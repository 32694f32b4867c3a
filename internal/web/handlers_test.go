package web

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Pavel-Maksimov/Yatube/internal/auth"
	"github.com/Pavel-Maksimov/Yatube/internal/db"
	"github.com/Pavel-Maksimov/Yatube/internal/media"
	"github.com/Pavel-Maksimov/Yatube/internal/models"
	"github.com/Pavel-Maksimov/Yatube/pkg/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testApp struct {
	engine   *gin.Engine
	router   *Router
	users    *db.UserRepository
	posts    *db.PostRepository
	comments *db.CommentRepository
	follows  *db.FollowRepository
	groups   *db.GroupRepository
	sessions *auth.Sessions
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWithCache(t, nil)
}

func newTestAppWithCache(t *testing.T, pageCache PageCache) *testApp {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	database := &db.DB{DB: gdb}
	if err := database.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	cfg := &config.Config{
		Media: config.MediaConfig{Root: t.TempDir(), MaxUploadSize: 1 << 20},
		App: config.AppConfig{
			PageSize:      10,
			IndexCacheTTL: 20 * time.Second,
			SessionTTL:    time.Hour,
		},
	}

	mediaStore, err := media.NewStorage(&cfg.Media)
	if err != nil {
		t.Fatalf("failed to create media storage: %v", err)
	}

	sessions := auth.NewSessions(auth.NewMemoryStore(), cfg.App.SessionTTL)

	router, err := NewRouter(database, pageCache, sessions, mediaStore, cfg)
	if err != nil {
		t.Fatalf("failed to build router: %v", err)
	}

	engine := gin.New()
	router.SetupRoutes(engine)

	repo := db.NewRepository(gdb)
	return &testApp{
		engine:   engine,
		router:   router,
		users:    db.NewUserRepository(repo),
		posts:    db.NewPostRepository(repo),
		comments: db.NewCommentRepository(repo),
		follows:  db.NewFollowRepository(repo),
		groups:   db.NewGroupRepository(repo),
		sessions: sessions,
	}
}

func (a *testApp) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, PasswordHash: "x"}
	if err := a.users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func (a *testApp) createPost(t *testing.T, authorID int64, text string) *models.Post {
	t.Helper()
	post := &models.Post{Text: text, AuthorID: authorID}
	if err := a.posts.Create(context.Background(), post); err != nil {
		t.Fatalf("failed to create post: %v", err)
	}
	return post
}

func (a *testApp) sessionCookie(t *testing.T, username string) *http.Cookie {
	t.Helper()
	token, err := a.sessions.Create(username)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return &http.Cookie{Name: auth.CookieName, Value: token}
}

func (a *testApp) do(method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

// memPageCache satisfies PageCache without a redis server; misses are
// reported the way the redis client reports them
type memPageCache struct {
	mu    sync.Mutex
	pages map[int]string
}

func newMemPageCache() *memPageCache {
	return &memPageCache{pages: make(map[int]string)}
}

func (m *memPageCache) GetIndexPage(page int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	html, ok := m.pages[page]
	if !ok {
		return "", redis.Nil
	}
	return html, nil
}

func (m *memPageCache) SetIndexPage(page int, html string, ttl time.Duration) error {
	m.mu.Lock()
	m.pages[page] = html
	m.mu.Unlock()
	return nil
}

func (m *memPageCache) InvalidateIndex() error {
	m.mu.Lock()
	m.pages = make(map[int]string)
	m.mu.Unlock()
	return nil
}

func (m *memPageCache) Health(ctx context.Context) error { return nil }

func TestIndex_ListsPosts(t *testing.T) {
	app := newTestApp(t)
	author := app.createUser(t, "writer")
	app.createPost(t, author.ID, "a very public post")

	w := app.do(http.MethodGet, "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET / status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "a very public post") {
		t.Error("home page does not show the post")
	}
}

func TestIndex_ServedStaleUntilInvalidated(t *testing.T) {
	pc := newMemPageCache()
	app := newTestAppWithCache(t, pc)
	author := app.createUser(t, "writer")
	app.createPost(t, author.ID, "the first post")

	w1 := app.do(http.MethodGet, "/", nil)
	if w1.Code != http.StatusOK {
		t.Fatalf("first GET / status = %d, want 200", w1.Code)
	}
	if !strings.Contains(w1.Body.String(), "the first post") {
		t.Fatal("first render does not show the post")
	}

	// A new post appears, but the cached rendering is served unchanged
	app.createPost(t, author.ID, "the second post")

	w2 := app.do(http.MethodGet, "/", nil)
	if w2.Code != http.StatusOK {
		t.Fatalf("second GET / status = %d, want 200", w2.Code)
	}
	if w2.Body.String() != w1.Body.String() {
		t.Error("cached home page changed between requests")
	}
	if strings.Contains(w2.Body.String(), "the second post") {
		t.Error("cached home page shows a post created after caching")
	}

	if err := pc.InvalidateIndex(); err != nil {
		t.Fatalf("InvalidateIndex error: %v", err)
	}

	w3 := app.do(http.MethodGet, "/", nil)
	if !strings.Contains(w3.Body.String(), "the second post") {
		t.Error("home page is missing the new post after invalidation")
	}
}

func TestIndex_LoggedInBypassesCache(t *testing.T) {
	pc := newMemPageCache()
	app := newTestAppWithCache(t, pc)
	author := app.createUser(t, "writer")
	app.createPost(t, author.ID, "the first post")
	cookie := app.sessionCookie(t, "writer")

	if w := app.do(http.MethodGet, "/", nil, cookie); w.Code != http.StatusOK {
		t.Fatalf("GET / status = %d, want 200", w.Code)
	}
	if len(pc.pages) != 0 {
		t.Error("a logged-in request populated the guest page cache")
	}

	app.createPost(t, author.ID, "the second post")
	w := app.do(http.MethodGet, "/", nil, cookie)
	if !strings.Contains(w.Body.String(), "the second post") {
		t.Error("logged-in home page does not show the new post")
	}
}

func TestIndex_OutOfRangePageSharesClampedCacheEntry(t *testing.T) {
	pc := newMemPageCache()
	app := newTestAppWithCache(t, pc)
	author := app.createUser(t, "writer")
	app.createPost(t, author.ID, "the only post")

	w1 := app.do(http.MethodGet, "/?page=99", nil)
	if w1.Code != http.StatusOK {
		t.Fatalf("GET /?page=99 status = %d, want 200", w1.Code)
	}
	if _, ok := pc.pages[1]; !ok {
		t.Fatal("out-of-range request was not cached under its clamped page number")
	}

	app.createPost(t, author.ID, "a newer post")

	w2 := app.do(http.MethodGet, "/?page=99", nil)
	if w2.Body.String() != w1.Body.String() {
		t.Error("out-of-range page request bypassed the cached rendering")
	}
}

func TestAboutPages(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		path string
		want string
	}{
		{"/about/author", "About the author"},
		{"/about/tech", "Technologies"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := app.do(http.MethodGet, tt.path, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("GET %s status = %d, want 200", tt.path, w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.want) {
				t.Errorf("GET %s body is missing %q", tt.path, tt.want)
			}
		})
	}
}

func TestGroupPage_UnknownSlugNotFound(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/group/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("GET /group/missing status = %d, want 404", w.Code)
	}
}

func TestUndefinedPath_NotFound(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/no/such/page/here", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Page not found") {
		t.Error("not-found body does not use the 404 template")
	}
}

func TestNewPost_GuestRedirectsToLogin(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/new", nil)
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	loc := w.Header().Get("Location")
	if !strings.HasPrefix(loc, "/auth/login?next=") {
		t.Errorf("redirect = %q, want login with next", loc)
	}
}

func TestNewPost_CreatesAndRedirectsHome(t *testing.T) {
	app := newTestApp(t)
	user := app.createUser(t, "writer")
	cookie := app.sessionCookie(t, "writer")

	form := url.Values{"text": {"fresh content"}}
	w := app.do(http.MethodPost, "/new", form, cookie)
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("redirect = %q, want /", loc)
	}

	count, err := app.posts.CountByAuthor(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("CountByAuthor error: %v", err)
	}
	if count != 1 {
		t.Errorf("post count = %d, want 1", count)
	}
}

func TestNewPost_EmptyTextRerendersForm(t *testing.T) {
	app := newTestApp(t)
	user := app.createUser(t, "writer")
	cookie := app.sessionCookie(t, "writer")

	form := url.Values{"text": {"   "}}
	w := app.do(http.MethodPost, "/new", form, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 re-render", w.Code)
	}
	if !strings.Contains(w.Body.String(), "This field is required.") {
		t.Error("form error message missing")
	}

	count, err := app.posts.CountByAuthor(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("CountByAuthor error: %v", err)
	}
	if count != 0 {
		t.Errorf("post count = %d, want 0", count)
	}
}

func TestNewPost_UnknownGroupRejected(t *testing.T) {
	app := newTestApp(t)
	user := app.createUser(t, "writer")
	cookie := app.sessionCookie(t, "writer")

	form := url.Values{"text": {"grouped"}, "group": {"9999"}}
	w := app.do(http.MethodPost, "/new", form, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 re-render", w.Code)
	}

	count, err := app.posts.CountByAuthor(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("CountByAuthor error: %v", err)
	}
	if count != 0 {
		t.Errorf("post count = %d, want 0", count)
	}
}

func TestEdit_NonAuthorBouncesToPostView(t *testing.T) {
	app := newTestApp(t)
	author := app.createUser(t, "author")
	app.createUser(t, "intruder")
	post := app.createPost(t, author.ID, "untouchable")
	cookie := app.sessionCookie(t, "intruder")

	target := fmt.Sprintf("/author/%d/edit", post.ID)
	form := url.Values{"text": {"defaced"}}
	w := app.do(http.MethodPost, target, form, cookie)
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	wantLoc := fmt.Sprintf("/author/%d", post.ID)
	if loc := w.Header().Get("Location"); loc != wantLoc {
		t.Errorf("redirect = %q, want %q", loc, wantLoc)
	}

	got, err := app.posts.GetByID(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.Text != "untouchable" {
		t.Errorf("text = %q, want untouchable", got.Text)
	}
}

func TestEdit_GuestBouncesToLogin(t *testing.T) {
	app := newTestApp(t)
	author := app.createUser(t, "author")
	post := app.createPost(t, author.ID, "private draft")

	w := app.do(http.MethodGet, fmt.Sprintf("/author/%d/edit", post.ID), nil)
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); !strings.HasPrefix(loc, "/auth/login?next=") {
		t.Errorf("redirect = %q, want login with next", loc)
	}
}

func TestEdit_AuthorChangesText(t *testing.T) {
	app := newTestApp(t)
	author := app.createUser(t, "author")
	post := app.createPost(t, author.ID, "first draft")
	cookie := app.sessionCookie(t, "author")

	form := url.Values{"text": {"second draft"}}
	w := app.do(http.MethodPost, fmt.Sprintf("/author/%d/edit", post.ID), form, cookie)
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}

	got, err := app.posts.GetByID(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.Text != "second draft" {
		t.Errorf("text = %q, want second draft", got.Text)
	}
	if !got.PubDate.Equal(post.PubDate) {
		t.Error("pub_date changed on edit")
	}
}

func TestComment_GuestNotPersisted(t *testing.T) {
	app := newTestApp(t)
	author := app.createUser(t, "author")
	post := app.createPost(t, author.ID, "open for comments")

	form := url.Values{"text": {"drive-by comment"}}
	w := app.do(http.MethodPost, fmt.Sprintf("/author/%d/comment", post.ID), form)
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	wantLoc := fmt.Sprintf("/author/%d", post.ID)
	if loc := w.Header().Get("Location"); loc != wantLoc {
		t.Errorf("redirect = %q, want %q", loc, wantLoc)
	}

	comments, err := app.comments.ListByPost(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("ListByPost error: %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("comment count = %d, want 0", len(comments))
	}
}

func TestComment_AuthenticatedPersisted(t *testing.T) {
	app := newTestApp(t)
	author := app.createUser(t, "author")
	commenter := app.createUser(t, "commenter")
	post := app.createPost(t, author.ID, "open for comments")
	cookie := app.sessionCookie(t, "commenter")

	form := url.Values{"text": {"nice post"}}
	w := app.do(http.MethodPost, fmt.Sprintf("/author/%d/comment", post.ID), form, cookie)
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}

	comments, err := app.comments.ListByPost(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("ListByPost error: %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("comment count = %d, want 1", len(comments))
	}
	if comments[0].AuthorID != commenter.ID {
		t.Errorf("comment author = %d, want %d", comments[0].AuthorID, commenter.ID)
	}
	if comments[0].Text != "nice post" {
		t.Errorf("comment text = %q", comments[0].Text)
	}
}

func TestFollow_SelfLeavesNoEdge(t *testing.T) {
	app := newTestApp(t)
	user := app.createUser(t, "narcissist")
	cookie := app.sessionCookie(t, "narcissist")

	w := app.do(http.MethodGet, "/narcissist/follow", nil, cookie)
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}

	count, err := app.follows.CountFollowing(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("CountFollowing error: %v", err)
	}
	if count != 0 {
		t.Errorf("self-follow created %d edges, want 0", count)
	}
}

func TestFollow_TwiceLeavesOneEdge(t *testing.T) {
	app := newTestApp(t)
	reader := app.createUser(t, "reader")
	app.createUser(t, "writer")
	cookie := app.sessionCookie(t, "reader")

	for i := 0; i < 2; i++ {
		w := app.do(http.MethodGet, "/writer/follow", nil, cookie)
		if w.Code != http.StatusFound {
			t.Fatalf("follow attempt %d status = %d, want 302", i, w.Code)
		}
		if loc := w.Header().Get("Location"); loc != "/writer" {
			t.Errorf("redirect = %q, want /writer", loc)
		}
	}

	count, err := app.follows.CountFollowing(context.Background(), reader.ID)
	if err != nil {
		t.Fatalf("CountFollowing error: %v", err)
	}
	if count != 1 {
		t.Errorf("edge count = %d, want 1", count)
	}
}

func TestUnfollow_MissingEdgeNotFound(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "reader")
	app.createUser(t, "writer")
	cookie := app.sessionCookie(t, "reader")

	w := app.do(http.MethodGet, "/writer/unfollow", nil, cookie)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestFeed_ShowsFollowedAuthors(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "reader")
	followed := app.createUser(t, "followed")
	other := app.createUser(t, "other")
	app.createPost(t, followed.ID, "followed content")
	app.createPost(t, other.ID, "unrelated content")
	cookie := app.sessionCookie(t, "reader")

	if w := app.do(http.MethodGet, "/followed/follow", nil, cookie); w.Code != http.StatusFound {
		t.Fatalf("follow status = %d, want 302", w.Code)
	}

	w := app.do(http.MethodGet, "/follow", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("feed status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "followed content") {
		t.Error("feed is missing the followed author's post")
	}
	if strings.Contains(body, "unrelated content") {
		t.Error("feed contains an unfollowed author's post")
	}
}

func TestSignup_CaseInsensitiveCollision(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "Alice")

	form := url.Values{
		"username":  {"alice"},
		"password1": {"sup3rsecret"},
		"password2": {"sup3rsecret"},
	}
	w := app.do(http.MethodPost, "/auth/signup", form)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 re-render", w.Code)
	}
	if !strings.Contains(w.Body.String(), "already exists") {
		t.Error("username-taken message missing")
	}
}

func TestSignup_CreatesUserAndLogsIn(t *testing.T) {
	app := newTestApp(t)

	form := url.Values{
		"username":  {"newcomer"},
		"password1": {"sup3rsecret"},
		"password2": {"sup3rsecret"},
	}
	w := app.do(http.MethodPost, "/auth/signup", form)
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}

	if _, err := app.users.GetByUsername(context.Background(), "newcomer"); err != nil {
		t.Errorf("user not created: %v", err)
	}

	found := false
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == auth.CookieName && cookie.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("signup did not open a session")
	}
}

func TestLogin_WrongPasswordRerenders(t *testing.T) {
	app := newTestApp(t)
	hash, err := auth.HashPassword("rightpassword")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	user := &models.User{Username: "alice", PasswordHash: hash}
	if err := app.users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	form := url.Values{"username": {"alice"}, "password": {"wrongpassword"}}
	w := app.do(http.MethodPost, "/auth/login", form)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 re-render", w.Code)
	}
	if !strings.Contains(w.Body.String(), "correct username and password") {
		t.Error("bad-credentials message missing")
	}
}

func TestLogin_SuccessRedirectsToNext(t *testing.T) {
	app := newTestApp(t)
	hash, err := auth.HashPassword("rightpassword")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	user := &models.User{Username: "alice", PasswordHash: hash}
	if err := app.users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	form := url.Values{
		"username": {"alice"},
		"password": {"rightpassword"},
		"next":     {"/follow"},
	}
	w := app.do(http.MethodPost, "/auth/login", form)
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/follow" {
		t.Errorf("redirect = %q, want /follow", loc)
	}
}

func TestProfile_ShowsFollowState(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "reader")
	writer := app.createUser(t, "writer")
	app.createPost(t, writer.ID, "profile content")
	cookie := app.sessionCookie(t, "reader")

	w := app.do(http.MethodGet, "/writer", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "/writer/follow") {
		t.Error("profile is missing the follow link")
	}

	if w := app.do(http.MethodGet, "/writer/follow", nil, cookie); w.Code != http.StatusFound {
		t.Fatalf("follow status = %d, want 302", w.Code)
	}

	w = app.do(http.MethodGet, "/writer", nil, cookie)
	if !strings.Contains(w.Body.String(), "/writer/unfollow") {
		t.Error("profile is missing the unfollow link after following")
	}
}

func TestProfile_UnknownUserNotFound(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/nobody", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
