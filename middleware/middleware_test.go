package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yatube/yatube/cache"
	"github.com/yatube/yatube/config"
	"github.com/yatube/yatube/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	c := config.Default()
	c.JWTSecret = "middleware-test"
	c.AdminUsernames = []string{"Root"}
	config.Set(c)
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginRedirectURL(t *testing.T) {
	tests := []struct {
		login, next, want string
	}{
		{"/auth/login/", "/follow/", "/auth/login/?next=/follow/"},
		{"/auth/login/", "/follow/?page=2", "/auth/login/?next=/follow/%3Fpage%3D2"},
		{"/login?x=1", "/create/", "/login?x=1&next=/create/"},
	}
	for _, tt := range tests {
		if got := LoginRedirectURL(tt.login, tt.next); got != tt.want {
			t.Errorf("LoginRedirectURL(%q, %q) = %q, want %q", tt.login, tt.next, got, tt.want)
		}
	}
}

func newAuthRouter() *gin.Engine {
	r := gin.New()
	r.Use(Authenticate())
	r.GET("/follow/", LoginRequired("/auth/login/"), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUsername(c))
	})
	r.GET("/api/me", AuthRequired(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/admin", AdminRequired(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func token(t *testing.T, id uint, name string) string {
	t.Helper()
	tok, err := utils.GenerateToken(id, name, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestLoginRequiredRedirectsAnonymous(t *testing.T) {
	w := serve(newAuthRouter(), httptest.NewRequest(http.MethodGet, "/follow/", nil))
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/auth/login/?next=/follow/" {
		t.Errorf("Location = %q", loc)
	}
}

func TestAuthenticateFromCookieAndHeader(t *testing.T) {
	r := newAuthRouter()
	tok := token(t, 3, "leo")

	byCookie := httptest.NewRequest(http.MethodGet, "/follow/", nil)
	byCookie.AddCookie(&http.Cookie{Name: TokenCookieName, Value: tok})
	byHeader := httptest.NewRequest(http.MethodGet, "/follow/", nil)
	byHeader.Header.Set("Authorization", "Bearer "+tok)

	for name, req := range map[string]*http.Request{"cookie": byCookie, "header": byHeader} {
		w := serve(r, req)
		if w.Code != http.StatusOK || w.Body.String() != "leo" {
			t.Errorf("%s: status %d body %q", name, w.Code, w.Body.String())
		}
	}
}

func TestRevokedTokenIsAnonymous(t *testing.T) {
	tok := token(t, 4, "gone")
	utils.BlacklistToken(tok, time.Now().Add(time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	if w := serve(newAuthRouter(), req); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAdminRequired(t *testing.T) {
	tests := []struct {
		user string
		want int
	}{
		{"root", http.StatusNoContent},
		{"leo", http.StatusForbidden},
		{"", http.StatusForbidden},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if tt.user != "" {
			req.Header.Set("Authorization", "Bearer "+token(t, 1, tt.user))
		}
		if w := serve(newAuthRouter(), req); w.Code != tt.want {
			t.Errorf("user %q: status = %d, want %d", tt.user, w.Code, tt.want)
		}
	}
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimit(4), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := map[int]int{}
	for i := 0; i < 5; i++ {
		codes[serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code]++
	}
	if codes[http.StatusOK] != 2 || codes[http.StatusTooManyRequests] != 3 {
		t.Errorf("codes = %v, want burst of 2 then 429s", codes)
	}
}

func TestLimiterSetSweepsIdleBucketsPeriodically(t *testing.T) {
	set := &limiterSet{limiters: map[string]*rateLimiter{}, limit: rate.Inf, burst: 1}
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	steps := []struct {
		key   string
		at    time.Duration
		want  int
		stale string
	}{
		{"a", 0, 1, ""},
		{"b", 4 * time.Minute, 2, ""},
		{"c", 6 * time.Minute, 2, "a"},
		{"d", 10 * time.Minute, 3, ""},
		{"e", 11*time.Minute + time.Second, 2, "b"},
	}
	for _, st := range steps {
		if !set.allow(st.key, t0.Add(st.at)) {
			t.Fatalf("%s denied", st.key)
		}
		if len(set.limiters) != st.want {
			t.Errorf("after %s: %d buckets, want %d", st.key, len(set.limiters), st.want)
		}
		if _, ok := set.limiters[st.stale]; st.stale != "" && ok {
			t.Errorf("after %s: idle bucket %s kept", st.key, st.stale)
		}
	}
}

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time { return c.now }

func TestCachePage(t *testing.T) {
	clock := &stepClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	vc := cache.New(cache.NewMemoryBackend(), 20*time.Second, cache.WithClock(clock))

	var calls atomic.Int32
	r := gin.New()
	r.GET("/", CachePage(vc), func(c *gin.Context) {
		n := calls.Add(1)
		c.JSON(http.StatusOK, gin.H{"render": n, "page": c.Query("page")})
	})
	r.GET("/missing", CachePage(vc), func(c *gin.Context) {
		calls.Add(1)
		c.Status(http.StatusNotFound)
	})

	get := func(path string) string {
		return serve(r, httptest.NewRequest(http.MethodGet, path, nil)).Body.String()
	}

	first := get("/")
	if again := get("/"); again != first {
		t.Errorf("cached body differs: %q vs %q", again, first)
	}
	if calls.Load() != 1 {
		t.Errorf("handler calls = %d, want 1", calls.Load())
	}
	if get("/?page=2") == first {
		t.Error("page 2 served page 1 body")
	}

	clock.now = clock.now.Add(21 * time.Second)
	if get("/") == first {
		t.Error("expired entry served")
	}

	get("/missing")
	get("/missing")
	if calls.Load() != 5 {
		t.Errorf("handler calls = %d, want 5 (404s are not cached)", calls.Load())
	}
}
