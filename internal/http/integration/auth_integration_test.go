package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/munmentor/munmentor/internal/config"
	"github.com/munmentor/munmentor/internal/db"
	apphttp "github.com/munmentor/munmentor/internal/http"
	"github.com/munmentor/munmentor/internal/observability"
	"github.com/munmentor/munmentor/internal/redisclient"
)

// Full-stack auth flow against real Postgres and redis. Set TEST_DB_DSN
// and TEST_REDIS_ADDR to enable.

func setupStack(t *testing.T, webhookURL string) (*gin.Engine, *pgxpool.Pool) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := os.Getenv("TEST_DB_DSN")
	redisAddr := os.Getenv("TEST_REDIS_ADDR")

	if dsn == "" || redisAddr == "" {
		t.Skip("TEST_DB_DSN or TEST_REDIS_ADDR not set")
	}

	pool, err := db.NewPool(dsn)
	if err != nil {
		t.Fatalf("create pgx pool: %v", err)
	}
	t.Cleanup(pool.Close)

	ctx := context.Background()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	if _, err := pool.Exec(ctx, `TRUNCATE users RESTART IDENTITY`); err != nil {
		t.Fatalf("truncate users: %v", err)
	}

	rdb := redisclient.New(redisclient.Config{Addr: redisAddr})
	t.Cleanup(func() { rdb.Close() })

	if err := rdb.Ping(ctx); err != nil {
		t.Fatalf("redis ping: %v", err)
	}

	cfg := config.Config{
		Env:              "test",
		SessionSecret:    "integration-secret",
		SessionTTL:       time.Hour,
		GeminiAPIKey:     "unused",
		GeminiModel:      "gemini-1.5-flash",
		SpeechAPIKey:     "unused",
		SheetsWebhookURL: webhookURL,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	prom := observability.NewProm(prometheus.NewRegistry())

	return apphttp.NewRouter(logger, pool, rdb, prom, cfg), pool
}

func do(router http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))

	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range w.Result().Cookies() {
		if c.Name == "mun_session" {
			return c
		}
	}

	t.Fatal("mun_session cookie not found in response")
	return nil
}

func readJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any

	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal %q: %v", w.Body.String(), err)
	}

	return out
}

func TestAuthFlow(t *testing.T) {
	var relayed map[string]any

	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&relayed)
	}))
	defer webhook.Close()

	router, _ := setupStack(t, webhook.URL)

	// anonymous state
	if w := do(router, http.MethodGet, "/check_auth", ""); readJSON(t, w)["logged_in"] != false {
		t.Fatal("fresh stack reports a session")
	}

	if w := do(router, http.MethodPost, "/register", `{"committee":"UNODC"}`); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous register status = %d, want 401", w.Code)
	}

	if relayed != nil {
		t.Fatal("webhook was called before login")
	}

	// signup
	w := do(router, http.MethodPost, "/signup", `{"email":"a@b.com","password":"longenough"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body %s", w.Code, w.Body.String())
	}

	if w := do(router, http.MethodPost, "/signup", `{"email":"a@b.com","password":"longenough"}`); w.Code != http.StatusConflict {
		t.Fatalf("duplicate signup status = %d, want 409", w.Code)
	}

	// email matching is literal, case differences are distinct accounts
	if w := do(router, http.MethodPost, "/signup", `{"email":"A@b.com","password":"longenough"}`); w.Code != http.StatusCreated {
		t.Fatalf("case-variant signup status = %d, want 201", w.Code)
	}

	// login
	w = do(router, http.MethodPost, "/login", `{"email":"a@b.com","password":"wrongwrong"}`)
	if w.Code != http.StatusUnauthorized || readJSON(t, w)["message"] != "Invalid credentials" {
		t.Fatalf("wrong password login = %d %s", w.Code, w.Body.String())
	}

	w = do(router, http.MethodPost, "/login", `{"email":"a@b.com","password":"longenough"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", w.Code, w.Body.String())
	}
	cookie := sessionCookie(t, w)

	// authenticated state
	resp := readJSON(t, do(router, http.MethodGet, "/check_auth", "", cookie))
	if resp["logged_in"] != true || resp["email"] != "a@b.com" {
		t.Fatalf("check_auth after login = %v", resp)
	}

	// registration relay carries the account email
	w = do(router, http.MethodPost, "/register", `{"committee":"UNODC","email":"spoofed@evil.com"}`, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("register status = %d, body %s", w.Code, w.Body.String())
	}
	if relayed["email"] != "a@b.com" || relayed["committee"] != "UNODC" {
		t.Fatalf("webhook payload = %v", relayed)
	}

	// logout invalidates the session server-side
	if w := do(router, http.MethodGet, "/logout", "", cookie); w.Code != http.StatusOK {
		t.Fatalf("logout status = %d", w.Code)
	}

	if resp := readJSON(t, do(router, http.MethodGet, "/check_auth", "", cookie)); resp["logged_in"] != false {
		t.Fatalf("check_auth after logout = %v", resp)
	}

	if w := do(router, http.MethodGet, "/logout", "", cookie); w.Code != http.StatusUnauthorized {
		t.Fatalf("second logout status = %d, want 401", w.Code)
	}
}

func TestOpenEndpoints(t *testing.T) {
	router, _ := setupStack(t, "http://127.0.0.1:0")

	if w := do(router, http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Errorf("healthz = %d", w.Code)
	}

	if w := do(router, http.MethodGet, "/readyz", ""); w.Code != http.StatusOK {
		t.Errorf("readyz = %d", w.Code)
	}

	if w := do(router, http.MethodGet, "/unauthorized", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthorized probe = %d", w.Code)
	}

	resources := readJSON(t, do(router, http.MethodGet, "/resources", ""))
	if resources["Model UN Guide"] != "https://www.un.org/en/model-united-nations" {
		t.Errorf("resources = %v", resources)
	}

	procedures := readJSON(t, do(router, http.MethodGet, "/procedures", ""))
	if len(procedures) == 0 {
		t.Error("procedures catalog empty")
	}

	w := do(router, http.MethodGet, "/", "")
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte("MUN Mentor")) {
		t.Errorf("home page = %d", w.Code)
	}
}
