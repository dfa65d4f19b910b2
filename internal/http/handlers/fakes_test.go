package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/munmentor/munmentor/internal/config"
	"github.com/munmentor/munmentor/internal/domain/user"
	"github.com/munmentor/munmentor/internal/repo/postgres"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

func testCfg() config.Config {
	return config.Config{
		Env:        "test",
		SessionTTL: time.Hour,
	}
}

// Fake implementations of the handler-side interfaces

type fakeUsers struct {
	getByEmailFn func(ctx context.Context, email string) (user.User, error)
	getByIDFn    func(ctx context.Context, id int64) (user.User, error)
	createFn     func(ctx context.Context, email, hash string) (user.User, error)
	createCalls  int
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}

	return user.User{}, postgres.ErrUserNotFound
}

func (f *fakeUsers) GetByID(ctx context.Context, id int64) (user.User, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}

	return user.User{}, postgres.ErrUserNotFound
}

func (f *fakeUsers) Create(ctx context.Context, email, hash string) (user.User, error) {
	f.createCalls++

	if f.createFn != nil {
		return f.createFn(ctx, email, hash)
	}

	return user.User{ID: 1, Email: email, PasswordHash: hash}, nil
}

type fakeSessions struct {
	startFn   func(ctx context.Context, userID int64) (string, error)
	resolveFn func(ctx context.Context, token string) (int64, error)
	endFn     func(ctx context.Context, token string) error
	started   []int64
	endedWith []string
}

func (f *fakeSessions) Start(ctx context.Context, userID int64) (string, error) {
	f.started = append(f.started, userID)

	if f.startFn != nil {
		return f.startFn(ctx, userID)
	}

	return "test-token", nil
}

func (f *fakeSessions) Resolve(ctx context.Context, token string) (int64, error) {
	if f.resolveFn != nil {
		return f.resolveFn(ctx, token)
	}

	return 0, errors.New("no session")
}

func (f *fakeSessions) End(ctx context.Context, token string) error {
	f.endedWith = append(f.endedWith, token)

	if f.endFn != nil {
		return f.endFn(ctx, token)
	}

	return nil
}

type fakeAI struct {
	replyFn func(ctx context.Context, prompt string) (string, error)
	prompts []string
}

func (f *fakeAI) Reply(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)

	if f.replyFn != nil {
		return f.replyFn(ctx, prompt)
	}

	return "diplomatic answer", nil
}

type fakeSpeech struct {
	recognizeFn func(ctx context.Context, audio string) (string, error)
	calls       int
	audio       []string
}

func (f *fakeSpeech) Recognize(ctx context.Context, audio string) (string, error) {
	f.calls++
	f.audio = append(f.audio, audio)

	if f.recognizeFn != nil {
		return f.recognizeFn(ctx, audio)
	}

	return "transcribed speech", nil
}

type fakeRelay struct {
	submitFn func(ctx context.Context, payload map[string]any) error
	payloads []map[string]any
}

func (f *fakeRelay) Submit(ctx context.Context, payload map[string]any) error {
	f.payloads = append(f.payloads, payload)

	if f.submitFn != nil {
		return f.submitFn(ctx, payload)
	}

	return nil
}

// small helper which returns a gin engine to mount handlers per test

func setupRouter(method, path string, h ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h...)

	return r
}

func doRequest(router http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
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
