package handlers

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/munmentor/munmentor/internal/config"
	"github.com/munmentor/munmentor/internal/domain/user"
	"github.com/munmentor/munmentor/internal/http/middlewares"
	"github.com/munmentor/munmentor/internal/observability"
	"github.com/munmentor/munmentor/internal/repo/postgres"
	"github.com/munmentor/munmentor/internal/security"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, email, passwordHash string) (user.User, error)
}

type SessionManager interface {
	Start(ctx context.Context, userID int64) (string, error)
	Resolve(ctx context.Context, token string) (int64, error)
	End(ctx context.Context, token string) error
}

// Basic local@domain.tld shape. Deliberately loose, matching what the
// frontend was built against.
var emailPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+`)

type AuthHandler struct {
	users    UserReader
	writer   UserWriter
	sessions SessionManager
	metrics  *observability.Prom
	cfg      config.Config
}

func NewAuthHandler(users UserReader, writer UserWriter, sessions SessionManager, metrics *observability.Prom, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		users:    users,
		writer:   writer,
		sessions: sessions,
		metrics:  metrics,
		cfg:      cfg,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req credentialsRequest

	if err := ctx.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		RespondBadRequest(ctx, "Email and password are required")
		return
	}

	if !emailPattern.MatchString(req.Email) {
		RespondBadRequest(ctx, "Invalid email format")
		return
	}

	// policy check runs before the (slow) hash
	if err := security.ValidatePassword(req.Password); err != nil {
		RespondBadRequest(ctx, "Password must be at least 8 characters")
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create account")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	u, err := h.writer.Create(cctx, req.Email, hash)

	if err != nil {
		if errors.Is(err, postgres.ErrEmailTaken) {
			RespondConflict(ctx, "Email already registered")
			return
		}

		RespondInternal(ctx, "Could not create account")
		return
	}

	// no auto-login; the client logs in separately
	ctx.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "Account created",
		"email":   u.Email,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req credentialsRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(ctx, "Email and password are required")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)

	// unknown email and wrong password answer identically: no existence leak
	if err != nil {
		RespondUnauthorized(ctx, "Invalid credentials")
		return
	}

	if err := security.CheckPassword(foundUser.PasswordHash, req.Password); err != nil {
		RespondUnauthorized(ctx, "Invalid credentials")
		return
	}

	token, err := h.sessions.Start(cctx, foundUser.ID)

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	if h.metrics != nil {
		h.metrics.SessionsStarted.Inc()
	}

	h.setSessionCookie(ctx, token)

	ctx.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Login successful",
		"email":   foundUser.Email,
	})
}

// Logout runs behind RequireSession, so a missing session never gets here.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	token, ok := middlewares.SessionTokenFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Login required")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	if err := h.sessions.End(cctx, token); err != nil {
		RespondInternal(ctx, "Could not end session")
		return
	}

	if h.metrics != nil {
		h.metrics.SessionsEnded.Inc()
	}

	h.clearSessionCookie(ctx)

	ctx.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Logged out",
	})
}

// CheckAuth never fails: any problem reads as logged out.
func (h *AuthHandler) CheckAuth(ctx *gin.Context) {
	token, err := ctx.Cookie(middlewares.SessionCookieName)

	if err != nil || token == "" {
		ctx.JSON(http.StatusOK, gin.H{"logged_in": false})
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	userID, err := h.sessions.Resolve(cctx, token)

	if err != nil {
		ctx.JSON(http.StatusOK, gin.H{"logged_in": false})
		return
	}

	u, err := h.users.GetByID(cctx, userID)

	if err != nil {
		ctx.JSON(http.StatusOK, gin.H{"logged_in": false})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"logged_in": true,
		"email":     u.Email,
	})
}

// Unauthorized is the probe endpoint unauthenticated clients are pointed
// at.
func Unauthorized(ctx *gin.Context) {
	RespondUnauthorized(ctx, "Login required")
}

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, token string) {
	secure := h.cfg.Env == "prod"

	ctx.SetSameSite(http.SameSiteStrictMode)

	// No Max-Age: the server-side store is the sole expiry authority, and
	// its TTL slides on every authenticated request. A fixed cookie
	// lifetime could outlive or undercut it.
	ctx.SetCookie(
		middlewares.SessionCookieName,
		token,
		0,
		"/",
		"",
		secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(
		middlewares.SessionCookieName,
		"",
		-1,
		"/",
		"",
		secure,
		true,
	)
}
