package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/munmentor/munmentor/internal/collab"
	"github.com/munmentor/munmentor/internal/config"
	"github.com/munmentor/munmentor/internal/http/middlewares"
)

type RegistrationRelay interface {
	Submit(ctx context.Context, payload map[string]any) error
}

type RegisterHandler struct {
	sheets RegistrationRelay
	users  UserReader
}

func NewRegisterHandler(sheets RegistrationRelay, users UserReader) *RegisterHandler {
	return &RegisterHandler{sheets: sheets, users: users}
}

// Register forwards the form payload to the spreadsheet webhook. The
// authenticated account's email overrides whatever the client sent.
func (h *RegisterHandler) Register(ctx *gin.Context) {
	var payload map[string]any

	if err := ctx.ShouldBindJSON(&payload); err != nil {
		RespondBadRequest(ctx, "Invalid request body")
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Login required")
		return
	}

	cctx, cancel := config.WithTimeout(10 * time.Second)

	defer cancel()

	u, err := h.users.GetByID(cctx, userID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Could not load account",
		})
		return
	}

	payload["email"] = u.Email

	if err := h.sheets.Submit(cctx, payload); err != nil {
		msg := err.Error()

		if errors.Is(err, collab.ErrWebhookRejected) {
			msg = "Google Sheets error"
		}

		ctx.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": msg,
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "success"})
}
