package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// The frontend consumes flat bodies: failures are `{"message": ...}`,
// successes carry `{"status": "success", ...}`.

func RespondMessage(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"message": message})
}

func RespondBadRequest(ctx *gin.Context, message string) {
	RespondMessage(ctx, http.StatusBadRequest, message)
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	RespondMessage(ctx, http.StatusUnauthorized, message)
}

func RespondConflict(ctx *gin.Context, message string) {
	RespondMessage(ctx, http.StatusConflict, message)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondMessage(ctx, http.StatusInternalServerError, message)
}
