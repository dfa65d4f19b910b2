package handlers

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed index.html
var homePage []byte

// Home serves the chat UI shell.
func Home(ctx *gin.Context) {
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", homePage)
}
