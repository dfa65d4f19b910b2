package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/munmentor/munmentor/internal/mun"
)

type MunHandler struct{}

func NewMunHandler() *MunHandler {
	return &MunHandler{}
}

func (h *MunHandler) Resources(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, mun.Resources())
}

func (h *MunHandler) Procedures(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, mun.Procedures())
}
