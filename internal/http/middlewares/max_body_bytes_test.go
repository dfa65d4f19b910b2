package middlewares_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/munmentor/munmentor/internal/http/middlewares"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMaxBodyBytes(t *testing.T) {
	const limit = 16

	r := gin.New()
	r.Use(middlewares.MaxBodyBytes(limit))
	r.POST("/upload", func(ctx *gin.Context) {
		body, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			ctx.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": "Request body too large"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"bytes": len(body)})
	})

	t.Run("under the limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("small"))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
	})

	t.Run("declared oversize rejected before the handler", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(make([]byte, limit+1)))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusRequestEntityTooLarge {
			t.Fatalf("status = %d, want 413", w.Code)
		}

		var resp map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}

		if resp["message"] != "Request body too large" {
			t.Errorf("message = %v", resp["message"])
		}
	})

	t.Run("chunked oversize caught by the reader", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(make([]byte, limit+1)))
		req.ContentLength = -1 // chunked transfer: length unknown up front
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusRequestEntityTooLarge {
			t.Fatalf("status = %d, want 413", w.Code)
		}
	})
}
