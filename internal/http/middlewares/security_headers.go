package middlewares

import "github.com/gin-gonic/gin"

// Home page serves the inline chat UI, everything else is a JSON API.
const (
	apiCSP  = "default-src 'none'"
	pageCSP = "default-src 'self'; base-uri 'none'; frame-ancestors 'none'; object-src 'none'; connect-src 'self'; img-src 'self' data:; style-src 'self' 'unsafe-inline'; script-src 'self' 'unsafe-inline'"
)

func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("X-XSS-Protection", "0")

		if c.Request.URL.Path == "/" {
			c.Header("Content-Security-Policy", pageCSP)
		} else {
			c.Header("Content-Security-Policy", apiCSP)
		}

		c.Next()
	}
}
