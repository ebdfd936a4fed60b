package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Gin adapts a net/http middleware to Gin. Request changes made by mw (such
// as a new context) are carried into the rest of the Gin chain.
func Gin(mw func(http.Handler) http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Bridge handler to allow net/http middleware execution
		reached := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached = true
			c.Request = r
			c.Next()
		})

		mw(next).ServeHTTP(c.Writer, c.Request)

		// The middleware answered the request itself; stop the chain
		if !reached {
			c.Abort()
		}
	}
}

// GinRequireAuth is RequireAuth for Gin route groups.
func GinRequireAuth() gin.HandlerFunc {
	return Gin(RequireAuth)
}
