package middleware

import (
	"errors"
	"net"
	"net/http"
	"net/http/httputil"
	"os"
	"runtime/debug"
	"strings"

	"woosync/internal/logger"

	"github.com/gin-gonic/gin"
)

// Recovery turns a handler panic into a 500 response. Broken client
// connections are aborted silently.
func Recovery(logger *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		if err, ok := recovered.(error); ok && isBrokenPipe(err) {
			c.Abort()
			return
		}

		httpRequest, _ := httputil.DumpRequest(redactAuth(c.Request), false)
		if gin.IsDebugging() {
			logger.Error("[Recovery] panic recovered:\n%s\n%v\n%s", string(httpRequest), recovered, string(debug.Stack()))
		} else {
			logger.Errorw("[Recovery] panic recovered", "panic", recovered, "path", c.Request.URL.Path)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	})
}

func isBrokenPipe(err error) bool {
	var ne *net.OpError
	if !errors.As(err, &ne) {
		return false
	}
	var se *os.SyscallError
	if !errors.As(ne.Err, &se) {
		return false
	}
	msg := strings.ToLower(se.Error())
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
}

func redactAuth(r *http.Request) *http.Request {
	if r.Header.Get("Authorization") == "" {
		return r
	}
	clone := r.Clone(r.Context())
	clone.Header.Set("Authorization", "[redacted]")
	return clone
}
