package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("error", r).
					Str("path", c.Request.URL.Path).
					Str("request_id", RequestIDFrom(c)).
					Msg("panic recovered")
				c.Header("Content-Type", "text/plain; charset=utf-8")
				c.AbortWithStatus(http.StatusInternalServerError)
				_, _ = c.Writer.WriteString("Something went wrong. Please try again.")
			}
		}()
		c.Next()
	}
}
