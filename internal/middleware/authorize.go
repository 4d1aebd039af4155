package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"sky24/web/internal/models"
	"sky24/web/internal/repository"
)

// RequireRoles lets only the listed roles through. Anyone else is sent home
// with message as the notice and nothing of the guarded page is rendered.
func RequireRoles(sessions *repository.SessionRepository, log zerolog.Logger, message string, roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		sess := CurrentSession(c)
		if sess.LoggedIn() {
			if _, ok := roleSet[sess.User.Role]; ok {
				c.Next()
				return
			}
		}

		if err := sessions.SetNotice(c.Request.Context(), SessionID(c), message); err != nil {
			log.Warn().Err(err).Msg("set notice failed")
		}
		c.Redirect(http.StatusSeeOther, "/")
		c.Abort()
	}
}
