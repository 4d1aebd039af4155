package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"sky24/web/internal/config"
	"sky24/web/internal/ids"
	"sky24/web/internal/models"
	"sky24/web/internal/repository"
	"sky24/web/internal/security"
)

const (
	ctxSessionID  = "session_id"
	ctxSession    = "session"
	ctxSessionNew = "session_new"
)

// Session binds the browser to its storage namespace. A missing or forged
// cookie gets a fresh id; the stored token and user are loaded for
// handlers to read with CurrentSession.
func Session(cfg config.SessionConfig, sessions *repository.SessionRepository, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := ""
		if raw, err := c.Cookie(cfg.CookieName); err == nil {
			sid, _ = security.VerifyCookie(cfg.SigningSecret, raw)
		}
		if sid == "" {
			sid = ids.New()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cfg.CookieName, security.SignCookie(cfg.SigningSecret, sid),
				int(cfg.TTL.Seconds()), "/", "", cfg.CookieSecure, true)
			c.Set(ctxSessionNew, true)
		}
		c.Set(ctxSessionID, sid)

		sess, err := sessions.Get(c.Request.Context(), sid)
		if err != nil {
			log.Error().Err(err).Str("request_id", RequestIDFrom(c)).Msg("session load failed")
			c.Header("Content-Type", "text/plain; charset=utf-8")
			c.AbortWithStatus(http.StatusServiceUnavailable)
			_, _ = c.Writer.WriteString("Service temporarily unavailable.")
			return
		}
		c.Set(ctxSession, sess)

		c.Next()
	}
}

func SessionID(c *gin.Context) string {
	return c.GetString(ctxSessionID)
}

// NewSession reports whether this request arrived without a valid cookie
// and was given a fresh id. Such a browser may never come back.
func NewSession(c *gin.Context) bool {
	return c.GetBool(ctxSessionNew)
}

// CurrentSession is the zero Session for anonymous browsers.
func CurrentSession(c *gin.Context) models.Session {
	v, ok := c.Get(ctxSession)
	if !ok {
		return models.Session{}
	}
	sess, _ := v.(models.Session)
	return sess
}

// ForgetSession drops the loaded session for the rest of this request.
func ForgetSession(c *gin.Context) {
	c.Set(ctxSession, models.Session{})
}

// RememberSession makes a just-saved session visible to this request.
func RememberSession(c *gin.Context, sess models.Session) {
	c.Set(ctxSession, sess)
}
