package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"sky24/web/internal/backend"
	"sky24/web/internal/config"
	"sky24/web/internal/forms"
	"sky24/web/internal/middleware"
	"sky24/web/internal/models"
	"sky24/web/internal/render"
	"sky24/web/internal/repository"
	"sky24/web/internal/view"
)

const (
	msgSessionExpired = "Session expired. Please login again."
	msgInFlight       = "Request already in progress"
	msgGeneric        = "Something went wrong. Please try again."
	msgFounderOnly    = "Founder access only"
)

// HealthReporter exposes the last background reachability check.
type HealthReporter interface {
	Status() (ok bool, detail string)
}

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	api      *backend.Client
	cache    redis.UniversalClient
	sessions *repository.SessionRepository
	listings *repository.ListingRepository
	health   HealthReporter
}

func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, cache redis.UniversalClient, api *backend.Client, health HealthReporter) HandlerSet {
	sessions := repository.NewSessionRepository(cache, cfg.Session.Namespace, cfg.Session.TTL)

	return HandlerSet{
		log:      log,
		cfg:      cfg,
		api:      api,
		cache:    cache,
		sessions: sessions,
		listings: repository.NewListingRepository(sessions, cfg.Session.ListingsTTL),
		health:   health,
	}
}

func (h HandlerSet) Register(router gin.IRouter) {
	router.GET("/healthz", h.Health)

	site := router.Group("/")
	site.Use(middleware.Session(h.cfg.Session, h.sessions, h.log))
	{
		site.GET("/", h.Home)
		site.GET("/reset-password", h.ResetPage)
		site.POST("/cookies/accept", h.AcceptCookies)

		auth := site.Group("/auth")
		auth.POST("/register", h.RegisterAccount)
		auth.POST("/login", h.Login)
		auth.POST("/forgot", h.ForgotPassword)
		auth.POST("/reset", h.ResetPassword)
		auth.POST("/logout", h.Logout)

		site.POST("/listings", h.CreateListing)
		site.GET("/listings/:id", h.Details)
		site.GET("/listings/:id/gallery", h.Gallery)
		site.POST("/listings/:id/sold", h.MarkSold)

		site.GET("/brokers", h.BrokerSearch)
		site.GET("/brokers/:brokerId", h.BrokerProfile)

		admin := site.Group("/admin")
		admin.Use(middleware.RequireRoles(h.sessions, h.log, msgFounderOnly, models.UserRoleFounder))
		admin.GET("", h.AdminDashboard)
		admin.POST("/users/:id/ban", h.AdminBan)
		admin.POST("/brokers/:id/verify", h.AdminVerify)
		admin.POST("/listings/:id/delete", h.AdminDelete)
	}
}

// page starts a render with the per-browser chrome filled in. Reading the
// page consumes the pending notice.
func (h HandlerSet) page(c *gin.Context, v view.View) render.Page {
	ctx := c.Request.Context()
	sid := middleware.SessionID(c)
	sess := middleware.CurrentSession(c)

	notice, err := h.sessions.PopNotice(ctx, sid)
	if err != nil {
		h.log.Warn().Err(err).Msg("pop notice failed")
	}
	accepted, err := h.sessions.CookiesAccepted(ctx, sid)
	if err != nil {
		h.log.Warn().Err(err).Msg("cookie flag failed")
		accepted = true
	}

	return render.Page{
		View:         v,
		Nav:          render.NavFor(sess.User),
		Notice:       notice,
		CookieBanner: !accepted,
		Here:         here(c),
	}
}

func (h HandlerSet) html(c *gin.Context, page render.Page) {
	c.HTML(http.StatusOK, "page", page)
}

// here is the current location minus one-shot parameters.
func here(c *gin.Context) string {
	u := *c.Request.URL
	q := u.Query()
	q.Del("modal")
	q.Del("key")
	q.Del("token")
	if enc := q.Encode(); enc != "" {
		return u.Path + "?" + enc
	}
	return u.Path
}

// localPath keeps redirects on this site.
func localPath(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return "/"
	}
	return p
}

func (h HandlerSet) notify(c *gin.Context, msg string) {
	if err := h.sessions.SetNotice(c.Request.Context(), middleware.SessionID(c), msg); err != nil {
		h.log.Warn().Err(err).Msg("set notice failed")
	}
}

func (h HandlerSet) redirect(c *gin.Context, to string) {
	c.Redirect(http.StatusSeeOther, localPath(to))
}

func (h HandlerSet) guard(c *gin.Context) forms.Guard {
	sid := middleware.SessionID(c)
	return forms.GuardFunc(func(ctx context.Context, a forms.Action) (func(), bool, error) {
		return h.sessions.AcquireInFlight(ctx, sid, string(a), h.cfg.Session.InFlightTTL)
	})
}

// submit runs a form through validation, the in-flight guard and send.
func (h HandlerSet) submit(c *gin.Context, form forms.Form, send func(context.Context) error) error {
	phase, err := forms.Run(c.Request.Context(), h.guard(c), form, send)
	h.log.Debug().
		Str("form", string(form.Action())).
		Stringer("phase", phase).
		Str("request_id", middleware.RequestIDFrom(c)).
		Msg("form submitted")
	return err
}

// fail turns any error from a user action into a notice and a redirect.
// Auth failures end the session and go home; everything else returns the
// user to back with the message.
func (h HandlerSet) fail(c *gin.Context, err error, back string) {
	var (
		vErr   *forms.ValidationError
		apiErr *backend.APIError
	)

	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		h.endSession(c)
		h.notify(c, msgSessionExpired)
		back = "/"
	case errors.As(err, &vErr):
		h.notify(c, vErr.Message)
	case errors.Is(err, forms.ErrInFlight):
		h.notify(c, msgInFlight)
	case errors.As(err, &apiErr):
		if apiErr.Status == http.StatusUnauthorized {
			h.endSession(c)
		}
		h.notify(c, apiErr.Error())
	default:
		h.log.Error().Err(err).
			Str("path", c.Request.URL.Path).
			Str("request_id", middleware.RequestIDFrom(c)).
			Msg("request failed")
		h.notify(c, msgGeneric)
	}

	h.redirect(c, back)
}

func (h HandlerSet) endSession(c *gin.Context) {
	if err := h.sessions.Clear(c.Request.Context(), middleware.SessionID(c)); err != nil {
		h.log.Error().Err(err).Msg("clear session failed")
	}
	middleware.ForgetSession(c)
}
