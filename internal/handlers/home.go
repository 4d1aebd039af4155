package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"sky24/web/internal/backend"
	"sky24/web/internal/middleware"
	"sky24/web/internal/models"
	"sky24/web/internal/render"
	"sky24/web/internal/view"
)

func filtersFrom(c *gin.Context) render.Filters {
	return render.Filters{
		State:    c.Query("state"),
		City:     c.Query("city"),
		Area:     c.Query("area"),
		Type:     c.Query("type"),
		BrokerID: c.Query("brokerId"),
		Q:        c.Query("q"),
	}
}

func (h HandlerSet) Home(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	v := view.View{Panel: view.PanelHome}.Open(view.ParseModal(c.Query("modal")))
	if v.Modal == view.ModalAddProperty && !sess.User.IsBroker() {
		h.notify(c, "Only brokers can add property")
		v = v.Close()
	}

	home, err := h.homeContent(c, filtersFrom(c))
	if err != nil {
		h.fail(c, err, "/")
		return
	}

	page := h.page(c, v)
	if v.Modal == view.ModalReset {
		page.ResetToken = c.Query("token")
	}
	if home.Notice != "" {
		page.Notice = home.Notice
	}
	page.Home = home.Home
	h.html(c, page)
}

type homeResult struct {
	Home   *render.Home
	Notice string
}

// homeContent loads the grid for the given filters. Only an expired session
// is returned as an error; other failures become an empty grid with a
// message so the page still renders.
func (h HandlerSet) homeContent(c *gin.Context, f render.Filters) (homeResult, error) {
	sess := middleware.CurrentSession(c)

	if (f.City != "" || f.Area != "") && f.State == "" {
		return homeResult{
			Home:   render.NewHome(render.Cards(nil, sess.User, h.api.ResolveImage, ""), f),
			Notice: "Please select a state",
		}, nil
	}

	filter := backend.ListingFilter{State: f.State, City: f.City, Area: f.Area, Type: f.Type, BrokerID: f.BrokerID}
	empty := emptyMessage(f)

	var (
		listings []models.Listing
		err      error
	)
	if filter.Empty() {
		listings, err = h.refreshListings(c)
	} else {
		listings, err = h.api.Listings(c.Request.Context(), sess.Token, filter)
	}
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			return homeResult{}, err
		}
		h.log.Warn().Err(err).Str("request_id", middleware.RequestIDFrom(c)).Msg("load listings failed")
		return homeResult{
			Home:   render.NewHome(render.Cards(nil, sess.User, h.api.ResolveImage, ""), f),
			Notice: "Unable to load listings. Please try again.",
		}, nil
	}

	listings = render.Filter(listings, f.Q)
	return homeResult{Home: render.NewHome(render.Cards(listings, sess.User, h.api.ResolveImage, empty), f)}, nil
}

func emptyMessage(f render.Filters) string {
	switch {
	case f.Q != "":
		return render.EmptySearch
	case f.BrokerID != "":
		return "No listings from this broker."
	case f.Type != "":
		return render.EmptyType
	case f.State != "":
		return render.EmptyLocation
	}
	return render.EmptyDefault
}

// refreshListings fetches the unfiltered set and replaces the cache that
// details, gallery and quick search read from. Requests without a session
// cookie are not cached: cookieless clients would leave one entry per hit.
func (h HandlerSet) refreshListings(c *gin.Context) ([]models.Listing, error) {
	ctx := c.Request.Context()
	sess := middleware.CurrentSession(c)

	listings, err := h.api.Listings(ctx, sess.Token, backend.ListingFilter{})
	if err != nil {
		return nil, err
	}
	if middleware.NewSession(c) {
		return listings, nil
	}
	if err := h.listings.Replace(ctx, middleware.SessionID(c), listings); err != nil {
		h.log.Warn().Err(err).Msg("cache listings failed")
	}
	return listings, nil
}

// refreshAfterWrite reloads the listing set after a successful change. The
// change already happened, so only an expired session is reported.
func (h HandlerSet) refreshAfterWrite(c *gin.Context) error {
	_, err := h.refreshListings(c)
	if err == nil || errors.Is(err, backend.ErrUnauthorized) {
		return err
	}
	h.log.Warn().Err(err).Msg("listing refresh failed")
	return nil
}

// ResetPage is the landing page for the emailed reset link.
func (h HandlerSet) ResetPage(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		h.notify(c, "Invalid reset link")
		h.redirect(c, "/")
		return
	}

	home, err := h.homeContent(c, render.Filters{})
	if err != nil {
		h.fail(c, err, "/")
		return
	}

	page := h.page(c, view.View{Panel: view.PanelHome, Modal: view.ModalReset})
	page.ResetToken = token
	page.Here = "/"
	page.Home = home.Home
	h.html(c, page)
}

func (h HandlerSet) AcceptCookies(c *gin.Context) {
	if err := h.sessions.AcceptCookies(c.Request.Context(), middleware.SessionID(c)); err != nil {
		h.log.Warn().Err(err).Msg("accept cookies failed")
	}
	h.redirect(c, c.PostForm("next"))
}
