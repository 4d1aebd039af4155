package handlers

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"sky24/web/internal/backend"
	"sky24/web/internal/middleware"
	"sky24/web/internal/render"
	"sky24/web/internal/view"
)

// BrokerSearch checks the id exists before opening the profile.
func (h HandlerSet) BrokerSearch(c *gin.Context) {
	id := strings.TrimSpace(c.Query("brokerId"))
	if id == "" {
		h.notify(c, "Enter Broker ID")
		h.redirect(c, "/")
		return
	}

	if _, err := h.api.Broker(c.Request.Context(), id); err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			h.notify(c, "Broker not found")
			h.redirect(c, "/")
			return
		}
		h.fail(c, err, "/")
		return
	}
	h.redirect(c, "/brokers/"+url.PathEscape(id))
}

func (h HandlerSet) BrokerProfile(c *gin.Context) {
	ctx := c.Request.Context()
	sess := middleware.CurrentSession(c)
	id := c.Param("brokerId")

	profile, err := h.api.Broker(ctx, id)
	if err != nil {
		h.fail(c, err, "/")
		return
	}

	listings, err := h.api.Listings(ctx, sess.Token, backend.ListingFilter{BrokerID: id})
	if err != nil {
		h.fail(c, err, "/")
		return
	}

	page := h.page(c, view.View{Panel: view.PanelBrokerProfile})
	page.Title = profile.Username
	page.Broker = &render.BrokerPage{
		Query:   id,
		Profile: &profile,
		Cards:   render.Cards(listings, sess.User, h.api.ResolveImage, render.EmptyBroker),
	}
	h.html(c, page)
}
