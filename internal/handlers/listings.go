package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"sky24/web/internal/forms"
	"sky24/web/internal/middleware"
	"sky24/web/internal/models"
	"sky24/web/internal/render"
	"sky24/web/internal/repository"
	"sky24/web/internal/view"
)

func (h HandlerSet) CreateListing(c *gin.Context) {
	const back = "/?modal=add-property"

	form := forms.PropertyForm{Author: middleware.CurrentSession(c).User}
	if err := forms.Bind(c, &form); err != nil {
		h.fail(c, err, back)
		return
	}
	form.MainPhoto = formFile(c, "mainPhoto")
	form.HallPhoto = formFile(c, "hallPhoto")
	form.KitchenPhoto = formFile(c, "kitchenPhoto")
	form.BedroomPhotos = formFiles(c, "bedroomPhotos")
	form.BathroomPhotos = formFiles(c, "bathroomPhotos")

	err := h.submit(c, &form, func(ctx context.Context) error {
		token := middleware.CurrentSession(c).Token
		listing, err := h.api.CreateListing(ctx, token, form.Input())
		if err != nil {
			return err
		}
		h.log.Info().Str("listing_id", listing.ID).Msg("listing created")
		return h.refreshAfterWrite(c)
	})
	if err != nil {
		h.fail(c, err, back)
		return
	}

	h.notify(c, "Property added successfully")
	h.redirect(c, "/")
}

// listing finds id in the cached set, refetching once on a miss so links
// from filtered results still resolve.
func (h HandlerSet) listing(c *gin.Context, id string) (models.Listing, error) {
	ctx := c.Request.Context()
	sid := middleware.SessionID(c)

	l, err := h.listings.GetByID(ctx, sid, id)
	if !errors.Is(err, repository.ErrListingNotFound) {
		return l, err
	}
	listings, err := h.refreshListings(c)
	if err != nil {
		return models.Listing{}, err
	}
	for _, l := range listings {
		if l.ID == id {
			return l, nil
		}
	}
	return models.Listing{}, repository.ErrListingNotFound
}

// requireLogin shows the blocker to anonymous visitors. It reports whether
// the request may continue.
func (h HandlerSet) requireLogin(c *gin.Context) bool {
	if middleware.CurrentSession(c).LoggedIn() {
		return true
	}
	h.redirect(c, "/?modal=blocker")
	return false
}

func (h HandlerSet) detailsPage(c *gin.Context, l models.Listing, modal view.Modal) render.Page {
	images := make([]string, 0, 8)
	for _, p := range l.Photos.All() {
		images = append(images, h.api.ResolveImage(p))
	}
	if len(images) == 0 {
		images = append(images, h.api.ResolveImage(""))
	}

	page := h.page(c, view.View{Panel: view.PanelDetails, Modal: modal})
	page.Title = l.Title
	page.Details = &render.Details{
		Listing:     l,
		Images:      images,
		CanMarkSold: render.CanMarkSold(middleware.CurrentSession(c).User, l),
	}
	return page
}

func (h HandlerSet) lookupOrFail(c *gin.Context) (models.Listing, bool) {
	l, err := h.listing(c, c.Param("id"))
	if errors.Is(err, repository.ErrListingNotFound) {
		h.notify(c, "Listing not found")
		h.redirect(c, "/")
		return models.Listing{}, false
	}
	if err != nil {
		h.fail(c, err, "/")
		return models.Listing{}, false
	}
	return l, true
}

func (h HandlerSet) Details(c *gin.Context) {
	if !h.requireLogin(c) {
		return
	}
	l, ok := h.lookupOrFail(c)
	if !ok {
		return
	}
	h.html(c, h.detailsPage(c, l, view.ModalNone))
}

// Gallery shows one photo full size. A key parameter applies the keyboard
// command to the current index and redirects to the resulting view.
func (h HandlerSet) Gallery(c *gin.Context) {
	if !h.requireLogin(c) {
		return
	}
	l, ok := h.lookupOrFail(c)
	if !ok {
		return
	}

	start, _ := strconv.Atoi(c.Query("i"))
	page := h.detailsPage(c, l, view.ModalGallery)
	g := view.Open(page.Details.Images, start)

	if key := c.Query("key"); key != "" {
		g = g.Key(key)
		if g.Closed {
			h.redirect(c, "/listings/"+l.ID)
			return
		}
		h.redirect(c, "/listings/"+l.ID+"/gallery?i="+strconv.Itoa(g.Index))
		return
	}

	page.Gallery = &render.GalleryView{ListingID: l.ID, Gallery: g}
	h.html(c, page)
}

func (h HandlerSet) MarkSold(c *gin.Context) {
	if !h.requireLogin(c) {
		return
	}
	l, ok := h.lookupOrFail(c)
	if !ok {
		return
	}
	sess := middleware.CurrentSession(c)
	if !render.CanMarkSold(sess.User, l) {
		h.notify(c, "You cannot mark this listing as sold")
		h.redirect(c, "/")
		return
	}

	if c.PostForm("confirmed") != "1" {
		home, err := h.homeContent(c, render.Filters{})
		if err != nil {
			h.fail(c, err, "/")
			return
		}
		page := h.page(c, view.View{Panel: view.PanelHome, Modal: view.ModalConfirm})
		page.Home = home.Home
		page.Here = "/"
		page.Confirm = &render.Confirm{
			Message: "Mark this property as sold?",
			Action:  "/listings/" + l.ID + "/sold",
			Button:  "Mark Sold",
			Cancel:  "/",
		}
		h.html(c, page)
		return
	}

	err := h.submit(c, forms.Confirmation{Act: forms.ActionMarkSold, Target: l.ID}, func(ctx context.Context) error {
		if err := h.api.MarkSold(ctx, sess.Token, l.ID); err != nil {
			return err
		}
		return h.refreshAfterWrite(c)
	})
	if err != nil {
		h.fail(c, err, "/")
		return
	}

	h.notify(c, "Marked as sold")
	h.redirect(c, "/")
}
