package handlers

import (
	"context"
	"errors"
	"sync"

	"github.com/gin-gonic/gin"

	"sky24/web/internal/backend"
	"sky24/web/internal/forms"
	"sky24/web/internal/middleware"
	"sky24/web/internal/render"
	"sky24/web/internal/view"
)

// loadAdmin fills the three dashboard sections concurrently. A section that
// fails keeps its own error text; only an expired session aborts the page.
func (h HandlerSet) loadAdmin(c *gin.Context) (*render.Admin, error) {
	ctx := c.Request.Context()
	token := middleware.CurrentSession(c).Token

	var (
		admin render.Admin
		wg    sync.WaitGroup
		mu    sync.Mutex
		auth  error
	)
	section := func(load func() error, msg *string) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := load()
			if err == nil {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if errors.Is(err, backend.ErrUnauthorized) {
				auth = err
				return
			}
			h.log.Warn().Err(err).Msg("admin section failed")
			*msg = sectionMessage(err)
		}()
	}

	section(func() error {
		pending, err := h.api.PendingBrokers(ctx, token)
		if err != nil {
			return err
		}
		rows := make([]render.PendingRow, 0, len(pending))
		for _, p := range pending {
			rows = append(rows, render.PendingRow{
				PendingBroker: p,
				Docs: []string{
					h.api.ResolveImage(p.BrokerDocs.AadharFront),
					h.api.ResolveImage(p.BrokerDocs.AadharBack),
					h.api.ResolveImage(p.BrokerDocs.PassportPhoto),
				},
			})
		}
		admin.Pending = rows
		return nil
	}, &admin.PendingErr)

	section(func() error {
		users, err := h.api.AdminUsers(ctx, token)
		admin.Users = users
		return err
	}, &admin.UsersErr)

	section(func() error {
		listings, err := h.api.AdminListings(ctx, token)
		admin.Listings = listings
		return err
	}, &admin.ListingsErr)

	wg.Wait()
	if auth != nil {
		return nil, auth
	}
	return &admin, nil
}

func sectionMessage(err error) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return msgGeneric
}

func (h HandlerSet) adminPage(c *gin.Context, confirm *render.Confirm) {
	admin, err := h.loadAdmin(c)
	if err != nil {
		h.fail(c, err, "/")
		return
	}

	v := view.View{Panel: view.PanelAdmin}
	if confirm != nil {
		v = v.Open(view.ModalConfirm)
	}
	page := h.page(c, v)
	page.Title = "Admin"
	page.Here = "/admin"
	page.Admin = admin
	page.Confirm = confirm
	h.html(c, page)
}

func (h HandlerSet) AdminDashboard(c *gin.Context) {
	h.adminPage(c, nil)
}

func (h HandlerSet) AdminBan(c *gin.Context) {
	id := c.Param("id")
	ban := c.PostForm("banned") != "0"

	msg, button, value, done := "Ban this user?", "Ban", "1", "User banned"
	if !ban {
		msg, button, value, done = "Unban this user?", "Unban", "0", "User unbanned"
	}

	if c.PostForm("confirmed") != "1" {
		h.adminPage(c, &render.Confirm{
			Message: msg,
			Action:  "/admin/users/" + id + "/ban",
			Button:  button,
			Cancel:  "/admin",
			Fields:  []render.Field{{Name: "banned", Value: value}},
		})
		return
	}

	h.adminAction(c, id, func(ctx context.Context, token string) error {
		return h.api.SetBanned(ctx, token, id, ban)
	}, done)
}

func (h HandlerSet) AdminVerify(c *gin.Context) {
	id := c.Param("id")
	h.adminAction(c, id, func(ctx context.Context, token string) error {
		return h.api.VerifyBroker(ctx, token, id)
	}, "Broker verified")
}

// AdminDelete removes a listing after confirmation and refreshes the public
// listing cache so both views agree.
func (h HandlerSet) AdminDelete(c *gin.Context) {
	id := c.Param("id")

	if c.PostForm("confirmed") != "1" {
		h.adminPage(c, &render.Confirm{
			Message: "Delete this property?",
			Action:  "/admin/listings/" + id + "/delete",
			Button:  "Delete",
			Cancel:  "/admin",
		})
		return
	}

	h.adminAction(c, id, func(ctx context.Context, token string) error {
		if err := h.api.DeleteListing(ctx, token, id); err != nil {
			return err
		}
		return h.refreshAfterWrite(c)
	}, "Property deleted")
}

func (h HandlerSet) adminAction(c *gin.Context, target string, call func(context.Context, string) error, success string) {
	token := middleware.CurrentSession(c).Token
	err := h.submit(c, forms.Confirmation{Act: forms.ActionAdmin, Target: target}, func(ctx context.Context) error {
		return call(ctx, token)
	})
	if err != nil {
		h.fail(c, err, "/admin")
		return
	}
	h.notify(c, success)
	h.redirect(c, "/admin")
}
