package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"sky24/web/internal/backend"
	"sky24/web/internal/forms"
	"sky24/web/internal/middleware"
	"sky24/web/internal/models"
)

// formFile is the uploaded file named field, or nil when the input was
// left empty.
func formFile(c *gin.Context, field string) *multipart.FileHeader {
	files := formFiles(c, field)
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

func formFiles(c *gin.Context, field string) []*multipart.FileHeader {
	mf, err := c.MultipartForm()
	if err != nil || mf == nil {
		return nil
	}
	out := make([]*multipart.FileHeader, 0, len(mf.File[field]))
	for _, fh := range mf.File[field] {
		if fh != nil && fh.Filename != "" && fh.Size > 0 {
			out = append(out, fh)
		}
	}
	return out
}

func (h HandlerSet) RegisterAccount(c *gin.Context) {
	const back = "/?modal=register"

	var form forms.RegisterForm
	if err := forms.Bind(c, &form); err != nil {
		h.fail(c, err, back)
		return
	}
	form.AadharFront = formFile(c, "aadharFront")
	form.AadharBack = formFile(c, "aadharBack")
	form.PassportPhoto = formFile(c, "passportPhoto")

	err := h.submit(c, &form, func(ctx context.Context) error {
		res, err := h.api.Register(ctx, form.Input())
		if err != nil {
			return err
		}
		return h.signIn(c, res, "Registration failed")
	})
	if err != nil {
		h.fail(c, err, back)
		return
	}

	h.notify(c, "Registration successful")
	h.redirect(c, "/")
}

func (h HandlerSet) Login(c *gin.Context) {
	const back = "/?modal=login"

	var form forms.LoginForm
	if err := forms.Bind(c, &form); err != nil {
		h.fail(c, err, back)
		return
	}

	err := h.submit(c, &form, func(ctx context.Context) error {
		res, err := h.api.Login(ctx, form.Login, form.Password)
		if err != nil {
			return err
		}
		return h.signIn(c, res, "Login failed")
	})
	if err != nil {
		h.fail(c, err, back)
		return
	}

	h.notify(c, "Logged in")
	h.redirect(c, "/")
}

func (h HandlerSet) ForgotPassword(c *gin.Context) {
	const back = "/?modal=forgot"

	var form forms.ForgotForm
	if err := forms.Bind(c, &form); err != nil {
		h.fail(c, err, back)
		return
	}

	err := h.submit(c, &form, func(ctx context.Context) error {
		return h.api.ForgotPassword(ctx, form.Email)
	})
	if err != nil {
		h.fail(c, err, back)
		return
	}

	h.notify(c, "Reset link sent to your email")
	h.redirect(c, "/?modal=reset")
}

func (h HandlerSet) ResetPassword(c *gin.Context) {
	back := "/?modal=reset"
	if token := strings.TrimSpace(c.PostForm("token")); token != "" {
		back = "/reset-password?token=" + url.QueryEscape(token)
	}

	var form forms.ResetForm
	if err := forms.Bind(c, &form); err != nil {
		h.fail(c, err, back)
		return
	}

	err := h.submit(c, &form, func(ctx context.Context) error {
		res, err := h.api.ResetPassword(ctx, form.Token, form.NewPassword)
		if err != nil {
			return err
		}
		return h.signIn(c, res, "Reset failed")
	})
	if err != nil {
		h.fail(c, err, back)
		return
	}

	h.notify(c, "Password updated & logged in")
	h.redirect(c, "/")
}

func (h HandlerSet) Logout(c *gin.Context) {
	h.endSession(c)
	h.redirect(c, "/")
}

// signIn is the one routine every successful auth form ends in: store the
// session, make it current and refresh the listing set for the new role.
// The redirect that follows closes the modal and shows the home panel.
func (h HandlerSet) signIn(c *gin.Context, res backend.AuthResult, fallback string) error {
	if res.Token == "" || res.User.ID == "" {
		return &backend.APIError{Message: fallback}
	}

	ctx := c.Request.Context()
	sid := middleware.SessionID(c)
	if err := h.sessions.Save(ctx, sid, res.Token, res.User); err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	user := res.User
	middleware.RememberSession(c, models.Session{Token: res.Token, User: &user})

	h.log.Info().
		Str("user_id", user.ID).
		Str("role", string(user.Role)).
		Str("request_id", middleware.RequestIDFrom(c)).
		Msg("signed in")

	if _, err := h.refreshListings(c); err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			return err
		}
		h.log.Warn().Err(err).Msg("post-login listing fetch failed")
	}
	return nil
}
