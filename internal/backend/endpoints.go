package backend

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/url"

	"sky24/web/internal/models"
)

const (
	apiRegister       = "/api/register"
	apiLogin          = "/api/login"
	apiForgotPassword = "/api/forgot-password"
	apiResetPassword  = "/api/reset-password"
	apiListings       = "/api/listings"
	apiBroker         = "/api/broker/"
	apiAdminUsers     = "/api/admin/users"
	apiAdminBan       = "/api/admin/ban/"
	apiAdminListings  = "/api/admin/listings"
	apiPendingBrokers = "/api/admin/pending-brokers"
	apiVerifyBroker   = "/api/admin/verify-broker/"
)

type AuthResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// withFallback gives a backend error without text a message for the user.
func withFallback(err error, msg string) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message == "" {
		apiErr.Message = msg
	}
	return err
}

type RegisterInput struct {
	Username      string
	Email         string
	Mobile        string
	Password      string
	Role          models.UserRole
	Address       string
	AadharFront   *multipart.FileHeader
	AadharBack    *multipart.FileHeader
	PassportPhoto *multipart.FileHeader
}

func (c *Client) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	form := &Multipart{}
	form.Add("username", in.Username)
	form.Add("email", in.Email)
	form.Add("mobile", in.Mobile)
	form.Add("password", in.Password)
	form.Add("role", string(in.Role))
	if in.Role == models.UserRoleBroker {
		form.Add("address", in.Address)
		form.AddFile("aadharFront", in.AadharFront)
		form.AddFile("aadharBack", in.AadharBack)
		form.AddFile("passportPhoto", in.PassportPhoto)
	}

	var out AuthResult
	err := c.Do(ctx, "", Request{Method: http.MethodPost, Path: apiRegister, Multipart: form}, &out)
	return out, withFallback(err, "Registration failed")
}

func (c *Client) Login(ctx context.Context, login, password string) (AuthResult, error) {
	body := map[string]string{"login": login, "password": password}

	var out AuthResult
	err := c.Do(ctx, "", Request{Method: http.MethodPost, Path: apiLogin, Body: body}, &out)
	return out, withFallback(err, "Login failed")
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	err := c.Do(ctx, "", Request{Method: http.MethodPost, Path: apiForgotPassword, Body: body}, nil)
	return withFallback(err, "Request failed")
}

func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) (AuthResult, error) {
	body := map[string]string{"token": token, "newPassword": newPassword}

	var out AuthResult
	err := c.Do(ctx, "", Request{Method: http.MethodPost, Path: apiResetPassword, Body: body}, &out)
	return out, withFallback(err, "Reset failed")
}

type ListingFilter struct {
	State    string
	City     string
	Area     string
	Type     string
	BrokerID string
}

func (f ListingFilter) query() url.Values {
	q := url.Values{}
	for k, v := range map[string]string{
		"state":    f.State,
		"city":     f.City,
		"area":     f.Area,
		"type":     f.Type,
		"brokerId": f.BrokerID,
	} {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}

func (f ListingFilter) Empty() bool {
	return len(f.query()) == 0
}

type listingsResponse struct {
	Listings []models.Listing `json:"listings"`
}

// Listings fetches the public listing set. Listings without an id are dropped.
func (c *Client) Listings(ctx context.Context, token string, filter ListingFilter) ([]models.Listing, error) {
	var out listingsResponse
	err := c.Do(ctx, token, Request{Method: http.MethodGet, Path: apiListings, Query: filter.query()}, &out)
	if err != nil {
		return nil, withFallback(err, "Failed to fetch listings")
	}
	return normalize(out.Listings), nil
}

func normalize(in []models.Listing) []models.Listing {
	out := make([]models.Listing, 0, len(in))
	for _, l := range in {
		if l.ID == "" {
			continue
		}
		l.Normalize()
		out = append(out, l)
	}
	return out
}

type NewListing struct {
	Title        string
	State        string
	City         string
	Area         string
	Address      string
	Pincode      string
	PropertyType string
	Mode         string
	Price        string
	Sqft         string
	Carpet       string
	Floor        string
	TotalFloors  string
	Bedrooms     string
	Bathrooms    string
	Description  string
	OwnerName    string
	OwnerMobile  string

	MainPhoto      *multipart.FileHeader
	HallPhoto      *multipart.FileHeader
	KitchenPhoto   *multipart.FileHeader
	BedroomPhotos  []*multipart.FileHeader
	BathroomPhotos []*multipart.FileHeader
}

func (c *Client) CreateListing(ctx context.Context, token string, in NewListing) (models.Listing, error) {
	form := &Multipart{}
	for _, f := range [][2]string{
		{"title", in.Title},
		{"state", in.State},
		{"city", in.City},
		{"area", in.Area},
		{"address", in.Address},
		{"pincode", in.Pincode},
		{"propertyType", in.PropertyType},
		{"mode", in.Mode},
		{"price", in.Price},
		{"sqft", in.Sqft},
		{"carpet", in.Carpet},
		{"floor", in.Floor},
		{"totalFloors", in.TotalFloors},
		{"bedrooms", in.Bedrooms},
		{"bathrooms", in.Bathrooms},
		{"description", in.Description},
		{"ownerName", in.OwnerName},
		{"ownerMobile", in.OwnerMobile},
		// older backends read the owner mobile under this name
		{"MobileNumber", in.OwnerMobile},
	} {
		form.Add(f[0], f[1])
	}

	form.AddFile("mainPhoto", in.MainPhoto)
	form.AddFile("hallPhoto", in.HallPhoto)
	form.AddFile("kitchenPhoto", in.KitchenPhoto)
	for _, fh := range in.BedroomPhotos {
		form.AddFile("bedroomPhotos", fh)
	}
	for _, fh := range in.BathroomPhotos {
		form.AddFile("bathroomPhotos", fh)
	}

	var out struct {
		Listing models.Listing `json:"listing"`
	}
	err := c.Do(ctx, token, Request{Method: http.MethodPost, Path: apiListings, Multipart: form}, &out)
	if err != nil {
		return models.Listing{}, withFallback(err, "Upload failed")
	}
	out.Listing.Normalize()
	return out.Listing, nil
}

func (c *Client) MarkSold(ctx context.Context, token, listingID string) error {
	path := apiListings + "/" + url.PathEscape(listingID) + "/sold"
	err := c.Do(ctx, token, Request{Method: http.MethodPost, Path: path}, nil)
	return withFallback(err, "Failed to mark as sold")
}

func (c *Client) Broker(ctx context.Context, brokerID string) (models.BrokerProfile, error) {
	var out struct {
		Broker models.BrokerProfile `json:"broker"`
	}
	err := c.Do(ctx, "", Request{Method: http.MethodGet, Path: apiBroker + url.PathEscape(brokerID)}, &out)
	if err != nil {
		return models.BrokerProfile{}, withFallback(err, "Broker not found")
	}
	return out.Broker, nil
}

func (c *Client) AdminUsers(ctx context.Context, token string) ([]models.User, error) {
	var out struct {
		Users []models.User `json:"users"`
	}
	err := c.Do(ctx, token, Request{Method: http.MethodGet, Path: apiAdminUsers}, &out)
	return out.Users, withFallback(err, "Failed to load users")
}

func (c *Client) SetBanned(ctx context.Context, token, userID string, banned bool) error {
	body := map[string]bool{"banned": banned}
	err := c.Do(ctx, token, Request{Method: http.MethodPost, Path: apiAdminBan + url.PathEscape(userID), Body: body}, nil)
	return withFallback(err, "Action failed")
}

func (c *Client) AdminListings(ctx context.Context, token string) ([]models.Listing, error) {
	var out listingsResponse
	err := c.Do(ctx, token, Request{Method: http.MethodGet, Path: apiAdminListings}, &out)
	if err != nil {
		return nil, withFallback(err, "Failed to load listings")
	}
	return normalize(out.Listings), nil
}

func (c *Client) DeleteListing(ctx context.Context, token, listingID string) error {
	path := apiAdminListings + "/" + url.PathEscape(listingID)
	err := c.Do(ctx, token, Request{Method: http.MethodDelete, Path: path}, nil)
	return withFallback(err, "Delete failed")
}

func (c *Client) PendingBrokers(ctx context.Context, token string) ([]models.PendingBroker, error) {
	var out struct {
		Pending []models.PendingBroker `json:"pending"`
	}
	err := c.Do(ctx, token, Request{Method: http.MethodGet, Path: apiPendingBrokers}, &out)
	return out.Pending, withFallback(err, "Failed to load pending brokers")
}

func (c *Client) VerifyBroker(ctx context.Context, token, userID string) error {
	err := c.Do(ctx, token, Request{Method: http.MethodPost, Path: apiVerifyBroker + url.PathEscape(userID)}, nil)
	return withFallback(err, "Verification failed")
}
