package forms

import (
	"errors"
	"mime/multipart"
	"regexp"

	"sky24/web/internal/backend"
	"sky24/web/internal/media/sniffer"
	"sky24/web/internal/models"
)

var (
	mobilePattern  = regexp.MustCompile(`^[6-9]\d{9}$`)
	pincodePattern = regexp.MustCompile(`^[0-9]{6}$`)
)

func ValidMobile(s string) bool  { return mobilePattern.MatchString(s) }
func ValidPincode(s string) bool { return pincodePattern.MatchString(s) }

const msgRequired = "Please fill all required fields."

type namedFile struct {
	field string
	fh    *multipart.FileHeader
}

// checkImages sniffs each present upload; absent optional files pass.
func checkImages(files ...namedFile) error {
	for _, f := range files {
		if f.fh == nil {
			continue
		}
		if _, err := sniffer.DetectFile(f.fh); err != nil {
			if errors.Is(err, sniffer.ErrUnknownType) {
				return invalid(f.field, f.fh.Filename+" is not a JPEG, PNG, GIF, WEBP or AVIF image")
			}
			return invalid(f.field, "Could not read "+f.fh.Filename)
		}
	}
	return nil
}

type RegisterForm struct {
	Username      string                `form:"username" binding:"required"`
	Email         string                `form:"email" binding:"required"`
	Password      string                `form:"password" binding:"required"`
	Mobile        string                `form:"mobile" binding:"required,indianmobile"`
	Role          string                `form:"role" binding:"omitempty,oneof=buyer broker"`
	Address       string                `form:"address" binding:"required_if=Role broker"`
	AadharFront   *multipart.FileHeader `form:"-"`
	AadharBack    *multipart.FileHeader `form:"-"`
	PassportPhoto *multipart.FileHeader `form:"-"`
}

const msgBrokerDocs = "Brokers must upload Aadhaar front & back, passport photo, and address."

func (f *RegisterForm) Action() Action { return ActionRegister }

func (f *RegisterForm) ruleMessages() map[string]string {
	return map[string]string{
		"Mobile.indianmobile": "Enter a valid 10-digit Indian mobile number",
		"Role":                "Choose buyer or broker",
		"Address":             msgBrokerDocs,
	}
}

// Validate checks what the binding rules cannot: broker documents are
// present and are images. An empty role registers a buyer.
func (f *RegisterForm) Validate() error {
	if f.Role == "" {
		f.Role = string(models.UserRoleBuyer)
	}
	if models.UserRole(f.Role) != models.UserRoleBroker {
		return nil
	}

	if f.AadharFront == nil || f.AadharBack == nil || f.PassportPhoto == nil || f.Address == "" {
		return invalid("brokerDocs", msgBrokerDocs)
	}
	return checkImages(
		namedFile{"aadharFront", f.AadharFront},
		namedFile{"aadharBack", f.AadharBack},
		namedFile{"passportPhoto", f.PassportPhoto},
	)
}

func (f *RegisterForm) Input() backend.RegisterInput {
	return backend.RegisterInput{
		Username:      f.Username,
		Email:         f.Email,
		Mobile:        f.Mobile,
		Password:      f.Password,
		Role:          models.UserRole(f.Role),
		Address:       f.Address,
		AadharFront:   f.AadharFront,
		AadharBack:    f.AadharBack,
		PassportPhoto: f.PassportPhoto,
	}
}

type LoginForm struct {
	Login    string `form:"login" binding:"required"`
	Password string `form:"password" binding:"required"`
}

func (f *LoginForm) Action() Action { return ActionLogin }

func (f *LoginForm) ruleMessages() map[string]string {
	const msg = "Enter username/email and password"
	return map[string]string{"Login": msg, "Password": msg}
}

func (f *LoginForm) Validate() error { return nil }

type ForgotForm struct {
	Email string `form:"email" binding:"required"`
}

func (f *ForgotForm) Action() Action { return ActionForgot }

func (f *ForgotForm) ruleMessages() map[string]string {
	return map[string]string{"Email": "Email required"}
}

func (f *ForgotForm) Validate() error { return nil }

// ResetForm requires token and password. The confirmation is optional but
// must match when filled in.
type ResetForm struct {
	Token           string `form:"token" binding:"required"`
	NewPassword     string `form:"newPassword" binding:"required"`
	ConfirmPassword string `form:"confirmPassword" binding:"omitempty,eqfield=NewPassword"`
}

func (f *ResetForm) Action() Action { return ActionReset }

func (f *ResetForm) ruleMessages() map[string]string {
	return map[string]string{
		"Token":           "All fields required",
		"NewPassword":     "All fields required",
		"ConfirmPassword": "Passwords do not match",
	}
}

func (f *ResetForm) Validate() error { return nil }

type PropertyForm struct {
	// Author is the session user; listings may only come from brokers.
	Author *models.User `form:"-"`

	Title        string `form:"title"`
	State        string `form:"state" binding:"required"`
	City         string `form:"city" binding:"required"`
	Area         string `form:"area" binding:"required"`
	Address      string `form:"address" binding:"required"`
	Pincode      string `form:"pincode" binding:"required,pincode"`
	PropertyType string `form:"propertyType" binding:"required"`
	Mode         string `form:"mode"`
	Price        string `form:"price" binding:"required,positiveint"`
	OwnerName    string `form:"ownerName" binding:"required"`
	OwnerMobile  string `form:"ownerMobile" binding:"required,indianmobile"`
	Sqft         string `form:"sqft" binding:"omitempty,quantity"`
	Carpet       string `form:"carpet" binding:"omitempty,quantity"`
	Floor        string `form:"floor" binding:"omitempty,quantity"`
	TotalFloors  string `form:"totalFloors" binding:"omitempty,quantity"`
	Bedrooms     string `form:"bedrooms" binding:"omitempty,quantity"`
	Bathrooms    string `form:"bathrooms" binding:"omitempty,quantity"`
	Description  string `form:"description"`

	MainPhoto      *multipart.FileHeader   `form:"-"`
	HallPhoto      *multipart.FileHeader   `form:"-"`
	KitchenPhoto   *multipart.FileHeader   `form:"-"`
	BedroomPhotos  []*multipart.FileHeader `form:"-"`
	BathroomPhotos []*multipart.FileHeader `form:"-"`
}

func (f *PropertyForm) Action() Action { return ActionProperty }

func (f *PropertyForm) ruleMessages() map[string]string {
	m := map[string]string{
		"Pincode.pincode": "Enter valid 6-digit pincode",
		"PropertyType":    "Please select a property type",
		"Price":           "Enter a valid price",
		"OwnerName":       "Owner name required",
		"OwnerMobile":     "Enter a valid 10-digit Indian mobile number",
	}
	for _, field := range []string{"Sqft", "Carpet", "Floor", "TotalFloors", "Bedrooms", "Bathrooms"} {
		m[field] = "Enter a valid number for " + formName(field)
	}
	return m
}

func (f *PropertyForm) Authorize() error {
	if !f.Author.IsBroker() {
		return invalid("", "Only brokers can add property")
	}
	return nil
}

// Validate re-checks the role and the uploads; field rules ran at bind.
func (f *PropertyForm) Validate() error {
	if err := f.Authorize(); err != nil {
		return err
	}
	if f.MainPhoto == nil {
		return invalid("mainPhoto", "Main photo required")
	}
	files := []namedFile{
		{"mainPhoto", f.MainPhoto},
		{"hallPhoto", f.HallPhoto},
		{"kitchenPhoto", f.KitchenPhoto},
	}
	for _, fh := range f.BedroomPhotos {
		files = append(files, namedFile{"bedroomPhotos", fh})
	}
	for _, fh := range f.BathroomPhotos {
		files = append(files, namedFile{"bathroomPhotos", fh})
	}
	return checkImages(files...)
}

func (f *PropertyForm) Input() backend.NewListing {
	return backend.NewListing{
		Title:          f.Title,
		State:          f.State,
		City:           f.City,
		Area:           f.Area,
		Address:        f.Address,
		Pincode:        f.Pincode,
		PropertyType:   f.PropertyType,
		Mode:           f.Mode,
		Price:          f.Price,
		Sqft:           f.Sqft,
		Carpet:         f.Carpet,
		Floor:          f.Floor,
		TotalFloors:    f.TotalFloors,
		Bedrooms:       f.Bedrooms,
		Bathrooms:      f.Bathrooms,
		Description:    f.Description,
		OwnerName:      f.OwnerName,
		OwnerMobile:    f.OwnerMobile,
		MainPhoto:      f.MainPhoto,
		HallPhoto:      f.HallPhoto,
		KitchenPhoto:   f.KitchenPhoto,
		BedroomPhotos:  f.BedroomPhotos,
		BathroomPhotos: f.BathroomPhotos,
	}
}

// Confirmation is a destructive action the user already confirmed.
type Confirmation struct {
	Act    Action
	Target string
}

func (c Confirmation) Action() Action { return c.Act }

func (c Confirmation) Validate() error {
	if c.Target == "" {
		return invalid("id", "Nothing selected")
	}
	return nil
}
