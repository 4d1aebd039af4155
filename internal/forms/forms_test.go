package forms

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sky24/web/internal/models"
)

var jpeg = []byte{0xff, 0xd8, 0xff, 0xe0, 0, 0x10, 'J', 'F', 'I', 'F'}

func upload(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("f", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["f"][0]
}

type fakeGuard struct {
	held     map[Action]bool
	acquired int
	released int
}

func (g *fakeGuard) Acquire(_ context.Context, a Action) (func(), bool, error) {
	if g.held == nil {
		g.held = map[Action]bool{}
	}
	if g.held[a] {
		return nil, false, nil
	}
	g.held[a] = true
	g.acquired++
	return func() {
		g.held[a] = false
		g.released++
	}, true, nil
}

func TestRun_ValidationFailureMakesNoCall(t *testing.T) {
	g := &fakeGuard{}
	called := false

	phase, err := Run(context.Background(), g, Confirmation{Act: ActionAdmin}, func(context.Context) error {
		called = true
		return nil
	})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, PhaseIdle, phase)
	assert.False(t, called)
	assert.Zero(t, g.acquired)
}

func TestRun_ReleasesOnFailure(t *testing.T) {
	g := &fakeGuard{}
	boom := errors.New("boom")

	phase, err := Run(context.Background(), g, &LoginForm{Login: "a", Password: "b"}, func(context.Context) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, PhaseFailed, phase)
	assert.Equal(t, 1, g.released)
	assert.False(t, g.held[ActionLogin])
}

func TestRun_ReleasesOnPanic(t *testing.T) {
	g := &fakeGuard{}

	assert.Panics(t, func() {
		_, _ = Run(context.Background(), g, &LoginForm{Login: "a", Password: "b"}, func(context.Context) error {
			panic("boom")
		})
	})
	assert.Equal(t, 1, g.released)
}

func TestRun_RefusesDuplicate(t *testing.T) {
	g := &fakeGuard{}
	form := &LoginForm{Login: "a", Password: "b"}

	var inner error
	phase, err := Run(context.Background(), g, form, func(ctx context.Context) error {
		_, inner = Run(ctx, g, form, func(context.Context) error { return nil })
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, PhaseSuccess, phase)
	assert.ErrorIs(t, inner, ErrInFlight)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Register", Label(ActionRegister, PhaseIdle))
	assert.Equal(t, "Registering...", Label(ActionRegister, PhaseSubmitting))
	assert.Equal(t, "Logging in...", Label(ActionLogin, PhaseSubmitting))
	assert.Equal(t, "Uploading...", Label(ActionProperty, PhaseSubmitting))
	assert.Equal(t, "Submit Property", Label(ActionProperty, PhaseFailed))
	assert.Equal(t, "Sending...", Label(ActionForgot, PhaseSubmitting))
	assert.Equal(t, "Resetting...", Label(ActionReset, PhaseSubmitting))
}

func TestValidMobile(t *testing.T) {
	for _, ok := range []string{"9876543210", "6000000000"} {
		assert.True(t, ValidMobile(ok), ok)
	}
	for _, bad := range []string{"", "5876543210", "987654321", "98765432101", "98765 4321", "+919876543210"} {
		assert.False(t, ValidMobile(bad), bad)
	}
}

func TestValidPincode(t *testing.T) {
	assert.True(t, ValidPincode("395007"))
	for _, bad := range []string{"12a45", "12345", "1234567", ""} {
		assert.False(t, ValidPincode(bad), bad)
	}
}

// bindPost binds values, posted as a urlencoded form, into form.
func bindPost(t *testing.T, form any, values url.Values) error {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return Bind(c, form)
}

func assertInvalid(t *testing.T, err error, field, msg string) {
	t.Helper()
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, field, vErr.Field)
	assert.Equal(t, msg, vErr.Message)
}

func TestRegisterValidations_Idempotent(t *testing.T) {
	require.NoError(t, RegisterValidations())
	require.NoError(t, RegisterValidations())
}

func registerValues() url.Values {
	return url.Values{
		"username": {" asha "},
		"email":    {"a@b.in"},
		"mobile":   {"9876543210"},
		"password": {"pw"},
	}
}

func TestBind_Register(t *testing.T) {
	var f RegisterForm
	require.NoError(t, bindPost(t, &f, registerValues()))
	assert.Equal(t, "asha", f.Username)
	require.NoError(t, f.Validate())
	assert.Equal(t, "buyer", f.Role)

	cases := []struct {
		name  string
		edit  func(url.Values)
		field string
		msg   string
	}{
		{"bad mobile", func(v url.Values) { v.Set("mobile", "1234567890") }, "mobile", "Enter a valid 10-digit Indian mobile number"},
		{"blank beats format", func(v url.Values) { v.Set("mobile", "123"); v.Set("password", "  ") }, "password", msgRequired},
		{"missing username", func(v url.Values) { v.Del("username") }, "username", msgRequired},
		{"unknown role", func(v url.Values) { v.Set("role", "founder") }, "role", "Choose buyer or broker"},
		{"broker without address", func(v url.Values) { v.Set("role", "broker") }, "address", msgBrokerDocs},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := registerValues()
			tc.edit(v)
			assertInvalid(t, bindPost(t, &RegisterForm{}, v), tc.field, tc.msg)
		})
	}
}

func TestRegisterForm_BrokerDocs(t *testing.T) {
	v := registerValues()
	v.Set("role", "broker")
	v.Set("address", "Surat")

	var f RegisterForm
	require.NoError(t, bindPost(t, &f, v))
	assert.EqualError(t, f.Validate(), msgBrokerDocs)

	f.AadharFront = upload(t, "front.jpg", jpeg)
	f.AadharBack = upload(t, "back.jpg", jpeg)
	f.PassportPhoto = upload(t, "me.pdf", []byte("%PDF-1.4"))
	var vErr *ValidationError
	require.ErrorAs(t, f.Validate(), &vErr)
	assert.Equal(t, "passportPhoto", vErr.Field)

	f.PassportPhoto = upload(t, "me.jpg", jpeg)
	require.NoError(t, f.Validate())
	assert.Equal(t, models.UserRoleBroker, f.Input().Role)
}

func propertyValues() url.Values {
	return url.Values{
		"state":        {"Gujarat"},
		"city":         {"Surat"},
		"area":         {"Vesu"},
		"address":      {"12 Ring Road"},
		"pincode":      {"395007"},
		"propertyType": {"Flat"},
		"price":        {"4500000"},
		"bedrooms":     {"2"},
		"ownerName":    {"Ravi"},
		"ownerMobile":  {"9876543210"},
	}
}

func brokerAuthor() *models.User {
	return &models.User{ID: "u1", Role: models.UserRoleBroker, BrokerID: "B1"}
}

func TestBind_Property(t *testing.T) {
	f := PropertyForm{Author: brokerAuthor()}
	require.NoError(t, bindPost(t, &f, propertyValues()))
	assert.Equal(t, "4500000", f.Price)

	cases := []struct {
		name  string
		edit  func(url.Values)
		field string
		msg   string
	}{
		{"missing area", func(v url.Values) { v.Del("area") }, "area", msgRequired},
		{"pincode", func(v url.Values) { v.Set("pincode", "12a45") }, "pincode", "Enter valid 6-digit pincode"},
		{"no type", func(v url.Values) { v.Del("propertyType") }, "propertyType", "Please select a property type"},
		{"zero price", func(v url.Values) { v.Set("price", "0") }, "price", "Enter a valid price"},
		{"fraction price", func(v url.Values) { v.Set("price", "10.5") }, "price", "Enter a valid price"},
		{"no owner", func(v url.Values) { v.Set("ownerName", " ") }, "ownerName", "Owner name required"},
		{"owner mobile", func(v url.Values) { v.Set("ownerMobile", "12345") }, "ownerMobile", "Enter a valid 10-digit Indian mobile number"},
		{"bad spec", func(v url.Values) { v.Set("sqft", "big") }, "sqft", "Enter a valid number for sqft"},
		{"negative spec", func(v url.Values) { v.Set("totalFloors", "-2") }, "totalFloors", "Enter a valid number for totalFloors"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := propertyValues()
			tc.edit(v)
			assertInvalid(t, bindPost(t, &PropertyForm{Author: brokerAuthor()}, v), tc.field, tc.msg)
		})
	}
}

func TestBind_PropertyChecksRoleFirst(t *testing.T) {
	v := propertyValues()
	v.Set("pincode", "12a45")

	buyer := &models.User{ID: "u2", Role: models.UserRoleBuyer}
	assert.EqualError(t, bindPost(t, &PropertyForm{Author: buyer}, v), "Only brokers can add property")
	assert.EqualError(t, bindPost(t, &PropertyForm{}, v), "Only brokers can add property")
}

func TestPropertyForm_Validate(t *testing.T) {
	valid := func() *PropertyForm {
		return &PropertyForm{Author: brokerAuthor(), MainPhoto: upload(t, "main.jpg", jpeg)}
	}
	require.NoError(t, valid().Validate())

	f := valid()
	f.MainPhoto = nil
	assertInvalid(t, f.Validate(), "mainPhoto", "Main photo required")

	f = valid()
	f.BedroomPhotos = []*multipart.FileHeader{upload(t, "x.txt", []byte("hello"))}
	var vErr *ValidationError
	require.ErrorAs(t, f.Validate(), &vErr)
	assert.Equal(t, "bedroomPhotos", vErr.Field)
}

func TestPropertyForm_PincodeMakesNoCall(t *testing.T) {
	v := propertyValues()
	v.Set("pincode", "12a45")
	f := PropertyForm{Author: brokerAuthor()}
	called := false

	err := bindPost(t, &f, v)
	if err == nil {
		_, err = Run(context.Background(), &fakeGuard{}, &f, func(context.Context) error {
			called = true
			return nil
		})
	}

	assert.EqualError(t, err, "Enter valid 6-digit pincode")
	assert.False(t, called)
}

func TestBind_Reset(t *testing.T) {
	assertInvalid(t, bindPost(t, &ResetForm{}, url.Values{"token": {"t"}}), "newPassword", "All fields required")
	assertInvalid(t, bindPost(t, &ResetForm{}, url.Values{"newPassword": {"a"}}), "token", "All fields required")
	assertInvalid(t, bindPost(t, &ResetForm{}, url.Values{"token": {"t"}, "newPassword": {"a"}, "confirmPassword": {"b"}}),
		"confirmPassword", "Passwords do not match")
	assert.NoError(t, bindPost(t, &ResetForm{}, url.Values{"token": {"t"}, "newPassword": {"a"}}))
	assert.NoError(t, bindPost(t, &ResetForm{}, url.Values{"token": {"t"}, "newPassword": {"a"}, "confirmPassword": {"a"}}))
}

func TestBind_LoginAndForgot(t *testing.T) {
	assertInvalid(t, bindPost(t, &LoginForm{}, url.Values{"login": {"asha"}}), "password", "Enter username/email and password")
	assert.NoError(t, bindPost(t, &LoginForm{}, url.Values{"login": {"asha"}, "password": {"pw"}}))

	assertInvalid(t, bindPost(t, &ForgotForm{}, url.Values{"email": {"  "}}), "email", "Email required")
	assert.NoError(t, bindPost(t, &ForgotForm{}, url.Values{"email": {"a@b.in"}}))
}
