package forms

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// multipartMemory matches gin's default MaxMultipartMemory.
const multipartMemory = 32 << 20

var validations = map[string]validator.Func{
	"indianmobile": func(fl validator.FieldLevel) bool { return ValidMobile(fl.Field().String()) },
	"pincode":      func(fl validator.FieldLevel) bool { return ValidPincode(fl.Field().String()) },
	"positiveint": func(fl validator.FieldLevel) bool {
		n, err := strconv.ParseInt(fl.Field().String(), 10, 64)
		return err == nil && n > 0
	},
	"quantity": func(fl validator.FieldLevel) bool {
		n, err := strconv.ParseFloat(fl.Field().String(), 64)
		return err == nil && n >= 0
	},
}

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidations adds the site's field rules to gin's validator.
// Bind calls it on first use; it is safe to call more than once.
func RegisterValidations() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		for tag, fn := range validations {
			if err := v.RegisterValidation(tag, fn); err != nil {
				registerErr = fmt.Errorf("register %s: %w", tag, err)
				return
			}
		}
	})
	return registerErr
}

// ruleMessages maps a failed binding rule onto the text shown to the user.
// Keys are "Field.tag" or "Field"; anything unmatched reads msgRequired.
type ruleMessages interface {
	ruleMessages() map[string]string
}

// authorizer is checked before any field rule so a user who may not use
// the form never sees field errors for it.
type authorizer interface {
	Authorize() error
}

// Bind trims every posted value, binds the request into form and turns
// the first failing rule into a ValidationError.
func Bind(c *gin.Context, form any) error {
	if err := RegisterValidations(); err != nil {
		return err
	}
	if a, ok := form.(authorizer); ok {
		if err := a.Authorize(); err != nil {
			return err
		}
	}

	trimPosted(c.Request)
	if err := c.ShouldBind(form); err != nil {
		return bindError(form, err)
	}
	return nil
}

func trimPosted(r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return
	}
	trimValues(r.Form)
	trimValues(r.PostForm)
	if r.MultipartForm != nil {
		trimValues(r.MultipartForm.Value)
	}
}

func trimValues(values map[string][]string) {
	for _, vs := range values {
		for i := range vs {
			vs[i] = strings.TrimSpace(vs[i])
		}
	}
}

func bindError(form any, err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("bind form: %w", err)
	}

	fe := fieldErrs[0]
	var table map[string]string
	if rm, ok := form.(ruleMessages); ok {
		table = rm.ruleMessages()
	}
	for _, key := range []string{fe.Field() + "." + fe.Tag(), fe.Field()} {
		if msg, ok := table[key]; ok {
			return invalid(formName(fe.Field()), msg)
		}
	}
	return invalid(formName(fe.Field()), msgRequired)
}

// formName turns a struct field name into its form key: OwnerMobile -> ownerMobile.
func formName(field string) string {
	r, size := utf8.DecodeRuneInString(field)
	if r == utf8.RuneError {
		return field
	}
	return string(unicode.ToLower(r)) + field[size:]
}
