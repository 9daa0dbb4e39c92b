package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	commonerrors "github.com/AlibekovAA/user-service/internal/common/errors"
)

// FormDecoder is implemented by request types that also accept
// application/x-www-form-urlencoded bodies.
type FormDecoder interface {
	FromForm(values url.Values)
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

const (
	mediaTypeJSON = "application/json"
	mediaTypeForm = "application/x-www-form-urlencoded"
)

func requestMediaType(r *http.Request) string {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mediaType
}

// isParsedBody reports whether DecodeBody reads the request body.
func isParsedBody(r *http.Request) bool {
	switch requestMediaType(r) {
	case mediaTypeJSON, mediaTypeForm:
		return true
	}
	return false
}

// DecodeBody fills dst from a JSON or URL-encoded body and validates it.
// Other content types leave dst empty, so required fields fail validation.
func DecodeBody(r *http.Request, dst any) error {
	switch requestMediaType(r) {
	case mediaTypeJSON:
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
			return bodyError(err)
		}
	case mediaTypeForm:
		fd, ok := dst.(FormDecoder)
		if !ok {
			return commonerrors.ErrUnsupportedMediaType
		}
		if err := r.ParseForm(); err != nil {
			return bodyError(err)
		}
		fd.FromForm(r.PostForm)
	}

	return ValidateStruct(dst)
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return commonerrors.ErrRequestTooLarge.WithCause(err)
	}
	return commonerrors.ErrInvalidBody.WithMessage(fmt.Sprintf("invalid request body: %v", err)).WithCause(err)
}

// ValidateStruct reports the first failing field as a validation error.
func ValidateStruct(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return commonerrors.ErrValidation.WithCause(err)
	}

	return commonerrors.ErrValidation.WithMessage(fieldMessage(verrs[0])).WithCause(err)
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", field)
	case "email":
		return fmt.Sprintf("%q must be a valid email", field)
	case "max":
		return fmt.Sprintf("%q length must be less than or equal to %s characters long", field, fe.Param())
	case "min":
		return fmt.Sprintf("%q length must be at least %s characters long", field, fe.Param())
	default:
		return fmt.Sprintf("%q failed on the %q rule", field, fe.Tag())
	}
}
