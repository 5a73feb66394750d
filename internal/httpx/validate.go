package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate = newValidator()

	isbn10Pattern = regexp.MustCompile(`^\d{9}[\dX]$`)
	isbn13Pattern = regexp.MustCompile(`^\d{13}$`)
)

// ManualISBNPrefix marks placeholder identifiers for books entered by hand.
const ManualISBNPrefix = "MANUAL"

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("isbn", validateISBN)
	_ = v.RegisterValidation("book_status", validateBookStatus)
	return v
}

// ValidISBN accepts ISBN-10 and ISBN-13, ignoring hyphens and spaces, and the
// MANUAL placeholder.
func ValidISBN(isbn string) bool {
	if strings.HasPrefix(isbn, ManualISBNPrefix) {
		return true
	}
	isbn = strings.ReplaceAll(isbn, "-", "")
	isbn = strings.ReplaceAll(isbn, " ", "")

	switch len(isbn) {
	case 10:
		return isbn10Pattern.MatchString(isbn)
	case 13:
		return isbn13Pattern.MatchString(isbn)
	default:
		return false
	}
}

func validateISBN(fl validator.FieldLevel) bool {
	return ValidISBN(fl.Field().String())
}

func validateBookStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "tbr", "reading", "read", "wishlist":
		return true
	default:
		return false
	}
}

// ValidateStruct runs struct tag validation and renders failures per field.
func ValidateStruct(s any) []ErrorDetail {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ErrorDetail{{Field: "", Message: err.Error()}}
	}

	details := make([]ErrorDetail, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		param := fe.Param()

		var message string
		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s", field, param)
		case "max":
			message = fmt.Sprintf("%s must be at most %s", field, param)
		case "isbn":
			message = fmt.Sprintf("%s must be a valid ISBN (10 or 13 digits)", field)
		case "book_status":
			message = fmt.Sprintf("%s must be one of tbr, reading, read, wishlist", field)
		case "gte", "lte":
			message = fmt.Sprintf("%s is out of range (%s %s)", field, fe.Tag(), param)
		case "url":
			message = fmt.Sprintf("%s must be a valid URL", field)
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}

		if field != "" {
			field = strings.ToLower(field[:1]) + field[1:]
		}
		details = append(details, ErrorDetail{Field: field, Message: message})
	}
	return details
}

// ValidationFailed writes a 400 carrying per-field details.
func ValidationFailed(r *http.Request, w http.ResponseWriter, details []ErrorDetail) {
	JSONErrorWithRequest(r, w, http.StatusBadRequest, "VALIDATION_ERROR", "Request validation failed", details)
}
