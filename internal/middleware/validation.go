package middleware

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/alan-aru/MOD006901-PrescribeGUI/internal/errors"
)

const (
	maxColumnNameLen = 256
	maxPathLen       = 4096
)

// Validator checks decoded request bodies against their validate tags.
type Validator struct {
	validate   *validator.Validate
	extensions map[string]bool
}

// NewValidator registers the dataset_path and column tags. dataset_path
// accepts only the given extensions, .csv and .xlsx when none are given.
func NewValidator(extensions ...string) *Validator {
	if len(extensions) == 0 {
		extensions = []string{".csv", ".xlsx"}
	}
	v := &Validator{
		validate:   validator.New(),
		extensions: make(map[string]bool, len(extensions)),
	}
	for _, ext := range extensions {
		v.extensions[strings.ToLower(ext)] = true
	}

	_ = v.validate.RegisterValidation("dataset_path", v.isDatasetPath)
	_ = v.validate.RegisterValidation("column", isColumnName)

	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct validates s and reports every failing field as one APIError.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.InvalidRequestWithError(err)
	}

	out := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, apierrors.ValidationError{
			Field:   fieldPath(fe),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(out)
}

// DecodeJSON decodes the request body into dst and validates it. An empty
// body decodes to the zero value. Oversized bodies keep their
// *http.MaxBytesError so they map to 413.
func (v *Validator) DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body != nil {
		if err := render.DecodeJSON(r.Body, dst); err != nil && !errors.Is(err, io.EOF) {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				return err
			}
			return apierrors.InvalidRequestWithError(err)
		}
	}
	return v.Struct(dst)
}

// fieldPath drops the top-level struct name and keeps map keys readable,
// e.g. "filters[PRACTICE_NAME]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	return ns
}

func (v *Validator) isDatasetPath(fl validator.FieldLevel) bool {
	p := fl.Field().String()
	if p == "" || len(p) > maxPathLen || strings.ContainsRune(p, 0) {
		return false
	}
	if strings.HasPrefix(filepath.Base(p), "~$") {
		return false
	}
	return v.extensions[strings.ToLower(filepath.Ext(p))]
}

func isColumnName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if strings.TrimSpace(name) == "" || len(name) > maxColumnNameLen {
		return false
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "dataset_path":
		return fmt.Sprintf("%s must name a .csv or .xlsx dataset file", field)
	case "column":
		return fmt.Sprintf("%s must be a column name", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// ContentTypeValidator rejects request bodies whose Content-Type does not
// start with one of contentTypes. Bodiless requests pass through.
func ContentTypeValidator(errorHandler *apierrors.ErrorHandler, contentTypes ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodDelete || r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			for _, allowed := range contentTypes {
				if strings.HasPrefix(contentType, allowed) {
					next.ServeHTTP(w, r)
					return
				}
			}

			errorHandler.HandleError(w, r, apierrors.ErrUnsupportedMediaType.WithDetails(map[string]interface{}{
				"content_type": contentType,
				"allowed":      contentTypes,
			}))
		})
	}
}

// QueryParamValidator validates query parameters
type QueryParamValidator struct {
	errorHandler *apierrors.ErrorHandler
}

// NewQueryParamValidator creates a new query parameter validator
func NewQueryParamValidator(errorHandler *apierrors.ErrorHandler) *QueryParamValidator {
	return &QueryParamValidator{errorHandler: errorHandler}
}

// ValidateEnum returns the query value of param if it is one of allowed.
// On failure the problem response has already been written.
func (v *QueryParamValidator) ValidateEnum(w http.ResponseWriter, r *http.Request, param string, allowed []string, defaultValue string) (string, bool) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue, true
	}

	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return a, true
		}
	}

	v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, fmt.Sprintf("%s must be one of: %s", param, strings.Join(allowed, ", "))))
	return "", false
}
