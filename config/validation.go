package config

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validLogLevels   = []string{"trace", "debug", "info", "warn", "error"}
	validHTTPMethods = []string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete,
	}
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
			return name
		})
		_ = v.RegisterValidation("proxy", validateProxy)
		_ = v.RegisterValidation("http_method", validateHTTPMethod)
		validate = v
	})
	return validate
}

// Validate checks cfg and returns a *ConfigError for the first invalid field.
func Validate(cfg *Config) error {
	if err := structValidator().Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			return fieldError(validationErrors[0])
		}
		return err
	}

	obs := cfg.Observability
	obs.ApplyDefaults()
	if err := obs.Validate(); err != nil {
		return NewInvalidFieldError("observability", err.Error(), nil)
	}
	return nil
}

// fieldError converts a validator error into a ConfigError keyed by the
// koanf path of the field, e.g. "transport.url".
func fieldError(fe validator.FieldError) *ConfigError {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		ns = rest
	}
	field := strings.ToLower(ns)

	switch fe.Tag() {
	case "url":
		return NewInvalidFieldError(field, fmt.Sprintf("%q is not an absolute URL", fe.Value()), nil)
	case "oneof":
		return NewInvalidFieldError(field, fmt.Sprintf("unknown value %q", fe.Value()), validLogLevels)
	case "http_method":
		return NewInvalidFieldError(field, fmt.Sprintf("unsupported method %q", fe.Value()), validHTTPMethods)
	case "proxy":
		return NewInvalidFieldError(field, fmt.Sprintf("%q is neither %q nor a proxy URL", fe.Value(), ProxyDirect), nil)
	default:
		return NewInvalidFieldError(field, "failed validation", nil)
	}
}

func validateProxy(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if strings.EqualFold(value, ProxyDirect) {
		return true
	}
	u, err := url.Parse(value)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func validateHTTPMethod(fl validator.FieldLevel) bool {
	return slices.Contains(validHTTPMethods, strings.ToUpper(fl.Field().String()))
}
