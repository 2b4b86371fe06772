package config

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	lxsyncerrors "github.com/alexisbeaulieu97/lxsync/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	// LXD instance names: start alphanumeric, then alphanumeric or hyphen.
	instanceNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("instance_name", func(fl validator.FieldLevel) bool {
			return instanceNamePattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// Validate performs schema and cross-field validation on the spec document.
func Validate(doc *Document) error {
	if doc == nil {
		return lxsyncerrors.NewValidationError("spec", "spec document is nil", nil)
	}

	v := validatorInstance()
	if err := v.Struct(doc); err != nil {
		return convertValidationError(err)
	}

	if doc.Server.TrustPassword != "" && !strings.HasPrefix(doc.Server.URL, "https://") {
		return lxsyncerrors.NewValidationError("server.trust_password", "trust password authentication requires an https server url", nil)
	}

	for key := range doc.Config {
		if strings.HasPrefix(key, "volatile.") {
			return lxsyncerrors.NewValidationError("config", fmt.Sprintf("key %q is server-managed and cannot be declared", key), nil)
		}
	}

	return nil
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	if ves, ok := err.(validator.ValidationErrors); ok {
		ve := ves[0]
		field := yamlishFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return lxsyncerrors.NewValidationError(field, msg, err)
	}

	return lxsyncerrors.NewValidationError("spec", err.Error(), err)
}

func yamlishFieldName(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	parts := strings.Split(ns, ".")
	var lowered []string
	for _, part := range parts[1:] {
		lowered = append(lowered, toSnakeCase(part))
	}
	if len(lowered) == 0 {
		return toSnakeCase(fe.Field())
	}
	return strings.Join(lowered, ".")
}

func toSnakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !(runes[i-1] >= 'A' && runes[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
