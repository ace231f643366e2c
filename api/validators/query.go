package validators

import (
	"net/http"
	"strings"

	"github.com/goldstore/storefront/pkg/enums"
	pkgerrors "github.com/goldstore/storefront/pkg/errors"
)

const maxQueryLen = 512

// ParseQueryRoles reads a comma separated role list such as roles=admin,customer.
func ParseQueryRoles(r *http.Request, key string) ([]enums.Role, error) {
	raw := SanitizeString(r.URL.Query().Get(key), maxQueryLen)
	if raw == "" {
		return nil, nil
	}
	roles, err := enums.ParseRoles(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid roles").WithDetails(map[string]any{"field": key})
	}
	return roles, nil
}

// ParseQueryPath reads an in-app destination. Only relative paths are kept so
// a redirect can never leave the storefront.
func ParseQueryPath(r *http.Request, key string) (string, error) {
	raw := SanitizeString(r.URL.Query().Get(key), maxQueryLen)
	if raw == "" {
		return "", nil
	}
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "destination must be a relative path").WithDetails(map[string]any{"field": key})
	}
	return raw, nil
}

// QueryPointer returns the trimmed query value, or nil when absent.
func QueryPointer(r *http.Request, key string) *string {
	if !r.URL.Query().Has(key) {
		return nil
	}
	v := SanitizeString(r.URL.Query().Get(key), maxQueryLen)
	return &v
}
