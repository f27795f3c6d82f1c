package auth

import "github.com/opspanel/opspanel-cli/internal/core/ports"

// HeaderProvider builds the base header set for authenticated API calls.
type HeaderProvider struct {
	store *TokenStore
}

// NewHeaderProvider binds a provider to the token store.
func NewHeaderProvider(store *TokenStore) *HeaderProvider {
	return &HeaderProvider{store: store}
}

// Headers returns the Authorization header plus, when includeContentType is
// true, the JSON content type. Bodiless requests pass false.
func (p *HeaderProvider) Headers(includeContentType bool) map[string]string {
	headers := map[string]string{
		"Authorization": p.store.Bearer(),
	}
	if includeContentType {
		headers["Content-Type"] = "application/json"
	}
	return headers
}

var _ ports.AuthHeaderProvider = (*HeaderProvider)(nil)
