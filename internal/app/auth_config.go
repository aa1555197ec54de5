package app

import (
	"strings"

	"github.com/docsentry/docsentry/internal/auth"
)

// JWTServiceConfig converts the application auth configuration into the auth
// package representation.
func (a AuthConfig) JWTServiceConfig() auth.JWTConfig {
	return auth.JWTConfig{
		Secret:         strings.TrimSpace(a.JWT.Secret),
		Issuer:         strings.TrimSpace(a.JWT.Issuer),
		AccessTokenTTL: a.JWT.TTL,
	}
}
