// Package common contains shared constants and sentinel errors used across
// DrivenPass components.
package common

// AuthorizationHeaderName is the HTTP header that carries the bearer token.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the only authorization scheme accepted by the API.
const BearerScheme = "Bearer"
