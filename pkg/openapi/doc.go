// Package openapi turns OpenAPI request-body schemas into rule manifests so a
// form backed by an API operation gets the same field checks the API applies.
// The kin-openapi dependency stays inside internal/openapi.
package openapi
