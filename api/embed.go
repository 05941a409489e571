// Package api holds the published OpenAPI description of the HTTP surface.
package api

import _ "embed"

// SwaggerJSON is the OpenAPI 2.0 document served under /swagger/users.swagger.json.
//
//go:embed swagger/users.swagger.json
var SwaggerJSON []byte
