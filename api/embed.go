// Package api embeds the OpenAPI document of the blueprints HTTP API.
package api

import _ "embed"

// OpenAPISpec is the raw YAML OpenAPI document.
//
//go:embed openapi.yaml
var OpenAPISpec []byte
