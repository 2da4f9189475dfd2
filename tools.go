//go:build tools

package tools

// Build-time tool dependencies. swag generates the OpenAPI docs from
// the handler annotations.
import (
	_ "github.com/swaggo/swag/cmd/swag"
)
