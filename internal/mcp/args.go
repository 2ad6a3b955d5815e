package mcp

import (
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	mcputils "github.com/mvp-joe/docmeta/internal/mcp-utils"
)

var errInvalidArguments = errors.New("invalid arguments format")

// bindRequest binds and validates the arguments of a tool call. A call
// without arguments binds to the zero request.
func bindRequest[T any](request mcp.CallToolRequest, target *T) error {
	// GetRawArguments() returns the raw Arguments field before conversion
	if raw := request.GetRawArguments(); raw != nil {
		if _, ok := raw.(map[string]interface{}); !ok {
			return errInvalidArguments
		}
	}
	return mcputils.BindArguments(request, target)
}

// intOr returns *v, or def when the argument was not sent.
func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
