// Package mcp exposes the document engine as Model Context Protocol
// tools over stdio.
package mcp

import (
	"context"
	"errors"
	"fmt"

	docerrors "github.com/neerajchowdary889/doctx/internal/errors"
)

// Custom MCP error codes for doctx.
const (
	// ErrCodeIndexWarming indicates the initial scan has not finished.
	ErrCodeIndexWarming = -32001

	// ErrCodeDocumentNotFound indicates the requested key is not indexed.
	ErrCodeDocumentNotFound = -32002

	// ErrCodeTimeout indicates the request exceeded its budget.
	ErrCodeTimeout = -32003

	// ErrCodeFileTooLarge indicates a document exceeds the parse limit.
	ErrCodeFileTooLarge = -32004

	// Standard JSON-RPC error codes.
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts internal errors to MCP errors. Engine error codes
// translate to wire codes; everything unexpected becomes an opaque
// internal error so engine details never leak to the client.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var de *docerrors.DocError
	if errors.As(err, &de) {
		return mapDocError(de)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request timed out."}
	case errors.Is(err, context.Canceled):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request was canceled."}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: "Internal server error."}
	}
}

func mapDocError(de *docerrors.DocError) *MCPError {
	switch de.Code {
	case docerrors.ErrCodeIndexWarming:
		return &MCPError{
			Code:    ErrCodeIndexWarming,
			Message: "Index is warming up. Retry in a moment.",
		}
	case docerrors.ErrCodeDocumentNotFound:
		return &MCPError{Code: ErrCodeDocumentNotFound, Message: de.Message}
	case docerrors.ErrCodeQueryTimeout:
		return &MCPError{Code: ErrCodeTimeout, Message: "Query exceeded its timeout budget."}
	case docerrors.ErrCodeFileTooLarge:
		return &MCPError{Code: ErrCodeFileTooLarge, Message: de.Message}
	case docerrors.ErrCodeInvalidQuery:
		return &MCPError{Code: ErrCodeInvalidParams, Message: de.Message}
	}

	switch de.Category {
	case docerrors.CategoryQuery:
		return &MCPError{Code: ErrCodeInvalidParams, Message: de.Message}
	case docerrors.CategoryParse:
		return &MCPError{Code: ErrCodeInvalidRequest, Message: de.Message}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: "Internal server error."}
	}
}

// NewInvalidParamsError creates an error for invalid parameters with a
// custom message.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: msg}
}

// NewMethodNotFoundError creates an error for unknown tools.
func NewMethodNotFoundError(name string) *MCPError {
	return &MCPError{
		Code:    ErrCodeMethodNotFound,
		Message: fmt.Sprintf("Tool '%s' not found.", name),
	}
}
