// Package errors provides the structured error types used by every stage of
// the site build.
//
// All content-graph failures (malformed files, unresolved handles, duplicate
// members, missing assets) are fatal and carry enough context for a content
// author to fix their file: the file path, the offending front matter field
// and the value that failed. External service failures are the one
// recoverable category; they are logged and rendered with a fallback.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeMalformed    ErrorType = "malformed_content"
	ErrorTypeUnresolved   ErrorType = "unresolved_reference"
	ErrorTypeDuplicate    ErrorType = "duplicate_handle"
	ErrorTypeMissingAsset ErrorType = "missing_asset"
	ErrorTypeExternal     ErrorType = "external_service"
	ErrorTypeConfig       ErrorType = "config"
	ErrorTypeIO           ErrorType = "io"
	ErrorTypeRender       ErrorType = "render"
)

// Common error codes.
const (
	ErrCodeMissingDelimiter  = "ERR_MISSING_DELIMITER"
	ErrCodeFrontMatter       = "ERR_FRONT_MATTER"
	ErrCodeMissingField      = "ERR_MISSING_FIELD"
	ErrCodeInvalidField      = "ERR_INVALID_FIELD"
	ErrCodeUnknownHandle     = "ERR_UNKNOWN_HANDLE"
	ErrCodeUnknownWork       = "ERR_UNKNOWN_WORK"
	ErrCodeDuplicateHandle   = "ERR_DUPLICATE_HANDLE"
	ErrCodeAssetNotFound     = "ERR_ASSET_NOT_FOUND"
	ErrCodeEmbedFailed       = "ERR_EMBED_FAILED"
	ErrCodeConfigInvalid     = "ERR_CONFIG_INVALID"
	ErrCodeFileRead          = "ERR_FILE_READ"
	ErrCodeFileWrite         = "ERR_FILE_WRITE"
	ErrCodeTemplateFailed    = "ERR_TEMPLATE_FAILED"
	ErrCodeMarkdownFailed    = "ERR_MARKDOWN_FAILED"
	ErrCodeLinkRewriteFailed = "ERR_LINK_REWRITE"
)

// SiteError is a structured error type with content location context.
type SiteError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	File        string
	Field       string
	Value       string
	Hint        string
	Recoverable bool
}

// Error implements the error interface.
func (e *SiteError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.File != "" {
		parts = append(parts, "file "+e.File+":")
	}

	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field `%s`:", e.Field))
	}

	parts = append(parts, e.Message)

	if e.Value != "" {
		parts = append(parts, fmt.Sprintf("(value %q)", e.Value))
	}

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	if e.Hint != "" {
		result += " - hint: " + e.Hint
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *SiteError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison by type and code.
func (e *SiteError) Is(target error) bool {
	var t *SiteError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithFile adds the source file path.
func (e *SiteError) WithFile(path string) *SiteError {
	e.File = path

	return e
}

// WithField adds the offending field and value.
func (e *SiteError) WithField(field, value string) *SiteError {
	e.Field = field
	e.Value = value

	return e
}

// WithHint adds a human-readable fix suggestion.
func (e *SiteError) WithHint(hint string) *SiteError {
	e.Hint = hint

	return e
}

// Error creation functions

// NewMalformedError creates a malformed content error for the given file.
func NewMalformedError(code, file, message string, cause error) *SiteError {
	return &SiteError{
		Type:    ErrorTypeMalformed,
		Code:    code,
		Message: message,
		File:    file,
		Cause:   cause,
	}
}

// NewUnresolvedError creates an unresolved reference error.
func NewUnresolvedError(code, file, field, value string) *SiteError {
	return &SiteError{
		Type:    ErrorTypeUnresolved,
		Code:    code,
		Message: "reference not found among members",
		File:    file,
		Field:   field,
		Value:   value,
	}
}

// NewDuplicateError creates a duplicate handle error.
func NewDuplicateError(handle, first, second string) *SiteError {
	return &SiteError{
		Type:    ErrorTypeDuplicate,
		Code:    ErrCodeDuplicateHandle,
		Message: fmt.Sprintf("handle is already used by %s", first),
		File:    second,
		Field:   "ascii_name",
		Value:   handle,
		Hint:    "every member needs a unique ascii_name",
	}
}

// NewMissingAssetError creates a missing asset error.
func NewMissingAssetError(path string) *SiteError {
	return &SiteError{
		Type:    ErrorTypeMissingAsset,
		Code:    ErrCodeAssetNotFound,
		Message: "asset not found",
		Value:   path,
	}
}

// NewExternalError creates a recoverable external service error.
func NewExternalError(message string, cause error) *SiteError {
	return &SiteError{
		Type:        ErrorTypeExternal,
		Code:        ErrCodeEmbedFailed,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(field, message string) *SiteError {
	return &SiteError{
		Type:    ErrorTypeConfig,
		Code:    ErrCodeConfigInvalid,
		Message: message,
		Field:   field,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, file, message string, cause error) *SiteError {
	return &SiteError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		File:    file,
		Cause:   cause,
	}
}

// NewRenderError creates a rendering error.
func NewRenderError(code, file, message string, cause error) *SiteError {
	return &SiteError{
		Type:    ErrorTypeRender,
		Code:    code,
		Message: message,
		File:    file,
		Cause:   cause,
	}
}

func isType(err error, t ErrorType) bool {
	var se *SiteError
	if errors.As(err, &se) {
		return se.Type == t
	}

	return false
}

// IsMalformed checks if an error reports a malformed content file.
func IsMalformed(err error) bool { return isType(err, ErrorTypeMalformed) }

// IsUnresolvedReference checks if an error reports an unknown handle or work.
func IsUnresolvedReference(err error) bool { return isType(err, ErrorTypeUnresolved) }

// IsDuplicateHandle checks if an error reports two members sharing a handle.
func IsDuplicateHandle(err error) bool { return isType(err, ErrorTypeDuplicate) }

// IsMissingAsset checks if an error reports a missing asset.
func IsMissingAsset(err error) bool { return isType(err, ErrorTypeMissingAsset) }

// IsRecoverable checks if an error may be degraded instead of aborting.
func IsRecoverable(err error) bool {
	var se *SiteError
	if errors.As(err, &se) {
		return se.Recoverable
	}

	return false
}

// As is a convenience wrapper returning the first SiteError in the chain.
func As(err error) (*SiteError, bool) {
	var se *SiteError
	ok := errors.As(err, &se)

	return se, ok
}
