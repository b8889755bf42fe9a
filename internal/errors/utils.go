package errors

import (
	"context"
	"errors"
)

// Wrap wraps an error with additional context, keeping the location of an
// existing SiteError in the chain.
func Wrap(err error, errType ErrorType, code, message string) *SiteError {
	if err == nil {
		return nil
	}

	var se *SiteError
	if errors.As(err, &se) {
		return &SiteError{
			Type:        errType,
			Code:        code,
			Message:     message,
			Cause:       se,
			File:        se.File,
			Recoverable: se.Recoverable,
		}
	}

	return &SiteError{
		Type:        errType,
		Code:        code,
		Message:     message,
		Cause:       err,
		Recoverable: errType == ErrorTypeExternal,
	}
}

// WrapIO wraps a filesystem error for the given path.
func WrapIO(err error, code, path, message string) *SiteError {
	e := Wrap(err, ErrorTypeIO, code, message)
	if e != nil {
		e.File = path
	}
	return e
}

// Logger interface for error logging.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// ErrorHandler logs errors with the fields a content author needs.
type ErrorHandler struct {
	logger Logger
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle logs an error. Recoverable errors are logged as warnings.
func (h *ErrorHandler) Handle(ctx context.Context, err error) {
	if err == nil || h.logger == nil {
		return
	}

	se, ok := As(err)
	if !ok {
		h.logger.Error(ctx, err, "Unhandled error occurred")
		return
	}

	fields := []interface{}{"type", se.Type, "code", se.Code}
	if se.File != "" {
		fields = append(fields, "file", se.File)
	}
	if se.Field != "" {
		fields = append(fields, "field", se.Field, "value", se.Value)
	}

	if se.Recoverable {
		h.logger.Warn(ctx, err, "Recoverable error, using fallback", fields...)
		return
	}

	switch se.Type {
	case ErrorTypeMalformed:
		h.logger.Error(ctx, err, "Malformed content file", fields...)
	case ErrorTypeUnresolved, ErrorTypeDuplicate:
		h.logger.Error(ctx, err, "Content reference check failed", fields...)
	case ErrorTypeMissingAsset:
		h.logger.Error(ctx, err, "Referenced asset is missing", fields...)
	default:
		h.logger.Error(ctx, err, "Build error occurred", fields...)
	}
}
