// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Snapfind Contributors

package errors

import (
	"fmt"
	"strings"

	"github.com/samber/oops"
)

// Code is the machine-readable identifier for an error.
type Code string

const (
	CodeCatalogOpenFailure     Code = "catalog.open.failure"
	CodeCatalogDatabaseFailure Code = "catalog.database.failure"
	CodeCatalogEntryCorrupt    Code = "catalog.entry.corrupt"

	CodeVisionConfigInvalid   Code = "vision.config.invalid_input"
	CodeVisionImageUnreadable Code = "vision.image.read.failure"
	CodeVisionCaptionFailure  Code = "vision.caption.upstream.failure"
	CodeVisionEmbedFailure    Code = "vision.embed.upstream.failure"
	CodeVisionEmptyResponse   Code = "vision.response.invalid"

	CodeIndexRootMissing    Code = "index.root.not_found"
	CodeIndexRootScan       Code = "index.root.scan.failure"
	CodeIndexWorkersInvalid Code = "index.workers.invalid_input"

	CodeSearchDimensionMismatch Code = "search.rank.dimension_mismatch"
	CodeSearchQueryEmpty        Code = "search.query.invalid_input"

	CodeConfigLoadReadFailure      Code = "config.load.read.failure"
	CodeConfigValidateInvalidValue Code = "config.validate.invalid_value"

	CodeCLISetupFailure Code = "cli.setup.failure"
	CodeCLIInputInvalid Code = "cli.input.invalid_input"
	CodeCLIDateInvalid  Code = "cli.date.invalid_format"
)

// Attr is a structured key/value context attached to an error.
type Attr struct {
	Key   string
	Value any
}

// Field creates a structured error field.
func Field(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

func FieldPath(value string) Attr {
	return Field("path", value)
}

func FieldRoot(value string) Attr {
	return Field("root", value)
}

func New(code Code, msg string, fields ...Attr) error {
	return oops.Code(code).With(flatten(fields)...).New(msg)
}

func Errorf(code Code, format string, args ...any) error {
	return oops.Code(code).Errorf(format, args...)
}

func Wrap(err error, code Code, msg string, fields ...Attr) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).With(flatten(fields)...).Wrapf(err, "%s", msg)
}

func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).Wrapf(err, format, args...)
}

func CodeOf(err error) Code {
	if err == nil {
		return ""
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}

	if code, ok := oopsErr.Code().(Code); ok {
		return code
	}

	if code, ok := oopsErr.Code().(string); ok {
		return Code(code)
	}

	return Code(fmt.Sprintf("%v", oopsErr.Code()))
}

func FieldsOf(err error) map[string]any {
	if err == nil {
		return nil
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}

	return oopsErr.Context()
}

func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

func IsNotFound(err error) bool {
	return reason(CodeOf(err)) == "not_found"
}

func IsInvalidInput(err error) bool {
	r := reason(CodeOf(err))
	return r == "invalid_input" || r == "invalid_value" || r == "invalid_format"
}

// IsServiceFailure reports whether the error came from the captioning or
// embedding upstream. These are the per-item failures the indexer tolerates.
func IsServiceFailure(err error) bool {
	return strings.HasPrefix(string(CodeOf(err)), "vision.")
}

func IsStoreFailure(err error) bool {
	return strings.HasPrefix(string(CodeOf(err)), "catalog.")
}

// reason extracts the final dotted segment of a code, which encodes the
// failure class independent of the operation that produced it.
func reason(code Code) string {
	parts := strings.Split(string(code), ".")
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

func flatten(fields []Attr) []any {
	out := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		out = append(out, f.Key, f.Value)
	}
	return out
}
