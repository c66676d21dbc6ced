// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Snapfind Contributors

package errors_test

import (
	stderrors "errors"
	"testing"

	snaperr "github.com/snapfind-dev/snapfind/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIncludesCodeAndFields(t *testing.T) {
	err := snaperr.New(
		snaperr.CodeCatalogDatabaseFailure,
		"inserting entry",
		snaperr.FieldPath("/photos/cat.png"),
		snaperr.Field("dimensions", 1536),
	)

	require.Error(t, err)
	assert.Equal(t, snaperr.CodeCatalogDatabaseFailure, snaperr.CodeOf(err))
	assert.True(t, snaperr.HasCode(err, snaperr.CodeCatalogDatabaseFailure))

	fields := snaperr.FieldsOf(err)
	assert.Equal(t, "/photos/cat.png", fields["path"])
	assert.Equal(t, 1536, fields["dimensions"])
}

func TestErrorfFormatsMessage(t *testing.T) {
	err := snaperr.Errorf(snaperr.CodeIndexWorkersInvalid, "workers must be >= 1, got %d", 0)
	require.Error(t, err)
	assert.Equal(t, snaperr.CodeIndexWorkersInvalid, snaperr.CodeOf(err))
	assert.Contains(t, err.Error(), "workers must be >= 1, got 0")
}

func TestErrorfWrapsInnerError(t *testing.T) {
	inner := stderrors.New("disk full")
	err := snaperr.Errorf(snaperr.CodeCatalogDatabaseFailure, "write failed: %w", inner)
	require.Error(t, err)
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, snaperr.CodeCatalogDatabaseFailure, snaperr.CodeOf(err))
}

func TestWrapPreservesWrappedErrorAndCode(t *testing.T) {
	root := stderrors.New("no such file")
	err := snaperr.Wrap(
		root,
		snaperr.CodeIndexRootMissing,
		"scanning root",
		snaperr.FieldRoot("/photos/missing"),
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, root)
	assert.Equal(t, snaperr.CodeIndexRootMissing, snaperr.CodeOf(err))
	assert.True(t, snaperr.IsNotFound(err))
	assert.Equal(t, "/photos/missing", snaperr.FieldsOf(err)["root"])
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.NoError(t, snaperr.Wrap(nil, snaperr.CodeCatalogDatabaseFailure, "ignored"))
	assert.NoError(t, snaperr.Wrapf(nil, snaperr.CodeCatalogDatabaseFailure, "ignored %d", 1))
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, snaperr.Code(""), snaperr.CodeOf(stderrors.New("plain")))
	assert.Equal(t, snaperr.Code(""), snaperr.CodeOf(nil))
}

func TestClassifiers(t *testing.T) {
	assert.True(t, snaperr.IsInvalidInput(snaperr.New(snaperr.CodeConfigValidateInvalidValue, "bad value")))
	assert.True(t, snaperr.IsInvalidInput(snaperr.New(snaperr.CodeCLIDateInvalid, "bad date")))
	assert.False(t, snaperr.IsInvalidInput(snaperr.New(snaperr.CodeCatalogDatabaseFailure, "db down")))

	assert.True(t, snaperr.IsServiceFailure(snaperr.New(snaperr.CodeVisionCaptionFailure, "upstream 500")))
	assert.True(t, snaperr.IsServiceFailure(snaperr.New(snaperr.CodeVisionEmbedFailure, "upstream 500")))
	assert.False(t, snaperr.IsServiceFailure(snaperr.New(snaperr.CodeCatalogDatabaseFailure, "db down")))

	assert.True(t, snaperr.IsStoreFailure(snaperr.New(snaperr.CodeCatalogOpenFailure, "cannot open")))
	assert.False(t, snaperr.IsStoreFailure(snaperr.New(snaperr.CodeVisionEmbedFailure, "upstream")))
}

func TestDimensionMismatchIsNotServiceFailure(t *testing.T) {
	err := snaperr.Errorf(snaperr.CodeSearchDimensionMismatch, "query has 3 dims, candidate has 4")
	assert.False(t, snaperr.IsServiceFailure(err))
	assert.True(t, snaperr.HasCode(err, snaperr.CodeSearchDimensionMismatch))
}
