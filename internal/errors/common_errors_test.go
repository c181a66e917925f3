package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without cause",
			err:      NewAppValidationError("column name is required"),
			expected: "[VALIDATION] column name is required",
		},
		{
			name:     "with cause",
			err:      NewDimensionError("unknown unit", errors.New("mg/dl")),
			expected: "[DIMENSION] unknown unit: mg/dl",
		},
		{
			name:     "not found",
			err:      NewNotFoundError("dimension Time"),
			expected: "[NOT_FOUND] dimension Time not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	sentinel := errors.New("base grid not found")
	err := NewBuildError("build failed", fmt.Errorf("column Conc: %w", sentinel))

	assert.True(t, errors.Is(err, sentinel))

	var appErr *AppError
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &appErr))
	assert.Equal(t, ErrTypeBuild, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := NewDimensionError("unit not defined in dimension", nil).
		WithContext("unit", "mg").
		WithContext("dimension", "Time")

	assert.Equal(t, "mg", err.Context["unit"])
	assert.Equal(t, "Time", err.Context["dimension"])

	bare := &AppError{Type: ErrTypeConfig}
	bare.WithContext("key", 1)
	assert.Equal(t, 1, bare.Context["key"])
}

func TestIsType(t *testing.T) {
	inner := NewDimensionError("unknown unit", nil)
	outer := NewImportError("pk import failed", inner)

	assert.True(t, IsType(outer, ErrTypeImport))
	assert.True(t, IsType(outer, ErrTypeDimension))
	assert.False(t, IsType(outer, ErrTypeStorage))
	assert.False(t, IsType(errors.New("plain"), ErrTypeImport))
	assert.False(t, IsType(nil, ErrTypeImport))
}

func TestImportLog(t *testing.T) {
	log := NewImportLog()
	assert.False(t, log.HasErrors())
	assert.NoError(t, log.Err())
	assert.NoError(t, log.ThrowOnError())

	log.AddWarning("a.csv", errors.New("empty unit"))
	assert.False(t, log.HasErrors())

	cause := errors.New("bad header")
	log.AddError("b.csv", cause)
	log.AddError("c.csv", nil)

	assert.True(t, log.HasErrors())
	assert.Len(t, log.Entries(), 2)
	assert.ErrorIs(t, log.Err(), cause)

	err := log.ThrowOnError()
	require.Error(t, err)
	assert.True(t, IsType(err, ErrTypeImport))
	assert.Contains(t, log.String(), "error: b.csv: bad header")
	assert.Contains(t, log.String(), "warning: a.csv: empty unit")
}
