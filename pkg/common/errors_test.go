package common_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/common"
)

func TestNewError(t *testing.T) {
	tests := []struct {
		name         string
		code         string
		message      string
		expectedCode string
	}{
		{
			name:         "known input code",
			code:         "E1001",
			message:      "malformed record",
			expectedCode: "E1001",
		},
		{
			name:         "known config code",
			code:         "E2001",
			message:      "config unreadable",
			expectedCode: "E2001",
		},
		{
			name:         "unknown code falls back to internal",
			code:         "E9999",
			message:      "mystery",
			expectedCode: "E4001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := common.NewError(tt.code, tt.message, map[string]interface{}{"k": "v"})
			require.NotNil(t, err)
			assert.Equal(t, tt.expectedCode, err.Code)
			assert.Contains(t, err.Error(), tt.expectedCode)
			assert.Contains(t, err.Error(), tt.message)
			assert.Equal(t, "v", err.Metadata["k"])
			assert.False(t, err.Timestamp.IsZero())
		})
	}
}

func TestWrapError(t *testing.T) {
	t.Run("nil cause stays nil", func(t *testing.T) {
		assert.NoError(t, common.WrapError(nil, "ignored", nil))
	})

	t.Run("plain error gets internal code", func(t *testing.T) {
		wrapped := common.WrapError(errors.New("disk full"), "write failed", nil)
		require.Error(t, wrapped)
		assert.True(t, common.IsErrorCode(wrapped, "E4001"))
		assert.Contains(t, wrapped.Error(), "disk full")
	})

	t.Run("coded cause keeps its code", func(t *testing.T) {
		cause := common.NewError("E1002", "unparseable timestamp", map[string]interface{}{"timestamp": "garbage"})
		wrapped := common.WrapError(cause, "record skipped", map[string]interface{}{"line": 7})

		require.Error(t, wrapped)
		assert.True(t, common.IsErrorCode(wrapped, "E1002"))

		var aerr *common.AnalyzerError
		require.True(t, errors.As(wrapped, &aerr))
		assert.Equal(t, "garbage", aerr.Metadata["timestamp"])
		assert.Equal(t, 7, aerr.Metadata["line"])
	})

	t.Run("unwraps to the cause", func(t *testing.T) {
		cause := errors.New("root cause")
		wrapped := common.WrapError(cause, "context", nil)
		assert.ErrorIs(t, wrapped, cause)
	})
}

func TestIsErrorCode(t *testing.T) {
	err := common.NewError("E3001", "bad incident", nil)

	assert.True(t, common.IsErrorCode(err, "E3001"))
	assert.False(t, common.IsErrorCode(err, "E3002"))
	assert.False(t, common.IsErrorCode(nil, "E3001"))
	assert.False(t, common.IsErrorCode(errors.New("plain"), "E3001"))
}

func TestErrorCounts(t *testing.T) {
	before := common.ErrorCounts()["E3002"]

	common.NewError("E3002", "incomplete timing", nil)
	common.NewError("E3002", "incomplete timing", nil)

	after := common.ErrorCounts()["E3002"]
	assert.Equal(t, before+2, after)
}
