package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantCode    string
		wantRetries int
	}{
		{"booking save is retried", NewBookingSaveFailedError(stderrors.New("conn reset")), "BOOKING_SAVE_FAILED", 3},
		{"query timeout retried twice", NewQueryTimeoutError("categories"), "QUERY_TIMEOUT", 2},
		{"incomplete booking is a business error", NewBookingIncompleteError([]string{"email"}), "BOOKING_INCOMPLETE", 0},
		{"unknown catalog", NewCatalogNotFoundError("boat-rental"), "CATALOG_NOT_FOUND", 0},
		{"unmapped code passes through", NewInternalError(stderrors.New("x")), "INTERNAL_ERROR", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, bpmn.Code)
			assert.Equal(t, tt.wantRetries, bpmn.Retries)
			assert.Equal(t, string(tt.err.Code), bpmn.ErrorVariables["originalErrorCode"])
		})
	}
}

func TestBookingIncompleteMetadata(t *testing.T) {
	bpmn := ConvertToBPMNError(NewBookingIncompleteError([]string{"date", "pickupLocation"}))

	vars := bpmn.ToErrorVariables()
	assert.Equal(t, []string{"date", "pickupLocation"}, vars["missing"])
	assert.Equal(t, "BOOKING_INCOMPLETE", vars["errorCode"])
	assert.Contains(t, vars["errorDetails"], "date, pickupLocation")
}

func TestAsStandardError_Unwraps(t *testing.T) {
	cause := stderrors.New("dial tcp: refused")
	wrapped := fmt.Errorf("save: %w", NewDatabaseConnectionFailedError(cause))

	stdErr, ok := AsStandardError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeDatabaseConnectionFailed, stdErr.Code)
	assert.ErrorIs(t, wrapped, cause)

	_, ok = AsStandardError(cause)
	assert.False(t, ok)
}

func TestGetErrorCategory(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrCodeInvalidTurnInput:          "DIALOGUE",
		ErrCodeWorkflowDefinitionInvalid: "DIALOGUE",
		ErrCodeEngineUnavailable:         "ENGINE",
		ErrCodeCatalogLoadFailed:         "CATALOG",
		ErrCodeBookingSaveFailed:         "BOOKING",
		ErrCodeQueryTimeout:              "DATABASE",
		ErrCodeIndexNotFound:             "SEARCH",
		ErrCodeNotificationSendFailed:    "NOTIFICATION",
		ErrCodeStateStoreFailed:          "STATE",
		ErrCodeInternal:                  "OTHER",
	}
	for code, want := range tests {
		assert.Equal(t, want, GetErrorCategory(code), string(code))
	}
}
