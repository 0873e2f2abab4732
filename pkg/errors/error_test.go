package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewError() {
	err := New(ErrCodeInvalidRiskParams, "fill_rate must be within [0, 1]")
	suite.NotNil(err)
	suite.Equal(ErrCodeInvalidRiskParams, err.Code)
	suite.Equal("fill_rate must be within [0, 1]", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestNewfError() {
	err := Newf(ErrCodeInvalidBarSeries, "bar %d: timestamp goes backwards", 7)
	suite.Equal(ErrCodeInvalidBarSeries, err.Code)
	suite.Equal("bar 7: timestamp goes backwards", err.Message)
}

func (suite *ErrorTestSuite) TestWrapError() {
	cause := errors.New("no such file")
	err := Wrap(ErrCodeFeeScheduleNotFound, "failed to read fee schedule", cause)
	suite.Equal(ErrCodeFeeScheduleNotFound, err.Code)
	suite.Equal(cause, err.Cause)
	suite.Equal(cause, err.Unwrap())
}

func (suite *ErrorTestSuite) TestWrapfError() {
	cause := errors.New("underlying error")
	err := Wrapf(ErrCodeBacktestWriteFailed, cause, "run %s failed", "NIFTY_5m_EMA_CROSS_9-21")
	suite.Equal("run NIFTY_5m_EMA_CROSS_9-21 failed", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestErrorString() {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "without cause",
			err:      New(ErrCodeInvalidParameter, "invalid parameter"),
			expected: "[100] invalid parameter",
		},
		{
			name:     "with cause",
			err:      Wrap(ErrCodeDataNotFound, "data not found", errors.New("underlying error")),
			expected: "[200] data not found: underlying error",
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, tc.err.Error())
		})
	}
}

func (suite *ErrorTestSuite) TestGetCode() {
	suite.Equal(ErrCodeInvalidBarSeries, GetCode(New(ErrCodeInvalidBarSeries, "bad bars")))
	suite.Equal(ErrCodeUnknown, GetCode(errors.New("standard error")))
	suite.Equal(ErrCodeUnknown, GetCode(nil))
}

func (suite *ErrorTestSuite) TestGetCodeThroughFmtWrap() {
	inner := New(ErrCodeInvalidRiskParams, "negative slippage")
	wrapped := fmt.Errorf("run failed: %w", inner)
	suite.True(HasCode(wrapped, ErrCodeInvalidRiskParams))
}

func (suite *ErrorTestSuite) TestGetCodeReturnsOutermost() {
	cause := New(ErrCodeDataNotFound, "data not found")
	err := Wrap(ErrCodeIndicatorNotFound, "indicator not found", cause)
	suite.Equal(ErrCodeIndicatorNotFound, GetCode(err))
	suite.True(Is(err, cause))
}

func (suite *ErrorTestSuite) TestAsError() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")

	var argoErr *Error
	suite.True(As(err, &argoErr))
	suite.Equal(ErrCodeInvalidParameter, argoErr.Code)
}

func (suite *ErrorTestSuite) TestErrorCodeRanges() {
	suite.Equal(ErrorCode(1), ErrCodeUnknown)
	suite.Equal(ErrorCode(100), ErrCodeInvalidParameter)
	suite.Equal(ErrorCode(200), ErrCodeDataNotFound)
	suite.Equal(ErrorCode(300), ErrCodeIndicatorNotFound)
	suite.Equal(ErrorCode(402), ErrCodeUnsupportedStrategy)
	suite.Equal(ErrorCode(206), ErrCodeDataPathError)
	suite.Equal(ErrorCode(600), ErrCodeBacktestNotInitialized)
	suite.Equal(ErrorCode(800), ErrCodeCallbackFailed)
}

func (suite *ErrorTestSuite) TestInsufficientDataError() {
	err := NewInsufficientDataErrorf(21, 5, "NIFTY", "need %d bars for EMA_CROSS, got %d", 21, 5)
	suite.Equal(21, err.Required)
	suite.Equal(5, err.Actual)
	suite.Equal("NIFTY", err.Symbol)
	suite.Equal("need 21 bars for EMA_CROSS, got 5", err.Error())

	suite.True(IsInsufficientDataError(err))
	suite.True(IsInsufficientDataError(fmt.Errorf("wrapped: %w", err)))
	suite.False(IsInsufficientDataError(New(ErrCodeInvalidParameter, "invalid parameter")))
	suite.False(IsInsufficientDataError(nil))
}

func (suite *ErrorTestSuite) TestInsufficientDataErrorCode() {
	err := NewInsufficientDataError(26, 10, "NIFTY", "not enough bars")
	suite.Equal(ErrCodeInsufficientData, GetCode(err))
	suite.True(HasCode(fmt.Errorf("run failed: %w", err), ErrCodeInsufficientData))

	// an outer coded error wins over the inner one
	wrapped := Wrap(ErrCodeInvalidParameter, "bad run", err)
	suite.Equal(ErrCodeInvalidParameter, GetCode(wrapped))
}
