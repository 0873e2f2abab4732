package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidBarSeries     ErrorCode = 102
	ErrCodeInvalidRiskParams    ErrorCode = 103
	ErrCodeInsufficientData     ErrorCode = 104
	ErrCodeInvalidPeriod        ErrorCode = 106
	ErrCodeMissingParameter     ErrorCode = 107
	ErrCodeInvalidVersion       ErrorCode = 108
	ErrCodeInvalidSplit         ErrorCode = 110

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeNoDataFound           ErrorCode = 203
	ErrCodeFeeScheduleNotFound   ErrorCode = 204
	ErrCodeFeeScheduleInvalid    ErrorCode = 205
	ErrCodeDataPathError         ErrorCode = 206

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound      ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301

	// Strategy errors (400-499)
	ErrCodeUnsupportedStrategy ErrorCode = 402
	ErrCodeVersionMismatch     ErrorCode = 403

	// Backtest errors (600-699)
	ErrCodeBacktestNotInitialized ErrorCode = 600
	ErrCodeBacktestInitFailed     ErrorCode = 601
	ErrCodeBacktestConfigError    ErrorCode = 602
	ErrCodeBacktestDataPathError  ErrorCode = 603
	ErrCodeBacktestNoStrategies   ErrorCode = 604
	ErrCodeBacktestNoDataPaths    ErrorCode = 605
	ErrCodeBacktestNoResultsDir   ErrorCode = 606
	ErrCodeBacktestNoDatasource   ErrorCode = 607
	ErrCodeBacktestWriteFailed    ErrorCode = 609
	ErrCodeBacktestCancelled      ErrorCode = 610

	// Callback errors (800-899)
	ErrCodeCallbackFailed ErrorCode = 800
)
