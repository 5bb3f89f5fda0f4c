package server

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument = 1000
	ErrCodeInvalidJSON     = 1001
	ErrCodeRequestTooLarge = 1002
	ErrCodeInvalidRound    = 1003
	ErrCodeInvalidEmail    = 1004
	ErrCodeInvalidURL      = 1005
	ErrCodeInvalidName     = 1006
	ErrCodeMissingRequired = 1009
	ErrCodeUnresolvedTask  = 1010

	// Domain state (2xxx)
	ErrCodeTaskNotFound = 2001

	// Auth (3xxx)
	ErrCodeUnauthorized = 3001

	// Internal/system (4xxx)
	ErrCodeInternal     = 4001
	ErrCodeStoreFailure = 4002
)

func defaultErrorCodeByStatus(status int) int {
	switch status {
	case 400:
		return ErrCodeInvalidArgument
	case 401:
		return ErrCodeUnauthorized
	case 404:
		return ErrCodeTaskNotFound
	case 500:
		return ErrCodeInternal
	default:
		return 0
	}
}
