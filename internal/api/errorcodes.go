package api

// ErrorCode is a stable, machine-readable identifier carried alongside the
// HTTP status on every error response. The dashboard switches on these, so
// the strings are part of the API contract.
type ErrorCode = string

const (
	ErrorCodeUnknown               ErrorCode = "unknown"
	ErrorCodeUnexpectedFailure     ErrorCode = "unexpected_failure"
	ErrorCodeValidationFailed      ErrorCode = "validation_failed"
	ErrorCodeBadJSON               ErrorCode = "bad_json"
	ErrorCodeNoAuthorization       ErrorCode = "no_authorization"
	ErrorCodeBadJWT                ErrorCode = "bad_jwt"
	ErrorCodeNotAuthenticated      ErrorCode = "not_authenticated"
	ErrorCodeProjectAccessDenied   ErrorCode = "project_access_denied"
	ErrorCodeInvalidPlatform       ErrorCode = "invalid_platform"
	ErrorCodeProviderNotConfigured ErrorCode = "provider_not_configured"
	ErrorCodeInvalidOrExpiredState ErrorCode = "invalid_or_expired_state"
	ErrorCodePlatformMismatch      ErrorCode = "platform_mismatch"
	ErrorCodeProviderDenied        ErrorCode = "provider_denied"
	ErrorCodeTokenExchangeFailed   ErrorCode = "token_exchange_failed"
	ErrorCodeConnectionNotFound    ErrorCode = "connection_not_found"
	ErrorCodeBlogUnreachable       ErrorCode = "blog_unreachable"
	ErrorCodeBlogAuthFailed        ErrorCode = "blog_auth_failed"
	ErrorCodeConflict              ErrorCode = "conflict"
)
