package app

// ErrorType represents a generic category of error used as descriptor
// to clarify the nature of a failure that occurred in dependencies.
type ErrorType struct {
	s string
}

var (
	ErrorTypeProviderFailure  = ErrorType{"provider-failure"}
	ErrorTypeAuthorization    = ErrorType{"authorization"}
	ErrorTypeAccessForbidden  = ErrorType{"access-forbidden"}
	ErrorTypeIncorrectInput   = ErrorType{"incorrect-input"}
	ErrorTypeNotFound         = ErrorType{"not-found"}
	ErrorTypeNotReady         = ErrorType{"not-ready"}
	ErrorTypeUnknown          = ErrorType{"unknown"}
	ErrorTypeOperationTimeout = ErrorType{"operation-timeout"}
)

func (e ErrorType) String() string { return e.s }

// Error defines a generic application-layer error that should be translated
// into a specific response format for the requester.
//
// The error includes a source message, a type indicating the category of the
// failure, and a slug representing the message returned to the requester.
// The source message may contain internal details and is never part of
// the response; the slug is.
type Error struct {
	err       string
	slug      string
	errorType ErrorType
}

func (e Error) Slug() string         { return e.slug }
func (e Error) IsZero() bool         { return e == Error{} }
func (e Error) Error() string        { return e.err }
func (e Error) ErrorType() ErrorType { return e.errorType }

// NewIncorrectInputError returns an error that handles invalid input data,
// such as a blank or malformed event identifier.
func NewIncorrectInputError(err, slug string) Error {
	return Error{
		slug:      slug,
		err:       err,
		errorType: ErrorTypeIncorrectInput,
	}
}

// NewProviderFailureError returns an error that handles oracle provider failures,
// internal processing issues, unavailability or other issues that should not be
// exposed to the requester.
func NewProviderFailureError(err, slug string) Error {
	return Error{
		slug:      slug,
		err:       err,
		errorType: ErrorTypeProviderFailure,
	}
}

// NewAuthorizationError returns an error that handles authorization failures,
// such as missing or invalid credentials when attempting to access a restricted resource.
func NewAuthorizationError(err, slug string) Error {
	return Error{
		slug:      slug,
		err:       err,
		errorType: ErrorTypeAuthorization,
	}
}

// NewAccessForbiddenError returns an error that handles access control failures,
// such as valid credentials without the necessary permissions to access a resource.
func NewAccessForbiddenError(err, slug string) Error {
	return Error{
		slug:      slug,
		err:       err,
		errorType: ErrorTypeAccessForbidden,
	}
}

// NewNotFoundError returns an error indicating that the requested resource
// is unknown to the oracle.
func NewNotFoundError(err, slug string) Error {
	return Error{
		slug:      slug,
		err:       err,
		errorType: ErrorTypeNotFound,
	}
}

// NewNotReadyError returns an error indicating that the requested resource
// exists but cannot be served yet. Requesters are expected to retry later.
func NewNotReadyError(err, slug string) Error {
	return Error{
		slug:      slug,
		err:       err,
		errorType: ErrorTypeNotReady,
	}
}

// NewUnknownError returns an error that represents an unexpected or unclassified
// issue that doesn't fall into predefined error categories.
func NewUnknownError(err, slug string) Error {
	return Error{
		slug:      slug,
		errorType: ErrorTypeUnknown,
		err:       err,
	}
}

// NewContextCancellationError returns an error indicating that the submitted request exceeded the context timeout limit or
// that a context cancellation signal was emitted.
func NewContextCancellationError() Error {
	const msg = "The submitted request context has been canceled or exceeds the timeout limit."
	return Error{
		errorType: ErrorTypeOperationTimeout,
		err:       msg,
		slug:      msg,
	}
}
