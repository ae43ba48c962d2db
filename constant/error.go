package constant

import "net/http"

type ErrorType int

const (
	Successful ErrorType = iota
	ErrInternal
	ErrNotFound
	ErrInvalidRequest
	ErrUnauthorize
	ErrForbidden
	ErrCredentialExists
	ErrInvalidCredential
	ErrSessionExpired
	ErrNetwork
	ErrMalformedPayload
)

var ErrorTypeMessage = map[ErrorType]string{
	Successful:           "success",
	ErrInternal:          "something went wrong, please try again",
	ErrNotFound:          "data not found",
	ErrInvalidRequest:    "invalid request",
	ErrUnauthorize:       "please login first",
	ErrForbidden:         "you are not allowed to do this",
	ErrCredentialExists:  "username or email already registered",
	ErrInvalidCredential: "email or password is wrong",
	ErrSessionExpired:    "session expired, please login again",
	ErrNetwork:           "cannot reach the server, check your connection",
	ErrMalformedPayload:  "malformed message",
}

var ErrorTypeCode = map[ErrorType]string{
	Successful:           "0000",
	ErrInternal:          "0001",
	ErrNotFound:          "0002",
	ErrInvalidRequest:    "0003",
	ErrUnauthorize:       "0004",
	ErrForbidden:         "0005",
	ErrCredentialExists:  "0006",
	ErrInvalidCredential: "0007",
	ErrSessionExpired:    "0008",
	ErrNetwork:           "0009",
	ErrMalformedPayload:  "0010",
}

// HTTPStatusErrorType maps backend response codes onto client error types.
// Codes not listed fall back to ErrInternal.
var HTTPStatusErrorType = map[int]ErrorType{
	http.StatusBadRequest:          ErrInvalidRequest,
	http.StatusUnauthorized:        ErrUnauthorize,
	http.StatusForbidden:           ErrForbidden,
	http.StatusNotFound:            ErrNotFound,
	http.StatusConflict:            ErrCredentialExists,
	http.StatusUnprocessableEntity: ErrInvalidRequest,
}
