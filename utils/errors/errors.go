package errors

import (
	stderrors "errors"

	"github.com/akhdanrgya/teluhub-client/constant"
)

// CustomError is the only error type surfaced to views. message, when set,
// replaces the table text (backend validation messages, field errors).
type CustomError struct {
	errType constant.ErrorType
	message string
}

func (c CustomError) Error() string {
	if c.message != "" {
		return c.message
	}
	return constant.ErrorTypeMessage[c.errType]
}

func (c CustomError) ErrorCode() string {
	return constant.ErrorTypeCode[c.errType]
}

func (c CustomError) Type() constant.ErrorType {
	return c.errType
}

func SetCustomError(errorType constant.ErrorType) CustomError {
	return CustomError{
		errType: errorType,
	}
}

func SetCustomErrorMessage(errorType constant.ErrorType, message string) CustomError {
	return CustomError{
		errType: errorType,
		message: message,
	}
}

// TypeOf returns the error type carried by err, ErrInternal for foreign errors
// and Successful for nil.
func TypeOf(err error) constant.ErrorType {
	if err == nil {
		return constant.Successful
	}
	var ce CustomError
	if stderrors.As(err, &ce) {
		return ce.errType
	}
	return constant.ErrInternal
}

func HasType(err error, errorType constant.ErrorType) bool {
	return err != nil && TypeOf(err) == errorType
}
