package errs

import (
	"errors"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrInsufficientCapacity = errors.New("insufficient capacity")
	ErrNotAuthorized        = errors.New("actor role does not match required approval step")
	ErrAlreadyResolved      = errors.New("request already resolved")
	ErrInvalidDecision      = errors.New("invalid decision")
	ErrInvalidTransition    = errors.New("invalid transition")
	ErrInvalidToken         = errors.New("invalid reservation token")
	ErrNotOwner             = errors.New("request belongs to another requester")
	ErrNotIssued            = errors.New("request is not an issued book")
	ErrDuplicateResource    = errors.New("resource already registered")
	ErrUnknownKind          = errors.New("unknown request kind")
)

type ValidationErrorResponse struct {
	Message string `json:"message"`
	Errors  struct {
		AdditionalProperties string `json:"additionalProperties"`
	} `json:"errors"`
}
