package bizerror

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")

	ErrInvalidArguments = errors.New("invalid arguments")
	ErrInvalidRole      = errors.New("invalid role")
	ErrTooManyRequests  = errors.New("too many requests")

	// state machine conflicts
	ErrDuplicateSubmission = errors.New("a pending submission already exists for this content")
	ErrAlreadyReviewed     = errors.New("submission has already been reviewed")
	ErrAlreadySigned       = errors.New("contract has already been signed by this party")
	ErrImmutableContract   = errors.New("contract is no longer editable")
	ErrContractNotSignable = errors.New("contract can not be signed in its current status")
	ErrUserNameExisted     = errors.New("user name already exists")

	ErrUnknownContentType = errors.New("unknown content type")
)

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}

// ErrMissingPermission reports a denial together with the permission set the
// actor would have needed, so the caller can explain "why" without guessing.
type ErrMissingPermission struct {
	Action   string   `json:"action"`
	Required []string `json:"required"`
	Mode     string   `json:"mode"`
}

func (e *ErrMissingPermission) Error() string {
	return "security.forbidden"
}
func (e *ErrMissingPermission) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusForbidden, Code: "security.forbidden",
		Message: "access forbidden", Data: e}
}
