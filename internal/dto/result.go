package dto

import "accounts/internal/domain"

// Result is the uniform outcome every account operation returns.
// Kind is kept off the wire; the transport uses it to pick a status code.
type Result struct {
	OK    bool             `json:"ok"`
	Error string           `json:"error,omitempty"`
	Kind  domain.ErrorKind `json:"-"`
}

func Ok() Result { return Result{OK: true} }

func Fail(kind domain.ErrorKind, msg string) Result {
	return Result{OK: false, Error: msg, Kind: kind}
}
