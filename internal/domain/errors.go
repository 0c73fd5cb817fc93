package domain

import "errors"

var (
	ErrEmailTaken           = errors.New("email already in use")
	ErrUserNotFound         = errors.New("user not found")
	ErrAccountNotFound      = errors.New("account not found")
	ErrVerificationNotFound = errors.New("verification not found")
	ErrInvalidCredentials   = errors.New("wrong password")
	ErrInvalidRole          = errors.New("invalid role")
	ErrEmptyEmail           = errors.New("empty email")
	ErrInvalidEmail         = errors.New("invalid email")
	ErrEmptyPassword        = errors.New("empty password")
)

// ErrorKind classifies a failed account operation. The kind survives the
// boundary mapping so transport and logs can tell a storage outage from a
// caller mistake even when the user-facing message is the same.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindDuplicateEmail
	KindNotFound
	KindInvalidCredential
	KindInvalidInput
	KindUnexpected
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindDuplicateEmail:
		return "duplicate_email"
	case KindNotFound:
		return "not_found"
	case KindInvalidCredential:
		return "invalid_credential"
	case KindInvalidInput:
		return "invalid_input"
	default:
		return "unexpected"
	}
}

// KindOf maps an internal error onto its ErrorKind.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrEmailTaken):
		return KindDuplicateEmail
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrAccountNotFound), errors.Is(err, ErrVerificationNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidCredentials):
		return KindInvalidCredential
	case errors.Is(err, ErrInvalidRole), errors.Is(err, ErrEmptyEmail),
		errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrEmptyPassword):
		return KindInvalidInput
	default:
		return KindUnexpected
	}
}

// PublicMessage returns the caller-facing text for err: the message of the
// first domain sentinel in its chain, or fallback.
func PublicMessage(err error, fallback string) string {
	for _, sentinel := range publicErrors {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return fallback
}

var publicErrors = []error{
	ErrEmailTaken,
	ErrUserNotFound,
	ErrAccountNotFound,
	ErrVerificationNotFound,
	ErrInvalidCredentials,
	ErrInvalidRole,
	ErrEmptyEmail,
	ErrInvalidEmail,
	ErrEmptyPassword,
}
