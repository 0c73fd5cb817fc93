package impl

import "errors"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrBadHash      = errors.New("malformed password hash")
	ErrNilStore     = errors.New("nil store")
)

const (
	msgCreateFailed = "account creation failed"
	msgLoginFailed  = "login failed"
	msgUserNotFound = "user not found"
	msgUpdateFailed = "profile update failed"
	msgDeleteFailed = "account deletion failed"
	msgVerifyFailed = "verification failed"
)
