package service

type PasswordService interface {
	Hash(password string) (encoded string, err error)
	Verify(password, encoded string) (rehashNeeded bool, ok bool)
}
