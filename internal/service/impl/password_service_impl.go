package impl

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"accounts/internal/domain"

	"golang.org/x/crypto/argon2"
)

const algoArgon2id = "argon2id"

type Argon2Params struct {
	Time    uint32 // iterations
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

var DefaultArgon2Params = Argon2Params{
	Time:    3,
	Memory:  64 * 1024, // 64 MiB
	Threads: 1,
	KeyLen:  32,
	SaltLen: 16,
}

// PasswordServiceImpl stores hashes as
// argon2id$<t>$<m>$<p>$<k>$<salt b64>$<hash b64>, so old hashes keep
// verifying after the policy changes.
type PasswordServiceImpl struct {
	cur Argon2Params
}

func NewPasswordServiceArgon2id() *PasswordServiceImpl {
	return NewPasswordService(DefaultArgon2Params)
}

func NewPasswordService(p Argon2Params) *PasswordServiceImpl {
	return &PasswordServiceImpl{cur: p}
}

func (p *PasswordServiceImpl) Hash(password string) (string, error) {
	if password == "" {
		return "", domain.ErrEmptyPassword
	}
	salt := make([]byte, p.cur.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password), salt, p.cur.Time, p.cur.Memory, p.cur.Threads, p.cur.KeyLen)
	return fmt.Sprintf("%s$%d$%d$%d$%d$%s$%s",
		algoArgon2id, p.cur.Time, p.cur.Memory, p.cur.Threads, p.cur.KeyLen,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (p *PasswordServiceImpl) Verify(password, encoded string) (rehashNeeded bool, ok bool) {
	stored, salt, want, err := decodeArgon2(encoded)
	if err != nil {
		return false, false
	}
	got := argon2.IDKey([]byte(password), salt, stored.Time, stored.Memory, stored.Threads, stored.KeyLen)
	ok = subtle.ConstantTimeCompare(got, want) == 1

	stored.SaltLen = uint32(len(salt))
	return ok && stored != p.cur, ok
}

func decodeArgon2(encoded string) (Argon2Params, []byte, []byte, error) {
	var p Argon2Params
	parts := strings.Split(encoded, "$")
	if len(parts) != 7 || parts[0] != algoArgon2id {
		return p, nil, nil, ErrBadHash
	}
	var threads uint32
	for i, dst := range []*uint32{&p.Time, &p.Memory, &threads, &p.KeyLen} {
		if _, err := fmt.Sscanf(parts[i+1], "%d", dst); err != nil {
			return p, nil, nil, fmt.Errorf("%w: %v", ErrBadHash, err)
		}
	}
	if threads == 0 || threads > 255 {
		return p, nil, nil, ErrBadHash
	}
	p.Threads = uint8(threads)

	salt, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: %v", ErrBadHash, err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[6])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: %v", ErrBadHash, err)
	}
	if uint32(len(key)) != p.KeyLen {
		return p, nil, nil, ErrBadHash
	}
	return p, salt, key, nil
}
