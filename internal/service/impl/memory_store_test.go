package impl

import (
	"context"
	"errors"
	"sync"

	"accounts/internal/domain"
	"accounts/internal/store"

	"github.com/google/uuid"
)

var errInjected = errors.New("injected storage failure")

// memoryStore is a transactional fake: WithTx snapshots every table and
// restores them when fn fails.
type memoryStore struct {
	mu            sync.Mutex
	users         map[uuid.UUID]*domain.User
	verifications map[uuid.UUID]*domain.Verification
	audit         []domain.AuditLog

	// failOn makes the named operation (e.g. "verifications.create") fail.
	failOn map[string]error
	// afterRead runs once, right after the named read returns, standing in
	// for another transaction that commits between this one's read and
	// write. It runs with mu held and must touch the maps directly.
	afterRead map[string]func(m *memoryStore)
}

type storeSnapshot struct {
	users         map[uuid.UUID]*domain.User
	verifications map[uuid.UUID]*domain.Verification
	audit         []domain.AuditLog
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:         make(map[uuid.UUID]*domain.User),
		verifications: make(map[uuid.UUID]*domain.Verification),
		failOn:        make(map[string]error),
		afterRead:     make(map[string]func(m *memoryStore)),
	}
}

func (m *memoryStore) WithTx(ctx context.Context, fn func(tx storeTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.snapshot()
	if err := fn(&memoryTx{store: m}); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

func (m *memoryStore) snapshot() storeSnapshot {
	users := make(map[uuid.UUID]*domain.User, len(m.users))
	for id, u := range m.users {
		cp := *u
		users[id] = &cp
	}
	vers := make(map[uuid.UUID]*domain.Verification, len(m.verifications))
	for id, v := range m.verifications {
		cp := *v
		vers[id] = &cp
	}
	return storeSnapshot{
		users:         users,
		verifications: vers,
		audit:         append([]domain.AuditLog(nil), m.audit...),
	}
}

func (m *memoryStore) restore(s storeSnapshot) {
	m.users = s.users
	m.verifications = s.verifications
	m.audit = s.audit
}

func (m *memoryStore) fail(op string) error {
	return m.failOn[op]
}

func (m *memoryStore) read(op string) {
	if hook := m.afterRead[op]; hook != nil {
		delete(m.afterRead, op)
		hook(m)
	}
}

func (m *memoryStore) userByID(id uuid.UUID) (*domain.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, false
	}
	cp := *u
	return &cp, true
}

// test accessors

func (m *memoryStore) userCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

func (m *memoryStore) userByEmail(email string) (*domain.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, true
		}
	}
	return nil, false
}

func (m *memoryStore) verificationsFor(userID uuid.UUID) []domain.Verification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Verification
	for _, v := range m.verifications {
		if v.UserID == userID {
			out = append(out, *v)
		}
	}
	return out
}

func (m *memoryStore) auditActions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.audit))
	for _, a := range m.audit {
		out = append(out, a.Action)
	}
	return out
}

type memoryTx struct {
	store *memoryStore
}

func (t *memoryTx) Users() userStore { return &memoryUserStore{store: t.store} }

func (t *memoryTx) Verifications() verificationStore {
	return &memoryVerificationStore{store: t.store}
}

func (t *memoryTx) Audit() auditStore { return &memoryAuditStore{store: t.store} }

func (t *memoryTx) DeleteUserData(ctx context.Context, userID uuid.UUID) (map[string]int64, error) {
	m := t.store
	if err := m.fail("delete_user_data"); err != nil {
		return nil, err
	}
	if _, ok := m.users[userID]; !ok {
		return nil, store.ErrRecordNotFound
	}
	removed := map[string]int64{"users": 1}
	for id, v := range m.verifications {
		if v.UserID == userID {
			delete(m.verifications, id)
			removed["verifications"]++
		}
	}
	kept := m.audit[:0]
	for _, a := range m.audit {
		if a.UserID != nil && *a.UserID == userID {
			removed["auditLogs"]++
			continue
		}
		kept = append(kept, a)
	}
	m.audit = kept
	delete(m.users, userID)
	return removed, nil
}

type memoryUserStore struct {
	store *memoryStore
}

func (u *memoryUserStore) emailOwner(email string) (uuid.UUID, bool) {
	for id, usr := range u.store.users {
		if usr.Email == email {
			return id, true
		}
	}
	return uuid.Nil, false
}

func (u *memoryUserStore) Create(ctx context.Context, usr *domain.User) error {
	if err := u.store.fail("users.create"); err != nil {
		return err
	}
	if _, taken := u.emailOwner(usr.Email); taken {
		return store.ErrDuplicateEmail
	}
	cp := *usr
	u.store.users[usr.ID] = &cp
	return nil
}

func (u *memoryUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if err := u.store.fail("users.get"); err != nil {
		return nil, err
	}
	usr, ok := u.store.users[id]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	cp := *usr
	return &cp, nil
}

func (u *memoryUserStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	usr, err := u.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.store.read("users.get_for_update")
	return usr, nil
}

func (u *memoryUserStore) GetCredentials(ctx context.Context, email string) (*domain.User, error) {
	if err := u.store.fail("users.get"); err != nil {
		return nil, err
	}
	id, ok := u.emailOwner(email)
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	creds := &domain.User{ID: id, PasswordHash: u.store.users[id].PasswordHash}
	u.store.read("users.get_credentials")
	return creds, nil
}

func (u *memoryUserStore) EmailTaken(ctx context.Context, email string, except uuid.UUID) (bool, error) {
	id, ok := u.emailOwner(email)
	return ok && id != except, nil
}

func (u *memoryUserStore) Save(ctx context.Context, usr *domain.User, columns ...string) error {
	if err := u.store.fail("users.save"); err != nil {
		return err
	}
	if len(columns) == 0 {
		return nil
	}
	stored, ok := u.store.users[usr.ID]
	if !ok {
		return store.ErrRecordNotFound
	}
	next := *stored
	for _, col := range columns {
		switch col {
		case "email":
			if owner, taken := u.emailOwner(usr.Email); taken && owner != usr.ID {
				return store.ErrDuplicateEmail
			}
			next.Email = usr.Email
		case "password_hash":
			next.PasswordHash = usr.PasswordHash
		case "verified":
			next.Verified = usr.Verified
		}
	}
	u.store.users[usr.ID] = &next
	return nil
}

func (u *memoryUserStore) SetEmailVerified(ctx context.Context, userID uuid.UUID) error {
	usr, ok := u.store.users[userID]
	if !ok {
		return store.ErrRecordNotFound
	}
	usr.Verified = true
	return nil
}

func (u *memoryUserStore) ReplacePasswordHash(ctx context.Context, userID uuid.UUID, oldHash, newHash string) (bool, error) {
	usr, ok := u.store.users[userID]
	if !ok || usr.PasswordHash != oldHash {
		return false, nil
	}
	usr.PasswordHash = newHash
	return true, nil
}

type memoryVerificationStore struct {
	store *memoryStore
}

func (v *memoryVerificationStore) Create(ctx context.Context, ver *domain.Verification) error {
	if err := v.store.fail("verifications.create"); err != nil {
		return err
	}
	for _, existing := range v.store.verifications {
		if existing.UserID == ver.UserID || existing.Code == ver.Code {
			return store.ErrDuplicateKey
		}
	}
	cp := *ver
	cp.User = nil
	v.store.verifications[ver.ID] = &cp
	return nil
}

func (v *memoryVerificationStore) GetByCode(ctx context.Context, code string) (*domain.Verification, error) {
	for _, ver := range v.store.verifications {
		if ver.Code != code {
			continue
		}
		usr, ok := v.store.users[ver.UserID]
		if !ok {
			return nil, store.ErrRecordNotFound
		}
		cp := *ver
		u := *usr
		cp.User = &u
		return &cp, nil
	}
	return nil, store.ErrRecordNotFound
}

func (v *memoryVerificationStore) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for id, ver := range v.store.verifications {
		if ver.UserID == userID {
			delete(v.store.verifications, id)
			n++
		}
	}
	return n, nil
}

func (v *memoryVerificationStore) DeleteByID(ctx context.Context, id uuid.UUID) (int64, error) {
	if _, ok := v.store.verifications[id]; !ok {
		return 0, nil
	}
	delete(v.store.verifications, id)
	return 1, nil
}

type memoryAuditStore struct {
	store *memoryStore
}

func (a *memoryAuditStore) Create(ctx context.Context, entry *domain.AuditLog) error {
	a.store.audit = append(a.store.audit, *entry)
	return nil
}
