package impl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"accounts/internal/domain"
	"accounts/internal/dto"
	"accounts/internal/events"
	"accounts/internal/netutil"
	"accounts/internal/observability/metrics"
	"accounts/internal/observability/middleware"
	"accounts/internal/service"
	"accounts/internal/store"

	"github.com/google/uuid"
)

const defaultNotifyTimeout = 10 * time.Second

type AccountServiceImpl struct {
	Store           dataStore
	PasswordService service.PasswordService
	TokenService    service.TokenService
	EmailService    service.EmailService
	Codes           *VerificationIssuer
	NotifyTimeout   time.Duration

	inflight sync.WaitGroup
}

func NewAccountServiceImpl(
	st *store.Store,
	passwords service.PasswordService,
	tokens service.TokenService,
	email service.EmailService,
) *AccountServiceImpl {
	return &AccountServiceImpl{
		Store:           gormStoreAdapter{store: st},
		PasswordService: passwords,
		TokenService:    tokens,
		EmailService:    email,
		Codes:           NewVerificationIssuer(),
		NotifyTimeout:   defaultNotifyTimeout,
	}
}

var _ service.AccountService = (*AccountServiceImpl)(nil)

type dataStore interface {
	WithTx(ctx context.Context, fn func(tx storeTx) error) error
}

type storeTx interface {
	Users() userStore
	Verifications() verificationStore
	Audit() auditStore
	DeleteUserData(ctx context.Context, userID uuid.UUID) (map[string]int64, error)
}

type userStore interface {
	Create(ctx context.Context, usr *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetCredentials(ctx context.Context, email string) (*domain.User, error)
	EmailTaken(ctx context.Context, email string, except uuid.UUID) (bool, error)
	Save(ctx context.Context, usr *domain.User, columns ...string) error
	SetEmailVerified(ctx context.Context, userID uuid.UUID) error
	ReplacePasswordHash(ctx context.Context, userID uuid.UUID, oldHash, newHash string) (bool, error)
}

type verificationStore interface {
	Create(ctx context.Context, v *domain.Verification) error
	GetByCode(ctx context.Context, code string) (*domain.Verification, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteByID(ctx context.Context, id uuid.UUID) (int64, error)
}

type auditStore interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}

type gormStoreAdapter struct {
	store *store.Store
}

func (g gormStoreAdapter) WithTx(ctx context.Context, fn func(tx storeTx) error) error {
	if g.store == nil {
		return ErrNilStore
	}
	return g.store.WithTx(ctx, func(tx *store.Store) error {
		return fn(gormTxAdapter{tx: tx})
	})
}

type gormTxAdapter struct {
	tx *store.Store
}

func (g gormTxAdapter) Users() userStore { return g.tx.Users() }

func (g gormTxAdapter) Verifications() verificationStore { return g.tx.Verifications() }

func (g gormTxAdapter) Audit() auditStore { return g.tx.Audit() }

func (g gormTxAdapter) DeleteUserData(ctx context.Context, userID uuid.UUID) (map[string]int64, error) {
	return g.tx.DeleteUserData(ctx, userID)
}

// notification is queued inside a transaction and sent only after commit.
type notification struct {
	to   string
	code string
}

func (a *AccountServiceImpl) CreateAccount(ctx context.Context, r dto.CreateAccountRequest) (resp dto.CreateAccountResponse) {
	defer a.recoverResult(ctx, "create_account", &resp.Result, msgCreateFailed)

	var pending *notification
	err := a.createAccount(ctx, r, &pending)
	metrics.RegistrationsTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		resp.Result = a.fail(ctx, "create_account", err, msgCreateFailed)
		return resp
	}
	a.dispatch(ctx, pending)
	resp.Result = dto.Ok()
	return resp
}

func (a *AccountServiceImpl) createAccount(ctx context.Context, r dto.CreateAccountRequest, pending **notification) error {
	email := domain.NormalizeEmail(r.Email)
	if err := domain.ValidateEmail(email); err != nil {
		return err
	}
	role, ok := domain.ParseRole(r.Role)
	if !ok {
		return domain.ErrInvalidRole
	}
	// hashing stays outside the transaction
	hash, err := a.PasswordService.Hash(r.Password)
	if err != nil {
		return err
	}

	return a.Store.WithTx(ctx, func(tx storeTx) error {
		taken, err := tx.Users().EmailTaken(ctx, email, uuid.Nil)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrEmailTaken
		}

		now := time.Now().UTC()
		u := &domain.User{
			ID:           uuid.New(),
			Email:        email,
			PasswordHash: hash,
			Role:         role,
			Verified:     false,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Users().Create(ctx, u); err != nil {
			return userWriteErr(err)
		}

		v, err := a.Codes.Issue(ctx, tx.Verifications(), u.ID)
		if err != nil {
			return fmt.Errorf("issue verification: %w", err)
		}

		if err := a.audit(ctx, tx, &u.ID, domain.AuditAccountCreated, events.UserRegistered{
			UserID: u.ID.String(), Email: u.Email, Role: string(u.Role), At: now,
		}); err != nil {
			return err
		}
		*pending = &notification{to: u.Email, code: v.Code}
		return nil
	})
}

func (a *AccountServiceImpl) Login(ctx context.Context, r dto.LoginRequest) (resp dto.LoginResponse) {
	defer a.recoverResult(ctx, "login", &resp.Result, msgLoginFailed)

	token, err := a.login(ctx, r)
	metrics.LoginsTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		resp.Result = a.fail(ctx, "login", err, msgLoginFailed)
		return resp
	}
	resp.Result = dto.Ok()
	resp.Token = token
	return resp
}

func (a *AccountServiceImpl) login(ctx context.Context, r dto.LoginRequest) (string, error) {
	email := domain.NormalizeEmail(r.Email)
	var userID uuid.UUID

	// Always a transaction: a policy upgrade rewrites the stored hash.
	err := a.Store.WithTx(ctx, func(tx storeTx) error {
		u, err := tx.Users().GetCredentials(ctx, email)
		if errors.Is(err, store.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		if err != nil {
			return err
		}

		rehashNeeded, ok := a.PasswordService.Verify(r.Password, u.PasswordHash)
		if !ok {
			return domain.ErrInvalidCredentials
		}
		if rehashNeeded {
			hash, err := a.PasswordService.Hash(r.Password)
			if err != nil {
				return err
			}
			// a password change committed meanwhile wins over the upgrade
			replaced, err := tx.Users().ReplacePasswordHash(ctx, u.ID, u.PasswordHash, hash)
			if err != nil {
				return err
			}
			if !replaced {
				middleware.Logger(ctx).Debug("password hash upgrade skipped", "user_id", u.ID)
			}
		}
		userID = u.ID
		return nil
	})
	if err != nil {
		return "", err
	}
	return a.TokenService.Sign(ctx, userID)
}

func (a *AccountServiceImpl) FindByID(ctx context.Context, id domain.UserID) (resp dto.UserProfileResponse) {
	defer a.recoverResult(ctx, "find_by_id", &resp.Result, msgUserNotFound)

	var u *domain.User
	err := a.Store.WithTx(ctx, func(tx storeTx) error {
		var err error
		u, err = tx.Users().GetByID(ctx, id)
		if errors.Is(err, store.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	})
	if err != nil {
		// same text either way; Kind still tells a miss from an outage
		res := a.fail(ctx, "find_by_id", err, msgUserNotFound)
		res.Error = msgUserNotFound
		resp.Result = res
		return resp
	}
	resp.Result = dto.Ok()
	resp.User = dto.ProfileFromUser(u)
	return resp
}

func (a *AccountServiceImpl) EditProfile(ctx context.Context, id domain.UserID, r dto.EditProfileRequest) (resp dto.EditProfileResponse) {
	defer a.recoverResult(ctx, "edit_profile", &resp.Result, msgUpdateFailed)

	var pending *notification
	err := a.editProfile(ctx, id, r, &pending)
	metrics.ProfileUpdates.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		resp.Result = a.fail(ctx, "edit_profile", err, msgUpdateFailed)
		return resp
	}
	a.dispatch(ctx, pending)
	resp.Result = dto.Ok()
	return resp
}

func (a *AccountServiceImpl) editProfile(ctx context.Context, id domain.UserID, r dto.EditProfileRequest, pending **notification) error {
	var newEmail string
	if r.Email != nil {
		newEmail = domain.NormalizeEmail(*r.Email)
		if err := domain.ValidateEmail(newEmail); err != nil {
			return err
		}
	}
	var newHash string
	if r.Password != nil {
		var err error
		if newHash, err = a.PasswordService.Hash(*r.Password); err != nil {
			return err
		}
	}

	return a.Store.WithTx(ctx, func(tx storeTx) error {
		u, err := tx.Users().GetByIDForUpdate(ctx, id)
		if errors.Is(err, store.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		var columns []string

		if r.Email != nil && newEmail != u.Email {
			taken, err := tx.Users().EmailTaken(ctx, newEmail, u.ID)
			if err != nil {
				return err
			}
			if taken {
				return domain.ErrEmailTaken
			}
			old := u.Email
			u.Email = newEmail
			u.Verified = false
			columns = append(columns, "email", "verified")

			v, err := a.Codes.Issue(ctx, tx.Verifications(), u.ID)
			if err != nil {
				return fmt.Errorf("issue verification: %w", err)
			}
			if err := a.audit(ctx, tx, &u.ID, domain.AuditEmailChanged, events.EmailChanged{
				UserID: u.ID.String(), OldEmail: old, NewEmail: newEmail, At: now,
			}); err != nil {
				return err
			}
			*pending = &notification{to: newEmail, code: v.Code}
		}

		if newHash != "" {
			u.PasswordHash = newHash
			columns = append(columns, "password_hash")
			if err := a.audit(ctx, tx, &u.ID, domain.AuditPasswordChange, events.PasswordChanged{
				UserID: u.ID.String(), At: now,
			}); err != nil {
				return err
			}
		}

		if len(columns) == 0 {
			return nil
		}
		return userWriteErr(tx.Users().Save(ctx, u, columns...))
	})
}

func (a *AccountServiceImpl) DeleteAccount(ctx context.Context, id domain.UserID) (resp dto.DeleteAccountResponse) {
	defer a.recoverResult(ctx, "delete_account", &resp.Result, msgDeleteFailed)

	err := a.Store.WithTx(ctx, func(tx storeTx) error {
		removed, err := tx.DeleteUserData(ctx, id)
		if errors.Is(err, store.ErrRecordNotFound) {
			return domain.ErrAccountNotFound
		}
		if err != nil {
			return err
		}
		// The user's own audit rows are gone; this one is kept unlinked.
		return a.audit(ctx, tx, nil, domain.AuditAccountDeleted, events.UserDeleted{
			UserID: id.String(), Removed: removed, At: time.Now().UTC(),
		})
	})
	metrics.DeletionsTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		resp.Result = a.fail(ctx, "delete_account", err, msgDeleteFailed)
		return resp
	}
	resp.Result = dto.Ok()
	return resp
}

func (a *AccountServiceImpl) VerifyEmail(ctx context.Context, r dto.VerifyEmailRequest) (resp dto.VerifyEmailResponse) {
	defer a.recoverResult(ctx, "verify_email", &resp.Result, msgVerifyFailed)

	err := a.verifyEmail(ctx, r.Code)
	metrics.VerificationsTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		resp.Result = a.fail(ctx, "verify_email", err, msgVerifyFailed)
		return resp
	}
	resp.Result = dto.Ok()
	return resp
}

func (a *AccountServiceImpl) verifyEmail(ctx context.Context, code string) error {
	if code == "" {
		return domain.ErrVerificationNotFound
	}
	return a.Store.WithTx(ctx, func(tx storeTx) error {
		v, err := tx.Verifications().GetByCode(ctx, code)
		if errors.Is(err, store.ErrRecordNotFound) {
			return domain.ErrVerificationNotFound
		}
		if err != nil {
			return err
		}

		// user row first, same lock order as editProfile
		if _, err := tx.Users().GetByIDForUpdate(ctx, v.UserID); err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return domain.ErrVerificationNotFound
			}
			return err
		}

		// Delete first: zero rows means a concurrent edit replaced the code.
		n, err := tx.Verifications().DeleteByID(ctx, v.ID)
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrVerificationNotFound
		}

		if err := tx.Users().SetEmailVerified(ctx, v.UserID); err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return domain.ErrVerificationNotFound
			}
			return err
		}

		var email string
		if v.User != nil {
			email = v.User.Email
		}
		return a.audit(ctx, tx, &v.UserID, domain.AuditEmailVerified, events.EmailVerified{
			UserID: v.UserID.String(), Email: email, At: time.Now().UTC(),
		})
	})
}

// Wait blocks until every verification email already handed off has been
// attempted. Called on shutdown.
func (a *AccountServiceImpl) Wait() {
	a.inflight.Wait()
}

func (a *AccountServiceImpl) dispatch(ctx context.Context, n *notification) {
	if n == nil || a.EmailService == nil {
		return
	}
	timeout := a.NotifyTimeout
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	log := middleware.Logger(ctx)

	a.inflight.Add(1)
	go func() {
		defer a.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				metrics.NotificationsTotal.WithLabelValues(metrics.ResultFailure).Inc()
				log.Error("verification email panicked", "to", n.to, "panic", r)
			}
		}()

		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		err := a.EmailService.SendVerification(sendCtx, n.to, n.code)
		metrics.NotificationsTotal.WithLabelValues(metrics.Result(err)).Inc()
		if err != nil {
			log.Warn("verification email not sent", "to", n.to, "err", err)
			return
		}
		log.Debug("verification email sent", "to", n.to)
	}()
}

func (a *AccountServiceImpl) audit(ctx context.Context, tx storeTx, userID *uuid.UUID, action string, event any) error {
	meta, err := json.Marshal(event)
	if err != nil {
		return err
	}
	client := netutil.ClientFromContext(ctx)
	return tx.Audit().Create(ctx, &domain.AuditLog{
		ID:        uuid.New(),
		UserID:    userID,
		Action:    action,
		Metadata:  meta,
		IP:        client.IP,
		UserAgent: client.UserAgent,
		CreatedAt: time.Now().UTC(),
	})
}

func (a *AccountServiceImpl) fail(ctx context.Context, op string, err error, fallback string) dto.Result {
	kind := domain.KindOf(err)
	log := middleware.Logger(ctx).With("op", op, "kind", kind.String())
	if kind == domain.KindUnexpected {
		log.Error("account operation failed", "err", err)
	} else {
		log.Info("account operation rejected", "err", err)
	}
	return dto.Fail(kind, domain.PublicMessage(err, fallback))
}

// recoverResult must be deferred directly so recover sees the panic.
func (a *AccountServiceImpl) recoverResult(ctx context.Context, op string, res *dto.Result, fallback string) {
	if r := recover(); r != nil {
		middleware.Logger(ctx).Error("account operation panicked", "op", op, "panic", r)
		*res = dto.Fail(domain.KindUnexpected, fallback)
	}
}

func userWriteErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrDuplicateEmail):
		return fmt.Errorf("%w: %v", domain.ErrEmailTaken, err)
	case errors.Is(err, store.ErrRecordNotFound):
		return domain.ErrUserNotFound
	}
	return err
}
