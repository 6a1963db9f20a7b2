package identitysvc

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/oscardm22/estuguia/core"
	"github.com/oscardm22/estuguia/core/user"
)

type inmemAccount struct {
	id           string
	email        string
	name         string
	passwordHash []byte
	disabled     bool
}

// InmemIdentity is a process-local identity provider used in tests and
// local development. It mirrors the failure taxonomy of the real provider.
type InmemIdentity struct {
	mu       sync.Mutex
	accounts map[string]*inmemAccount // keyed by email

	// ResetEmails records password-reset requests instead of sending mail.
	ResetEmails []string
	// DeleteErr, when set, is returned by DeleteAccount; tests use it to
	// simulate identity-deletion failure.
	DeleteErr error
}

var _ user.Identity = (*InmemIdentity)(nil)

func NewInmemIdentity() *InmemIdentity {
	return &InmemIdentity{accounts: make(map[string]*inmemAccount)}
}

func (f *InmemIdentity) SignIn(_ context.Context, email, password string) (user.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	acct, ok := f.accounts[email]
	if !ok {
		return user.Account{}, core.NewAuthError(core.AuthErrInvalidCredentials, errors.New("EMAIL_NOT_FOUND"))
	}
	if acct.disabled {
		return user.Account{}, core.NewAuthError(core.AuthErrUserDisabled, errors.New("USER_DISABLED"))
	}
	if err := bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)); err != nil {
		return user.Account{}, core.NewAuthError(core.AuthErrInvalidCredentials, errors.New("INVALID_PASSWORD"))
	}
	return user.Account{ID: acct.id, Email: acct.email}, nil
}

func (f *InmemIdentity) SignUp(_ context.Context, email, password string) (user.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.accounts[email]; ok {
		return user.Account{}, core.NewAuthError(core.AuthErrEmailExists, errors.New("EMAIL_EXISTS"))
	}
	if len(password) < 6 {
		return user.Account{}, core.NewAuthError(core.AuthErrWeakPassword, errors.New("WEAK_PASSWORD"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return user.Account{}, err
	}
	acct := &inmemAccount{id: uuid.New().String(), email: email, passwordHash: hash}
	f.accounts[email] = acct
	return user.Account{ID: acct.id, Email: acct.email}, nil
}

func (f *InmemIdentity) UpdateDisplayName(_ context.Context, userID, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if acct := f.byID(userID); acct != nil {
		acct.name = name
		return nil
	}
	return core.NewAuthError(core.AuthErrNotFound, errors.New("USER_NOT_FOUND"))
}

func (f *InmemIdentity) SendPasswordResetEmail(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.accounts[email]; !ok {
		return core.NewAuthError(core.AuthErrNotFound, errors.New("EMAIL_NOT_FOUND"))
	}
	f.ResetEmails = append(f.ResetEmails, email)
	return nil
}

func (f *InmemIdentity) ChangePassword(ctx context.Context, email, currentPassword, newPassword string) error {
	if _, err := f.SignIn(ctx, email, currentPassword); err != nil {
		return err
	}
	if len(newPassword) < 6 {
		return core.NewAuthError(core.AuthErrWeakPassword, errors.New("WEAK_PASSWORD"))
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.MinCost)
	if err != nil {
		return err
	}
	f.accounts[email].passwordHash = hash
	return nil
}

func (f *InmemIdentity) DeleteAccount(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	for email, acct := range f.accounts {
		if acct.id == userID {
			delete(f.accounts, email)
			return nil
		}
	}
	return core.NewAuthError(core.AuthErrNotFound, errors.New("USER_NOT_FOUND"))
}

// Has reports whether an identity record exists for the user id.
func (f *InmemIdentity) Has(userID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID(userID) != nil
}

func (f *InmemIdentity) byID(userID string) *inmemAccount {
	for _, acct := range f.accounts {
		if acct.id == userID {
			return acct
		}
	}
	return nil
}
