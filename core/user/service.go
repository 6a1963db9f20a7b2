package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/oscardm22/estuguia/core"
)

var (
	// errors
	ErrNotFound = errors.New("user not found")
)

type (
	// Account is the identity provider's own record of a user.
	Account struct {
		ID            string
		Email         string
		EmailVerified bool
	}

	// Identity is the external identity service. Implementations classify
	// every failure into a core.AuthError kind.
	Identity interface {
		SignIn(ctx context.Context, email, password string) (Account, error)
		SignUp(ctx context.Context, email, password string) (Account, error)
		UpdateDisplayName(ctx context.Context, userID, name string) error
		SendPasswordResetEmail(ctx context.Context, email string) error
		// ChangePassword re-authenticates with the current password before updating.
		ChangePassword(ctx context.Context, email, currentPassword, newPassword string) error
		DeleteAccount(ctx context.Context, userID string) error
	}

	// Repository stores user profile documents, keyed by identity id.
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		DeleteUser(ctx context.Context, id string) error
	}

	Service struct {
		identity Identity
		repo     Repository
		logger   core.Logger
	}
)

func NewService(identity Identity, repo Repository, logger core.Logger) *Service {
	return &Service{identity: identity, repo: repo, logger: logger}
}

func (svc *Service) Identity() Identity { return svc.identity }

// Register creates the identity record first, then the profile document
// keyed by the issued id.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	acct, err := svc.identity.SignUp(ctx, nu.Email, nu.Password)
	if err != nil {
		return User{}, err
	}

	usr := User{
		ID:            acct.ID,
		Email:         acct.Email,
		Name:          nu.Name,
		Grade:         nu.Grade,
		Section:       nu.Section,
		School:        nu.School,
		CreatedAt:     core.NowFunc().UTC(),
		EmailVerified: acct.EmailVerified,
	}
	usr, err = svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}

	// cosmetic; the profile document is the source of truth for the name
	if err = svc.identity.UpdateDisplayName(ctx, usr.ID, usr.Name); err != nil {
		svc.logger.Warn(fmt.Sprintf("setting display name: %v", err), err)
	}
	return usr, nil
}

func (svc *Service) Login(ctx context.Context, l Login) (User, error) {
	acct, err := svc.identity.SignIn(ctx, l.Email, l.Password)
	if err != nil {
		return User{}, err
	}
	usr, err := svc.repo.GetUserByID(ctx, acct.ID)
	if err != nil {
		return User{}, err
	}
	usr.EmailVerified = acct.EmailVerified
	return usr, nil
}

func (svc *Service) Profile(ctx context.Context, sess core.Session) (User, error) {
	return svc.repo.GetUserByID(ctx, sess.UserID)
}

func (svc *Service) UpdateProfile(ctx context.Context, sess core.Session, up UpdateProfile) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, sess.UserID)
	if err != nil {
		return User{}, err
	}

	if up.Name != "" {
		usr.Name = up.Name
	}
	if up.Grade != "" {
		usr.Grade = up.Grade
	}
	if up.Section != "" {
		usr.Section = up.Section
	}
	if up.School != "" {
		usr.School = up.School
	}
	if up.ProfileImage != "" {
		usr.ProfileImage = up.ProfileImage
	}

	usr, err = svc.repo.UpdateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}

	if up.Name != "" {
		if err = svc.identity.UpdateDisplayName(ctx, usr.ID, usr.Name); err != nil {
			svc.logger.Warn(fmt.Sprintf("setting display name: %v", err), err)
		}
	}
	return usr, nil
}

func (svc *Service) ChangePassword(ctx context.Context, sess core.Session, cp ChangePassword) error {
	return svc.identity.ChangePassword(ctx, sess.Email, cp.CurrentPassword, cp.NewPassword)
}

func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	return svc.identity.SendPasswordResetEmail(ctx, core.CleanString(email, true /* lower */))
}
