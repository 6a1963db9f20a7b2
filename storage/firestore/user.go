package firestoredb

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"

	"github.com/oscardm22/estuguia/core/user"
)

// userDoc is the stored shape of a profile. Field names match the documents
// the mobile clients write; createdAt is epoch millis there.
type userDoc struct {
	ID            string `firestore:"id"`
	Email         string `firestore:"email"`
	Name          string `firestore:"name"`
	Grade         string `firestore:"grade"`
	Section       string `firestore:"section"`
	School        string `firestore:"school"`
	ProfileImage  string `firestore:"profileImage"`
	CreatedAt     int64  `firestore:"createdAt"`
	EmailVerified bool   `firestore:"isEmailVerified"`
}

func toUserDoc(usr user.User) userDoc {
	return userDoc{
		ID:            usr.ID,
		Email:         usr.Email,
		Name:          usr.Name,
		Grade:         usr.Grade,
		Section:       usr.Section,
		School:        usr.School,
		ProfileImage:  usr.ProfileImage,
		CreatedAt:     usr.CreatedAt.UnixNano() / int64(time.Millisecond),
		EmailVerified: usr.EmailVerified,
	}
}

func (doc userDoc) toUser() user.User {
	return user.User{
		ID:            doc.ID,
		Email:         doc.Email,
		Name:          doc.Name,
		Grade:         doc.Grade,
		Section:       doc.Section,
		School:        doc.School,
		ProfileImage:  doc.ProfileImage,
		CreatedAt:     time.Unix(0, doc.CreatedAt*int64(time.Millisecond)).UTC(),
		EmailVerified: doc.EmailVerified,
	}
}

type userRepository struct {
	client *firestore.Client
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(client *firestore.Client) user.Repository {
	return &userRepository{client: client}
}

// CreateUser writes the profile document keyed by the identity-issued id.
func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	doc := toUserDoc(usr)
	if _, err := repo.client.Collection(usersCollection).Doc(usr.ID).Set(ctx, doc); err != nil {
		return user.User{}, errors.Wrap(wireErr(err), "creating user document")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	snap, err := repo.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(wireErr(err), "getting user document")
	}

	var doc userDoc
	if err = snap.DataTo(&doc); err != nil {
		return user.User{}, errors.Wrap(err, "decoding user document")
	}
	return doc.toUser(), nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	ref := repo.client.Collection(usersCollection).Doc(usr.ID)
	if _, err := ref.Get(ctx); err != nil {
		if isNotFound(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(wireErr(err), "getting user document")
	}

	if _, err := ref.Set(ctx, toUserDoc(usr)); err != nil {
		return user.User{}, errors.Wrap(wireErr(err), "updating user document")
	}
	return usr, nil
}

// DeleteUser is a no-op when the document is already gone.
func (repo *userRepository) DeleteUser(ctx context.Context, id string) error {
	if _, err := repo.client.Collection(usersCollection).Doc(id).Delete(ctx); err != nil {
		return errors.Wrap(wireErr(err), "deleting user document")
	}
	return nil
}
