// Package firestoredb implements the document-store repositories on
// Cloud Firestore. Documents keep the wire field names the mobile clients
// already use; the repositories translate them to and from domain entities.
package firestoredb

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oscardm22/estuguia/core"
)

const (
	usersCollection     = "users"
	schedulesCollection = "schedules"
	tasksCollection     = "tasks"
)

func Open(ctx context.Context, conf *core.Config) (*firestore.Client, error) {
	opts := make([]option.ClientOption, 0, 1)
	if conf.Firebase.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(conf.Firebase.CredentialsFile))
	}
	return firestore.NewClient(ctx, conf.Firebase.ProjectID, opts...)
}

// isNotFound reports whether the store rejected a lookup for a missing document.
func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// wireErr classifies transport-level store failures; anything else passes
// through untouched for the caller to wrap.
func wireErr(err error) error {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded:
		return core.NewAuthError(core.AuthErrNetwork, err)
	case codes.ResourceExhausted:
		return core.NewAuthError(core.AuthErrRateLimited, err)
	}
	return err
}
