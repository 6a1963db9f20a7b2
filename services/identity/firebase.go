// Package identitysvc implements the external identity service clients.
package identitysvc

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/oscardm22/estuguia/core"
	"github.com/oscardm22/estuguia/core/user"
)

var identityToolkitHost = "https://identitytoolkit.googleapis.com/v1"

const identityToolkitScope = "https://www.googleapis.com/auth/identitytoolkit"

// FirebaseIdentity talks to the Firebase Identity Toolkit REST API.
// Every failure comes back as a core.AuthError kind; callers never see the
// provider's raw error codes.
type FirebaseIdentity struct {
	apiKey    string
	projectID string

	// tokens mints service-account bearer tokens for the admin endpoints
	// (accounts:update / accounts:delete by localId), which reject requests
	// authorized by the web API key alone.
	tokens oauth2.TokenSource
}

var _ user.Identity = (*FirebaseIdentity)(nil)

func NewFirebaseIdentity(conf *core.Config) (*FirebaseIdentity, error) {
	f := &FirebaseIdentity{
		apiKey:    conf.Firebase.WebAPIKey,
		projectID: conf.Firebase.ProjectID,
	}
	if path := conf.Firebase.CredentialsFile; path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "reading identity credentials")
		}
		jwtConf, err := google.JWTConfigFromJSON(data, identityToolkitScope)
		if err != nil {
			return nil, errors.Wrap(err, "parsing identity credentials")
		}
		f.tokens = jwtConf.TokenSource(context.Background())
	}
	return f, nil
}

type (
	accountPayload struct {
		Email             string `json:"email,omitempty"`
		Password          string `json:"password,omitempty"`
		IDToken           string `json:"idToken,omitempty"`
		LocalID           string `json:"localId,omitempty"`
		DisplayName       string `json:"displayName,omitempty"`
		RequestType       string `json:"requestType,omitempty"`
		TargetProjectID   string `json:"targetProjectId,omitempty"`
		ReturnSecureToken bool   `json:"returnSecureToken,omitempty"`
	}

	accountResponse struct {
		LocalID       string `json:"localId"`
		Email         string `json:"email"`
		IDToken       string `json:"idToken"`
		EmailVerified bool   `json:"emailVerified"`
		Error         *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
)

func (f *FirebaseIdentity) SignIn(ctx context.Context, email, password string) (user.Account, error) {
	res, err := f.call(ctx, "accounts:signInWithPassword", accountPayload{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return user.Account{}, err
	}
	return user.Account{ID: res.LocalID, Email: res.Email, EmailVerified: res.EmailVerified}, nil
}

func (f *FirebaseIdentity) SignUp(ctx context.Context, email, password string) (user.Account, error) {
	res, err := f.call(ctx, "accounts:signUp", accountPayload{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return user.Account{}, err
	}
	return user.Account{ID: res.LocalID, Email: res.Email}, nil
}

func (f *FirebaseIdentity) UpdateDisplayName(ctx context.Context, userID, name string) error {
	_, err := f.callAsAdmin(ctx, "accounts:update", accountPayload{
		LocalID:         userID,
		DisplayName:     name,
		TargetProjectID: f.projectID,
	})
	return err
}

func (f *FirebaseIdentity) SendPasswordResetEmail(ctx context.Context, email string) error {
	_, err := f.call(ctx, "accounts:sendOobCode", accountPayload{
		Email:       email,
		RequestType: "PASSWORD_RESET",
	})
	return err
}

// ChangePassword re-authenticates with the current credentials before
// updating, so a stale session cannot rotate the password.
func (f *FirebaseIdentity) ChangePassword(ctx context.Context, email, currentPassword, newPassword string) error {
	res, err := f.call(ctx, "accounts:signInWithPassword", accountPayload{
		Email:             email,
		Password:          currentPassword,
		ReturnSecureToken: true,
	})
	if err != nil {
		return err
	}
	_, err = f.call(ctx, "accounts:update", accountPayload{
		IDToken:  res.IDToken,
		Password: newPassword,
	})
	return err
}

func (f *FirebaseIdentity) DeleteAccount(ctx context.Context, userID string) error {
	_, err := f.callAsAdmin(ctx, "accounts:delete", accountPayload{
		LocalID:         userID,
		TargetProjectID: f.projectID,
	})
	return err
}

func (f *FirebaseIdentity) call(ctx context.Context, endpoint string, payload accountPayload) (accountResponse, error) {
	return f.send(ctx, endpoint, payload, map[string]string{"Content-Type": "application/json"})
}

func (f *FirebaseIdentity) callAsAdmin(ctx context.Context, endpoint string, payload accountPayload) (accountResponse, error) {
	if f.tokens == nil {
		return accountResponse{}, errors.New("identity admin calls need a service account credentials file")
	}
	tok, err := f.tokens.Token()
	if err != nil {
		return accountResponse{}, core.NewAuthError(core.AuthErrNetwork, err)
	}
	return f.send(ctx, endpoint, payload, map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer " + tok.AccessToken,
	})
}

func (f *FirebaseIdentity) send(ctx context.Context, endpoint string, payload accountPayload, headers map[string]string) (accountResponse, error) {
	var parsed accountResponse

	body, err := json.Marshal(payload)
	if err != nil {
		return parsed, errors.Wrap(err, "marshalling identity payload")
	}

	req := rest.Request{
		Method:      rest.Post,
		BaseURL:     identityToolkitHost + "/" + endpoint,
		Headers:     headers,
		QueryParams: map[string]string{"key": f.apiKey},
		Body:        body,
	}
	res, err := rest.SendWithContext(ctx, req)
	if err != nil {
		return parsed, core.NewAuthError(core.AuthErrNetwork, err)
	}

	if err = json.Unmarshal([]byte(res.Body), &parsed); err != nil {
		return parsed, errors.Wrapf(err, "decoding %s response", endpoint)
	}
	if res.StatusCode >= http.StatusBadRequest {
		var msg string
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return parsed, core.NewAuthError(classify(msg), errors.Errorf("%s: %s", endpoint, msg))
	}
	return parsed, nil
}

// classify maps Identity Toolkit error codes onto the app's failure taxonomy.
func classify(code string) core.AuthErrorKind {
	switch {
	case contains(code, "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS"):
		return core.AuthErrInvalidCredentials
	case contains(code, "EMAIL_EXISTS"):
		return core.AuthErrEmailExists
	case contains(code, "WEAK_PASSWORD"):
		return core.AuthErrWeakPassword
	case contains(code, "INVALID_EMAIL"):
		return core.AuthErrInvalidEmail
	case contains(code, "USER_DISABLED"):
		return core.AuthErrUserDisabled
	case contains(code, "TOO_MANY_ATTEMPTS", "QUOTA_EXCEEDED"):
		return core.AuthErrRateLimited
	case contains(code, "USER_NOT_FOUND"):
		return core.AuthErrNotFound
	}
	return core.AuthErrUnknown
}

func contains(code string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(code, kw) {
			return true
		}
	}
	return false
}
