package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestAuthRegister(t *testing.T) {
	app := initApp(t)

	usr, token := registerUser(t, app, "ana@colegio.edu.pe", "Ana López")
	if usr.ID == "" || token == "" {
		t.Fatalf("register returned user %+v token %q", usr, token)
	}
	if usr.Grade != "3ero" {
		t.Errorf("Grade = %q; want 3ero", usr.Grade)
	}

	// the token works right away
	req, rec := newAuthRequest(http.MethodGet, "/api/auth/profile", token)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("profile with fresh token = %d; body %s", rec.Code, rec.Body.String())
	}
}

func TestAuthRegister_duplicateEmail(t *testing.T) {
	app := initApp(t)
	registerUser(t, app, "ana@colegio.edu.pe", "Ana López")

	body := marchallObj(t, map[string]string{
		"email":            "ana@colegio.edu.pe",
		"password":         "secret1",
		"password_confirm": "secret1",
		"name":             "Otra Ana",
		"grade":            "4to",
	})
	req, rec := newRequest(http.MethodPost, "/api/auth/register", body)
	app.server.ServeHTTP(rec, req)

	checkCodeAndData(t, httpTest{
		wantCode: http.StatusConflict,
		wantData: marchallObj(t, httpErr{Error: "Este correo electrónico ya está registrado."}),
	}, rec)
}

func TestAuthRegister_validation(t *testing.T) {
	app := initApp(t)

	tests := []httpTest{
		{
			name: "email without @",
			body: marchallObj(t, map[string]string{
				"email": "ana.colegio.edu.pe", "password": "secret1", "password_confirm": "secret1",
				"name": "Ana", "grade": "3ero",
			}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "short password",
			body: marchallObj(t, map[string]string{
				"email": "ana@colegio.edu.pe", "password": "12345", "password_confirm": "12345",
				"name": "Ana", "grade": "3ero",
			}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown grade",
			body: marchallObj(t, map[string]string{
				"email": "ana@colegio.edu.pe", "password": "secret1", "password_confirm": "secret1",
				"name": "Ana", "grade": "6to",
			}),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/auth/register", tt.body)
			app.server.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("code = %d; want %d; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}

			// per-field errors come back as a map
			var fldErrs map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &fldErrs); err != nil {
				t.Errorf("body not a field-error map: %s", rec.Body.String())
			}
		})
	}
}

func TestAuthLogin(t *testing.T) {
	app := initApp(t)
	usr, _ := registerUser(t, app, "ana@colegio.edu.pe", "Ana López")

	body := marchallObj(t, map[string]string{"email": "ana@colegio.edu.pe", "password": "secret1"})
	req, rec := newRequest(http.MethodPost, "/api/auth/login", body)
	app.server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("login code = %d; body %s", rec.Code, rec.Body.String())
	}
	var res AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}
	if res.Token == "" || res.User.ID != usr.ID {
		t.Errorf("login response = %+v", res)
	}
}

func TestAuthLogin_badCredentials(t *testing.T) {
	app := initApp(t)
	registerUser(t, app, "ana@colegio.edu.pe", "Ana López")

	body := marchallObj(t, map[string]string{"email": "ana@colegio.edu.pe", "password": "wrong66"})
	req, rec := newRequest(http.MethodPost, "/api/auth/login", body)
	app.server.ServeHTTP(rec, req)

	checkCodeAndData(t, httpTest{
		wantCode: http.StatusUnauthorized,
		wantData: marchallObj(t, httpErr{Error: "Email o contraseña incorrectos. Verifica tus datos."}),
	}, rec)
}

func TestAuth_missingToken(t *testing.T) {
	app := initApp(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/auth/profile"},
		{http.MethodGet, "/api/schedules"},
		{http.MethodGet, "/api/tasks"},
		{http.MethodGet, "/api/dashboard"},
		{http.MethodDelete, "/api/auth/account"},
	}
	for _, p := range paths {
		req, rec := newRequest(p.method, p.path)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token = %d; want 401", p.method, p.path, rec.Code)
		}
	}
}

func TestAuthProfileUpdate(t *testing.T) {
	app := initApp(t)
	_, token := registerUser(t, app, "ana@colegio.edu.pe", "Ana López")

	body := marchallObj(t, map[string]string{"grade": "4to", "school": "San José"})
	req, rec := newAuthRequest(http.MethodPut, "/api/auth/profile", token, body)
	app.server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("update code = %d; body %s", rec.Code, rec.Body.String())
	}
	var res struct {
		Name   string `json:"name"`
		Grade  string `json:"grade"`
		School string `json:"school"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decoding profile: %v", err)
	}
	// untouched fields keep their values
	if res.Name != "Ana López" || res.Grade != "4to" || res.School != "San José" {
		t.Errorf("profile after update = %+v", res)
	}
}

func TestAuthPasswordChange(t *testing.T) {
	app := initApp(t)
	_, token := registerUser(t, app, "ana@colegio.edu.pe", "Ana López")

	body := marchallObj(t, map[string]string{
		"current_password":     "secret1",
		"new_password":         "secret2",
		"new_password_confirm": "secret2",
	})
	req, rec := newAuthRequest(http.MethodPost, "/api/auth/password-change", token, body)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("password change = %d; body %s", rec.Code, rec.Body.String())
	}

	// the old password no longer signs in
	loginBody := marchallObj(t, map[string]string{"email": "ana@colegio.edu.pe", "password": "secret1"})
	req, rec = newRequest(http.MethodPost, "/api/auth/login", loginBody)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("login with old password = %d; want 401", rec.Code)
	}

	loginBody = marchallObj(t, map[string]string{"email": "ana@colegio.edu.pe", "password": "secret2"})
	req, rec = newRequest(http.MethodPost, "/api/auth/login", loginBody)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("login with new password = %d; want 200", rec.Code)
	}
}

func TestAuthPasswordChange_wrongCurrent(t *testing.T) {
	app := initApp(t)
	_, token := registerUser(t, app, "ana@colegio.edu.pe", "Ana López")

	body := marchallObj(t, map[string]string{
		"current_password":     "nope66",
		"new_password":         "secret2",
		"new_password_confirm": "secret2",
	})
	req, rec := newAuthRequest(http.MethodPost, "/api/auth/password-change", token, body)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("password change with wrong current = %d; want 401", rec.Code)
	}
}

func TestAuthPasswordReset(t *testing.T) {
	app := initApp(t)
	registerUser(t, app, "ana@colegio.edu.pe", "Ana López")

	// existing and unknown emails answer identically
	for _, email := range []string{"ana@colegio.edu.pe", "nadie@colegio.edu.pe"} {
		body := marchallObj(t, map[string]string{"email": email})
		req, rec := newRequest(http.MethodPost, "/api/auth/password-reset", body)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("password reset for %s = %d; want 200", email, rec.Code)
		}
	}

	if len(app.identity.ResetEmails) != 1 || app.identity.ResetEmails[0] != "ana@colegio.edu.pe" {
		t.Errorf("reset emails = %v", app.identity.ResetEmails)
	}
}

func TestAuthLogout(t *testing.T) {
	app := initApp(t)
	_, token := registerUser(t, app, "ana@colegio.edu.pe", "Ana López")

	req, rec := newAuthRequest(http.MethodPost, "/api/auth/logout", token)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("logout = %d; body %s", rec.Code, rec.Body.String())
	}
}

func TestAccountDelete(t *testing.T) {
	app := initApp(t)
	usr, token := registerUser(t, app, "ana@colegio.edu.pe", "Ana López")

	// some owned data first
	schBody := marchallObj(t, map[string]interface{}{
		"course_name": "Historia", "day_of_week": 1, "start_time": "08:00", "end_time": "09:00",
	})
	req, rec := newAuthRequest(http.MethodPost, "/api/schedules", token, schBody)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("schedule create = %d; body %s", rec.Code, rec.Body.String())
	}

	req, rec = newAuthRequest(http.MethodDelete, "/api/auth/account", token)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("account delete = %d; body %s", rec.Code, rec.Body.String())
	}

	if app.identity.Has(usr.ID) {
		t.Error("identity record survived account deletion")
	}

	// the profile is gone; the still-valid token now hits a 404
	req, rec = newAuthRequest(http.MethodGet, "/api/auth/profile", token)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("profile after deletion = %d; want 404", rec.Code)
	}

	req, rec = newAuthRequest(http.MethodGet, "/api/schedules", token)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "[]\n" {
		t.Errorf("schedules after deletion = %d %q; want empty list", rec.Code, rec.Body.String())
	}
}
