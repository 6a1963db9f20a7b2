package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/oscardm22/estuguia/core"
	"github.com/oscardm22/estuguia/core/account"
	"github.com/oscardm22/estuguia/core/reminder"
	"github.com/oscardm22/estuguia/core/schedule"
	"github.com/oscardm22/estuguia/core/task"
	"github.com/oscardm22/estuguia/core/user"
	identitysvc "github.com/oscardm22/estuguia/services/identity"
	"github.com/oscardm22/estuguia/services/workqueue"
	inmemdb "github.com/oscardm22/estuguia/storage/inmem"
)

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

type testApp struct {
	server   *Server
	conf     *core.Config
	identity *identitysvc.InmemIdentity
	runner   *workqueue.TimerRunner
}

func newTestConfig() *core.Config {
	conf := &core.Config{
		TestMode:  true,
		AppName:   "EstuGuia",
		SecretKey: []byte("secret"),
	}
	conf.Server.JWTExpirationDelta = 10 * time.Minute
	return conf
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type nopNotifier struct{}

func (nopNotifier) Post(reminder.Notification) error { return nil }

func initApp(t *testing.T) *testApp {
	t.Helper()

	conf := newTestConfig()
	logger := nopLogger{}

	db := inmemdb.Open()
	userRepo := inmemdb.NewUserRepository(db)
	scheduleRepo := inmemdb.NewScheduleRepository(db)
	taskRepo := inmemdb.NewTaskRepository(db)
	identity := identitysvc.NewInmemIdentity()

	runner := workqueue.NewTimerRunner()
	reminders := reminder.NewScheduler(runner, nopNotifier{}, logger)
	runner.SetHandler(reminders.Deliver)

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	schedule.InitValidators(validate, translator)

	server := NewServer(ServerDeps{
		Conf:        conf,
		Logger:      logger,
		UserSvc:     user.NewService(identity, userRepo, logger),
		ScheduleSvc: schedule.NewService(scheduleRepo),
		TaskSvc:     task.NewService(taskRepo, reminders),
		AccountSvc:  account.NewService(identity, userRepo, scheduleRepo, taskRepo, reminders, logger),
		Validate:    validate,
		Translator:  translator,
	})
	return &testApp{server: server, conf: conf, identity: identity, runner: runner}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// registerUser signs up through the API and returns the created user with a
// valid token.
func registerUser(t *testing.T, app *testApp, email, name string) (user.User, string) {
	t.Helper()

	body := marchallObj(t, map[string]string{
		"email":            email,
		"password":         "secret1",
		"password_confirm": "secret1",
		"name":             name,
		"grade":            "3ero",
	})
	req, rec := newRequest(http.MethodPost, "/api/auth/register", body)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("registerUser() code = %d; body %s", rec.Code, rec.Body.String())
	}

	var res AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("registerUser() failed to decode: %v", err)
	}
	return res.User, res.Token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %s; wantData %s", rec.Body.Bytes(), tt.wantData)
	}
}

func mockNow(t *testing.T, now time.Time) {
	t.Helper()
	orig := core.NowFunc
	core.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { core.NowFunc = orig })
}
