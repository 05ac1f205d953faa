package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/Tomtimmy/learnspace/apps/api/echo"
	"github.com/Tomtimmy/learnspace/core"
	"github.com/Tomtimmy/learnspace/core/course"
	"github.com/Tomtimmy/learnspace/core/notification"
	"github.com/Tomtimmy/learnspace/core/session"
	"github.com/Tomtimmy/learnspace/core/user"
	emailsvc "github.com/Tomtimmy/learnspace/services/email"
	"github.com/Tomtimmy/learnspace/storage/database/inmem"
	"github.com/Tomtimmy/learnspace/storage/state"
)

type noopLogger struct{}

func (noopLogger) Debug(msg string, args ...interface{}) {}
func (noopLogger) Info(msg string, args ...interface{})  {}
func (noopLogger) Warn(msg string, args ...interface{})  {}
func (noopLogger) Error(msg string, args ...interface{}) {}
func (noopLogger) Fatal(msg string, args ...interface{}) {}

type testApp struct {
	app     echoapi.Server
	usrSvc  user.Service
	crsSvc  course.Service
	student user.User
	admin   user.User
	goCrs   course.Course
}

func setup(t *testing.T) *testApp {
	t.Helper()

	conf := &core.Config{
		TestMode:                  true,
		AppName:                   "Learnspace",
		SecretKey:                 "secret",
		DefaultUserPassword:       "password",
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		ToastTimeoutDelta:         time.Minute,
	}
	conf.Server.JWTExpirationDelta = time.Hour
	conf.Server.JWTRefreshExpirationDelta = 24 * time.Hour

	db, err := inmem.Open()
	if err != nil {
		t.Fatalf("inmem.Open() failed, %v", err)
	}
	usrSvc := user.NewServiceMock(conf, inmem.NewUserRepository(db), emailsvc.NewConsoleServiceMock(conf))
	crsSvc := course.NewService(inmem.NewCourseRepository(db))

	student, err := usrSvc.Create(user.NewUser{Name: "Alice", Email: "alice@test.cd", Password: "password123"})
	if err != nil {
		t.Fatalf("creating student failed, %v", err)
	}
	admin, err := usrSvc.Create(user.NewUser{Name: "Boss", Email: "boss@test.cd", Password: "admin123", Role: user.RoleAdmin})
	if err != nil {
		t.Fatalf("creating admin failed, %v", err)
	}
	goCrs, err := crsSvc.Create(course.NewCourse{
		Title:      "Go Fundamentals",
		Category:   "Programming",
		Instructor: "Grace",
		Modules: []course.Module{
			{Title: "Basics", Lessons: []course.Lesson{{Title: "Hello"}, {Title: "Types"}}},
		},
	})
	if err != nil {
		t.Fatalf("creating course failed, %v", err)
	}

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)

	sessions := session.NewRegistry(usrSvc, crsSvc, state.NewMemStore(), noopLogger{}, conf.ToastTimeoutDelta)

	app := echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     noopLogger{},
		UserSvc:    usrSvc,
		CourseSvc:  crsSvc,
		Sessions:   sessions,
		Validate:   validate,
		Translator: translator,
	})

	return &testApp{
		app:     app,
		usrSvc:  usrSvc,
		crsSvc:  crsSvc,
		student: student,
		admin:   admin,
		goCrs:   goCrs,
	}
}

func (ta *testApp) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body failed, %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ta.app.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), into); err != nil {
		t.Fatalf("decoding response failed, %v\nbody: %s", err, rec.Body.String())
	}
}

// login drives the real endpoint so session state matches what a client sees.
func (ta *testApp) login(t *testing.T, email, password string) (token string, resp echoapi.SessionResponse) {
	t.Helper()
	rec := ta.do(t, http.MethodPost, "/v1/session/login", "", echoapi.LoginRequest{Email: email, Password: password})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d\nbody: %s", rec.Code, rec.Body.String())
	}
	decode(t, rec, &resp)
	return resp.Token, resp
}

func TestSessionAPI_login(t *testing.T) {
	ta := setup(t)

	token, resp := ta.login(t, "ALICE@test.cd", "password123")
	if !resp.OK || token == "" {
		t.Fatalf("login response: %+v", resp)
	}
	if resp.User == nil || resp.User.ID != ta.student.ID {
		t.Errorf("unexpected user in response: %+v", resp.User)
	}
	if len(resp.Toasts) == 0 {
		t.Error("expected a welcome toast")
	}

	// bad credentials still 200: the failure is a toast, not an error
	rec := ta.do(t, http.MethodPost, "/v1/session/login", "", echoapi.LoginRequest{Email: "alice@test.cd", Password: "nope"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var failed echoapi.SessionResponse
	decode(t, rec, &failed)
	if failed.OK || failed.Token != "" {
		t.Errorf("failed login response: %+v", failed)
	}
	if len(failed.Toasts) == 0 || failed.Toasts[len(failed.Toasts)-1].Type != notification.TypeError {
		t.Errorf("expected an error toast, got %+v", failed.Toasts)
	}

	// malformed payloads are validation errors
	rec = ta.do(t, http.MethodPost, "/v1/session/login", "", map[string]string{"email": "alice@test.cd"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSessionAPI_register(t *testing.T) {
	ta := setup(t)

	rec := ta.do(t, http.MethodPost, "/v1/session/register", "",
		echoapi.RegisterRequest{Name: "Bob", Email: "bob@test.cd", Password: "hunter22"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d\nbody: %s", rec.Code, rec.Body.String())
	}
	var resp echoapi.SessionResponse
	decode(t, rec, &resp)
	if !resp.OK || resp.Token == "" || resp.User == nil {
		t.Fatalf("register response: %+v", resp)
	}
	if resp.User.Role != user.RoleStudent {
		t.Errorf("role = %q, want student", resp.User.Role)
	}

	// duplicate email: 200 with ok=false and an error toast
	rec = ta.do(t, http.MethodPost, "/v1/session/register", "",
		echoapi.RegisterRequest{Name: "Clone", Email: "BOB@test.cd", Password: "hunter22"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var dup echoapi.SessionResponse
	decode(t, rec, &dup)
	if dup.OK {
		t.Errorf("duplicate register response: %+v", dup)
	}
}

func TestSessionAPI_enrollAndProgress(t *testing.T) {
	ta := setup(t)
	token, _ := ta.login(t, "alice@test.cd", "password123")

	rec := ta.do(t, http.MethodPost, "/v1/session/enrollments/"+ta.goCrs.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d\nbody: %s", rec.Code, rec.Body.String())
	}
	var resp echoapi.SessionResponse
	decode(t, rec, &resp)
	if resp.User == nil || !resp.User.IsEnrolled(ta.goCrs.ID) {
		t.Fatalf("user not enrolled: %+v", resp.User)
	}

	// complete both lessons: 50 then 100
	ids := ta.goCrs.LessonIDs()
	wants := []int{50, 100}
	for i, id := range ids {
		rec = ta.do(t, http.MethodPost, "/v1/session/courses/"+ta.goCrs.ID+"/lessons/"+id+"/toggle", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d\nbody: %s", rec.Code, rec.Body.String())
		}
		decode(t, rec, &resp)
		if got := resp.User.Progress[ta.goCrs.ID]; got != wants[i] {
			t.Errorf("progress after lesson %d = %d, want %d", i+1, got, wants[i])
		}
	}

	// the completion notification is on the notification feed
	rec = ta.do(t, http.MethodGet, "/v1/notifications", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var feed echoapi.NotificationsResponse
	decode(t, rec, &feed)
	var completed int
	for _, ntf := range feed.Notifications {
		if ntf.Title == "Course Completed" {
			completed++
		}
	}
	if completed != 1 {
		t.Errorf("completion notifications = %d, want 1", completed)
	}

	// enrollment requires auth
	rec = ta.do(t, http.MethodPost, "/v1/session/enrollments/"+ta.goCrs.ID, "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestSessionAPI_anonymousEnrollStash(t *testing.T) {
	ta := setup(t)

	rec := ta.do(t, http.MethodPost, "/v1/session/enroll/"+ta.goCrs.ID, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp echoapi.SessionResponse
	decode(t, rec, &resp)
	if len(resp.Toasts) == 0 || resp.Toasts[len(resp.Toasts)-1].Type != notification.TypeInfo {
		t.Errorf("expected the saved-your-spot toast, got %+v", resp.Toasts)
	}

	// the stash resolves on login
	_, logged := ta.login(t, "alice@test.cd", "password123")
	if logged.User == nil || !logged.User.IsEnrolled(ta.goCrs.ID) {
		t.Errorf("pending enrollment was not resolved on login: %+v", logged.User)
	}
}

func TestSessionAPI_onboarding(t *testing.T) {
	ta := setup(t)
	token, _ := ta.login(t, "alice@test.cd", "password123")

	rec := ta.do(t, http.MethodGet, "/v1/session/onboarding", token, nil)
	var ob echoapi.OnboardingResponse
	decode(t, rec, &ob)
	if ob.HasSeenOnboarding {
		t.Error("HasSeenOnboarding = true, want false")
	}

	if rec = ta.do(t, http.MethodPost, "/v1/session/onboarding/dismiss", token, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	rec = ta.do(t, http.MethodGet, "/v1/session/onboarding", token, nil)
	decode(t, rec, &ob)
	if !ob.HasSeenOnboarding {
		t.Error("HasSeenOnboarding = false, want true")
	}
}

func TestCourseAPI(t *testing.T) {
	ta := setup(t)

	// the catalog is public
	rec := ta.do(t, http.MethodGet, "/v1/courses", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var catalog []course.Course
	decode(t, rec, &catalog)
	if len(catalog) != 1 {
		t.Errorf("catalog size = %d, want 1", len(catalog))
	}

	rec = ta.do(t, http.MethodGet, "/v1/courses?q=fundamentals", "", nil)
	decode(t, rec, &catalog)
	if len(catalog) != 1 || catalog[0].ID != ta.goCrs.ID {
		t.Errorf("search results: %+v", catalog)
	}

	rec = ta.do(t, http.MethodGet, "/v1/courses/"+ta.goCrs.ID, "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	rec = ta.do(t, http.MethodGet, "/v1/courses/nope", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	// creation needs at least the instructor role
	studentToken, _ := ta.login(t, "alice@test.cd", "password123")
	nc := course.NewCourse{Title: "New", Instructor: "Grace"}
	if rec = ta.do(t, http.MethodPost, "/v1/courses", studentToken, nc); rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	adminToken, _ := ta.login(t, "boss@test.cd", "admin123")
	if rec = ta.do(t, http.MethodPost, "/v1/courses", adminToken, nc); rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201\nbody: %s", rec.Code, rec.Body.String())
	}

	// reviews
	rec = ta.do(t, http.MethodPost, "/v1/courses/"+ta.goCrs.ID+"/reviews", studentToken,
		course.NewReview{Rating: 5, Comment: "great"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d\nbody: %s", rec.Code, rec.Body.String())
	}
	var crs course.Course
	decode(t, rec, &crs)
	if crs.ReviewCount != 1 || crs.Rating != 5 {
		t.Errorf("ReviewCount = %d, Rating = %v", crs.ReviewCount, crs.Rating)
	}
	// the author defaults to the caller
	if len(crs.Reviews) != 1 || crs.Reviews[0].Author != "Alice" {
		t.Errorf("reviews: %+v", crs.Reviews)
	}
}

func TestUserAPI_adminGuard(t *testing.T) {
	ta := setup(t)

	// anonymous
	rec := ta.do(t, http.MethodGet, "/v1/users", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}

	// non-admin
	studentToken, _ := ta.login(t, "alice@test.cd", "password123")
	rec = ta.do(t, http.MethodGet, "/v1/users", studentToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}

	// admin
	adminToken, _ := ta.login(t, "boss@test.cd", "admin123")
	rec = ta.do(t, http.MethodGet, "/v1/users", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var users []user.User
	decode(t, rec, &users)
	if len(users) != 2 {
		t.Errorf("users = %d, want 2", len(users))
	}
}

func TestUserAPI_adminManagement(t *testing.T) {
	ta := setup(t)
	adminToken, _ := ta.login(t, "boss@test.cd", "admin123")

	// create: toasts ride along with the outcome
	rec := ta.do(t, http.MethodPost, "/v1/users", adminToken,
		echoapi.AddUserRequest{Name: "Eve", Email: "eve@test.cd", Role: user.RoleInstructor})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d\nbody: %s", rec.Code, rec.Body.String())
	}
	var resp echoapi.AdminResponse
	decode(t, rec, &resp)
	if !resp.OK || len(resp.Toasts) == 0 {
		t.Errorf("create response: %+v", resp)
	}

	// duplicate email fails softly
	rec = ta.do(t, http.MethodPost, "/v1/users", adminToken,
		echoapi.AddUserRequest{Name: "Eve 2", Email: "EVE@test.cd", Role: user.RoleStudent})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	decode(t, rec, &resp)
	if resp.OK {
		t.Errorf("duplicate create response: %+v", resp)
	}

	// status update
	rec = ta.do(t, http.MethodPut, "/v1/users/"+ta.student.ID+"/status", adminToken,
		echoapi.StatusUpdateRequest{Status: user.StatusSuspended})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d\nbody: %s", rec.Code, rec.Body.String())
	}
	usr, err := ta.usrSvc.GetByID(ta.student.ID)
	if err != nil {
		t.Fatalf("GetByID() failed, %v", err)
	}
	if usr.Status != user.StatusSuspended {
		t.Errorf("status = %q, want suspended", usr.Status)
	}

	// password reset to default
	rec = ta.do(t, http.MethodPost, "/v1/users/"+ta.student.ID+"/password-reset", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	usr, _ = ta.usrSvc.GetByID(ta.student.ID)
	if err := usr.CheckPassword("password"); err != nil {
		t.Error("password should be reset to the default")
	}

	// admins cannot delete themselves
	rec = ta.do(t, http.MethodDelete, "/v1/users/"+ta.admin.ID, adminToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}

	// delete someone else
	rec = ta.do(t, http.MethodDelete, "/v1/users/"+ta.student.ID, adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d\nbody: %s", rec.Code, rec.Body.String())
	}
	if _, err := ta.usrSvc.GetByID(ta.student.ID); err != user.ErrNotFound {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestUserAPI_selfRetrieve(t *testing.T) {
	ta := setup(t)
	token, _ := ta.login(t, "alice@test.cd", "password123")

	// users can fetch themselves
	rec := ta.do(t, http.MethodGet, "/v1/users/"+ta.student.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var usr user.User
	decode(t, rec, &usr)
	if usr.ID != ta.student.ID {
		t.Errorf("retrieved %q, want %q", usr.ID, ta.student.ID)
	}

	// but not others
	rec = ta.do(t, http.MethodGet, "/v1/users/"+ta.admin.ID, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestNotificationAPI(t *testing.T) {
	ta := setup(t)
	token, _ := ta.login(t, "alice@test.cd", "password123")

	// login produced a welcome notification
	rec := ta.do(t, http.MethodGet, "/v1/notifications", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var feed echoapi.NotificationsResponse
	decode(t, rec, &feed)
	if len(feed.Notifications) == 0 || feed.UnreadCount == 0 {
		t.Fatalf("feed: %+v", feed)
	}

	id := feed.Notifications[0].ID
	if rec = ta.do(t, http.MethodPost, "/v1/notifications/"+id+"/read", token, nil); rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if rec = ta.do(t, http.MethodPost, "/v1/notifications/nope/read", token, nil); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	rec = ta.do(t, http.MethodGet, "/v1/notifications", token, nil)
	decode(t, rec, &feed)
	if feed.UnreadCount != 0 {
		t.Errorf("UnreadCount = %d, want 0", feed.UnreadCount)
	}

	// dismiss a toast early
	rec = ta.do(t, http.MethodGet, "/v1/toasts", token, nil)
	var toasts []notification.Toast
	decode(t, rec, &toasts)
	if len(toasts) == 0 {
		t.Fatal("expected the welcome toast")
	}
	if rec = ta.do(t, http.MethodDelete, "/v1/toasts/"+toasts[0].ID, token, nil); rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}

	if rec = ta.do(t, http.MethodDelete, "/v1/notifications", token, nil); rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	rec = ta.do(t, http.MethodGet, "/v1/notifications", token, nil)
	decode(t, rec, &feed)
	if len(feed.Notifications) != 0 {
		t.Errorf("notifications after clear: %+v", feed.Notifications)
	}
}
