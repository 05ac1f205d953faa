package session

import (
	"fmt"
	"math"
	"sync"

	"github.com/Tomtimmy/learnspace/core"
	"github.com/Tomtimmy/learnspace/core/course"
	"github.com/Tomtimmy/learnspace/core/notification"
	"github.com/Tomtimmy/learnspace/core/user"
)

// Manager drives one client session: it owns currentUser, performs every
// enrollment/account mutation through the injected services, and surfaces all
// outcomes on its notification hub. Validation failures never escape as
// errors; they become toasts and a bool/void return.
type Manager struct {
	users   user.Service
	courses course.Service
	hub     *notification.Hub
	state   StateStore
	log     core.Logger

	mu      sync.RWMutex
	current *user.User
}

func NewManager(users user.Service, courses course.Service, hub *notification.Hub, state StateStore, log core.Logger) *Manager {
	return &Manager{
		users:   users,
		courses: courses,
		hub:     hub,
		state:   state,
		log:     log,
	}
}

func (m *Manager) Hub() *notification.Hub { return m.hub }

// CurrentUser returns a copy of the authenticated user, if any.
func (m *Manager) CurrentUser() (user.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return user.User{}, false
	}
	return *m.current, true
}

func (m *Manager) setCurrent(usr user.User) {
	m.mu.Lock()
	m.current = &usr
	m.mu.Unlock()
}

// Restore silently attaches an already-authenticated user to this session
// (no toasts, no pending-enrollment resolution).
func (m *Manager) Restore(usr user.User) {
	m.setCurrent(usr)
}

// Login authenticates by case-insensitive email and exact password. On
// success it greets the user and immediately resolves any pending enrollment
// stashed in the client state; the two steps run synchronously, in order.
func (m *Manager) Login(email, password string) bool {
	usr, err := m.users.Authenticate(email, password)
	switch err {
	case nil:
	case user.ErrAccountNotActive:
		m.hub.PushToast(notification.TypeError, fmt.Sprintf("This account is %s. Contact support for assistance.", usr.Status))
		return false
	case user.ErrInvalidCredentials:
		m.hub.PushToast(notification.TypeError, "Invalid email or password.")
		return false
	default:
		m.log.Error(fmt.Sprintf("authenticating %s: %v", email, err), err)
		m.hub.PushToast(notification.TypeError, "Something went wrong. Please try again.")
		return false
	}

	if updated, lerr := m.users.SetLastLogin(usr); lerr == nil {
		usr = updated
	}
	m.setCurrent(usr)

	m.hub.PushToast(notification.TypeSuccess, fmt.Sprintf("Welcome back, %s!", usr.Name))
	m.hub.Notify("Welcome Back", fmt.Sprintf("Good to see you again, %s.", usr.Name), notification.TypeInfo)

	m.resolvePendingEnrollment()
	return true
}

// Register creates a Student account, signs it in and resolves any pending
// enrollment, mirroring Login.
func (m *Manager) Register(name, email, password string) bool {
	usr, err := m.users.Register(user.NewUser{Name: name, Email: email, Password: password})
	if err != nil {
		if vErr, ok := err.(*core.ValidationError); ok {
			m.hub.PushToast(notification.TypeError, vErr.Error())
		} else {
			m.log.Error(fmt.Sprintf("registering %s: %v", email, err), err)
			m.hub.PushToast(notification.TypeError, "Something went wrong. Please try again.")
		}
		return false
	}
	m.setCurrent(usr)

	m.hub.PushToast(notification.TypeSuccess, fmt.Sprintf("Welcome to Learnspace, %s!", usr.Name))
	m.hub.Notify("Welcome!", "Your account has been created. Happy learning!", notification.TypeSuccess)

	m.resolvePendingEnrollment()
	return true
}

// Logout clears the current user and the notification list. Toasts stay.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	m.hub.ClearNotifications()
	m.hub.PushToast(notification.TypeInfo, "You have been logged out.")
}

// Enroll adds the current user to a course. Anonymous callers get the course
// stashed under KeyPendingEnrollment instead; already-enrolled users get an
// informational toast and no state change.
func (m *Manager) Enroll(courseID string) {
	usr, ok := m.CurrentUser()
	if !ok {
		m.state.Set(KeyPendingEnrollment, courseID)
		m.hub.PushToast(notification.TypeInfo, "Please log in or sign up to enroll. We saved your spot!")
		return
	}

	crs, err := m.courses.GetByID(courseID)
	if err != nil {
		m.hub.PushToast(notification.TypeError, "Course not found.")
		return
	}
	if usr.IsEnrolled(courseID) {
		m.hub.PushToast(notification.TypeInfo, fmt.Sprintf("You are already enrolled in %s.", crs.Title))
		return
	}

	usr.Enroll(courseID)
	saved, err := m.users.SaveProgress(usr)
	if err != nil {
		m.log.Error(fmt.Sprintf("saving enrollment for %s: %v", usr.ID, err), err)
		m.hub.PushToast(notification.TypeError, "Could not complete enrollment. Please try again.")
		return
	}
	m.setCurrent(saved)

	m.hub.PushToast(notification.TypeSuccess, fmt.Sprintf("Enrolled in %s!", crs.Title))
	m.hub.Notify("Enrollment Confirmed", fmt.Sprintf("You are now enrolled in %s.", crs.Title), notification.TypeSuccess)
}

// ToggleLessonCompletion flips a lesson's completed state (its own inverse)
// and recomputes the course progress percentage. Reaching 100 for the first
// time emits exactly one completion notification.
func (m *Manager) ToggleLessonCompletion(courseID, lessonID string) {
	usr, ok := m.CurrentUser()
	if !ok {
		m.hub.PushToast(notification.TypeError, "Please log in to track your progress.")
		return
	}

	crs, err := m.courses.GetByID(courseID)
	if err != nil {
		m.hub.PushToast(notification.TypeError, "Course not found.")
		return
	}
	if !usr.IsEnrolled(courseID) {
		m.hub.PushToast(notification.TypeError, fmt.Sprintf("You are not enrolled in %s.", crs.Title))
		return
	}
	if !crs.HasLesson(lessonID) {
		m.hub.PushToast(notification.TypeError, "Lesson not found in this course.")
		return
	}

	usr.ToggleLesson(lessonID)

	prev := usr.Progress[courseID]
	prog := courseProgress(&usr, &crs)
	usr.Progress[courseID] = prog

	saved, err := m.users.SaveProgress(usr)
	if err != nil {
		m.log.Error(fmt.Sprintf("saving progress for %s: %v", usr.ID, err), err)
		m.hub.PushToast(notification.TypeError, "Could not save your progress. Please try again.")
		return
	}
	m.setCurrent(saved)

	if prev < 100 && prog == 100 {
		m.hub.Notify("Course Completed", fmt.Sprintf("Congratulations! You finished %s.", crs.Title), notification.TypeSuccess)
	}
}

// courseProgress computes round(100 * completed/total), clamped to 0 for
// courses with no lessons.
func courseProgress(usr *user.User, crs *course.Course) int {
	total := crs.TotalLessons()
	if total == 0 {
		return 0
	}
	var completed int
	for _, id := range crs.LessonIDs() {
		if usr.HasCompletedLesson(id) {
			completed++
		}
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// ResetPassword updates the password of the account matching email
// (case-insensitive); lenient by design, no strength policy.
func (m *Manager) ResetPassword(email, newPassword string) bool {
	if _, err := m.users.ResetPassword(email, newPassword); err != nil {
		if err == user.ErrNotFound {
			m.hub.PushToast(notification.TypeError, "No account found for that email address.")
		} else {
			m.log.Error(fmt.Sprintf("resetting password for %s: %v", email, err), err)
			m.hub.PushToast(notification.TypeError, "Could not reset password. Please try again.")
		}
		return false
	}
	m.hub.PushToast(notification.TypeSuccess, "Password updated.")
	m.hub.Notify("Security Alert", "Your password was changed.", notification.TypeWarning)
	return true
}

// AddUser creates an account with the default password. Admin only.
func (m *Manager) AddUser(name, email, role string) bool {
	if usr, ok := m.CurrentUser(); !ok || !usr.IsAdmin() {
		m.hub.PushToast(notification.TypeError, "Permission denied.")
		return false
	}
	if !user.ValidRole(role) {
		m.hub.PushToast(notification.TypeError, "Unknown role.")
		return false
	}
	if err := m.users.CheckEmailUniqueness(email); err != nil {
		m.hub.PushToast(notification.TypeError, "A user with this email already exists.")
		return false
	}
	if _, err := m.users.Create(user.NewUser{Name: name, Email: email, Role: role}); err != nil {
		m.log.Error(fmt.Sprintf("creating user %s: %v", email, err), err)
		m.hub.PushToast(notification.TypeError, "Could not create user. Please try again.")
		return false
	}
	m.hub.PushToast(notification.TypeSuccess, fmt.Sprintf("User %s created.", name))
	return true
}

// DeleteUser removes an account. Authorization is the caller's concern.
func (m *Manager) DeleteUser(userID string) {
	if err := m.users.Delete(userID); err != nil {
		m.hub.PushToast(notification.TypeError, "Could not delete user.")
		return
	}
	m.hub.PushToast(notification.TypeSuccess, "User removed.")
}

func (m *Manager) UpdateUserStatus(userID, status string) {
	if !user.ValidStatus(status) {
		m.hub.PushToast(notification.TypeError, "Unknown status.")
		return
	}
	if _, err := m.users.UpdateStatus(userID, status); err != nil {
		m.hub.PushToast(notification.TypeError, "Could not update user status.")
		return
	}
	m.hub.PushToast(notification.TypeSuccess, fmt.Sprintf("User status set to %s.", status))
}

// AdminResetPassword resets an account to the configured default password
// (user.Service substitutes the default on an empty password).
func (m *Manager) AdminResetPassword(userID string) {
	if _, err := m.users.ResetPasswordByID(userID, ""); err != nil {
		m.hub.PushToast(notification.TypeError, "Could not reset password.")
		return
	}
	m.hub.PushToast(notification.TypeSuccess, "Password reset to the default.")
}

func (m *Manager) HasSeenOnboarding() bool {
	v, ok := m.state.Get(KeyHasSeenOnboarding)
	return ok && v == "true"
}

func (m *Manager) MarkOnboardingSeen() {
	m.state.Set(KeyHasSeenOnboarding, "true")
}

// resolvePendingEnrollment consumes KeyPendingEnrollment exactly once:
// the key is deleted before the enrollment runs so a failed enrollment does
// not replay on the next login.
func (m *Manager) resolvePendingEnrollment() {
	courseID, ok := m.state.Get(KeyPendingEnrollment)
	if !ok || courseID == "" {
		return
	}
	m.state.Delete(KeyPendingEnrollment)
	m.Enroll(courseID)
}
