package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/Tomtimmy/learnspace/core"
)

// Roles
const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// Account statuses
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

var (
	AllRoles    = []string{RoleStudent, RoleInstructor, RoleAdmin}
	AllStatuses = []string{StatusActive, StatusInactive, StatusSuspended}

	Roles = []Role{
		{Name: "Student", Value: RoleStudent},
		{Name: "Instructor", Value: RoleInstructor},
		{Name: "Admin", Value: RoleAdmin},
	}
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name"`
	Email              string         `json:"email"`
	Role               string         `json:"role"`
	Status             string         `json:"status"`
	PasswordHash       []byte         `json:"-"`
	EnrolledCourseIDs  []string       `json:"enrolled_course_ids"`
	CompletedLessonIDs []string       `json:"completed_lesson_ids"`
	Progress           map[string]int `json:"progress"` // course ID -> percent 0-100
	CreatedAt          time.Time      `json:"created_at"` // UTC
	UpdatedAt          time.Time      `json:"updated_at"` // UTC
	LastLogin          null.Time      `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool      { return u.Role == RoleAdmin }
func (u *User) IsInstructor() bool { return u.Role == RoleInstructor }
func (u *User) IsStudent() bool    { return u.Role == RoleStudent }
func (u *User) IsActive() bool     { return u.Status == StatusActive }

func (u *User) IsEnrolled(courseID string) bool {
	return contains(u.EnrolledCourseIDs, courseID)
}

// Enroll adds courseID to the enrolled set and initializes its progress entry.
// It is a no-op when the user is already enrolled.
func (u *User) Enroll(courseID string) {
	if u.IsEnrolled(courseID) {
		return
	}
	u.EnrolledCourseIDs = append(u.EnrolledCourseIDs, courseID)
	if u.Progress == nil {
		u.Progress = make(map[string]int)
	}
	u.Progress[courseID] = 0
}

func (u *User) HasCompletedLesson(lessonID string) bool {
	return contains(u.CompletedLessonIDs, lessonID)
}

// ToggleLesson flips membership of lessonID in the completed set and reports
// whether the lesson is completed after the toggle.
func (u *User) ToggleLesson(lessonID string) bool {
	for i, id := range u.CompletedLessonIDs {
		if id == lessonID {
			u.CompletedLessonIDs = append(u.CompletedLessonIDs[:i], u.CompletedLessonIDs[i+1:]...)
			return false
		}
	}
	u.CompletedLessonIDs = append(u.CompletedLessonIDs, lessonID)
	return true
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"omitempty"` // empty -> default password (admin-created accounts)
	Role     string `json:"role" validate:"omitempty,oneof=student instructor admin"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"omitempty,email"`
	Role     string `json:"role" validate:"omitempty,oneof=student instructor admin"`
	Status   string `json:"status" validate:"omitempty,oneof=active inactive suspended"`
	Password string `json:"password"`
}

func (uu *UpdateUser) Validate(origUsr User, validate *validator.Validate, svc Service) error {
	uu.Name = core.CleanString(uu.Name)
	if uu.Name == "" {
		uu.Name = origUsr.Name
	}

	email := core.CleanString(uu.Email, true /* lower */)
	if email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	if err := validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(uu.Email, origUsr)
}

type ResetUserPassword struct {
	Token    string `json:"token,omitempty" validate:"required"`
	UID      string `json:"uid,omitempty" validate:"required"`
	Password string `json:"password,omitempty" validate:"required"`
}

func (rp ResetUserPassword) Validate(validate *validator.Validate) error {
	return validate.Struct(rp)
}

type QueryFilter struct {
	Search      string    `query:"search"`
	Role        string    `query:"role"`
	Status      string    `query:"status"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Role == "" && qf.Status == "" && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Role = core.CleanString(qf.Role, true /* lower */)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}

// ValidStatus reports whether s is a known account status.
func ValidStatus(s string) bool {
	return contains(AllStatuses, s)
}

// ValidRole reports whether r is a known role.
func ValidRole(r string) bool {
	for _, role := range AllRoles {
		if role == r {
			return true
		}
	}
	return false
}
