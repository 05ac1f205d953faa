package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Tomtimmy/learnspace/core"
	"github.com/Tomtimmy/learnspace/core/notification"
	"github.com/Tomtimmy/learnspace/core/session"
	"github.com/Tomtimmy/learnspace/core/user"
)

type sessionApi struct {
	sessions *session.Registry
	validate *validator.Validate
}

func registerSessionAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := sessionApi{
		sessions: deps.Sessions,
		validate: deps.Validate,
	}

	sg := g.Group("/session")

	// un-authed endpoints
	sg.POST("/login", api.login)
	sg.POST("/register", api.register)
	sg.POST("/password-reset", api.resetPassword)
	// a visitor picking a course before signing in; the enrollment is
	// stashed and resolved on their next login or registration.
	sg.POST("/enroll/:courseID", api.enrollAnonymous)

	// authed endpoints
	ag := sg.Group("", jwt)
	ag.GET("/me", api.me)
	ag.POST("/logout", api.logout)
	ag.POST("/enrollments/:courseID", api.enroll)
	ag.POST("/courses/:courseID/lessons/:lessonID/toggle", api.toggleLesson)
	ag.GET("/onboarding", api.onboarding)
	ag.POST("/onboarding/dismiss", api.dismissOnboarding)
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	RegisterRequest struct {
		Name     string `json:"name" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	SessionPasswordResetRequest struct {
		Email       string `json:"email" validate:"required,email"`
		NewPassword string `json:"new_password" validate:"required"`
	}

	// SessionResponse mirrors what a client needs after a session-level
	// operation: whether it worked, the signed token on success, and the
	// feedback queues the operation produced.
	SessionResponse struct {
		OK     bool                 `json:"ok"`
		Token  string               `json:"token,omitempty"`
		User   *user.User           `json:"user,omitempty"`
		Toasts []notification.Toast `json:"toasts"`
	}

	OnboardingResponse struct {
		HasSeenOnboarding bool `json:"has_seen_onboarding"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

func (rr *RegisterRequest) Validate(validate *validator.Validate) error {
	rr.Name = core.CleanString(rr.Name)
	rr.Email = core.CleanString(rr.Email, true /* lower */)
	return validate.Struct(rr)
}

func (pr *SessionPasswordResetRequest) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return validate.Struct(pr)
}

// Handlers

func (api *sessionApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	mgr, ok := api.sessions.Login(data.Email, data.Password)
	if !ok {
		// the failure reason is already on the toast queue
		return ctx.JSON(http.StatusOK, SessionResponse{Toasts: mgr.Hub().Toasts()})
	}

	usr, _ := mgr.CurrentUser()
	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, SessionResponse{
		OK:     true,
		Token:  token,
		User:   &usr,
		Toasts: mgr.Hub().Toasts(),
	})
}

func (api *sessionApi) register(ctx echo.Context) error {
	var data RegisterRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RegisterRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	mgr, ok := api.sessions.Register(data.Name, data.Email, data.Password)
	if !ok {
		return ctx.JSON(http.StatusOK, SessionResponse{Toasts: mgr.Hub().Toasts()})
	}

	usr, _ := mgr.CurrentUser()
	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, SessionResponse{
		OK:     true,
		Token:  token,
		User:   &usr,
		Toasts: mgr.Hub().Toasts(),
	})
}

func (api *sessionApi) resetPassword(ctx echo.Context) error {
	var data SessionPasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SessionPasswordResetRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	mgr := api.sessions.Anonymous()
	ok := mgr.ResetPassword(data.Email, data.NewPassword)
	return ctx.JSON(http.StatusOK, SessionResponse{OK: ok, Toasts: mgr.Hub().Toasts()})
}

func (api *sessionApi) enrollAnonymous(ctx echo.Context) error {
	mgr := api.sessions.Anonymous()
	mgr.Enroll(ctx.Param("courseID"))
	return ctx.JSON(http.StatusOK, SessionResponse{Toasts: mgr.Hub().Toasts()})
}

func (api *sessionApi) me(ctx echo.Context) error {
	mgr, err := sessionFromCtx(ctx, api.sessions)
	if err != nil {
		return err
	}
	usr, ok := mgr.CurrentUser()
	if !ok {
		return errUnauthorized
	}
	return ctx.JSON(http.StatusOK, SessionResponse{OK: true, User: &usr, Toasts: mgr.Hub().Toasts()})
}

func (api *sessionApi) logout(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	api.sessions.Logout(claims.Subject)
	return ctx.NoContent(http.StatusNoContent)
}

func (api *sessionApi) enroll(ctx echo.Context) error {
	mgr, err := sessionFromCtx(ctx, api.sessions)
	if err != nil {
		return err
	}
	mgr.Enroll(ctx.Param("courseID"))
	usr, _ := mgr.CurrentUser()
	return ctx.JSON(http.StatusOK, SessionResponse{OK: true, User: &usr, Toasts: mgr.Hub().Toasts()})
}

func (api *sessionApi) toggleLesson(ctx echo.Context) error {
	mgr, err := sessionFromCtx(ctx, api.sessions)
	if err != nil {
		return err
	}
	mgr.ToggleLessonCompletion(ctx.Param("courseID"), ctx.Param("lessonID"))
	usr, _ := mgr.CurrentUser()
	return ctx.JSON(http.StatusOK, SessionResponse{OK: true, User: &usr, Toasts: mgr.Hub().Toasts()})
}

func (api *sessionApi) onboarding(ctx echo.Context) error {
	mgr, err := sessionFromCtx(ctx, api.sessions)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, OnboardingResponse{HasSeenOnboarding: mgr.HasSeenOnboarding()})
}

func (api *sessionApi) dismissOnboarding(ctx echo.Context) error {
	mgr, err := sessionFromCtx(ctx, api.sessions)
	if err != nil {
		return err
	}
	mgr.MarkOnboardingSeen()
	return ctx.NoContent(http.StatusNoContent)
}

// sessionFromCtx resolves the authenticated caller's session Manager,
// restoring it from the JWT subject after a server restart.
func sessionFromCtx(ctx echo.Context, sessions *session.Registry) (*session.Manager, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "getting context claims")
	}
	mgr, err := sessions.ForUser(claims.Subject)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return nil, errUnauthorized
		}
		return nil, errors.Wrap(err, "restoring session")
	}
	return mgr, nil
}
