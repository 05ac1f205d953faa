package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Tomtimmy/learnspace/core/course"
	"github.com/Tomtimmy/learnspace/core/user"
)

type courseApi struct {
	svc      course.Service
	userSvc  user.Service
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := courseApi{
		svc:      deps.CourseSvc,
		userSvc:  deps.UserSvc,
		validate: deps.Validate,
	}

	cg := g.Group("/courses")

	// the catalog is public
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)

	// authed endpoints; jwt is attached per route so the public catalog
	// routes above are not shadowed by a subgroup at the same prefix
	cg.POST("", api.create, jwt, instructorMiddleware())
	cg.DELETE("/:id", api.destroy, jwt, adminMiddleware())
	cg.POST("/:id/reviews", api.postReview, jwt)
}

// Handlers

func (api *courseApi) query(ctx echo.Context) error {
	var (
		courses []course.Course
		err     error
	)
	if q := ctx.QueryParam("q"); q != "" {
		courses, err = api.svc.Search(q)
	} else {
		courses, err = api.svc.QueryAll()
	}
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	crs, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding course by ID")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Param("id")); err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) postReview(ctx echo.Context) error {
	var data course.NewReview
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReview")
	}

	// default the author to the caller when omitted
	if data.Author == "" {
		if ctxUsr, err := getContextUser(ctx, api.userSvc); err == nil {
			data.Author = ctxUsr.Name
		}
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.svc.AddReview(ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "posting review")
	}
	return ctx.JSON(http.StatusCreated, crs)
}
