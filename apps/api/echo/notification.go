package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Tomtimmy/learnspace/core/notification"
	"github.com/Tomtimmy/learnspace/core/session"
)

type notificationApi struct {
	sessions *session.Registry
}

func registerNotificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := notificationApi{sessions: deps.Sessions}

	ng := g.Group("/notifications", jwt)
	ng.GET("", api.query)
	ng.POST("/read-all", api.markAllAsRead)
	ng.POST("/:id/read", api.markAsRead)
	ng.DELETE("", api.clear)

	tg := g.Group("/toasts", jwt)
	tg.GET("", api.queryToasts)
	tg.DELETE("/:id", api.dismissToast)
}

type NotificationsResponse struct {
	Notifications []notification.Notification `json:"notifications"`
	UnreadCount   int                         `json:"unread_count"`
}

// Handlers

func (api *notificationApi) query(ctx echo.Context) error {
	mgr, err := sessionFromCtx(ctx, api.sessions)
	if err != nil {
		return err
	}
	hub := mgr.Hub()
	return ctx.JSON(http.StatusOK, NotificationsResponse{
		Notifications: hub.Notifications(),
		UnreadCount:   hub.UnreadCount(),
	})
}

func (api *notificationApi) markAsRead(ctx echo.Context) error {
	mgr, err := sessionFromCtx(ctx, api.sessions)
	if err != nil {
		return err
	}
	if !mgr.Hub().MarkAsRead(ctx.Param("id")) {
		return errHttpNotFound
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *notificationApi) markAllAsRead(ctx echo.Context) error {
	mgr, err := sessionFromCtx(ctx, api.sessions)
	if err != nil {
		return err
	}
	mgr.Hub().MarkAllAsRead()
	return ctx.NoContent(http.StatusNoContent)
}

func (api *notificationApi) clear(ctx echo.Context) error {
	mgr, err := sessionFromCtx(ctx, api.sessions)
	if err != nil {
		return err
	}
	mgr.Hub().ClearNotifications()
	return ctx.NoContent(http.StatusNoContent)
}

func (api *notificationApi) queryToasts(ctx echo.Context) error {
	mgr, err := sessionFromCtx(ctx, api.sessions)
	if err != nil {
		return err
	}
	toasts := mgr.Hub().Toasts()
	if toasts == nil {
		toasts = []notification.Toast{}
	}
	return ctx.JSON(http.StatusOK, toasts)
}

func (api *notificationApi) dismissToast(ctx echo.Context) error {
	mgr, err := sessionFromCtx(ctx, api.sessions)
	if err != nil {
		return err
	}
	mgr.Hub().RemoveToast(ctx.Param("id"))
	return ctx.NoContent(http.StatusNoContent)
}
