package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oscardm22/estuguia/core"
	"github.com/oscardm22/estuguia/core/schedule"
)

type dashboardApi struct {
	deps ServerDeps
}

func registerDashboardAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := dashboardApi{deps: deps}
	g.GET("/dashboard", api.retrieve, jwt)
}

// DashboardStats is the home-screen summary.
type DashboardStats struct {
	TodayClasses  []schedule.Schedule `json:"today_classes"`
	PendingTasks  int                 `json:"pending_tasks"`
	NextClassTime string              `json:"next_class_time,omitempty"`
}

func (api *dashboardApi) retrieve(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	reqCtx := ctx.Request().Context()

	today, err := api.deps.ScheduleSvc.Today(reqCtx, sess)
	if err != nil {
		return err
	}
	if today == nil {
		today = []schedule.Schedule{}
	}

	pending, err := api.deps.TaskSvc.PendingCount(reqCtx, sess)
	if err != nil {
		return err
	}

	stats := DashboardStats{
		TodayClasses: today,
		PendingTasks: pending,
	}
	if next, ok := schedule.NextClassAfter(today, schedule.CurrentClock(core.NowFunc())); ok {
		stats.NextClassTime = next
	}
	return ctx.JSON(http.StatusOK, stats)
}
