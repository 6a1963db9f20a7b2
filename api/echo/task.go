package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/oscardm22/estuguia/core"
	"github.com/oscardm22/estuguia/core/task"
)

type taskApi struct {
	deps ServerDeps
}

func registerTaskAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := taskApi{deps: deps}

	tg := g.Group("/tasks", jwt)
	tg.GET("", api.query)
	tg.POST("", api.create)
	tg.GET("/upcoming", api.upcoming)
	tg.GET("/pending-count", api.pendingCount)
	tg.GET("/:id", api.retrieve)
	tg.PUT("/:id", api.update)
	tg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *taskApi) create(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	var data task.NewTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTask")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	t, err := api.deps.TaskSvc.Add(ctx.Request().Context(), sess, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, t)
}

// query lists the session user's tasks, optionally filtered by `status` or
// `schedule_id` query params.
func (api *taskApi) query(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	reqCtx := ctx.Request().Context()

	var tasks []task.Task
	switch {
	case ctx.QueryParam("status") != "":
		status, err := parseStatus(ctx.QueryParam("status"))
		if err != nil {
			return err
		}
		tasks, err = api.deps.TaskSvc.ListByStatus(reqCtx, sess, status)
		if err != nil {
			return err
		}
	case ctx.QueryParam("schedule_id") != "":
		tasks, err = api.deps.TaskSvc.ListBySchedule(reqCtx, sess, ctx.QueryParam("schedule_id"))
		if err != nil {
			return err
		}
	default:
		tasks, err = api.deps.TaskSvc.List(reqCtx, sess)
		if err != nil {
			return err
		}
	}

	if tasks == nil {
		tasks = []task.Task{}
	}
	return ctx.JSON(http.StatusOK, tasks)
}

func (api *taskApi) upcoming(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	days := 0
	if param := ctx.QueryParam("days"); param != "" {
		if days, err = strconv.Atoi(param); err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "days", Error: "debe ser un número"})
		}
	}

	tasks, err := api.deps.TaskSvc.ListUpcoming(ctx.Request().Context(), sess, days)
	if err != nil {
		return err
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return ctx.JSON(http.StatusOK, tasks)
}

func (api *taskApi) pendingCount(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	count, err := api.deps.TaskSvc.PendingCount(ctx.Request().Context(), sess)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"pending": count})
}

func (api *taskApi) retrieve(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	t, err := api.deps.TaskSvc.Get(ctx.Request().Context(), sess, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *taskApi) update(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	var data task.UpdateTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTask")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	t, err := api.deps.TaskSvc.Update(ctx.Request().Context(), sess, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *taskApi) destroy(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	if err := api.deps.TaskSvc.Delete(ctx.Request().Context(), sess, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func parseStatus(param string) (task.Status, error) {
	switch status := task.Status(param); status {
	case task.StatusPending, task.StatusInProgress, task.StatusCompleted:
		return status, nil
	}
	return "", core.NewValidationError(nil, core.FieldError{Field: "status", Error: "debe ser PENDING, IN_PROGRESS o COMPLETED"})
}
